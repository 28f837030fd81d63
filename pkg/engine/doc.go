// Package engine evaluates compiled rule definitions over a session's fact
// population. Evaluation runs on Z-sets (multisets with integer
// multiplicities), so duplicate facts, duplicate-preserving maps and flatten
// fan-out all fall out of the multiplicity bookkeeping.
//
// Key components:
//   - Engine: registry of rule definitions shared by all sessions.
//   - Session: one fact population with Insert/Retract/Update.
//   - rowSet: Z-set of partial matches flowing through the condition list.
//   - groupStage: per-session incremental aggregate state; rows entering a
//     group feed the collector's add, rows leaving it feed undo, and
//     collectors without undo get their group rebuilt from scratch.
//
// The engine carries no indexed storage and no special join algorithm:
// correlation probes are evaluated as composite comparisons over
// candidate rows. It is the reference collaborator for the stream compiler,
// not a production matcher.
package engine
