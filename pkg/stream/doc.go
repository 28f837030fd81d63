// Package stream implements the fluent constraint pipeline builder. A
// pipeline starts from an arity-1 stream bound to one fact type, chains
// filter, join, existence, group-by, map and flatten stages, each returning
// a new immutable stream of up to four live variables, and terminates into a
// rule definition the matching engine evaluates incrementally.
//
// All pipeline validation is eager: arity limits, joiner ordering and nil
// arguments fail at the offending call, never at rule registration or
// evaluation time.
package stream
