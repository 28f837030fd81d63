package engine

import (
	"fmt"
	"reflect"

	"github.com/go-logr/logr"

	"github.com/streamrule/streamrule/pkg/rule"
)

// Engine holds a registry of compiled rule definitions. Sessions opened from
// one engine evaluate the same rules over independent fact populations.
type Engine struct {
	log   logr.Logger
	rules []*rule.Definition
}

// New creates an engine from the given rule definitions.
func New(log logr.Logger, rules ...*rule.Definition) (*Engine, error) {
	byName := map[string]bool{}
	for i, def := range rules {
		if def == nil {
			return nil, NewEngineError(fmt.Errorf("rule definition #%d is nil", i))
		}
		if byName[def.Name] {
			return nil, NewEngineError(fmt.Errorf("duplicate rule name %q", def.Name))
		}
		byName[def.Name] = true
	}
	e := &Engine{log: log, rules: rules}
	for _, def := range rules {
		e.log.V(1).Info("rule registered", "name", def.Name, "definition", def.String())
	}
	return e, nil
}

// Rules returns the registered rule definitions in registration order.
func (e *Engine) Rules() []*rule.Definition {
	out := make([]*rule.Definition, len(e.rules))
	copy(out, e.rules)
	return out
}

// NewSession opens an empty fact session. Sessions are not safe for
// concurrent use; rule compilation and the engine itself are.
func (e *Engine) NewSession() *Session {
	return &Session{
		engine: e,
		facts:  map[reflect.Type]*factSet{},
		groups: map[*rule.GroupBy]*groupStage{},
	}
}

type ErrEngine = error

func NewEngineError(err error) ErrEngine {
	return fmt.Errorf("invalid engine configuration: %w", err)
}

type ErrEvaluation = error

func NewEvaluationError(err error) ErrEvaluation {
	return fmt.Errorf("failed to evaluate rule: %w", err)
}

type ErrFact = error

func NewFactError(err error) ErrFact {
	return fmt.Errorf("invalid fact operation: %w", err)
}
