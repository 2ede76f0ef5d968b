package policy

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/structhub-io/structhub/pkg/engine"
)

// ruleProgramCache caches compiled CEL programs by expression text. Rules
// repeat across records and batches; compilation is the expensive part.
var ruleProgramCache sync.Map

var newRulesEnv = func() (*cel.Env, error) {
	return cel.NewEnv(cel.Variable("record", cel.MapType(cel.StringType, cel.DynType)))
}

// RulesObserver returns the ring-3 observer evaluating the model's ordered
// cross-field rules. Each rule is a CEL expression over a "record" map and
// must yield a boolean; false appends a BusinessLogicError carrying the rule
// name. A rule that fails to compile or evaluate fails the record too: a
// broken rule must never silently admit data.
func RulesObserver() *engine.Observer {
	return &engine.Observer{
		Name:       "business-cross-field-rules",
		Ring:       engine.RingBusiness,
		Priority:   20,
		Operations: []engine.Operation{engine.OperationCreate, engine.OperationUpdate},
		Execute: func(_ context.Context, oc *engine.Context) error {
			if len(oc.Model.Rules) == 0 {
				return nil
			}
			recordMap := map[string]any(oc.Record)

			for _, rule := range oc.Model.Rules {
				ok, err := evalRule(rule.Expr, recordMap)
				if err != nil {
					oc.AddError(engine.NewBusinessLogicError(engine.CodeBusinessRuleFailed,
						"rule "+rule.Name+" could not be evaluated",
						map[string]any{"rule": rule.Name, "error": err.Error()}))
					continue
				}
				if !ok {
					msg := rule.Message
					if msg == "" {
						msg = "rule " + rule.Name + " failed"
					}
					oc.AddError(engine.NewBusinessLogicError(engine.CodeBusinessRuleFailed, msg,
						map[string]any{"rule": rule.Name}))
				}
			}
			return nil
		},
	}
}

// evalRule compiles (or fetches from cache) and evaluates one rule
// expression against the record map.
func evalRule(expr string, record map[string]any) (bool, error) {
	program, err := loadOrCompileRule(expr)
	if err != nil {
		return false, err
	}
	out, _, err := program.Eval(map[string]any{"record": record})
	if err != nil {
		return false, err
	}
	v, ok := out.Value().(bool)
	if !ok {
		return false, errors.New("rule did not yield a boolean")
	}
	return v, nil
}

func loadOrCompileRule(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("rule expression required")
	}
	if cached, ok := ruleProgramCache.Load(expr); ok {
		return cached.(cel.Program), nil
	}
	env, err := newRulesEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	if ast.OutputType() != cel.BoolType {
		return nil, errors.New("rule expression must yield a boolean")
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	ruleProgramCache.Store(expr, program)
	return program, nil
}
