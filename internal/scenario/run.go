package scenario

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/roach88/exprql/internal/dialect"
	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/serialize"
)

// Result is the outcome of rendering a scenario.
type Result struct {
	Scenario  string
	Dialect   string
	Text      string
	Constants []any

	// Err is the serialization error, if any. Errors building the scenario
	// are returned from Run instead.
	Err error
}

// Run builds the scenario and serializes it with the scenario's dialect.
func Run(s *Scenario, reg *dialect.Registry, opts ...serialize.Option) (*Result, error) {
	d, err := reg.Get(s.DialectName())
	if err != nil {
		return nil, err
	}
	built, err := s.Build()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	ser := serialize.New(d, opts...)
	res := &Result{Scenario: s.Name, Dialect: d.Name()}
	if built.Query != nil {
		res.Text, res.Constants, res.Err = ser.SerializeQuery(built.Query, built.ForCount)
	} else {
		res.Text, res.Constants, res.Err = ser.Serialize(built.Expression)
	}
	return res, nil
}

// ExpectationError lists the differences between a result and the
// scenario's expectations.
type ExpectationError struct {
	Scenario string
	Diffs    []string
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("scenario %s: %s", e.Scenario, strings.Join(e.Diffs, "; "))
}

// IsExpectationError reports whether err is an ExpectationError.
func IsExpectationError(err error) bool {
	var target *ExpectationError
	return errors.As(err, &target)
}

// Verify checks r against the scenario's expectations.
func Verify(s *Scenario, r *Result) error {
	var diffs []string
	want := s.Expect

	switch {
	case want.Error != "":
		if r.Err == nil {
			diffs = append(diffs, fmt.Sprintf("expected error containing %q, got text %q", want.Error, r.Text))
		} else if !strings.Contains(r.Err.Error(), want.Error) {
			diffs = append(diffs, fmt.Sprintf("expected error containing %q, got %q", want.Error, r.Err.Error()))
		}
	case r.Err != nil:
		diffs = append(diffs, fmt.Sprintf("unexpected error: %v", r.Err))
	default:
		if r.Text != want.Text {
			diffs = append(diffs, fmt.Sprintf("text: want %q, got %q", want.Text, r.Text))
		}
		if len(r.Constants) != len(want.Constants) {
			diffs = append(diffs, fmt.Sprintf("constants: want %d, got %d", len(want.Constants), len(r.Constants)))
			break
		}
		for i, c := range r.Constants {
			if got, exp := FormatConstant(c), fmt.Sprint(want.Constants[i]); got != exp {
				diffs = append(diffs, fmt.Sprintf("constant %d: want %s, got %s", i+1, exp, got))
			}
		}
	}

	if len(diffs) > 0 {
		return &ExpectationError{Scenario: s.Name, Diffs: diffs}
	}
	return nil
}

// FormatConstant renders a constant the way scenario expectations write
// it.
func FormatConstant(v any) string {
	switch x := v.(type) {
	case expr.Factory:
		return "factory(" + x.ResultType().Name + ")"
	case *expr.Type:
		return x.Name
	case *big.Float:
		return x.Text('f', -1)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
