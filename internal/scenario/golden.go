package scenario

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/exprql/internal/expr"
)

// Golden renders the result as a golden snapshot:
//
//	dialect: postgres
//	text: "cat"."name" = $1
//	$1 = "Tom"
//
// Failed results record the error message instead of the text.
func (r *Result) Golden() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "dialect: %s\n", r.Dialect)
	if r.Err != nil {
		fmt.Fprintf(&b, "error: %s\n", r.Err.Error())
		return []byte(b.String())
	}
	fmt.Fprintf(&b, "text: %s\n", r.Text)
	for i, c := range r.Constants {
		fmt.Fprintf(&b, "$%d = %s\n", i+1, goldenValue(c))
	}
	return []byte(b.String())
}

func goldenValue(v any) string {
	switch v.(type) {
	case expr.Factory, *expr.Type:
		return FormatConstant(v)
	}
	return fmt.Sprintf("%#v", v)
}

// AssertGolden compares the result against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
func AssertGolden(t *testing.T, name string, r *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, r.Golden())
}
