package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/exprql/internal/dialect"
	"github.com/roach88/exprql/internal/expr"
	"github.com/roach88/exprql/internal/scenario"
	"github.com/roach88/exprql/internal/serialize"
	"github.com/roach88/exprql/internal/sqlcheck"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Schema string // DDL file; derived from the scenario's entities when empty
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	Scenario     string `json:"scenario"`
	Text         string `json:"text"`
	Placeholders int    `json:"placeholders"`
	Constants    int    `json:"constants"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>",
		Short: "Prepare a scenario's query against SQLite",
		Long: `Serialize a query scenario with the sqlite dialect and prepare the
statement against an in-memory SQLite database.

The statement is never executed. The check passes when SQLite accepts
the statement and its parameter count equals the number of constants.
Without --schema, one table per scenario entity is created with a column
per declared property.

Exit codes:
  0 - Statement prepared and placeholders match constants
  1 - Serialization failed, SQLite rejected the statement, or counts differ
  2 - Command error (missing file, invalid document, bad schema)

Examples:
  exprql check ./scenarios/cat.yaml
  exprql check ./scenarios/cat.yaml --schema ./schema.sql`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Schema, "schema", "", "SQL file with the schema to prepare against")

	return cmd
}

func runCheck(ctx context.Context, opts *CheckOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := loadScenario(formatter, path)
	if err != nil {
		return err
	}
	if s.Query == nil {
		return fail(formatter, ErrCodeScenario, fmt.Sprintf("scenario %s has no query to check", s.Name), nil)
	}
	if s.DialectName() != dialect.SQLite {
		formatter.VerboseLog("Rendering %s with sqlite instead of %s", s.Name, s.DialectName())
	}
	s.Dialect = dialect.SQLite

	reg, _, err := newRegistry(opts.RootOptions, "")
	if err != nil {
		return fail(formatter, ErrCodeDialectLoad, "failed to load dialects", err)
	}
	res, err := scenario.Run(s, reg, serialize.WithLogger(opts.Logger()))
	if err != nil {
		return fail(formatter, ErrCodeScenario, "failed to build scenario", err)
	}
	if res.Err != nil {
		_ = formatter.Error(ErrCodeSerialize, res.Err.Error(), nil)
		return WrapExitError(ExitFailure, ErrCodeSerialize, res.Err)
	}

	ddl, err := checkSchema(opts.Schema, s, reg.MustGet(dialect.SQLite))
	if err != nil {
		return fail(formatter, ErrCodeNotFound, "failed to read schema", err)
	}
	formatter.VerboseLog("Schema:\n%s", ddl)

	checker, err := sqlcheck.Open(":memory:")
	if err != nil {
		return fail(formatter, ErrCodeGeneric, "failed to open SQLite", err)
	}
	defer checker.Close()

	if err := checker.Exec(ctx, ddl); err != nil {
		return fail(formatter, ErrCodeSchema, "failed to apply schema", err)
	}

	report, err := checker.Verify(ctx, res.Text, res.Constants)
	if err != nil {
		code := ErrCodeStatement
		if sqlcheck.IsMismatch(err) {
			code = ErrCodePlaceholders
		}
		_ = formatter.Error(code, err.Error(), res.Text)
		return WrapExitError(ExitFailure, code, err)
	}

	result := CheckResult{
		Scenario:     s.Name,
		Text:         report.Text,
		Placeholders: report.Placeholders,
		Constants:    report.Constants,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %s: %d placeholder(s), %d constant(s)\n", s.Name, result.Placeholders, result.Constants)
	fmt.Fprintf(formatter.Writer, "  %s\n", result.Text)
	return nil
}

func checkSchema(path string, s *scenario.Scenario, d *dialect.Dialect) (string, error) {
	if path == "" {
		return entitySchema(s, d), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// entitySchema returns one CREATE TABLE per entity. Columns are the
// declared properties; scalar properties take the dialect's type name and
// entity-valued ones are left untyped.
func entitySchema(s *scenario.Scenario, d *dialect.Dialect) string {
	names := make([]string, 0, len(s.Entities))
	for name := range s.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		ent := s.Entities[name]
		table := ent.Table
		if table == "" {
			table = name
		}

		props := make([]string, 0, len(ent.Properties))
		for p := range ent.Properties {
			props = append(props, p)
		}
		sort.Strings(props)

		cols := make([]string, 0, len(props))
		for _, p := range props {
			col := d.QuoteIdentifier(p)
			if t, ok := expr.LookupType(ent.Properties[p]); ok {
				col += " " + d.TypeName(t)
			}
			cols = append(cols, col)
		}
		if len(cols) == 0 {
			cols = append(cols, "id")
		}
		fmt.Fprintf(&b, "CREATE TABLE %s (%s);\n", d.QuoteIdentifier(table), strings.Join(cols, ", "))
	}
	return b.String()
}
