package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/exprql/internal/template"
)

// TemplateElement describes one parsed template element.
type TemplateElement struct {
	Kind  string `json:"kind"` // "text", "arg" or "literal"
	Text  string `json:"text,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// TemplateResult is the JSON payload of the template command.
type TemplateResult struct {
	Pattern  string            `json:"pattern"`
	MaxIndex int               `json:"max_index"`
	Elements []TemplateElement `json:"elements"`
}

// NewTemplateCommand creates the template command.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template <pattern>",
		Short: "Parse a rendering template",
		Long: `Parse a template pattern and print its elements.

{N} renders argument N as an expression, {N!} as its literal text.

Examples:
  exprql template "{0} like {1} escape '!'"
  exprql template "cast({0} as {1!})" --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runTemplate(opts *RootOptions, pattern string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	t, err := template.Parse(pattern)
	if err != nil {
		return fail(formatter, ErrCodeTemplate, err.Error(), nil)
	}

	result := TemplateResult{Pattern: t.Pattern(), MaxIndex: t.MaxIndex()}
	for _, el := range t.Elements() {
		result.Elements = append(result.Elements, describeElement(el))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%d element(s), max index %d\n", len(result.Elements), result.MaxIndex)
	for _, el := range t.Elements() {
		switch {
		case el.IsStatic():
			fmt.Fprintf(formatter.Writer, "  text    %q\n", el.Text)
		case el.AsText:
			fmt.Fprintf(formatter.Writer, "  literal %s\n", el)
		default:
			fmt.Fprintf(formatter.Writer, "  arg     %s\n", el)
		}
	}
	return nil
}

func describeElement(el template.Element) TemplateElement {
	if el.IsStatic() {
		return TemplateElement{Kind: "text", Text: el.Text}
	}
	idx := el.Index
	kind := "arg"
	if el.AsText {
		kind = "literal"
	}
	return TemplateElement{Kind: kind, Index: &idx}
}
