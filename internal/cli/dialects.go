package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/exprql/internal/dialect"
)

// DialectsOptions holds flags for the dialects command.
type DialectsOptions struct {
	*RootOptions
	Dialects string // directory of CUE dialect definitions
}

// DialectInfo summarizes one registered dialect.
type DialectInfo struct {
	Name         string   `json:"name"`
	Base         string   `json:"base,omitempty"`
	Placeholder  string   `json:"placeholder"`
	PathStyle    string   `json:"path_style"`
	FactoryStyle string   `json:"factory_style"`
	SubQueries   bool     `json:"sub_queries"`
	Loaded       bool     `json:"loaded"`
	Overrides    []string `json:"overrides,omitempty"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DialectsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dialects",
		Short: "List available dialects",
		Long: `List the builtin dialects, plus those defined by CUE files in
--dialects, with their base dialect and the operators each overrides.

Examples:
  exprql dialects
  exprql dialects --dialects ./dialects --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialects(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dialects, "dialects", "", "directory of CUE dialect definitions")

	return cmd
}

func runDialects(opts *DialectsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	reg, loaded, err := newRegistry(opts.RootOptions, opts.Dialects)
	if err != nil {
		return fail(formatter, ErrCodeDialectLoad, "failed to load dialects", err)
	}
	fromCUE := make(map[string]bool, len(loaded))
	for _, d := range loaded {
		fromCUE[d.Name()] = true
	}

	infos := make([]DialectInfo, 0, len(reg.Names()))
	for _, name := range reg.Names() {
		infos = append(infos, describeDialect(reg.MustGet(name), fromCUE[name]))
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	for _, info := range infos {
		base := info.Base
		if base == "" {
			base = "-"
		}
		marker := ""
		if info.Loaded {
			marker = " *"
		}
		fmt.Fprintf(formatter.Writer, "%-12s base %-12s placeholder %-8s paths %-10s factories %s%s\n",
			info.Name, base, info.Placeholder, info.PathStyle, info.FactoryStyle, marker)
		if formatter.Verbose && len(info.Overrides) > 0 {
			fmt.Fprintf(formatter.Writer, "  overrides: %s\n", strings.Join(info.Overrides, ", "))
		}
	}
	return nil
}

func describeDialect(d *dialect.Dialect, loaded bool) DialectInfo {
	info := DialectInfo{
		Name:         d.Name(),
		Placeholder:  d.Placeholder().String(),
		PathStyle:    d.PathStyle().String(),
		FactoryStyle: d.FactoryStyle().String(),
		SubQueries:   d.SubQueries(),
		Loaded:       loaded,
	}
	if b := d.Base(); b != nil {
		info.Base = b.Name()
	}
	for _, op := range d.Overrides() {
		info.Overrides = append(info.Overrides, op.String())
	}
	return info
}
