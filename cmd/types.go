package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/qperformance/internal/qtype"
	"github.com/abhisek/qperformance/internal/ui/theme"
	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List question type codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			defaults := cfg.DefaultToggles()

			var b strings.Builder
			b.WriteString(theme.Title.Render("Question types"))
			b.WriteString("\n\n")
			for _, c := range qtype.All() {
				mark := " "
				if defaults.Has(c) {
					mark = "*"
				}
				fmt.Fprintf(&b, "%s %s  %s\n", mark, theme.Code.Render(c.String()), c.Description())
			}
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render("* selected by default"))

			_, err = lipgloss.Fprintln(cmd.OutOrStdout(), b.String())
			return err
		},
	}
}
