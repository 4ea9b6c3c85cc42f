package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/textstore/internal/app"
)

func newThemesCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(g.appOptions())
			if err != nil {
				return err
			}
			defer a.Shutdown()

			w := cmd.OutOrStdout()
			st := NewStyles(w, IsColorEnabled(g.color, w))
			current := a.Themes().Current().Name
			for _, name := range a.Themes().Names() {
				marker := "  "
				if name == current {
					marker = st.Success.Render("* ")
				}
				theme, _ := a.Themes().Get(name)
				keyword, _ := theme.Resolve("keyword")
				fmt.Fprintf(w, "%s%s  %s\n", marker, name, st.Paint(keyword, "keyword"))
			}
			return nil
		},
	}
}
