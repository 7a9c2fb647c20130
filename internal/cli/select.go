package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/selection"
)

// selectCommand previews a notebook selection on the commit tree.
func (c *CLI) selectCommand() *cobra.Command {
	var (
		terminal string
		toggle   string
		asJSON   bool
		refresh  bool
	)

	cmd := &cobra.Command{
		Use:   "select <repo> <commit>",
		Short: "Preview a notebook selection",
		Long: `Preview a notebook selection.

Terminal notebooks are the ones you want to run; every notebook they depend
on is selected with them. The commit's notebook tree is printed with the
selection applied: [x] terminal or implied notebooks, dimmed boxes for
dependencies that cannot be unchecked on their own.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			view, err := runner.CommitView(ctx, args[0], args[1], pipeline.CommitOptions{
				Layout:   c.Config.LayoutOptions(),
				Terminal: parseList(terminal),
				Toggle:   toggle,
				Refresh:  refresh,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(view.Selection)
			}

			fmt.Print(formatTree(view.Tree))
			fmt.Println()
			printSelection(view.Selection)
			if len(view.Selection.Terminal) > 0 {
				printNextStep("Create an execution", fmt.Sprintf("%s execution create %s %s --notebooks %s",
					appName, args[0], args[1], strings.Join(view.Selection.Terminal, ",")))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&terminal, "terminal", "", "terminal notebook ids (comma-separated)")
	cmd.ValidArgsFunction = c.completeRepositories
	cmd.Flags().StringVar(&toggle, "toggle", "", "notebook id to flip after applying --terminal")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the selection as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-fetch the commit from the repository service")

	return cmd
}

// printSelection summarizes a selection state.
func printSelection(s selection.State) {
	if s.Empty() {
		printInfo("Nothing selected")
	} else {
		printSuccess("%d notebooks selected", len(s.Selected))
		printKeyValue("terminal", strings.Join(s.Terminal, ", "))
		if len(s.Implied) > 0 {
			printKeyValue("implied", strings.Join(s.Implied, ", "))
		}
	}
	if len(s.Dropped) > 0 {
		printWarning("Unknown notebooks ignored: %s", strings.Join(s.Dropped, ", "))
	}
}
