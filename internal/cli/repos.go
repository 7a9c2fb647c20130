package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/model"
)

// reposCommand lists the repositories indexed by the repository service.
func (c *CLI) reposCommand() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := c.openCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer backend.Close()

			repos, err := c.repositoryClient(backend).Repositories(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			if len(repos) == 0 {
				printInfo("No repositories")
				return nil
			}
			fmt.Println(repoTable(repos))
			printNextStep("List commits", appName+" commits "+repos[0].ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
	return cmd
}

// commitsCommand lists the commits of a repository.
func (c *CLI) commitsCommand() *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "commits <repo>",
		Short: "List the commits of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := c.openCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer backend.Close()

			commits, err := c.repositoryClient(backend).Commits(cmd.Context(), args[0], refresh)
			if err != nil {
				return err
			}
			if len(commits) == 0 {
				printInfo("No commits in %s", args[0])
				return nil
			}
			fmt.Println(commitTable(commits, time.Now()))
			printNextStep("Show the graph", fmt.Sprintf("%s graph %s %s", appName, args[0], model.ShortID(commits[0].ID)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
	cmd.ValidArgsFunction = c.completeRepositories
	return cmd
}

var tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 0 {
				return StyleHighlight.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func repoTable(repos []model.Repository) string {
	t := newTable("ID", "Name", "URI")
	for _, r := range repos {
		t.Row(r.ID, r.Name(), r.URI)
	}
	return t.Render()
}

func commitTable(commits []model.Commit, now time.Time) string {
	t := newTable("Commit", "Message", "Author", "Committed", "Changes")
	for _, cm := range commits {
		when := "-"
		if !cm.CommittedAt.IsZero() {
			when = humanize.RelTime(cm.CommittedAt.Time, now, "ago", "from now")
		}
		t.Row(model.ShortID(cm.ID), cm.Title(), cm.Committer.Name, when, changeSummary(cm))
	}
	return t.Render()
}

// changeSummary formats the created/updated/deleted counts of a commit.
func changeSummary(c model.Commit) string {
	if !c.HasChanges() {
		return "no changes"
	}
	var parts []string
	if n := len(c.Created); n > 0 {
		parts = append(parts, fmt.Sprintf("%d created", n))
	}
	if n := len(c.Updated); n > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", n))
	}
	if n := len(c.Deleted); n > 0 {
		parts = append(parts, fmt.Sprintf("%d deleted", n))
	}
	return strings.Join(parts, ", ")
}
