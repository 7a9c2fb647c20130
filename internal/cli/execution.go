package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/pipeline"
	"github.com/matzehuels/blueprint/pkg/poll"
)

// executionCommand groups the execution lifecycle commands.
func (c *CLI) executionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "execution",
		Aliases: []string{"exec"},
		Short:   "Create, run and watch executions",
	}

	cmd.AddCommand(c.executionCreateCommand())
	cmd.AddCommand(c.executionListCommand())
	cmd.AddCommand(c.executionShowCommand())
	cmd.AddCommand(c.executionUpdateCommand())
	cmd.AddCommand(c.executionStartCommand())
	cmd.AddCommand(c.executionCancelCommand())
	cmd.AddCommand(c.executionLogCommand())
	cmd.AddCommand(c.executionWatchCommand())

	return cmd
}

// executionCreateCommand creates the "execution create" subcommand.
func (c *CLI) executionCreateCommand() *cobra.Command {
	var (
		notebooks string
		start     bool
	)
	cmd := &cobra.Command{
		Use:   "create <repo> <commit>",
		Short: "Create an execution from terminal notebooks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := parseList(notebooks)
			if len(ids) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--notebooks is required")
			}
			ctx := cmd.Context()
			client := c.executionClient()
			exec, err := client.Create(ctx, model.ExecutionRequest{
				RepositoryID: args[0],
				CommitID:     args[1],
				NotebookIDs:  ids,
			})
			if err != nil {
				return err
			}
			printSuccess("Created execution %s", StyleHighlight.Render(exec.ID))
			printDetail("%d jobs for %d terminal notebooks", len(exec.Jobs), len(exec.EndJobs))

			if start {
				if exec, err = client.Start(ctx, exec.ID); err != nil {
					return err
				}
				printSuccess("Started execution %s", exec.ID)
				printNextStep("Watch it", appName+" execution watch "+exec.ID)
				return nil
			}
			printNextStep("Start it", appName+" execution start "+exec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&notebooks, "notebooks", "", "terminal notebook ids (comma-separated)")
	cmd.ValidArgsFunction = c.completeRepositories
	cmd.Flags().BoolVar(&start, "start", false, "start the execution right away")
	return cmd
}

// executionListCommand creates the "execution list" subcommand.
func (c *CLI) executionListCommand() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List executions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter model.Status
			if status != "" {
				s, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = s
			}

			runner := pipeline.NewRunner(nil, c.executionClient(), nil, nil, c.Logger)
			summaries, err := runner.ListExecutions(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			rows := summaries[:0]
			for _, s := range summaries {
				if filter == "" || s.Execution.Status == filter {
					rows = append(rows, s)
				}
			}
			if len(rows) == 0 {
				printInfo("No executions")
				return nil
			}
			fmt.Println(executionTable(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only list executions with this status")
	return cmd
}

func executionTable(rows []pipeline.ExecutionSummary) string {
	t := newTable("ID", "Commit", "Status", "Jobs", "")
	for _, s := range rows {
		e := s.Execution
		t.Row(e.ID, model.ShortID(e.CommitID),
			s.Icon.Glyph()+" "+e.Status.String(),
			humanize.Comma(int64(s.Summary.Total)),
			s.Term)
	}
	return t.Render()
}

// executionShowCommand creates the "execution show" subcommand.
func (c *CLI) executionShowCommand() *cobra.Command {
	var (
		flags   renderFlags
		inspect string
		asImage bool
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an execution and render its job graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lopts, err := c.layoutOptions(flags.direction)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			view, err := runner.ExecutionView(ctx, args[0], pipeline.ExecutionOptions{Layout: lopts, Inspected: inspect})
			if err != nil {
				return err
			}

			if asImage || flags.output != "" || flags.formats != "" {
				formats, err := flags.parseFormats()
				if err != nil {
					return err
				}
				paths, err := renderExecution(ctx, view.Layout, view.Graph, view.Projection, flags, formats, "execution-"+view.Execution.ID)
				if err != nil {
					return err
				}
				if flags.output == "-" {
					return nil
				}
				printSuccess("Rendered execution %s", view.Execution.ID)
				for _, p := range paths {
					printFile(p)
				}
				return nil
			}

			wm := NewWatchModel(nil)
			wm.Latest = view
			wm.Done = view.Execution.Status.Terminal()
			for i, n := range view.Projection.Nodes {
				if n.Highlighted {
					wm.Cursor = i
				}
			}
			fmt.Print(wm.View())
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&inspect, "inspect", "", "job or notebook id to highlight")
	cmd.Flags().BoolVar(&asImage, "render", false, "render the job graph instead of printing it")
	return cmd
}

// executionUpdateCommand creates the "execution update" subcommand.
func (c *CLI) executionUpdateCommand() *cobra.Command {
	var notebooks string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the terminal notebooks of a ready execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := parseList(notebooks)
			if len(ids) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "--notebooks is required")
			}
			ctx := cmd.Context()
			client := c.executionClient()
			current, err := client.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !current.Editable() {
				return errors.New(errors.ErrCodeInvalidInput, "execution %s is %s and can no longer be edited", current.ID, current.Status)
			}
			exec, err := client.Update(ctx, current.ID, model.ExecutionRequest{
				RepositoryID: current.RepositoryID,
				CommitID:     current.CommitID,
				NotebookIDs:  ids,
			})
			if err != nil {
				return err
			}
			printSuccess("Updated execution %s", exec.ID)
			printDetail("%d jobs for %d terminal notebooks", len(exec.Jobs), len(exec.EndJobs))
			return nil
		},
	}
	cmd.Flags().StringVar(&notebooks, "notebooks", "", "terminal notebook ids (comma-separated)")
	return cmd
}

// executionStartCommand creates the "execution start" subcommand.
func (c *CLI) executionStartCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start a ready execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exec, err := c.transition(cmd.Context(), args[0], "start")
			if err != nil {
				return err
			}
			printSuccess("Started execution %s", exec.ID)
			if watch {
				return c.watch(cmd.Context(), exec.ID)
			}
			printNextStep("Watch it", appName+" execution watch "+exec.ID)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch the execution after starting it")
	return cmd
}

// executionCancelCommand creates the "execution cancel" subcommand.
func (c *CLI) executionCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a running execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exec, err := c.transition(cmd.Context(), args[0], "cancel")
			if err != nil {
				return err
			}
			printSuccess("Cancelled execution %s", exec.ID)
			return nil
		},
	}
}

// transition checks the capability of an execution before starting or
// cancelling it.
func (c *CLI) transition(ctx context.Context, id, action string) (*model.Execution, error) {
	client := c.executionClient()
	exec, err := client.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch action {
	case "start":
		if !exec.CanStart() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "execution %s is %s and cannot be started", id, exec.Status)
		}
		return client.Start(ctx, id)
	case "cancel":
		if !exec.CanCancel() {
			return nil, errors.New(errors.ErrCodeInvalidInput, "execution %s is %s and cannot be cancelled", id, exec.Status)
		}
		return client.Cancel(ctx, id)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown action %q", action)
}

// executionLogCommand creates the "execution log" subcommand.
func (c *CLI) executionLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "log <id> <job>",
		Short: "Print the log of a job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := c.executionClient().JobLog(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			defer rc.Close()
			_, err = io.Copy(os.Stdout, rc)
			return err
		},
	}
}

// executionWatchCommand creates the "execution watch" subcommand.
func (c *CLI) executionWatchCommand() *cobra.Command {
	var noTUI bool
	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow an execution until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noTUI {
				return c.watchPlain(cmd.Context(), args[0])
			}
			return c.watch(cmd.Context(), args[0])
		},
	}
	cmd.Flags().BoolVar(&noTUI, "plain", false, "print status changes instead of the interactive view")
	return cmd
}

// watchUpdates polls an execution view until the execution reaches a
// terminal status or ctx is cancelled.
func (c *CLI) watchUpdates(ctx context.Context, runner *pipeline.Runner, id string) <-chan poll.Update[*pipeline.ExecutionView] {
	return poll.Watch(ctx, poll.Poller[*pipeline.ExecutionView]{
		Fetch: func(ctx context.Context) (*pipeline.ExecutionView, error) {
			return runner.ExecutionView(ctx, id, pipeline.ExecutionOptions{Layout: c.Config.LayoutOptions()})
		},
		Interval: c.Config.PollInterval.Duration,
		Done:     func(v *pipeline.ExecutionView) bool { return v.Execution.Status.Terminal() },
		Fatal:    pipeline.StopWatching,
		Logger:   c.Logger,
	})
}

func (c *CLI) watch(ctx context.Context, id string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	final, err := tea.NewProgram(NewWatchModel(c.watchUpdates(ctx, runner, id)), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(WatchModel); ok && m.Err != nil && (m.Latest == nil || pipeline.StopWatching(m.Err)) {
		return m.Err
	}
	return nil
}

// watchPlain prints one line per status change.
func (c *CLI) watchPlain(ctx context.Context, id string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if err := followPlain(os.Stdout, c.watchUpdates(ctx, runner, id)); err != nil {
		return err
	}
	return ctx.Err()
}

// followPlain prints node status changes until updates closes. Transient
// failures are printed as warnings; an error that ends the watch is
// returned.
func followPlain(w io.Writer, updates <-chan poll.Update[*pipeline.ExecutionView]) error {
	seen := map[string]model.Status{}
	var last model.Status
	for u := range updates {
		if u.Err != nil {
			if pipeline.StopWatching(u.Err) {
				return u.Err
			}
			fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(errors.UserMessage(u.Err)))
			continue
		}
		p := u.Value.Projection
		for _, n := range p.Nodes {
			if !n.HasStatus() || seen[n.ID] == *n.Status {
				continue
			}
			seen[n.ID] = *n.Status
			fmt.Fprintf(w, "%s %-28s %s\n", statusIcon(*n.Status), n.ID, StyleDim.Render(n.Term))
		}
		if p.Status != last {
			last = p.Status
			fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf("Execution %s %s", p.ExecutionID, statusStyle(p.Status).Render(strings.ToLower(p.Term))))
		}
	}
	return nil
}
