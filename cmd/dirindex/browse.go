package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/justyntemme/dirindex/internal/app"
	"github.com/justyntemme/dirindex/internal/debug"
	"github.com/spf13/cobra"
)

const browseHelp = `commands:
  ls             list the current directory again
  open N         enter entry N
  sel N          select entry N
  back           go to the parent directory
  cd PATH        jump to PATH (~ is the browsing home)
  refresh        re-read the current directory
  index          index the current directory in the background
  jobs           show index jobs
  search QUERY   search the most recent index
  help           show this text
  quit           leave
`

// NewBrowseCmd creates the interactive browse command
func NewBrowseCmd() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Browse directories interactively",
		Long: `Browse opens an interactive shell on a directory. Entries are listed
with their index; open them by number, go back, and start background
indexing of whatever directory is on screen.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newShellPresenter(cmd.OutOrStdout())
			o, err := app.NewOrchestrator(cfg, p)
			if err != nil {
				return err
			}
			defer func() {
				if err := o.Close(); err != nil {
					debug.Error(debug.APP, err, "shutdown")
				}
			}()

			start := ""
			if len(args) == 1 {
				start, err = filepath.Abs(args[0])
				if err != nil {
					return err
				}
			} else if resume {
				start, _ = o.LastPath()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			actions := make(chan func(), 1)
			if start != "" {
				actions <- func() { _ = o.Nav.Open(start) }
			}
			go readCommands(ctx, cmd, o, p, actions)

			return o.Run(ctx, actions)
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "start where the previous session ended")
	return cmd
}

// readCommands turns input lines into actions for the orchestrator loop.
// It closes actions on quit or end of input.
func readCommands(ctx context.Context, cmd *cobra.Command, o *app.Orchestrator, p *shellPresenter, actions chan<- func()) {
	defer close(actions)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		if name == "quit" || name == "exit" || name == "q" {
			return
		}

		fn := command(o, p, name, arg)
		if fn == nil {
			p.printf("unknown command %q, try help\n", name)
			continue
		}
		select {
		case actions <- fn:
		case <-ctx.Done():
			return
		}
	}
}

func command(o *app.Orchestrator, p *shellPresenter, name, arg string) func() {
	switch name {
	case "ls":
		return func() {
			if cat := o.Nav.Catalog(); cat != nil {
				p.ShowLabel(o.Nav.CurrentPath())
				p.ShowListing(app.Listing{Path: cat.Path, Entries: cat.Entries})
			}
		}
	case "open", "o":
		return withIndex(p, arg, func(n int) {
			if o.Emit(app.SlotActivate, n) == 0 {
				p.printf("nothing to open\n")
			}
		})
	case "sel":
		return withIndex(p, arg, func(n int) {
			o.Emit(app.SlotSelectionChanged, n)
		})
	case "back", "..":
		return func() { _ = o.Nav.GoBack() }
	case "cd":
		return func() { _ = o.Nav.Open(o.Nav.ExpandPath(arg)) }
	case "refresh", "r":
		return func() { _ = o.Nav.Refresh() }
	case "index":
		return func() {
			if o.Emit(app.SlotIndexClick, 0) == 0 {
				p.printf("indexing is not available\n")
			}
		}
	case "jobs":
		return func() {
			jobs := o.Trigger.Jobs()
			if len(jobs) == 0 {
				p.printf("no index jobs\n")
			}
			for _, j := range jobs {
				p.printf("%s\n", formatJob(j.Status()))
			}
		}
	case "search", "s":
		return func() {
			hits, err := o.Search.Search(arg)
			if err != nil {
				p.ShowError(err)
				return
			}
			p.showHits(hits)
		}
	case "help", "?":
		return func() { p.printf("%s", browseHelp) }
	}
	return nil
}

func withIndex(p *shellPresenter, arg string, fn func(int)) func() {
	return func() {
		n, err := strconv.Atoi(arg)
		if err != nil {
			p.printf("expected an entry number, got %q\n", arg)
			return
		}
		fn(n)
	}
}
