package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/yourusername/flat-stake/internal/display"
	"github.com/yourusername/flat-stake/internal/input"
	"github.com/yourusername/flat-stake/internal/logger"
	"github.com/yourusername/flat-stake/internal/session"
	"github.com/yourusername/flat-stake/internal/share"
)

const sessionHelp = `Commands:
  budget N        set the budget
  add             add an outcome
  remove ID       remove an outcome
  odds ID X       set the odds of an outcome
  label ID N      set the display number of an outcome
  reset           restore the defaults (asks first)
  show            print the current allocation
  share           print the share text and URL
  help            print this help
  quit            leave the session`

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Edit a budget and odds interactively, recomputing after every change",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newAllocationService()
		if err != nil {
			return err
		}
		formatter := display.Default()
		sharer, err := newSharer(formatter)
		if err != nil {
			return err
		}

		sess := session.New(session.Options{
			DefaultBudget: cfg.Allocation.DefaultBudget,
			Allocator:     svc,
			Logger:        logger.NewSessionLogger(appLog, uuid.New().String()),
		})

		repl := &sessionREPL{
			session:     sess,
			formatter:   formatter,
			sharer:      sharer,
			maxOutcomes: cfg.Allocation.MaxOutcomes,
			in:          bufio.NewScanner(cmd.InOrStdin()),
			out:         cmd.OutOrStdout(),
			interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
		}
		return repl.run()
	},
}

type sessionREPL struct {
	session     *session.Session
	formatter   *display.Formatter
	sharer      *share.Sharer
	maxOutcomes int
	in          *bufio.Scanner
	out         io.Writer
	interactive bool
}

var errQuit = errors.New("quit")

func (r *sessionREPL) run() error {
	r.print(r.session.Result())
	if r.interactive {
		fmt.Fprintln(r.out, `Type "help" for commands.`)
	}

	for {
		line, ok := r.readLine("> ")
		if !ok {
			return r.in.Err()
		}
		if err := r.exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *sessionREPL) readLine(prompt string) (string, bool) {
	if r.interactive {
		fmt.Fprint(r.out, prompt)
	}
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func (r *sessionREPL) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "budget":
		if len(args) != 1 {
			return errors.New("usage: budget N")
		}
		r.print(r.session.SetBudgetText(args[0]))

	case "add":
		if n := len(r.session.Snapshot().Outcomes); r.maxOutcomes > 0 && n >= r.maxOutcomes {
			return fmt.Errorf("at most %d outcomes", r.maxOutcomes)
		}
		added, update := r.session.AddOutcome()
		fmt.Fprintf(r.out, "added outcome %d (#%d)\n", added.ID, added.Label)
		r.print(update)

	case "remove":
		id, err := outcomeID(args, 1, "usage: remove ID")
		if err != nil {
			return err
		}
		update, err := r.session.RemoveOutcome(id)
		if err != nil {
			return err
		}
		r.print(update)

	case "odds":
		id, err := outcomeID(args, 2, "usage: odds ID X")
		if err != nil {
			return err
		}
		update, err := r.session.UpdateOddsText(id, args[1])
		if err != nil {
			return err
		}
		if _, strictErr := input.ParseOddsDecimal(args[1]); strictErr != nil {
			fmt.Fprintf(r.out, "warning: %v, read as %s\n", strictErr, input.FormatOdds(input.ParseOdds(args[1])))
		}
		r.print(update)

	case "label":
		id, err := outcomeID(args, 2, "usage: label ID N")
		if err != nil {
			return err
		}
		update, err := r.session.UpdateLabel(id, input.ParseLabel(args[1]))
		if err != nil {
			return err
		}
		r.print(update)

	case "reset":
		answer, ok := r.readLine("Reset all values? [y/N] ")
		if !ok || !(strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")) {
			fmt.Fprintln(r.out, "reset cancelled")
			return nil
		}
		r.print(r.session.Reset())

	case "show":
		r.print(r.session.Result())

	case "share":
		update := r.session.Result()
		if !update.HasResult() {
			return errors.New("nothing to share")
		}
		post, err := r.sharer.Compose(update.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "%s\n\n%s\n", post.Text, post.URL)

	case "help", "?":
		fmt.Fprintln(r.out, sessionHelp)

	case "quit", "exit", "q":
		return errQuit

	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (r *sessionREPL) print(update session.Update) {
	printView(r.out, r.formatter, update.State.Budget, r.formatter.Render(update.State, update.Result, update.Err))
}

func outcomeID(args []string, want int, usage string) (int, error) {
	if len(args) != want {
		return 0, errors.New(usage)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid outcome id %q", args[0])
	}
	return id, nil
}
