package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/vocapp/internal/excel"
	"github.com/example/vocapp/internal/review"
	"github.com/example/vocapp/internal/scheduler"
)

// --- import ---

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Bulk-add words from an xlsx or csv file",
	Long: `Bulk-add words from an xlsx or csv file to a learner's list.

Each word is looked up in the dictionary unless --definition-column names a
column that already holds a definition.

Examples:
  vocapp import words.xlsx --learner ada@example.com
  vocapp import words.csv --learner ada@example.com --column B --start-row 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("learner")
		cfg := excel.DefaultImportConfig()
		cfg.FilePath = args[0]
		cfg.WordColumn, _ = cmd.Flags().GetString("column")
		cfg.DefinitionColumn, _ = cmd.Flags().GetString("definition-column")
		cfg.SheetName, _ = cmd.Flags().GetString("sheet")
		cfg.StartRow, _ = cmd.Flags().GetInt("start-row")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		learner, err := a.learners.GetByUsername(ctx, username)
		if err != nil {
			return err
		}

		result, err := excel.NewImporter(a.definer(), a.words, a.clock, a.log).ImportWords(ctx, learner.ID, cfg)
		if result != nil {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed: %d\nCreated:   %d\nSkipped:   %d\n", result.TotalProcessed, result.Created, result.Skipped)
			for _, e := range result.Errors {
				fmt.Fprintln(out, e)
			}
		}
		return err
	},
}

func init() {
	importCmd.Flags().String("learner", "", "username (email) of the learner")
	importCmd.Flags().String("column", "A", "column holding the words")
	importCmd.Flags().String("definition-column", "", "optional column holding definitions")
	importCmd.Flags().String("sheet", "", "sheet to import (default: first sheet)")
	importCmd.Flags().Int("start-row", 2, "first row to import (1-based)")
	importCmd.MarkFlagRequired("learner")
}

// --- review ---

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review due words in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("learner")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		learner, err := a.learners.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		return runReview(ctx, review.NewSession(a.words, a.clock, a.log), learner.ID, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func runReview(ctx context.Context, s *review.Session, learnerID int64, in io.Reader, out io.Writer) error {
	due, err := s.NeedsRevision(ctx, learnerID)
	if err != nil {
		return err
	}
	if !due {
		fmt.Fprintln(out, "Nothing to revise right now.")
		return nil
	}

	outcomes, err := s.Run(ctx, learnerID, review.NewTerminalPresenter(in, out))
	if errors.Is(err, io.EOF) {
		err = nil
	}

	correct := 0
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			fmt.Fprintf(out, "%s: %v\n", o.Word, o.Err)
		case o.Correct:
			correct++
		}
	}
	fmt.Fprintf(out, "\nReviewed %d words, %d correct.\n", len(outcomes), correct)
	return err
}

func init() {
	reviewCmd.Flags().String("learner", "", "username (email) of the learner")
	reviewCmd.MarkFlagRequired("learner")
}

// --- sweep ---

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Send due-word reminders once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sched := scheduler.New(a.cfg.Scheduler, a.learners, a.words, a.notifier(), a.clock, a.log)
		notified, err := sched.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reminded %d learners.\n", notified)
		return nil
	},
}
