package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"kiln/internal/logging"
	"kiln/internal/store"
	"kiln/internal/workflow"
)

func newSetCommand(ctx *commandContext) *cobra.Command {
	var ask bool
	var dryRun bool
	var noColor bool
	var preserve []string
	var format string

	cmd := &cobra.Command{
		Use:   "set <spec-file>",
		Short: "Write the tags described by a spec file",
		Long: "Parse a spec file, show the tag changes it implies for every matched file,\n" +
			"then write them. Nothing is written when the spec file fails to parse or any\n" +
			"file cannot be read.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup(cmd)
			if err != nil {
				return err
			}
			outFormat, err := parseFormat(format, formatText, formatTable, formatJSON, formatYAML)
			if err != nil {
				return err
			}
			preserved, err := workflow.ParsePreserve(preserve)
			if err != nil {
				return err
			}

			specPath := args[0]
			sections, err := readSpec(specPath, cfg, logger)
			if err != nil {
				return err
			}

			var lock *workflow.Lock
			if !dryRun {
				lock, err = workflow.AcquireLock(cfg.LockPath())
				if err != nil {
					return err
				}
				defer lock.Release()
				logger.Debug("run lock acquired", logging.String("lock", lock.Path()))
			}

			st := store.NewID3Store(logger)
			planner, err := workflow.NewPlanner(cfg, st, preserved, logger)
			if err != nil {
				return err
			}
			plan, err := planner.Plan(cmd.Context(), sections)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			human := outFormat == formatText || outFormat == formatTable
			if err := renderPlan(cmd, plan, outFormat, !noColor && shouldColorize(out)); err != nil {
				return err
			}
			if !plan.Changed() {
				if human {
					fmt.Fprintln(out, "No changes to make to any files")
				}
				return nil
			}
			if human {
				fmt.Fprintln(out, summaryLine(plan.Summary()))
			}
			if dryRun {
				return nil
			}

			if ask || cfg.Set.Ask {
				promptOut := out
				if !human {
					promptOut = cmd.ErrOrStderr()
				}
				ok, err := confirm(cmd.InOrStdin(), promptOut, "Allow the above changes to be written to files? [Y/n] ")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(promptOut, "No changes will be made to files")
					return nil
				}
			}

			recorder, err := ctx.openJournal(cfg)
			if err != nil {
				return err
			}
			committer := &workflow.Committer{Store: st, Logger: logger}
			if recorder != nil {
				defer recorder.Close()
				committer.Recorder = recorder
			}

			result, err := committer.Commit(cmd.Context(), plan, specPath)
			if err != nil {
				return err
			}
			if human {
				fmt.Fprintf(out, "Wrote tags to %s\n", plural(len(result.Written), "file"))
				if result.RunID != "" {
					fmt.Fprintf(out, "Run %s recorded in history\n", result.RunID)
				}
			}
			logger.Debug("set complete",
				logging.String(logging.FieldRunID, result.RunID),
				logging.Int("written", len(result.Written)),
			)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&ask, "ask", "a", false, "Ask for confirmation before writing tags")
	cmd.Flags().StringSliceVarP(&preserve, "preserve", "p", nil, "Tags that are never deleted (comma separated frame ids or names)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show changes without writing them")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, table, json or yaml")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

// confirm reads one answer line. Empty, y and yes accept; anything else
// declines.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	if err == io.EOF && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
