package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"kiln/internal/journal"
)

var errJournalDisabled = errors.New("history is unavailable: journal.enabled is false")

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded set runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format, formatTable, formatJSON, formatYAML)
			if err != nil {
				return err
			}
			return ctx.withJournal(cmd, func(j *journal.Journal) error {
				runs, err := j.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				switch outFormat {
				case formatJSON:
					return writeJSON(cmd, runs)
				case formatYAML:
					return writeYAML(cmd, runs)
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintf(out, "No runs recorded in %s\n", j.Path())
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format(time.DateTime),
						string(run.Status),
						fmt.Sprintf("%d/%d", run.WrittenFiles, run.PlannedFiles),
						run.SpecPath,
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					col("Run"),
					col("Started"),
					col("Status"),
					col("Files").right(),
					col("Spec").wrapAt(60),
				}, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json or yaml")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the changes written by one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := parseFormat(format, formatTable, formatJSON, formatYAML)
			if err != nil {
				return err
			}
			return ctx.withJournal(cmd, func(j *journal.Journal) error {
				run, err := j.Run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				changes, err := j.Changes(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				view := struct {
					journal.Run `yaml:",inline"`
					Changes     []journal.Change `json:"changes" yaml:"changes"`
				}{Run: run, Changes: changes}
				switch outFormat {
				case formatJSON:
					return writeJSON(cmd, view)
				case formatYAML:
					return writeYAML(cmd, view)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Spec:     %s\n", run.SpecPath)
				fmt.Fprintf(out, "Status:   %s\n", run.Status)
				fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
				if run.FinishedAt != nil {
					fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format(time.DateTime))
				}
				fmt.Fprintf(out, "Files:    %d of %d written\n", run.WrittenFiles, run.PlannedFiles)
				if run.Error != "" {
					fmt.Fprintf(out, "Error:    %s\n", run.Error)
				}
				if len(changes) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(changes))
				for _, c := range changes {
					rows = append(rows, []string{c.File, strconv.Itoa(c.Seq + 1), c.Kind, c.FrameID, c.OldValue, c.NewValue})
				}
				fmt.Fprintln(out, renderTable([]column{
					col("File").wrapAt(60),
					col("#").right(),
					col("Change"),
					col("Tag"),
					col("Old").wrapAt(40),
					col("New").wrapAt(40),
				}, rows))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, json or yaml")
	return cmd
}

func (c *commandContext) withJournal(cmd *cobra.Command, fn func(*journal.Journal) error) error {
	cfg, _, err := c.setup(cmd)
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled {
		return errJournalDisabled
	}
	j, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(j)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
