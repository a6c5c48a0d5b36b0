package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"kiln/internal/diff"
	"kiln/internal/merge"
	"kiln/internal/tags"
	"kiln/internal/workflow"
)

type overrideView struct {
	File     string `json:"file" yaml:"file"`
	Tag      string `json:"tag" yaml:"tag"`
	Kept     string `json:"kept" yaml:"kept"`
	Dropped  string `json:"dropped" yaml:"dropped"`
	KeptLine int    `json:"kept_line" yaml:"kept_line"`
	DropLine int    `json:"dropped_line" yaml:"dropped_line"`
}

type planView struct {
	Summary   workflow.Summary `json:"summary" yaml:"summary"`
	Files     []diff.FileDiff  `json:"files" yaml:"files"`
	Overrides []overrideView   `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

func newPlanView(plan *workflow.Plan) planView {
	view := planView{Summary: plan.Summary(), Files: plan.Pending()}
	for _, o := range plan.Overrides {
		view.Overrides = append(view.Overrides, overrideViewOf(o))
	}
	return view
}

func overrideViewOf(o merge.Override) overrideView {
	return overrideView{
		File:     o.File,
		Tag:      o.ID.FrameID(),
		Kept:     valueText(o.Kept),
		Dropped:  valueText(o.Dropped),
		KeptLine: o.KeptLine,
		DropLine: o.DropLine,
	}
}

func valueText(v tags.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// renderPlan writes the pending changes in the requested format.
func renderPlan(cmd *cobra.Command, plan *workflow.Plan, format string, colorize bool) error {
	switch format {
	case formatJSON:
		return writeJSON(cmd, newPlanView(plan))
	case formatYAML:
		return writeYAML(cmd, newPlanView(plan))
	case formatTable:
		out := cmd.OutOrStdout()
		if !plan.Changed() {
			return nil
		}
		fmt.Fprintln(out, renderTable([]column{
			col("File").wrapAt(60),
			col("Change"),
			col("Tag"),
			col("Old").wrapAt(40),
			col("New").wrapAt(40),
		}, planRows(plan)))
		return nil
	default:
		writePlanText(cmd.OutOrStdout(), plan, colorize)
		return nil
	}
}

func planRows(plan *workflow.Plan) [][]string {
	var rows [][]string
	for _, fd := range plan.Pending() {
		for _, op := range fd.Ops {
			var oldValue, newValue string
			if op.Old != nil {
				oldValue = valueText(op.Old.Value)
			}
			if op.New != nil {
				newValue = valueText(op.New.Value)
			}
			rows = append(rows, []string{fd.File, op.Kind.String(), op.ID().FrameID(), oldValue, newValue})
		}
	}
	return rows
}

func writePlanText(out io.Writer, plan *workflow.Plan, colorize bool) {
	for _, fd := range plan.Pending() {
		fmt.Fprintln(out, paint(colorize, ansiBold, fd.File))
		for _, op := range fd.Ops {
			fmt.Fprintf(out, "  %s\n", paint(colorize, opColor(op.Kind), op.String()))
		}
		fmt.Fprintln(out)
	}
}

func opColor(kind diff.Kind) string {
	switch kind {
	case diff.Add:
		return ansiGreen
	case diff.Delete:
		return ansiRed
	default:
		return ansiYellow
	}
}

func summaryLine(s workflow.Summary) string {
	return fmt.Sprintf("%s to change (%d added, %d modified, %d deleted)",
		plural(s.Changed, "file"), s.Additions, s.Modified, s.Deletions)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
