package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <spec-file>",
		Short: "Parse a spec file without touching any audio files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup(cmd)
			if err != nil {
				return err
			}
			sections, err := readSpec(args[0], cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			assignments := 0
			for _, section := range sections {
				assignments += len(section.Assignments)
				fmt.Fprintf(out, "line %-4d [%s] %s\n", section.Line, section.Header, plural(len(section.Assignments), "assignment"))
			}
			fmt.Fprintf(out, "Spec valid: %s, %s\n", plural(len(sections), "section"), plural(assignments, "assignment"))
			return nil
		},
	}
}
