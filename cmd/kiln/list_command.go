package main

import (
	"github.com/spf13/cobra"

	"kiln/internal/listing"
	"kiln/internal/resolve"
	"kiln/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var opts listing.Options
	var format string

	cmd := &cobra.Command{
		Use:   "list [pattern]",
		Short: "Show the tags selected files share and where they differ",
		Long: "List tags for every file matching pattern (default ./*). The output is\n" +
			"spec syntax and can be used as the starting point of a spec file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup(cmd)
			if err != nil {
				return err
			}
			outFormat, err := parseFormat(format, formatText, formatJSON, formatYAML)
			if err != nil {
				return err
			}
			pattern := "./*"
			if len(args) == 1 {
				pattern = args[0]
			}

			files, err := listing.Collect(cmd.Context(),
				resolve.NewGlob(cfg.Set.Extensions...),
				store.NewID3Store(logger),
				pattern,
				cfg.Set.Workers,
			)
			if err != nil {
				return err
			}
			report := listing.Build(files)

			switch outFormat {
			case formatJSON:
				return writeJSON(cmd, report)
			case formatYAML:
				return writeYAML(cmd, report)
			default:
				return listing.Write(cmd.OutOrStdout(), pattern, report, opts)
			}
		},
	}

	cmd.Flags().BoolVarP(&opts.NoComments, "no-comments", "c", false, "Turn off comments in the output")
	cmd.Flags().BoolVarP(&opts.ForceEmpty, "force-empty", "f", false, "Also list files and sections with no tags")
	cmd.Flags().StringVar(&format, "format", formatText, "Output format: text, json or yaml")
	return cmd
}
