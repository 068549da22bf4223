package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"alttext/internal/apply"
	"alttext/internal/store"
)

func newApplyCommand(ctx *commandContext) *cobra.Command {
	var (
		captionsFlag string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Write approved captions back into the documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			captionsPath := strings.TrimSpace(captionsFlag)
			if captionsPath == "" {
				captionsPath = cfg.CaptionsFile()
			}
			captions, err := store.LoadCaptions(captionsPath)
			if err != nil {
				return err
			}

			report, err := apply.Run(captions, apply.Options{DryRun: dryRun}, logger)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Applied", "No text", "Unmatched", "Missing files"},
				[][]string{{
					strconv.Itoa(report.Applied),
					strconv.Itoa(report.SkippedNoText),
					strconv.Itoa(report.Unmatched),
					strconv.Itoa(report.MissingFiles),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			))
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintln(out, "Dry run: no documents were modified")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&captionsFlag, "captions-file", "", "Captions collection path")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without modifying documents")
	return cmd
}
