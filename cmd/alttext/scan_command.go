package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"alttext/internal/classify"
	"alttext/internal/config"
	"alttext/internal/scanner"
	"alttext/internal/store"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var rootFlag string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find media references lacking meaningful alt text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			root, err := resolveRoot(cfg, rootFlag)
			if err != nil {
				return err
			}

			captions, err := store.LoadCaptions(cfg.CaptionsFile())
			if err != nil {
				return err
			}

			scan := scanner.New(
				classify.New(cfg.Scan.ExtraPlaceholders),
				scanner.WithIgnoreDirs(cfg.Scan.IgnoreDirs),
				scanner.WithApprovedFingerprints(scanner.ApprovedFingerprints(captions)),
				scanner.WithLogger(logger),
			)
			entries, stats, err := scan.Scan(cmd.Context(), root)
			if err != nil {
				return err
			}

			queue, err := store.OpenQueue(cfg.QueueFile())
			if err != nil {
				return err
			}
			defer queue.Close()
			if err := queue.Replace(entries); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Scanned", "Skipped", "References", "Queued"},
				[][]string{{
					strconv.Itoa(stats.FilesScanned),
					strconv.Itoa(stats.FilesSkipped),
					strconv.Itoa(stats.RefsFound),
					strconv.Itoa(stats.Queued),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			))
			fmt.Fprintf(out, "Queue written to %s\n", cfg.QueueFile())
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Document tree to scan (defaults to paths.root_dir)")
	return cmd
}

func resolveRoot(cfg *config.Config, flag string) (string, error) {
	root := strings.TrimSpace(flag)
	if root == "" {
		root = cfg.Paths.RootDir
	}
	if root == "" {
		return "", fmt.Errorf("no document root configured; pass --root or set paths.root_dir")
	}
	return config.ExpandPath(root)
}
