package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"alttext/internal/llm"
	"alttext/internal/media"
	"alttext/internal/pipeline"
	"alttext/internal/pricing"
	"alttext/internal/store"
	"alttext/internal/suggest"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		rootFlag        string
		modelFlag       string
		suggestionsFlag string
		maxChars        int
		timeoutSeconds  int
		estimateOnly    bool
		processExisting bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft caption suggestions for queued assets",
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

			model := strings.TrimSpace(modelFlag)
			if model == "" {
				model = cfg.LLM.Model
			}
			if maxChars <= 0 {
				maxChars = cfg.Generate.MaxChars
			}
			if timeoutSeconds <= 0 {
				timeoutSeconds = cfg.Generate.TimeoutSeconds
			}

			queue, err := store.LoadQueue(cfg.QueueFile())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if estimateOnly {
				report, err := pricing.Estimate(queue, model, maxChars, root)
				if err != nil {
					return err
				}
				printEstimate(out, report)
				return nil
			}

			suggestionsPath := strings.TrimSpace(suggestionsFlag)
			if suggestionsPath == "" {
				suggestionsPath = cfg.SuggestionsFile()
			}
			suggestions, err := store.OpenSuggestions(suggestionsPath)
			if err != nil {
				return err
			}
			defer suggestions.Close()

			client := llm.NewClient(llm.Config{
				APIKey:         cfg.LLM.APIKey,
				BaseURL:        cfg.LLM.BaseURL,
				Model:          model,
				Referer:        cfg.LLM.Referer,
				Title:          cfg.LLM.Title,
				TimeoutSeconds: timeoutSeconds,
			})
			loader := media.NewLoader(root, cfg.Generate.MaxImageEdge, cfg.Generate.FFmpegBinary)

			generator, err := suggest.New(client, loader, suggest.Options{
				ModelID:         model,
				MaxChars:        maxChars,
				Timeout:         time.Duration(timeoutSeconds) * time.Second,
				ProcessExisting: processExisting,
				Concurrency:     cfg.Generate.Concurrency,
			}, logger)
			if err != nil {
				return err
			}

			summary, err := generator.Run(cmd.Context(), queue, suggestions)
			printSummary(out, "generate", summary)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Suggestions written to %s\n", suggestionsPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&rootFlag, "root", "", "Document tree root (defaults to paths.root_dir)")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Model identifier (defaults to llm.model)")
	cmd.Flags().StringVar(&suggestionsFlag, "suggestions-file", "", "Suggestions collection path")
	cmd.Flags().IntVar(&maxChars, "max-chars", 0, "Maximum caption length in characters (default 300)")
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "Per-asset completion timeout in seconds (default 120)")
	cmd.Flags().BoolVar(&estimateOnly, "estimate-only", false, "Print a cost report instead of calling the model")
	cmd.Flags().BoolVar(&processExisting, "process-existing", false, "Regenerate assets that already have suggestions")
	return cmd
}

func printEstimate(out io.Writer, report pricing.Report) {
	rows := make([][]string, 0, len(report.Assets))
	for _, est := range report.Assets {
		size := humanize.Bytes(uint64(est.MediaBytes))
		if est.Unsized {
			size = "unsized"
		}
		rows = append(rows, []string{
			est.Locator,
			size,
			strconv.FormatInt(est.InputTokens, 10),
			strconv.FormatInt(est.OutputTokens, 10),
			fmt.Sprintf("$%.4f", est.CostUSD),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Asset", "Media", "Input tok", "Output tok", "Cost"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	fmt.Fprintf(out, "Model %s, max %d chars: %d assets (%d unsized), estimated total $%.4f\n",
		report.ModelID, report.MaxChars, len(report.Assets), report.UnsizedCount, report.TotalUSD)
}

func printSummary(out io.Writer, stage string, summary pipeline.RunSummary) {
	fmt.Fprintln(out, renderTable(
		[]string{"Stage", "Succeeded", "Failed", "Skipped"},
		[][]string{{
			stage,
			strconv.Itoa(summary.Succeeded),
			strconv.Itoa(summary.Failed),
			strconv.Itoa(summary.Skipped),
		}},
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
	for _, item := range summary.Items {
		if item.Outcome == pipeline.OutcomeFailed {
			fmt.Fprintf(out, "  failed: %s (%s)\n", item.Key, item.Detail)
		}
	}
}
