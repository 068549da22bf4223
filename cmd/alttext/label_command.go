package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"alttext/internal/label"
	"alttext/internal/render"
	"alttext/internal/store"
)

func newLabelCommand(ctx *commandContext) *cobra.Command {
	var (
		suggestionsFlag string
		outputFlag      string
	)

	cmd := &cobra.Command{
		Use:   "label",
		Short: "Review suggestions interactively and approve final captions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			suggestionsPath := strings.TrimSpace(suggestionsFlag)
			if suggestionsPath == "" {
				suggestionsPath = cfg.SuggestionsFile()
			}
			captionsPath := strings.TrimSpace(outputFlag)
			if captionsPath == "" {
				captionsPath = cfg.CaptionsFile()
			}

			suggestions, err := store.LoadSuggestions(suggestionsPath)
			if err != nil {
				return err
			}
			captions, err := store.OpenCaptions(captionsPath)
			if err != nil {
				return err
			}
			defer captions.Close()

			session := label.NewSession(suggestions, captions, cfg.Generate.UndoDepth)
			out := cmd.OutOrStdout()
			if session.Done() {
				fmt.Fprintln(out, "Nothing to review")
				return nil
			}

			opts := []label.Option{label.WithLogger(logger)}
			if cfg.Render.Enabled {
				opts = append(opts, label.WithRenderer(render.New(cfg.Render.Binary, cfg.Render.Args)))
			}
			labeler := label.New(os.Stdin, out, opts...)

			decided, err := labeler.Run(cmd.Context(), session, captions)
			if err != nil {
				return err
			}
			position, total := session.Position()
			fmt.Fprintf(out, "Committed %d decisions (%d/%d reviewed); captions at %s\n",
				decided, position-1, total, captionsPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&suggestionsFlag, "suggestions-file", "", "Suggestions collection path")
	cmd.Flags().StringVar(&outputFlag, "output", "", "Captions collection path")
	return cmd
}
