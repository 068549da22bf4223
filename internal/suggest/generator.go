package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"alttext/internal/asset"
	"alttext/internal/llm"
	"alttext/internal/media"
	"alttext/internal/pipeline"
	"alttext/internal/pricing"
	"alttext/internal/store"
)

// Completer is the capability the generator needs from the completion
// service. Tests substitute a deterministic implementation.
type Completer interface {
	Caption(ctx context.Context, req llm.CaptionRequest) (string, error)
}

// Options bound one generation run.
type Options struct {
	ModelID  string
	MaxChars int
	Timeout  time.Duration
	// ProcessExisting regenerates assets that already hold a suggestion and
	// disables fingerprint sharing, treating every occurrence independently.
	ProcessExisting bool
	Concurrency     int
}

// Generator orchestrates per-asset media loading, prompting, and persistence.
type Generator struct {
	completer Completer
	loader    *media.Loader
	profile   pricing.ModelProfile
	logger    *slog.Logger
	opts      Options
}

// New constructs a generator. The model must be present in the pricing
// table so every suggestion can carry its estimated cost.
func New(completer Completer, loader *media.Loader, opts Options, logger *slog.Logger) (*Generator, error) {
	if completer == nil {
		return nil, errors.New("suggest: completer required")
	}
	if loader == nil {
		return nil, errors.New("suggest: media loader required")
	}
	profile, err := pricing.Profile(opts.ModelID)
	if err != nil {
		return nil, err
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = 300
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{completer: completer, loader: loader, profile: profile, logger: logger, opts: opts}, nil
}

type workItem struct {
	entry asset.QueueEntry
	// duplicates share the primary's generated text unless ProcessExisting.
	duplicates []asset.QueueEntry
}

type workResult struct {
	item       workItem
	suggestion asset.Suggestion
	err        error
}

// Run processes the queue and writes suggestions through the store. The
// returned summary counts per-asset outcomes; only structural failures
// (store IO) surface as errors.
func (g *Generator) Run(ctx context.Context, queue []asset.QueueEntry, suggestions *store.SuggestionStore) (summary pipeline.RunSummary, err error) {
	summary = pipeline.RunSummary{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	defer func() { summary.FinishedAt = time.Now().UTC() }()

	work := g.plan(queue, suggestions, &summary)
	if len(work) == 0 {
		return summary, nil
	}

	results := make(chan workResult)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.opts.Concurrency)

	go func() {
		for _, item := range work {
			item := item
			group.Go(func() error {
				g.process(groupCtx, item, results)
				return nil
			})
		}
		_ = group.Wait()
		close(results)
	}()

	// Single writer: collection flushes stay serialized regardless of the
	// completion fan-out.
	for result := range results {
		if result.err != nil {
			g.recordFailure(&summary, result.item, result.err)
			continue
		}
		if err := suggestions.Upsert(result.suggestion); err != nil {
			return summary, err
		}
		summary.Record(result.suggestion.Key(), pipeline.OutcomeSucceeded, "")
		g.logger.Info("suggestion stored", "stage", "generate",
			"document", result.suggestion.DocumentPath, "locator", result.suggestion.Locator,
			"truncated", result.suggestion.Truncated)

		for _, dup := range result.item.duplicates {
			shared := result.suggestion
			shared.DocumentPath = dup.DocumentPath
			shared.Locator = dup.Locator
			shared.LineNumber = dup.LineNumber
			shared.ContextSnippet = dup.ContextSnippet
			shared.Source = asset.SuggestionShared
			shared.EstimatedCostUSD = 0
			if err := suggestions.Upsert(shared); err != nil {
				return summary, err
			}
			summary.Record(shared.Key(), pipeline.OutcomeSucceeded, "shared fingerprint")
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// plan decides which queue entries need a model call, which ride along as
// fingerprint duplicates, and which are skipped outright.
func (g *Generator) plan(queue []asset.QueueEntry, suggestions *store.SuggestionStore, summary *pipeline.RunSummary) []workItem {
	var work []workItem
	primaryByFingerprint := make(map[string]int)

	for _, entry := range queue {
		key := entry.Key()
		if !g.opts.ProcessExisting {
			if existing, ok := suggestions.Get(key); ok && strings.TrimSpace(existing.SuggestedText) != "" {
				summary.Record(key, pipeline.OutcomeSkipped, "suggestion already present")
				continue
			}
			if entry.ContentFingerprint != "" {
				if idx, ok := primaryByFingerprint[entry.ContentFingerprint]; ok {
					work[idx].duplicates = append(work[idx].duplicates, entry)
					continue
				}
				primaryByFingerprint[entry.ContentFingerprint] = len(work)
			}
		}
		work = append(work, workItem{entry: entry})
	}
	return work
}

func (g *Generator) process(ctx context.Context, item workItem, results chan<- workResult) {
	suggestion, err := g.generateOne(ctx, item.entry)
	select {
	case results <- workResult{item: item, suggestion: suggestion, err: err}:
	case <-ctx.Done():
	}
}

func (g *Generator) generateOne(parent context.Context, entry asset.QueueEntry) (asset.Suggestion, error) {
	ctx, cancel := context.WithTimeout(parent, g.opts.Timeout)
	defer cancel()

	payload, err := g.loader.Load(ctx, entry)
	if err != nil {
		return asset.Suggestion{}, classifyAssetError(err)
	}

	prompt := llm.BuildPrompt(entry, g.opts.MaxChars)
	text, err := g.completer.Caption(ctx, llm.CaptionRequest{
		Prompt:    prompt,
		MediaData: payload.Data,
		MediaMIME: payload.MIME,
		MaxTokens: llm.MaxTokensFor(g.opts.MaxChars),
	})
	if err != nil {
		return asset.Suggestion{}, classifyAssetError(err)
	}

	text = strings.TrimSpace(text)
	truncated := false
	if runes := []rune(text); len(runes) > g.opts.MaxChars {
		text = string(runes[:g.opts.MaxChars])
		truncated = true
	}

	return asset.Suggestion{
		DocumentPath:       entry.DocumentPath,
		Locator:            entry.Locator,
		Kind:               entry.Kind,
		ContentFingerprint: entry.ContentFingerprint,
		SuggestedText:      text,
		ModelID:            g.profile.ID,
		GeneratedAt:        time.Now().UTC(),
		Truncated:          truncated,
		EstimatedCostUSD:   pricing.EstimateAssetUSD(g.profile, payload.SourceBytes, g.opts.MaxChars),
		Source:             asset.SuggestionGenerated,
		LineNumber:         entry.LineNumber,
		ContextSnippet:     entry.ContextSnippet,
	}, nil
}

func (g *Generator) recordFailure(summary *pipeline.RunSummary, item workItem, err error) {
	outcomeDetail := err.Error()
	key := item.entry.Key()
	summary.Record(key, pipeline.OutcomeFailed, outcomeDetail)
	g.logger.Warn("asset failed", "stage", "generate",
		"document", item.entry.DocumentPath, "locator", item.entry.Locator, "error", err)
	for _, dup := range item.duplicates {
		summary.Record(dup.Key(), pipeline.OutcomeSkipped, fmt.Sprintf("primary failed: %s", outcomeDetail))
	}
}

func classifyAssetError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return pipeline.Wrap(pipeline.ErrTimeout, "generate", "complete", "", err)
	}
	return pipeline.Wrap(pipeline.ErrService, "generate", "complete", "", err)
}
