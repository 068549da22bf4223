package pricing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"alttext/internal/asset"
	"alttext/internal/pipeline"
)

// ModelProfile describes published pricing and payload behavior for one
// completion model.
type ModelProfile struct {
	ID string
	// USD per million input / output tokens.
	InputUSDPerMTok  float64
	OutputUSDPerMTok float64
	// How many raw media bytes amortize into one input token once the
	// provider re-encodes the payload.
	BytesPerToken float64
}

// promptOverheadTokens approximates the fixed instruction plus context
// snippet sent alongside every asset.
const promptOverheadTokens = 420

// charsPerToken converts the max_chars output bound into tokens.
const charsPerToken = 4

var profiles = map[string]ModelProfile{
	"anthropic/claude-sonnet-4": {
		ID: "anthropic/claude-sonnet-4", InputUSDPerMTok: 3.00, OutputUSDPerMTok: 15.00, BytesPerToken: 180,
	},
	"anthropic/claude-haiku-4.5": {
		ID: "anthropic/claude-haiku-4.5", InputUSDPerMTok: 1.00, OutputUSDPerMTok: 5.00, BytesPerToken: 180,
	},
	"openai/gpt-4o": {
		ID: "openai/gpt-4o", InputUSDPerMTok: 2.50, OutputUSDPerMTok: 10.00, BytesPerToken: 170,
	},
	"openai/gpt-4o-mini": {
		ID: "openai/gpt-4o-mini", InputUSDPerMTok: 0.15, OutputUSDPerMTok: 0.60, BytesPerToken: 170,
	},
	"google/gemini-2.0-flash-001": {
		ID: "google/gemini-2.0-flash-001", InputUSDPerMTok: 0.10, OutputUSDPerMTok: 0.40, BytesPerToken: 200,
	},
}

// Profile looks up pricing for a model identifier.
func Profile(modelID string) (ModelProfile, error) {
	profile, ok := profiles[strings.TrimSpace(modelID)]
	if !ok {
		return ModelProfile{}, pipeline.Wrap(pipeline.ErrEstimationConfig, "estimate", "lookup model",
			fmt.Sprintf("no pricing for model %q (known: %s)", modelID, strings.Join(KnownModels(), ", ")), nil)
	}
	return profile, nil
}

// KnownModels returns the sorted identifiers present in the pricing table.
func KnownModels() []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AssetEstimate is the predicted volume and spend for one queue entry.
type AssetEstimate struct {
	Key          string
	Locator      string
	MediaBytes   int64
	Unsized      bool
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
}

// Report is the aggregate prediction for a queue.
type Report struct {
	ModelID      string
	MaxChars     int
	Assets       []AssetEstimate
	TotalBytes   int64
	UnsizedCount int
	InputTokens  int64
	OutputTokens int64
	TotalUSD     float64
}

// Estimate computes the cost report for a queue without touching the
// network. rootDir resolves relative locators for sizing; remote or missing
// media count as unsized rather than failing.
func Estimate(queue []asset.QueueEntry, modelID string, maxChars int, rootDir string) (Report, error) {
	profile, err := Profile(modelID)
	if err != nil {
		return Report{}, err
	}
	if maxChars <= 0 {
		return Report{}, pipeline.Wrap(pipeline.ErrEstimationConfig, "estimate", "validate",
			fmt.Sprintf("max chars must be positive, got %d", maxChars), nil)
	}

	report := Report{ModelID: profile.ID, MaxChars: maxChars}
	outputTokens := int64((maxChars + charsPerToken - 1) / charsPerToken)

	for _, entry := range queue {
		est := AssetEstimate{Key: entry.Key(), Locator: entry.Locator, OutputTokens: outputTokens}
		size, sized := mediaSize(entry, rootDir)
		if sized {
			est.MediaBytes = size
		} else {
			est.Unsized = true
			report.UnsizedCount++
		}
		est.InputTokens = promptOverheadTokens
		if profile.BytesPerToken > 0 {
			est.InputTokens += int64(float64(est.MediaBytes) / profile.BytesPerToken)
		}
		est.CostUSD = float64(est.InputTokens)*profile.InputUSDPerMTok/1e6 +
			float64(est.OutputTokens)*profile.OutputUSDPerMTok/1e6

		report.Assets = append(report.Assets, est)
		report.TotalBytes += est.MediaBytes
		report.InputTokens += est.InputTokens
		report.OutputTokens += est.OutputTokens
		report.TotalUSD += est.CostUSD
	}
	return report, nil
}

// EstimateAssetUSD predicts spend for a single asset payload, used to stamp
// suggestions with their approximate cost.
func EstimateAssetUSD(profile ModelProfile, mediaBytes int64, maxChars int) float64 {
	inputTokens := int64(promptOverheadTokens)
	if profile.BytesPerToken > 0 {
		inputTokens += int64(float64(mediaBytes) / profile.BytesPerToken)
	}
	outputTokens := int64((maxChars + charsPerToken - 1) / charsPerToken)
	return float64(inputTokens)*profile.InputUSDPerMTok/1e6 + float64(outputTokens)*profile.OutputUSDPerMTok/1e6
}

func mediaSize(entry asset.QueueEntry, rootDir string) (int64, bool) {
	locator := strings.TrimSpace(entry.Locator)
	if locator == "" || strings.Contains(locator, "://") {
		return 0, false
	}
	candidates := []string{
		filepath.Join(filepath.Dir(entry.DocumentPath), filepath.FromSlash(locator)),
	}
	if rootDir != "" {
		candidates = append(candidates, filepath.Join(rootDir, filepath.FromSlash(strings.TrimPrefix(locator, "/"))))
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return info.Size(), true
		}
	}
	return 0, false
}
