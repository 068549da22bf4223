package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrScanIO marks unreadable documents or media during scanning.
	ErrScanIO = errors.New("scan io error")
	// ErrEstimationConfig marks unknown model identifiers or pricing gaps.
	ErrEstimationConfig = errors.New("estimation config error")
	// ErrTimeout marks a per-asset completion call that exceeded its deadline.
	ErrTimeout = errors.New("generation timeout")
	// ErrService marks a per-asset completion service failure.
	ErrService = errors.New("generation service error")
	// ErrCorruptState marks a malformed persisted collection file.
	ErrCorruptState = errors.New("corrupt state file")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrService
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error must abort the whole stage rather than
// being recorded against a single asset.
func IsFatal(err error) bool {
	switch {
	case errors.Is(err, ErrCorruptState), errors.Is(err, ErrEstimationConfig):
		return true
	case errors.Is(err, ErrScanIO), errors.Is(err, ErrTimeout), errors.Is(err, ErrService):
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
