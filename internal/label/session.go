package label

import (
	"time"

	"alttext/internal/asset"
	"alttext/internal/store"
)

// undoFrame remembers one committed decision: the asset key it wrote and
// whatever caption that write overwrote, so undo restores the collection
// exactly.
type undoFrame struct {
	key         string
	overwritten *asset.Caption
}

// Session is the explicit review state: the ordered pending suggestions, a
// cursor, and a bounded undo history. It owns no I/O, which keeps the
// transition logic testable without a terminal.
type Session struct {
	pending   []asset.Suggestion
	cursor    int
	undo      []undoFrame
	undoDepth int
}

// NewSession builds a session over suggestions that still lack an approved
// caption, preserving suggestion order.
func NewSession(suggestions []asset.Suggestion, captions *store.CaptionStore, undoDepth int) *Session {
	if undoDepth <= 0 {
		undoDepth = 64
	}
	pending := make([]asset.Suggestion, 0, len(suggestions))
	for _, suggestion := range suggestions {
		if _, done := captions.Get(suggestion.Key()); done {
			continue
		}
		pending = append(pending, suggestion)
	}
	return &Session{pending: pending, undoDepth: undoDepth}
}

// Done reports whether every pending suggestion has been decided.
func (s *Session) Done() bool {
	return s.cursor >= len(s.pending)
}

// Current returns the suggestion under review.
func (s *Session) Current() (asset.Suggestion, bool) {
	if s.Done() {
		return asset.Suggestion{}, false
	}
	return s.pending[s.cursor], true
}

// Position returns the 1-based cursor and the pending total.
func (s *Session) Position() (int, int) {
	return s.cursor + 1, len(s.pending)
}

// Accept commits the current suggestion verbatim and advances the cursor.
func (s *Session) Accept(captions *store.CaptionStore) error {
	current, ok := s.Current()
	if !ok {
		return nil
	}
	return s.commit(captions, asset.Caption{
		DocumentPath:       current.DocumentPath,
		Locator:            current.Locator,
		ContentFingerprint: current.ContentFingerprint,
		FinalText:          current.SuggestedText,
		Source:             asset.CaptionAccepted,
		ApprovedAt:         time.Now().UTC(),
		LineNumber:         current.LineNumber,
	})
}

// Edit commits reviewer-written text for the current suggestion and advances
// the cursor.
func (s *Session) Edit(captions *store.CaptionStore, text string) error {
	current, ok := s.Current()
	if !ok {
		return nil
	}
	return s.commit(captions, asset.Caption{
		DocumentPath:       current.DocumentPath,
		Locator:            current.Locator,
		ContentFingerprint: current.ContentFingerprint,
		FinalText:          text,
		Source:             asset.CaptionEdited,
		ApprovedAt:         time.Now().UTC(),
		LineNumber:         current.LineNumber,
	})
}

// Undo reverts the most recent commit, restoring any caption it overwrote,
// and steps the cursor back. An empty history is a no-op; the second return
// is false in that case.
func (s *Session) Undo(captions *store.CaptionStore) (bool, error) {
	if len(s.undo) == 0 {
		return false, nil
	}
	frame := s.undo[len(s.undo)-1]

	var err error
	if frame.overwritten != nil {
		err = captions.Upsert(*frame.overwritten)
	} else {
		err = captions.Remove(frame.key)
	}
	if err != nil {
		return false, err
	}
	s.undo = s.undo[:len(s.undo)-1]
	s.cursor--
	return true, nil
}

func (s *Session) commit(captions *store.CaptionStore, caption asset.Caption) error {
	key := caption.Key()
	var overwritten *asset.Caption
	if prior, ok := captions.Get(key); ok {
		prior := prior
		overwritten = &prior
	}
	if err := captions.Upsert(caption); err != nil {
		return err
	}
	s.undo = append(s.undo, undoFrame{key: key, overwritten: overwritten})
	if len(s.undo) > s.undoDepth {
		s.undo = s.undo[len(s.undo)-s.undoDepth:]
	}
	s.cursor++
	return nil
}
