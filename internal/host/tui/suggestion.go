package tui

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// suggestion is a pending inline completion for one line. It is only valid
// while the line still reads input.
type suggestion struct {
	line  int
	input string
	text  string
}

// ghost returns the part of the suggestion not yet typed on line, or "".
func (s suggestion) ghost(line int, lineText string) string {
	if s.text == "" || s.line != line || s.input != lineText {
		return ""
	}
	return strings.TrimPrefix(s.text, lineText)
}

// triggerSuggestion computes a suggestion for the cursor line. Predictor
// failures leave no suggestion and are not reported to the caller.
func (h *Host) triggerSuggestion(ctx context.Context) error {
	if h.doc == nil {
		return nil
	}

	line := h.doc.CursorLine()
	input := h.doc.LineText(line)
	trimmed := strings.TrimLeft(input, " \t")
	indent := input[:len(input)-len(trimmed)]

	if h.predictor == nil || strings.TrimSpace(trimmed) == "" {
		h.call(func() { h.ui.suggestion = suggestion{} })
		return nil
	}

	h.call(func() { h.ui.predicting = true })
	prediction, err := h.predictor.Predict(ctx, trimmed)
	if err != nil {
		h.logger.Warn("suggestion failed", zap.String("input", trimmed), zap.Error(err))
	}

	h.call(func() {
		h.ui.predicting = false
		h.ui.suggestion = suggestion{}
		if err != nil || prediction == trimmed || !strings.HasPrefix(prediction, trimmed) {
			return
		}
		h.ui.suggestion = suggestion{line: line, input: input, text: indent + prediction}
	})
	return nil
}

// commitSuggestion accepts the pending suggestion, if it still applies.
// Committing is not reported as a document change.
func (h *Host) commitSuggestion(context.Context) error {
	h.call(func() { h.acceptSuggestionLocked() })
	return nil
}

// acceptSuggestionLocked replaces the suggested line. Callers hold h.mu.
func (h *Host) acceptSuggestionLocked() bool {
	s := h.ui.suggestion
	h.ui.suggestion = suggestion{}

	if h.doc == nil || s.text == "" || h.doc.LineText(s.line) != s.input {
		return false
	}
	return h.doc.ReplaceLine(s.line, s.text)
}
