package history

import (
	"fmt"
	"io"

	"github.com/bnema/stride/internal/application"
	"github.com/bnema/stride/internal/domain"
	"github.com/bnema/stride/internal/ports"
)

// Writer prints every history update to w. It backs the non-interactive
// commands.
type Writer struct {
	w      io.Writer
	opts   func() RenderOptions
	logger ports.Logger
}

var _ application.HistoryRenderer = (*Writer)(nil)

func NewWriter(w io.Writer, opts func() RenderOptions, logger ports.Logger) *Writer {
	if opts == nil {
		opts = func() RenderOptions { return RenderOptions{} }
	}
	if logger == nil {
		logger = ports.NopLogger{}
	}

	return &Writer{w: w, opts: opts, logger: logger}
}

func (w *Writer) RenderHistory(log domain.HistoryLog) {
	output, err := Render(log, w.opts())
	if err != nil {
		w.logger.Errorf("render history: %v", err)
		return
	}

	if _, err := fmt.Fprintln(w.w, output); err != nil {
		w.logger.Warnf("write history: %v", err)
	}
}
