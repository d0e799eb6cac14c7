// Package progress renders chunk-load progress on stderr. The bar is a
// static render driven by completion callbacks rather than a full TUI
// event loop; bulk loads block on the database, not on user input.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 40

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

// Bar writes an in-place progress line for a running bulk load.
// Safe for concurrent use; the publisher calls Update from whichever
// worker finishes a chunk.
type Bar struct {
	mu    sync.Mutex
	out   io.Writer
	model progress.Model
	total int
	done  int
}

// NewBar creates a progress bar for total chunks, writing to out.
func NewBar(out io.Writer, total int) *Bar {
	model := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)

	return &Bar{
		out:   out,
		model: model,
		total: total,
	}
}

// Update redraws the bar after done of total chunks have completed.
// Matches the pgbulk.ProgressFunc signature.
func (b *Bar) Update(done, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.done = done
	if total > 0 {
		b.total = total
	}

	fmt.Fprintf(b.out, "\r%s %s", b.model.ViewAs(b.ratio()), b.label())
}

// Finish terminates the progress line so following output starts on a
// fresh line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	fmt.Fprintf(b.out, "\r%s %s\n", b.model.ViewAs(b.ratio()), b.label())
}

func (b *Bar) ratio() float64 {
	if b.total == 0 {
		return 1.0
	}
	return float64(b.done) / float64(b.total)
}

func (b *Bar) label() string {
	return labelStyle.Render(fmt.Sprintf("%d/%d chunks", b.done, b.total))
}
