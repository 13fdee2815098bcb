package progress

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// Bar implements domain.ProgressObserver with one progress bar per
// pipeline stage.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// New creates a Bar that renders to w (normally stderr).
func New(w io.Writer) *Bar {
	return &Bar{w: w}
}

func (b *Bar) StageStarted(stage string, total int) {
	if total <= 0 {
		b.bar = nil
		return
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("%-12s", stage)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(b.w); err != nil {
				slog.Warn("failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func (b *Bar) FileDone(stage, path string) {
	if b.bar == nil {
		return
	}
	if err := b.bar.Add(1); err != nil {
		slog.Warn("failed to update progress bar", "stage", stage, "error", err)
	}
}

func (b *Bar) StageFinished(stage string) {
	if b.bar == nil {
		return
	}
	if err := b.bar.Finish(); err != nil {
		slog.Warn("failed to finish progress bar", "stage", stage, "error", err)
	}
	b.bar = nil
}
