package utils

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

const labelWidth = 24

// Progress tracks per-asset progress of an import. It renders an mpb bar on
// stderr when enabled and stderr is a terminal, and is a no-op otherwise.
type Progress struct {
	out       io.Writer
	container *mpb.Progress
	bar       *mpb.Bar
	label     atomic.Value
	failed    atomic.Int64
}

// NewProgress creates a progress tracker for total assets
func NewProgress(total int, enabled bool) *Progress {
	return newProgress(os.Stderr, total, enabled && isTerminal())
}

func newProgress(out io.Writer, total int, render bool) *Progress {
	p := &Progress{out: out}
	p.label.Store("")

	if !render {
		return p
	}

	fmt.Fprintln(out)

	p.container = mpb.New(
		mpb.WithOutput(out),
		mpb.WithWidth(64),
		mpb.WithRefreshRate(100*time.Millisecond),
	)

	p.bar = p.container.New(int64(total),
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(decor.Statistics) string {
				return truncateLabel(p.label.Load().(string))
			}, decor.WC{W: labelWidth, C: decor.DindentRight}),
			decor.CountersNoUnit("%d/%d", decor.WC{W: 14, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WC{W: 5}),
			decor.Any(func(decor.Statistics) string {
				if n := p.failed.Load(); n > 0 {
					return fmt.Sprintf("  %d failed", n)
				}
				return ""
			}),
		),
	)

	return p
}

// Step marks one asset as handled. label names the asset for display
// and ok reports whether it was exported successfully.
func (p *Progress) Step(label string, ok bool) {
	if !ok {
		p.failed.Add(1)
	}
	p.label.Store(label)
	if p.bar != nil {
		p.bar.Increment()
	}
}

// Failed returns the number of steps reported as not ok
func (p *Progress) Failed() int64 {
	return p.failed.Load()
}

// Finish waits for the bar to render its final state
func (p *Progress) Finish() {
	if p.container == nil {
		return
	}
	// Abort leaves a partially filled bar in place when some assets were skipped.
	if !p.bar.Completed() {
		p.bar.Abort(false)
	}
	p.container.Wait()
	fmt.Fprintln(p.out)
}

func truncateLabel(s string) string {
	if len(s) > labelWidth-2 {
		return ".." + s[len(s)-(labelWidth-4):]
	}
	return s
}

// isTerminal checks if stderr is a terminal (TTY)
func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
