// Package progressbar implements functionality of printing a progress
// bar to the terminal window
package progressbar

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Bar is a manually managed progress bar: Increment must be called
// once per completed step and Display whenever an updated bar should
// be printed. A Bar is driven from a single goroutine.
type Bar struct {
	w     io.Writer
	width int
	total int
	done  int
	start time.Time
}

// New returns a Bar that is width characters wide and reaches 100%
// after total Increment calls. Values below 1 are raised to 1.
func New(w io.Writer, width, total int) *Bar {
	if width < 1 {
		width = 1
	}
	if total < 1 {
		total = 1
	}
	return &Bar{w: w, width: width, total: total, start: time.Now()}
}

// Increment advances the bar by one completed step, saturating at the
// total.
func (b *Bar) Increment() {
	if b.done < b.total {
		b.done++
	}
}

// Done returns how many steps have completed.
func (b *Bar) Done() int { return b.done }

// Display redraws the bar in place on the current terminal line.
func (b *Bar) Display() {
	frac := float64(b.done) / float64(b.total)
	filled := int(frac * float64(b.width))

	var bar strings.Builder
	bar.WriteString("|")
	bar.WriteString(strings.Repeat("█", filled))
	bar.WriteString(strings.Repeat(" ", b.width-filled))
	fmt.Fprintf(&bar, "| %d/%d [%.1f%% | elapsed: %v]", b.done, b.total,
		frac*100, time.Since(b.start).Truncate(time.Second))

	fmt.Fprintf(b.w, "\r\033[K%v", bar.String())
}

// Finish redraws the bar one last time and jumps to the next line.
func (b *Bar) Finish() {
	b.Display()
	fmt.Fprintln(b.w)
}
