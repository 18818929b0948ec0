package channel

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// Channel is a display panel built from one Config. Instances are compared
// by identity: a rebuilt channel is a different Channel even when the config
// is the same.
type Channel interface {
	// ID is unique per instance.
	ID() string
	// Config is the configuration the channel was built from.
	Config() Config
	// Title is a short human readable name.
	Title() string
	// Render draws the channel into a width x height block of text.
	Render(width, height int, now time.Time) string
}

// Mounter is implemented by channels that acquire resources when the
// display host attaches them. A Mount error fails the host batch. Mount may
// query the host but must not commit to it.
type Mounter interface {
	Mount() error
	Unmount()
}

// Set maps each direction to its live channel.
type Set map[Direction]Channel

type base struct {
	id   string
	kind string
	cfg  Config
}

func newBase(kind string, cfg Config) base {
	return base{
		id:   uuid.NewString(),
		kind: kind,
		cfg:  cfg.Clone(),
	}
}

func (b *base) ID() string {
	return b.id
}

func (b *base) Config() Config {
	return b.cfg.Clone()
}

func (b *base) String() string {
	return fmt.Sprintf("%s(%s)", b.kind, b.id[:8])
}

// fit truncates every line to width and pads or cuts to exactly height lines.
func fit(lines []string, width, height int) string {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	out := make([]string, 0, height)
	for _, line := range lines {
		out = append(out, runewidth.FillRight(runewidth.Truncate(line, width, "…"), width))
	}
	for len(out) < height {
		out = append(out, strings.Repeat(" ", width))
	}
	return strings.Join(out, "\n")
}

// center pads line on the left so it sits in the middle of width.
func center(line string, width int) string {
	w := runewidth.StringWidth(line)
	if w >= width {
		return line
	}
	return strings.Repeat(" ", (width-w)/2) + line
}

// middle vertically centres lines inside height.
func middle(lines []string, height int) []string {
	if len(lines) >= height {
		return lines
	}
	pad := (height - len(lines)) / 2
	out := make([]string, pad, height)
	return append(out, lines...)
}

// wrap breaks text into lines no wider than width, splitting on spaces.
func wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if runewidth.StringWidth(line)+1+runewidth.StringWidth(word) > width {
				lines = append(lines, line)
				line = word
				continue
			}
			line += " " + word
		}
		lines = append(lines, line)
	}
	return lines
}
