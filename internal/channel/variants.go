package channel

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // projector images often ship without zoneinfo
)

// Blank shows nothing. It is what an unused plane is usually set to.
type Blank struct {
	base
}

func NewBlank(cfg Config) Channel {
	return &Blank{base: newBase("blank", cfg)}
}

func (c *Blank) Title() string { return "Blank" }

func (c *Blank) Render(width, height int, _ time.Time) string {
	return fit(nil, width, height)
}

// Message shows the "text" setting, wrapped and centred.
type Message struct {
	base
}

func NewMessage(cfg Config) Channel {
	return &Message{base: newBase("message", cfg)}
}

func (c *Message) Title() string { return c.cfg.Setting("title", "Message") }

func (c *Message) Render(width, height int, _ time.Time) string {
	var lines []string
	for _, line := range wrap(c.cfg.Setting("text", ""), width) {
		lines = append(lines, center(line, width))
	}
	return fit(middle(lines, height), width, height)
}

// Error displays a diagnostic. It stands in for channels that could not be
// built or shown.
type Error struct {
	base
	message string
}

// NewError builds an error channel for cfg; cfg is kept so reconciliation
// can tell whether the plane's configuration changed since.
func NewError(cfg Config, message string) *Error {
	return &Error{base: newBase("error", cfg), message: message}
}

func (c *Error) Title() string { return "Error" }

// Message returns the diagnostic text.
func (c *Error) Message() string { return c.message }

func (c *Error) Render(width, height int, _ time.Time) string {
	lines := []string{center("⚠ error", width), ""}
	lines = append(lines, wrap(c.message, width)...)
	return fit(lines, width, height)
}

// zoned is shared by the channels that display local time.
type zoned struct {
	loc *time.Location
}

func (z *zoned) mount(kind string, cfg Config) error {
	name := cfg.Setting("timezone", "Local")
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("%s: loading time zone %q: %w", kind, name, err)
	}
	z.loc = loc
	return nil
}

func (z *zoned) in(now time.Time) time.Time {
	if z.loc == nil {
		return now
	}
	return now.In(z.loc)
}

// Clock shows the current time and date.
type Clock struct {
	base
	zoned
}

func NewClock(cfg Config) Channel {
	return &Clock{base: newBase("clock", cfg)}
}

func (c *Clock) Title() string { return "Clock" }

func (c *Clock) Mount() error { return c.mount("clock", c.cfg) }

func (c *Clock) Unmount() { c.loc = nil }

func (c *Clock) Render(width, height int, now time.Time) string {
	now = c.in(now)
	layout := "15:04:05"
	if c.cfg.Setting("format", "24h") == "12h" {
		layout = "3:04:05 PM"
	}
	lines := []string{
		center(now.Format(layout), width),
		"",
		center(now.Format("Monday 2 January 2006"), width),
	}
	return fit(middle(lines, height), width, height)
}

// Calendar shows the current month with today marked.
type Calendar struct {
	base
	zoned
}

func NewCalendar(cfg Config) Channel {
	return &Calendar{base: newBase("calendar", cfg)}
}

func (c *Calendar) Title() string { return "Calendar" }

func (c *Calendar) Mount() error { return c.mount("calendar", c.cfg) }

func (c *Calendar) Unmount() { c.loc = nil }

func (c *Calendar) Render(width, height int, now time.Time) string {
	now = c.in(now)
	lines := []string{center(now.Format("January 2006"), width), ""}
	for _, row := range monthGrid(now) {
		lines = append(lines, center(row, width))
	}
	return fit(lines, width, height)
}

// monthGrid lays out the month containing t as a Monday-first grid. The
// first row is the weekday header; today is wrapped in brackets.
func monthGrid(t time.Time) []string {
	rows := []string{" Mo  Tu  We  Th  Fr  Sa  Su "}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	offset := (int(first.Weekday()) + 6) % 7
	days := first.AddDate(0, 1, -1).Day()

	var sb strings.Builder
	sb.WriteString(strings.Repeat("    ", offset))
	col := offset
	for day := 1; day <= days; day++ {
		if day == t.Day() {
			fmt.Fprintf(&sb, "[%2d]", day)
		} else {
			fmt.Fprintf(&sb, " %2d ", day)
		}
		col++
		if col == 7 {
			rows = append(rows, sb.String())
			sb.Reset()
			col = 0
		}
	}
	if sb.Len() > 0 {
		rows = append(rows, sb.String())
	}
	return rows
}
