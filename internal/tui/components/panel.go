package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lantern/internal/tui/design"
	"lantern/internal/tui/utils"
)

// PanelType picks the accent colour of a panel.
type PanelType int

const (
	PanelTypeDefault PanelType = iota
	PanelTypeSuccess
	PanelTypeError
	PanelTypeWarning
	PanelTypeInfo
)

// Panel is a bordered box with an optional title line.
type Panel struct {
	Title   string
	Icon    string
	Content string
	Width   int
	Height  int
	Focused bool
	Type    PanelType
}

// NewPanel creates a panel of the minimum size.
func NewPanel(title string) *Panel {
	return &Panel{
		Title:  title,
		Width:  design.MinPanelWidth,
		Height: design.MinPanelHeight,
	}
}

// WithContent sets the body; long lines are ellipsized, extra lines cut.
func (p *Panel) WithContent(content string) *Panel {
	p.Content = content
	return p
}

// WithDimensions sets the outer size, border included.
func (p *Panel) WithDimensions(width, height int) *Panel {
	p.Width = width
	p.Height = height
	return p
}

func (p *Panel) WithType(panelType PanelType) *Panel {
	p.Type = panelType
	return p
}

// WithIcon puts icon in front of the title.
func (p *Panel) WithIcon(icon string) *Panel {
	p.Icon = icon
	return p
}

func (p *Panel) SetFocused(focused bool) *Panel {
	p.Focused = focused
	return p
}

// InnerSize is the area left for content once border, padding and title
// are taken.
func (p *Panel) InnerSize() (width, height int) {
	w, h := p.clamped()
	style := p.getStyle()
	width = max(1, w-style.GetHorizontalFrameSize())
	height = h - style.GetVerticalFrameSize()
	if p.Title != "" {
		height -= 2
	}
	return width, max(1, height)
}

func (p *Panel) clamped() (int, int) {
	return max(p.Width, design.MinPanelWidth), max(p.Height, design.MinPanelHeight)
}

// Render draws the panel at exactly Width x Height.
func (p *Panel) Render() string {
	width, height := p.clamped()
	style := p.getStyle()

	innerWidth := max(1, width-style.GetHorizontalFrameSize())
	innerHeight := max(1, height-style.GetVerticalFrameSize())

	var lines []string
	if p.Title != "" {
		lines = append(lines, p.renderTitle(innerWidth), "")
	}

	if p.Content != "" {
		contentLines := strings.Split(p.Content, "\n")
		available := innerHeight - len(lines)
		if available > 0 && len(contentLines) > available {
			contentLines = append(contentLines[:available-1], "...")
		}
		for _, line := range contentLines {
			if lipgloss.Width(line) > innerWidth {
				line = utils.Ellipsize(line, innerWidth)
			}
			lines = append(lines, line)
		}
	}

	for len(lines) < innerHeight {
		lines = append(lines, "")
	}
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}

	return style.
		Width(width - style.GetHorizontalBorderSize()).
		Height(height - style.GetVerticalBorderSize()).
		Render(strings.Join(lines, "\n"))
}

// accent is the border and icon colouring of each panel type.
type accent struct {
	border lipgloss.TerminalColor
	icon   lipgloss.Style
}

var accents = map[PanelType]accent{
	PanelTypeSuccess: {design.ColorSuccess, design.IconSuccessStyle},
	PanelTypeError:   {design.ColorError, design.IconErrorStyle},
	PanelTypeWarning: {design.ColorWarning, design.IconWarningStyle},
	PanelTypeInfo:    {design.ColorInfo, design.IconInfoStyle},
}

func (p *Panel) getStyle() lipgloss.Style {
	style := design.PanelStyle
	if p.Focused {
		style = design.PanelFocusedStyle
	}
	if a, ok := accents[p.Type]; ok {
		style = style.BorderForeground(a.border)
	}
	return style
}

func (p *Panel) iconStyle() lipgloss.Style {
	if a, ok := accents[p.Type]; ok {
		return a.icon
	}
	if p.Focused {
		return design.IconPrimaryStyle
	}
	return design.IconDefaultStyle
}

func (p *Panel) renderTitle(width int) string {
	title := p.Title
	iconWidth := 0
	if p.Icon != "" {
		iconWidth = lipgloss.Width(p.Icon) + 1
	}
	title = utils.Ellipsize(title, max(1, width-iconWidth))

	titleStyle := design.TitleStyle
	if p.Focused {
		titleStyle = titleStyle.Foreground(design.ColorPrimary)
	}
	if p.Icon == "" {
		return titleStyle.Render(title)
	}
	return p.iconStyle().Render(p.Icon) + " " + titleStyle.Render(title)
}
