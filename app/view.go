package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	resultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	commentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	statusStyle  = lipgloss.NewStyle().Reverse(true)
	dividerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

func (m model) View() string {
	if m.width == 0 {
		return ""
	}

	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	gutter := m.gutterWidth()
	textWidth := m.width - gutter - 3 // " | " divider
	if textWidth < 1 {
		textWidth = 1
	}

	var b strings.Builder
	for i := m.top; i < m.top+visible; i++ {
		if i > m.top {
			b.WriteByte('\n')
		}
		if i >= m.doc.LineCount() {
			continue
		}
		b.WriteString(m.renderLine(i, textWidth))
		b.WriteString(dividerStyle.Render(" | "))
		b.WriteString(m.renderResult(i, gutter))
	}
	b.WriteByte('\n')
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m model) renderLine(i, width int) string {
	runes := []rune(m.doc.Line(i))

	if i != m.row {
		text := string(runes)
		if isCommentLine(text) {
			return padRight(commentStyle.Render(text), width-len(runes))
		}
		return padRight(text, width-len(runes))
	}

	// cursor line: reverse-video the rune under the cursor
	col := m.col
	if col > len(runes) {
		col = len(runes)
	}
	var b strings.Builder
	b.WriteString(string(runes[:col]))
	if col < len(runes) {
		b.WriteString(cursorStyle.Render(string(runes[col])))
		b.WriteString(string(runes[col+1:]))
		return padRight(b.String(), width-len(runes))
	}
	b.WriteString(cursorStyle.Render(" "))
	return padRight(b.String(), width-len(runes)-1)
}

func (m model) renderResult(i, width int) string {
	res := m.doc.Result(i)
	pad := width - len([]rune(res))
	if pad < 0 {
		pad = 0
	}
	styled := resultStyle
	if strings.HasPrefix(res, "Error:") {
		styled = errorStyle
	}
	return strings.Repeat(" ", pad) + styled.Render(res)
}

func (m model) renderStatus() string {
	name := displayName(m.path)
	if m.modified {
		name += " *"
	}
	left := " " + name
	if m.status != "" {
		left += "  |  " + m.status
	}
	right := fmt.Sprintf("%d:%d ", m.row+1, m.col+1)
	pad := m.width - len([]rune(left)) - len([]rune(right))
	if pad < 0 {
		pad = 0
	}
	return statusStyle.Render(left + strings.Repeat(" ", pad) + right)
}

// gutterWidth sizes the result column to the widest live result on screen.
func (m model) gutterWidth() int {
	w := 8
	for i := 0; i < m.doc.LineCount(); i++ {
		if n := len([]rune(m.doc.Result(i))); n > w {
			w = n
		}
	}
	if limit := m.width / 2; w > limit {
		w = limit
	}
	return w
}

func isCommentLine(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "#")
}

func padRight(s string, n int) string {
	if n <= 0 {
		return s
	}
	return s + strings.Repeat(" ", n)
}
