package main

import (
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BorhanSaflo/cali/app/lang"
)

type tickMsg time.Time

// fileChangedMsg is sent by the watcher when the open file was written to
// from outside.
type fileChangedMsg struct{}

type model struct {
	doc  *lang.Document
	path string
	cfg  config

	row, col int // cursor in rune coordinates
	top      int // first visible line

	width, height int
	modified      bool

	status      string
	statusUntil time.Time
}

func newModel(doc *lang.Document, path string, cfg config) model {
	return model{doc: doc, path: path, cfg: cfg}
}

func (m model) Init() tea.Cmd {
	return m.tick()
}

func (m model) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.cfg.TickMs)*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		m.doc.Tick()
		if m.status != "" && time.Now().After(m.statusUntil) {
			m.status = ""
		}
		return m, m.tick()

	case fileChangedMsg:
		if m.path != "" && !m.modified {
			if err := loadFile(m.doc, m.path); err != nil {
				m.setStatus("reload failed: " + err.Error())
			} else {
				m.clampCursor()
				m.setStatus("reloaded " + m.path)
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlQ:
		return m, tea.Quit

	case tea.KeyCtrlS:
		m.save()

	case tea.KeyUp:
		if m.row > 0 {
			m.row--
			m.clampCursor()
		}
	case tea.KeyDown:
		if m.row < m.doc.LineCount()-1 {
			m.row++
			m.clampCursor()
		}
	case tea.KeyLeft:
		if m.col > 0 {
			m.col--
		} else if m.row > 0 {
			m.row--
			m.col = lineLen(m.doc, m.row)
		}
	case tea.KeyRight:
		if m.col < lineLen(m.doc, m.row) {
			m.col++
		} else if m.row < m.doc.LineCount()-1 {
			m.row++
			m.col = 0
		}
	case tea.KeyHome:
		m.col = 0
	case tea.KeyEnd:
		m.col = lineLen(m.doc, m.row)

	case tea.KeyEnter:
		m.doc.SplitLine(m.row, m.col)
		m.row++
		m.col = 0
		m.edited()

	case tea.KeyBackspace:
		if m.col > 0 {
			m.doc.DeleteBefore(m.row, m.col)
			m.col--
			m.edited()
		} else if m.row > 0 {
			m.col = lineLen(m.doc, m.row-1)
			m.doc.JoinLines(m.row - 1)
			m.row--
			m.edited()
		}

	case tea.KeyDelete:
		if m.col < lineLen(m.doc, m.row) {
			m.doc.DeleteAt(m.row, m.col)
			m.edited()
		} else if m.row < m.doc.LineCount()-1 {
			m.doc.JoinLines(m.row)
			m.edited()
		}

	case tea.KeySpace:
		m.doc.InsertRune(m.row, m.col, ' ')
		m.col++
		m.edited()

	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.doc.InsertRune(m.row, m.col, r)
			m.col++
		}
		m.edited()
	}

	m.scrollIntoView()
	return m, nil
}

func (m *model) edited() {
	m.modified = true
	m.doc.Evaluate()
}

func (m *model) save() {
	if m.path == "" {
		m.setStatus("no file name")
		return
	}
	if err := os.WriteFile(m.path, []byte(m.doc.Save()+"\n"), 0o644); err != nil {
		m.setStatus("save failed: " + err.Error())
		return
	}
	m.modified = false
	m.setStatus("saved " + m.path)
}

func (m *model) setStatus(s string) {
	m.status = s
	m.statusUntil = time.Now().Add(3 * time.Second)
}

func (m *model) clampCursor() {
	if m.row >= m.doc.LineCount() {
		m.row = m.doc.LineCount() - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	if n := lineLen(m.doc, m.row); m.col > n {
		m.col = n
	}
}

func (m *model) scrollIntoView() {
	visible := m.height - 1 // status bar
	if visible < 1 {
		visible = 1
	}
	if m.row < m.top {
		m.top = m.row
	}
	if m.row >= m.top+visible {
		m.top = m.row - visible + 1
	}
}

func lineLen(doc *lang.Document, row int) int {
	return len([]rune(doc.Line(row)))
}

func displayName(path string) string {
	if path == "" {
		return "[scratch]"
	}
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
