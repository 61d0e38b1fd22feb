// Package tui is the interactive session browser: a filterable list of
// sessions on the left, the rendered conversation on the right. Heavy
// parsing runs off the update loop and is cancelled as soon as the user
// moves on.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ccview/ccview/internal/resume"
	"github.com/ccview/ccview/internal/session"
)

type paneMode int

const (
	paneConversation paneMode = iota
	paneStats
)

// Options carries render tuning from config into the browser.
type Options struct {
	Truncate     int
	LargeSession int
}

type model struct {
	summaries []session.Summary // full set, default order
	filtered  []session.Summary
	opts      Options

	query       string
	filterInput textinput.Model
	cursor      int
	listOffset  int

	preview     viewport.Model
	previewID   string // session id currently shown
	statsText   string
	pane        paneMode
	job         *previewJob
	loading     bool
	loadingText string

	width    int
	height   int
	ready    bool
	quitting bool

	resumeTarget *session.Summary
	editorTarget *session.Summary
}

func initialModel(summaries []session.Summary, opts Options) model {
	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Focus()
	ti.Prompt = "> "
	ti.PromptStyle = styleInputPrompt
	ti.TextStyle = styleInput
	ti.CharLimit = 256

	return model{
		summaries:   summaries,
		filtered:    summaries,
		opts:        opts,
		filterInput: ti,
		preview:     viewport.New(0, 0),
	}
}

// Run starts the browser over an already-built summary collection and
// blocks until it exits. Selecting a session copies its resume command;
// Ctrl+E opens the raw log in the editor.
func Run(summaries []session.Summary, opts Options) error {
	m := initialModel(summaries, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}

	fm := finalModel.(model)
	if fm.resumeTarget != nil {
		return resume.Copy(fm.resumeTarget.SessionID, fm.resumeTarget.Cwd)
	}
	if fm.editorTarget != nil {
		return resume.OpenInEditor(fm.editorTarget.FilePath, 1)
	}
	return nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.preview = newViewport(m.previewWidth(), m.panelHeight())
		m.previewID = ""
		if cmd := m.loadCurrentPreview(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.cancelJob()
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Enter):
			if len(m.filtered) > 0 && m.cursor < len(m.filtered) {
				s := m.filtered[m.cursor]
				m.resumeTarget = &s
				m.cancelJob()
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Editor):
			if len(m.filtered) > 0 && m.cursor < len(m.filtered) {
				s := m.filtered[m.cursor]
				m.editorTarget = &s
				m.cancelJob()
				m.quitting = true
				return m, tea.Quit
			}

		case key.Matches(msg, keys.Stats):
			if m.pane == paneStats {
				m.pane = paneConversation
			} else {
				m.pane = paneStats
			}
			m.syncPane()
			return m, nil

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustListScroll(m.panelHeight())
				if cmd := m.loadCurrentPreview(); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				m.adjustListScroll(m.panelHeight())
				if cmd := m.loadCurrentPreview(); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
			return m, tea.Batch(cmds...)

		case key.Matches(msg, keys.PreviewUp):
			m.preview.LineUp(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PreviewDn):
			m.preview.LineDown(m.panelHeight() / 2)
			return m, nil

		case key.Matches(msg, keys.PageUp):
			m.preview.LineUp(m.panelHeight())
			return m, nil

		case key.Matches(msg, keys.PageDown):
			m.preview.LineDown(m.panelHeight())
			return m, nil
		}

		var tiCmd tea.Cmd
		m.filterInput, tiCmd = m.filterInput.Update(msg)
		cmds = append(cmds, tiCmd)

		if newQuery := m.filterInput.Value(); newQuery != m.query {
			m.query = newQuery
			m.filtered = session.Filter(m.summaries, newQuery)
			m.cursor = 0
			m.listOffset = 0
			if cmd := m.loadCurrentPreview(); cmd != nil {
				cmds = append(cmds, cmd)
			}
			if len(m.filtered) == 0 {
				m.cancelJob()
				m.preview.SetContent("")
				m.previewID = ""
			}
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case previewMsg:
		if msg.canceled {
			// superseded load; nothing to show
			return m, nil
		}
		if !m.wantsPreview(msg.sessionID) {
			return m, nil // stale
		}
		m.loading = false
		m.loadingText = ""
		if msg.err != nil {
			m.preview.SetContent("Preview error: " + msg.err.Error())
			m.statsText = ""
		} else {
			m.preview.SetContent(msg.content)
			m.statsText = msg.stats
			m.preview.GotoTop()
		}
		m.previewID = msg.sessionID
		m.syncPane()
		return m, nil

	case progressTickMsg:
		if !m.loading || m.job == nil || m.job.sessionID != msg.sessionID {
			return m, nil
		}
		done, total := m.job.done.Load(), m.job.total.Load()
		if total > 0 {
			m.loadingText = fmt.Sprintf("Rendering %d/%d...", done, total)
		} else {
			m.loadingText = "Loading..."
		}
		return m, progressTick(msg.sessionID)
	}

	return m, tea.Batch(cmds...)
}

// wantsPreview reports whether sessionID is still the selected session.
func (m model) wantsPreview(sessionID string) bool {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return false
	}
	return m.filtered[m.cursor].SessionID == sessionID
}

// syncPane points the viewport at the current pane's content.
func (m *model) syncPane() {
	if m.pane == paneStats && m.statsText != "" {
		m.preview.SetContent(m.statsText)
		m.preview.GotoTop()
	}
}

func (m *model) cancelJob() {
	if m.job != nil {
		m.job.cancel()
		m.job = nil
	}
	m.loading = false
	m.loadingText = ""
}

// loadCurrentPreview kicks off a background render for the selected
// session, cancelling whatever was in flight.
func (m *model) loadCurrentPreview() tea.Cmd {
	if len(m.filtered) == 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	s := m.filtered[m.cursor]
	if s.SessionID == m.previewID {
		return nil
	}
	m.cancelJob()

	ctx, cancel := context.WithCancel(context.Background())
	job := &previewJob{sessionID: s.SessionID, cancel: cancel}
	m.job = job
	m.loading = true
	m.loadingText = "Loading..."
	m.pane = paneConversation

	return tea.Batch(
		loadPreviewCmd(ctx, job, s.FilePath, m.previewWidth(), m.opts.Truncate, m.opts.LargeSession),
		progressTick(s.SessionID),
	)
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || len(m.filtered) == 0 {
		return m, nil
	}

	var cmds []tea.Cmd
	region, itemIdx := m.hitTest(msg.X, msg.Y)

	switch {
	case region == regionList && msg.Button == tea.MouseButtonWheelUp:
		if m.listOffset > 0 {
			m.listOffset--
		}

	case region == regionList && msg.Button == tea.MouseButtonWheelDown:
		visibleItems := m.panelHeight() / linesPerItem
		maxOffset := len(m.filtered) - visibleItems
		if maxOffset < 0 {
			maxOffset = 0
		}
		if m.listOffset < maxOffset {
			m.listOffset++
		}

	case region == regionList && msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if itemIdx >= 0 && itemIdx < len(m.filtered) && m.cursor != itemIdx {
			m.cursor = itemIdx
			m.adjustListScroll(m.panelHeight())
			if cmd := m.loadCurrentPreview(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}

	case region == regionPreview && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
		var vpCmd tea.Cmd
		m.preview, vpCmd = m.preview.Update(msg)
		if vpCmd != nil {
			cmds = append(cmds, vpCmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}

	listW := m.listWidth()
	previewW := m.previewWidth()
	panelH := m.panelHeight()

	inputRow := m.filterInput.View()

	listPanel := stylePanelBorder.
		Width(listW).
		Height(panelH).
		Render(m.renderList(listW, panelH))

	m.preview.Width = previewW
	m.preview.Height = panelH
	previewContent := m.preview.View()
	if m.loading {
		previewContent = m.loadingText
	}
	previewPanel := styleActiveBorder.
		Width(previewW).
		Height(panelH).
		Render(previewContent)

	panels := lipgloss.JoinHorizontal(lipgloss.Top, listPanel, previewPanel)
	return lipgloss.JoinVertical(lipgloss.Left, inputRow, panels, m.statusBar())
}

func (m model) listWidth() int {
	if m.width <= 0 {
		return 40
	}
	w := m.width*40/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) previewWidth() int {
	if m.width <= 0 {
		return 60
	}
	w := m.width*60/100 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (m model) panelHeight() int {
	if m.height <= 0 {
		return 20
	}
	// input row (1) + status bar (1) + borders (4)
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	return h
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hitTest maps terminal coordinates to a panel region and list item index.
func (m model) hitTest(x, y int) (mouseRegion, int) {
	pH := m.panelHeight()
	contentYStart := 2 // input row (1) + top border (1)
	contentYEnd := contentYStart + pH - 1

	if y < contentYStart || y > contentYEnd {
		return regionNone, -1
	}
	relY := y - contentYStart

	lw := m.listWidth()
	listBoxRight := lw + 1

	if x >= 1 && x <= lw {
		itemIndex := m.listOffset + (relY / linesPerItem)
		return regionList, itemIndex
	}

	if x > listBoxRight+1 {
		return regionPreview, -1
	}

	return regionNone, -1
}

func (m model) statusBar() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d sessions", len(m.filtered)))
	parts = append(parts, "up/dn navigate")
	parts = append(parts, "C-s stats")
	parts = append(parts, "C-e editor")
	parts = append(parts, "Enter copy resume cmd")
	parts = append(parts, "Esc quit")
	return styleStatusBar.Render(strings.Join(parts, " | "))
}
