package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"namesearch/internal/config"
	"namesearch/internal/domain"
)

const (
	notFoundText  = "Not found... please retry another name"
	searchingText = "Searching..."
)

// QueryPipeline is the part of the search pipeline the UI drives
type QueryPipeline interface {
	SetQuery(query string)
	Snapshot() domain.SearchSnapshot
}

// Model represents the UI state
type Model struct {
	pipeline QueryPipeline
	settings config.SearchSettings
	catalog  *domain.Catalog
	logger   *zap.Logger

	input    textinput.Model
	spinner  spinner.Model
	results  viewport.Model
	help     help.Model
	styles   *Styles
	helpText *HelpRenderer
	pager    *PagerOps

	snap     domain.SearchSnapshot
	width    int
	height   int
	ready    bool // results viewport sized
	spinning bool // a spinner tick is in flight
}

// NewModel creates a new UI model
func NewModel(pipeline QueryPipeline, settings config.SearchSettings, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	input := textinput.New()
	input.Placeholder = "Search"
	input.Prompt = "> "
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	styles := NewStyles()
	spin.Style = styles.Searching

	snap := pipeline.Snapshot()
	input.SetValue(snap.Query)
	input.CursorEnd()

	m := &Model{
		pipeline: pipeline,
		settings: settings,
		logger:   logger.Named("ui"),
		input:    input,
		spinner:  spin,
		results:  viewport.New(0, 0),
		help:     help.New(),
		styles:   styles,
		helpText: NewHelpRenderer(),
		pager:    NewPagerOps(nil),
		snap:     snap,
	}
	if c, ok := pipeline.(interface{ Catalog() *domain.Catalog }); ok {
		m.catalog = c.Catalog()
	}
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager.SetProgram(p)
}

// Snapshot returns the last snapshot the UI rendered from
func (m *Model) Snapshot() domain.SearchSnapshot {
	return m.snap
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.snap.Searching {
		cmds = append(cmds, m.startSpinner())
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-8, 10)
		m.resizeResults()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		// Deliveries can overtake each other on the way into the program
		if msg.Snapshot.Seq < m.snap.Seq {
			return m, nil
		}
		m.snap = msg.Snapshot
		m.refreshResults()
		if m.snap.Searching {
			return m, m.startSpinner()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.snap.Searching {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pagerMsg:
		if msg.err != nil {
			m.logger.Warn("pager failed", zap.String("title", msg.title), zap.Error(msg.err))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		content := m.helpText.RenderHelpContent(m.settings.Debounce.Duration, m.settings.Latency.Duration)
		return m, m.showPager("help", content)

	case key.Matches(msg, keys.Catalog):
		if m.catalog == nil {
			return m, nil
		}
		return m, m.showPager("catalog", m.catalog.Names())

	case key.Matches(msg, keys.Up):
		m.results.ScrollUp(1)
		return m, nil

	case key.Matches(msg, keys.Down):
		m.results.ScrollDown(1)
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.results.PageUp()
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.results.PageDown()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.pipeline.SetQuery(after)
		// Reflect the new query right away; the pipeline snapshot follows
		m.snap.Query = after
		m.snap.Searching = true
		return m, tea.Batch(cmd, m.startSpinner())
	}
	return m, cmd
}

// showPager runs content through the external pager without blocking Update
func (m *Model) showPager(title, content string) tea.Cmd {
	return func() tea.Msg {
		return pagerMsg{title: title, err: m.pager.Show(content)}
	}
}

func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// resizeResults fits the viewport between the header and the footer
func (m *Model) resizeResults() {
	// title(2) + input box(3) + status(2) + help(1) + main padding(2)
	chrome := 10
	h := max(m.height-chrome, 1)
	w := max(m.width-4, 10)
	m.results.Width = w
	m.results.Height = h
	m.ready = true
	m.refreshResults()
}

func (m *Model) refreshResults() {
	if !m.ready {
		return
	}
	m.results.SetContent(m.renderResults())
}

// renderResults renders the body below the query box
func (m *Model) renderResults() string {
	switch {
	case m.snap.Searching:
		return m.spinner.View() + " " + m.styles.Searching.Render(searchingText)
	case m.snap.Err != nil:
		return m.styles.StatusError.Render(fmt.Sprintf("Search failed: %v", m.snap.Err))
	case m.snap.Empty:
		return m.styles.NotFound.Render(notFoundText)
	}

	lines := make([]string, 0, len(m.snap.Results))
	for _, p := range m.snap.Results {
		lines = append(lines, m.styles.highlightMatch(p.FullName(), m.snap.SettledQuery))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatus() string {
	switch {
	case m.snap.Searching:
		return m.styles.Status.Render(fmt.Sprintf("query %q", m.snap.Query))
	case m.snap.Err != nil:
		return m.styles.Status.Render("previous results kept")
	}
	total := 0
	if m.catalog != nil {
		total = m.catalog.Len()
	}
	return m.styles.Status.Render(fmt.Sprintf("%d of %d names", len(m.snap.Results), total))
}

// View renders the UI
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("namesearch"))
	b.WriteString("\n")
	b.WriteString(m.styles.Input.Render(m.input.View()))
	b.WriteString("\n")

	if m.ready {
		m.results.SetContent(m.renderResults())
		b.WriteString(m.results.View())
	} else {
		b.WriteString(m.renderResults())
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))

	return m.styles.Main.Render(b.String())
}
