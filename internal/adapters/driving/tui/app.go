package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/ragstore/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	searchView    *search.View
	documentsView *documents.View

	// currentView tracks which view is active; previousView is restored
	// when the help screen closes.
	currentView  messages.ViewType
	previousView messages.ViewType

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		searchView:    search.NewView(s, km, ports.Search, ports.Answer),
		documentsView: documents.NewView(s, ports.Document),
		currentView:   messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("ragstore"),
		a.searchView.Init(),
		a.loadStatus(),
	)
}

func (a *App) loadStatus() tea.Cmd {
	svc := a.ports.Document
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		return messages.StatusLoaded{Status: svc.Status()}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.SearchCompleted, messages.AnswerCompleted, messages.StatusLoaded:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.DocumentsLoaded, messages.ChunksLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewDocuments {
			a.documentsView, cmd = a.documentsView.Update(msg)
		} else {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	// Cursor blink and other internal messages go to the input.
	if a.currentView == messages.ViewSearch {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return a, cmd
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	keyStr := msg.String()

	if keyStr == "ctrl+c" {
		return a, tea.Quit
	}

	if a.currentView == messages.ViewHelp {
		if msg.Type == tea.KeyEsc || keymap.Matches(keyStr, a.keymap.Help) || keyStr == "q" {
			a.currentView = a.previousView
		}
		return a, nil
	}

	if keymap.Matches(keyStr, a.keymap.SwitchView) {
		if a.currentView == messages.ViewSearch {
			return a, a.switchTo(messages.ViewDocuments)
		}
		return a, a.switchTo(messages.ViewSearch)
	}

	// "?" is part of a question while typing.
	typing := a.currentView == messages.ViewSearch && a.searchView.InputFocused()
	if !typing && keymap.Matches(keyStr, a.keymap.Help) {
		return a, a.switchTo(messages.ViewHelp)
	}

	switch a.currentView {
	case messages.ViewDocuments:
		if keyStr == "q" && a.documentsView.OpenDocument() == nil {
			return a, tea.Quit
		}
		a.documentsView, cmd = a.documentsView.Update(msg)
	default:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
	}
	return a, cmd
}

func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	if view == messages.ViewHelp {
		if a.currentView != messages.ViewHelp {
			a.previousView = a.currentView
		}
		a.currentView = view
		return nil
	}
	a.currentView = view
	if view == messages.ViewDocuments {
		return a.documentsView.Load()
	}
	return a.searchView.Init()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewDocuments:
		body = a.documentsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.searchView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.renderTabs(), "", body)
}

func (a *App) renderTabs() string {
	label := "Search"
	if a.searchView.AskMode() {
		label = "Ask"
	}
	tabs := []struct {
		name string
		view messages.ViewType
	}{
		{label, messages.ViewSearch},
		{"Documents", messages.ViewDocuments},
	}

	rendered := make([]string, 0, len(tabs)+1)
	rendered = append(rendered, a.styles.Title.Render("ragstore")+"  ")
	for _, t := range tabs {
		if t.view == a.currentView {
			rendered = append(rendered, a.styles.ActiveTab.Render(t.name))
		} else {
			rendered = append(rendered, a.styles.InactiveTab.Render(t.name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Query returns the current query text.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Results returns the current search results.
func (a *App) Results() []domain.SearchResult {
	return a.searchView.Results()
}

// Answer returns the last answer, or nil.
func (a *App) Answer() *domain.Answer {
	return a.searchView.Answer()
}

// SelectedIndex returns the currently selected result index.
func (a *App) SelectedIndex() int {
	return a.searchView.SelectedIndex()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions and resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	// The tab row takes two lines.
	a.searchView.SetDimensions(width, height-2)
	a.documentsView.SetDimensions(width, height-2)
}
