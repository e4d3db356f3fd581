// Package search provides the ask and search view for the TUI.
package search

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
)

// DefaultLimit is the number of chunks requested per search.
const DefaultLimit = 10

// View is the ask/search view: an input, a result list or an answer, and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	answerService driving.AnswerService
	ctx           context.Context

	width      int
	height     int
	ready      bool
	err        error
	askMode    bool
	focusInput bool // true = typing, false = browsing output
	answer     *domain.Answer
	expanded   bool // selected result shown in full
}

// NewView creates a new ask/search view. It starts in ask mode when an
// answer service is available.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	searchService driving.SearchService,
	answerService driving.AnswerService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:        s,
		keymap:        km,
		input:         input.NewQueryInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		answerService: answerService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
	v.setAskMode(answerService != nil)
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.StatusLoaded:
		v.statusbar.SetStore(msg.Status)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if keymap.Matches(msg.String(), v.keymap.ToggleMode) {
		if v.answerService != nil {
			v.setAskMode(!v.askMode)
		}
		return v, nil
	}

	if v.focusInput {
		if msg.Type == tea.KeyEnter {
			return v, v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case "up", "k":
		v.list.MoveUp()
		v.expanded = false
	case "down", "j":
		v.list.MoveDown()
		v.expanded = false
	case "enter":
		v.expanded = !v.expanded && v.list.SelectedResult() != nil
	case "n", "esc":
		v.focusQuery()
		return v, v.input.Focus()
	case "q":
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

// submit starts a search or a question for the current input.
func (v *View) submit() tea.Cmd {
	query := strings.TrimSpace(v.input.Value())
	if query == "" {
		return nil
	}
	v.err = nil
	v.focusInput = false
	v.input.Blur()

	if v.askMode {
		v.statusbar.SetState(status.StateAnswering)
		return v.performAsk(query)
	}
	v.statusbar.SetState(status.StateSearching)
	return v.performSearch(query)
}

func (v *View) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		if v.searchService == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		results, err := v.searchService.Search(v.ctx, query, DefaultLimit)
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

func (v *View) performAsk(question string) tea.Cmd {
	return func() tea.Msg {
		if v.answerService == nil {
			return messages.ErrorOccurred{Err: ErrNoAnswerService}
		}
		answer, err := v.answerService.Answer(v.ctx, question)
		return messages.AnswerCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.answer = nil
	v.expanded = false
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	v.err = nil
	v.answer = msg.Answer
	v.list.SetResults(nil)
	v.statusbar.SetState(status.StateAnswered)
	if msg.Answer != nil && msg.Answer.UsedFallback {
		v.statusbar.SetMessage("General knowledge")
	} else if msg.Answer != nil {
		v.statusbar.SetMessage(fmt.Sprintf("%d sources", len(msg.Answer.Sources)))
	}
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusQuery()
}

func (v *View) focusQuery() {
	v.focusInput = true
	v.expanded = false
	v.input.Focus()
}

func (v *View) setAskMode(ask bool) {
	v.askMode = ask
	v.input.SetAskMode(ask)
}

// View renders the view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	switch {
	case v.answer != nil:
		sections = append(sections, v.renderAnswer())
	case v.expanded:
		sections = append(sections, v.renderExpanded())
	default:
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderAnswer() string {
	width := max(v.width-4, 20)
	lines := []string{v.styles.Answer.Width(width).Render(v.answer.Text), ""}

	if v.answer.UsedFallback {
		lines = append(lines, v.styles.Muted.Render("No relevant documents found; answered from general knowledge."))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, v.styles.Subtitle.Render("Sources"))
	for i, src := range v.answer.Sources {
		head := fmt.Sprintf("[%d] %s  (%d chunks, %.4f)", i+1, filepath.Base(src.Source), src.ChunkCount, src.Distance)
		lines = append(lines,
			v.styles.Source.Render(head),
			v.styles.Muted.Render("    "+list.Truncate(strings.Join(strings.Fields(src.Excerpt), " "), width)),
		)
	}
	return strings.Join(lines, "\n")
}

func (v *View) renderExpanded() string {
	r := v.list.SelectedResult()
	if r == nil {
		return v.list.View()
	}
	head := fmt.Sprintf("%s #%d of %d  (%.4f)", r.Source, r.ChunkIndex+1, r.TotalChunks, r.Distance)
	body := lipgloss.NewStyle().Width(max(v.width-4, 20)).Render(r.Text)
	return v.styles.Subtitle.Render(head) + "\n\n" + body
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // Reserve space for tabs, input, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current input text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the input text.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// AskMode reports whether enter asks a question rather than searching.
func (v *View) AskMode() bool {
	return v.askMode
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Answer returns the last answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Expanded reports whether the selected result is shown in full.
func (v *View) Expanded() bool {
	return v.expanded
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset clears the query and output.
func (v *View) Reset() {
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.answer = nil
	v.err = nil
	v.statusbar.Clear()
	v.focusQuery()
}
