// Package documents provides the documents view for the TUI.
package documents

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragstore/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragstore/internal/core/domain"
	"github.com/custodia-labs/ragstore/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// View lists indexed documents and, for a selected document, its chunks.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService

	documents []domain.DocumentSummary
	chunks    []domain.ChunkInfo
	openDoc   *domain.DocumentSummary // non-nil while showing chunks

	selected      int
	scrollOffset  int
	chunkSelected int
	chunkOffset   int

	width   int
	height  int
	ready   bool
	loading bool
	err     error
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		documents:       []domain.DocumentSummary{},
		width:           80,
		height:          24,
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Load returns a command that reloads the document list.
func (v *View) Load() tea.Cmd {
	v.loading = true
	svc := v.documentService
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		return messages.DocumentsLoaded{Documents: svc.ListDocuments()}
	}
}

func (v *View) loadChunks(documentID string) tea.Cmd {
	v.loading = true
	svc := v.documentService
	return func() tea.Msg {
		if svc == nil {
			return messages.ChunksLoaded{DocumentID: documentID, Err: ErrNoDocumentService}
		}
		chunks, err := svc.DocumentChunks(documentID)
		return messages.ChunksLoaded{DocumentID: documentID, Chunks: chunks, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.openDoc != nil {
			return v.handleChunkKeyMsg(msg)
		}
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.documents = msg.Documents
			if v.selected >= len(v.documents) {
				v.selected = max(len(v.documents)-1, 0)
			}
			v.scrollOffset = 0
			v.adjustScroll()
		}
		return v, nil

	case messages.ChunksLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			v.openDoc = nil
			return v, nil
		}
		v.err = nil
		v.chunks = msg.Chunks
		v.chunkSelected = 0
		v.chunkOffset = 0
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case "enter":
		if v.selected < len(v.documents) {
			doc := v.documents[v.selected]
			v.openDoc = &doc
			v.chunks = nil
			return v, v.loadChunks(doc.DocumentID)
		}
	case "r":
		return v, v.Load()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}
	return v, nil
}

func (v *View) handleChunkKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.chunkSelected > 0 {
			v.chunkSelected--
		}
	case "down", "j":
		if v.chunkSelected < len(v.chunks)-1 {
			v.chunkSelected++
		}
	case "esc", "backspace":
		v.openDoc = nil
		v.chunks = nil
	}
	if v.chunkSelected < v.chunkOffset {
		v.chunkOffset = v.chunkSelected
	} else if n := v.visibleChunkCount(); v.chunkSelected >= v.chunkOffset+n {
		v.chunkOffset = v.chunkSelected - n + 1
	}
	return v, nil
}

// adjustScroll keeps the selected document visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

func (v *View) visibleItemCount() int {
	// Title, tabs, scroll indicator and help.
	return max(v.height-8, 1)
}

func (v *View) visibleChunkCount() int {
	// Each chunk renders as a header and a preview line.
	return max((v.height-8)/2, 1)
}

// View renders the documents view.
func (v *View) View() string {
	if v.openDoc != nil {
		return v.renderChunks()
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents indexed. Run 'ragstore ingest <path>' to add some."))
	default:
		visible := v.visibleItemCount()
		for i := v.scrollOffset; i < len(v.documents) && i < v.scrollOffset+visible; i++ {
			b.WriteString(v.renderDocument(i, &v.documents[i]))
			b.WriteString("\n")
		}
		if len(v.documents) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
				v.scrollOffset+1,
				min(v.scrollOffset+visible, len(v.documents)),
				len(v.documents))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("↑/↓ navigate • enter chunks • r reload • tab ask/search • esc back"))
	return b.String()
}

func (v *View) renderDocument(index int, doc *domain.DocumentSummary) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	name := list.Truncate(filepath.Base(doc.Source), max(v.width/3, 10))
	source := list.Truncate(doc.Source, max(v.width/2-4, 10))
	line := fmt.Sprintf("%s%-*s %3d chunks  %s", indicator, max(v.width/3, 10), name, doc.TotalChunks, source)

	if index == v.selected {
		return v.styles.Selected.Render(line)
	}
	return v.styles.Normal.Render(line)
}

func (v *View) renderChunks() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(filepath.Base(v.openDoc.Source)))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s  (%d chunks)", v.openDoc.DocumentID, v.openDoc.TotalChunks)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading chunks..."))
	case len(v.chunks) == 0:
		b.WriteString(v.styles.Muted.Render("No chunks."))
	default:
		width := max(v.width-8, 20)
		visible := v.visibleChunkCount()
		for i := v.chunkOffset; i < len(v.chunks) && i < v.chunkOffset+visible; i++ {
			c := v.chunks[i]
			head := fmt.Sprintf("#%d  vector %d  %s", c.ChunkIndex, c.Position, c.ChunkID)
			if i == v.chunkSelected {
				b.WriteString(v.styles.Selected.Render("> " + head))
			} else {
				b.WriteString(v.styles.Subtitle.Render("  " + head))
			}
			b.WriteString("\n")
			b.WriteString(v.styles.Muted.Render("    " + list.Truncate(strings.Join(strings.Fields(c.Text), " "), width)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("↑/↓ navigate • esc documents"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Documents returns the loaded document summaries.
func (v *View) Documents() []domain.DocumentSummary {
	return v.documents
}

// SelectedIndex returns the index of the selected document.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Chunks returns the chunks of the open document.
func (v *View) Chunks() []domain.ChunkInfo {
	return v.chunks
}

// OpenDocument returns the document whose chunks are shown, or nil.
func (v *View) OpenDocument() *domain.DocumentSummary {
	return v.openDoc
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
