package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/commitgraph"
	"github.com/matzehuels/gitlanes/pkg/lanes"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command, an interactive terminal view of
// the lane layout.
func (c *CLI) browseCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the commit graph interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			svc, err := c.newService(ctx, false)
			if err != nil {
				return err
			}

			g := svc.GetGraph(ctx, refresh)
			if g.NodeCount() == 0 {
				printWarning("No commits to browse")
				return nil
			}

			model := NewCommitListModel(g, lanes.Compute(g))
			_, err = tea.NewProgram(model).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and rebuild")

	return cmd
}

// =============================================================================
// CommitListModel - Interactive commit browsing
// =============================================================================

// CommitListModel is the bubbletea model for browsing the lane layout.
type CommitListModel struct {
	Graph  *commitgraph.Graph
	Layout *lanes.Layout
	Cursor int
	Height int
	Offset int

	nodes map[string]*commitgraph.CommitNode
}

// NewCommitListModel creates a new commit list model.
func NewCommitListModel(g *commitgraph.Graph, layout *lanes.Layout) CommitListModel {
	return CommitListModel{
		Graph:  g,
		Layout: layout,
		Height: 15,
		nodes:  g.NodeSet(),
	}
}

func (m CommitListModel) Init() tea.Cmd {
	return nil
}

func (m CommitListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Layout.Placements)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m CommitListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Commit Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Layout.Placements) {
		end = len(m.Layout.Placements)
	}

	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}

	if p := m.placementAt(m.Cursor); p != nil {
		b.WriteString("\n")
		b.WriteString(m.renderDetail(p))
	}

	return b.String()
}

// renderRow draws one commit row: the lane grid with a colored marker,
// the short hash, and the branch tips.
func (m CommitListModel) renderRow(i int) string {
	p := m.Layout.Placements[i]

	cursor := "  "
	if i == m.Cursor {
		cursor = listSelectedStyle.Render("▸ ")
	}

	row := make([]string, m.Layout.LaneCount)
	for lane := range row {
		row[lane] = " "
	}
	laneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(lanes.ColorHex(p.Color)))
	if p.Lane < len(row) {
		row[p.Lane] = laneStyle.Render("●")
	}

	line := cursor + strings.Join(row, " ") + "  " + StyleValue.Render(shortHash(p.Hash))
	if node, ok := m.nodes[p.Hash]; ok && len(node.Branches) > 0 {
		line += "  " + listDimStyle.Render(strings.Join(node.Branches.Names(), ", "))
	}
	return line
}

// renderDetail draws the detail pane for the selected commit.
func (m CommitListModel) renderDetail(p *lanes.Placement) string {
	node, ok := m.nodes[p.Hash]
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(listDimStyle.Render(fmt.Sprintf("lane %d · color %d", p.Lane, p.Color)))
	if node.Timestamp > 0 {
		ts := time.UnixMilli(node.Timestamp).Format("2006-01-02 15:04")
		b.WriteString(listDimStyle.Render(" · " + ts))
	}
	if node.IsMerge() {
		b.WriteString(listDimStyle.Render(" · merge"))
	}
	b.WriteString("\n")
	for _, parent := range node.Parents {
		b.WriteString(listDimStyle.Render("  parent " + shortHash(parent)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m CommitListModel) placementAt(i int) *lanes.Placement {
	if i < 0 || i >= len(m.Layout.Placements) {
		return nil
	}
	return &m.Layout.Placements[i]
}
