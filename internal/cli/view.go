package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tempomaze/pkg/maze"
	"github.com/matzehuels/tempomaze/pkg/pipeline"
	"github.com/matzehuels/tempomaze/pkg/render/gridview"
	"github.com/matzehuels/tempomaze/pkg/route"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	gridStyle         = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

type viewKeys struct {
	Next, Prev, First, Last, Quit key.Binding
}

func (k viewKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.First, k.Last, k.Quit}
}

func (k viewKeys) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var defaultViewKeys = viewKeys{
	Next:  key.NewBinding(key.WithKeys("right", "l", "n", " "), key.WithHelp("→", "step")),
	Prev:  key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←", "back")),
	First: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first")),
	Last:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last")),
	Quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (c *CLI) viewCommand() *cobra.Command {
	var agent string
	cmd := &cobra.Command{
		Use:   "view <problem.pddl> <planner-output>",
		Short: "Step through an agent's plan on the maze grid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.loadView(cmd, args[0], args[1], agent)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "", "agent to follow (default from config)")
	return cmd
}

func (c *CLI) loadView(cmd *cobra.Command, problemPath, planPath, agent string) (PathViewModel, error) {
	runner, err := c.newRunner(cmd.Context(), true, nil)
	if err != nil {
		return PathViewModel{}, err
	}
	po := c.pipelineOptions()
	src, err := readInput(problemPath)
	if err != nil {
		return PathViewModel{}, err
	}
	p, err := runner.LoadProblem(src, po)
	if err != nil {
		return PathViewModel{}, err
	}
	out, err := readInput(planPath)
	if err != nil {
		return PathViewModel{}, err
	}
	plan := runner.LoadPlan(out, po)
	agent = pickAgent(p, agent, po.DefaultAgent)
	steps := route.Steps(plan.Actions, agent, pipeline.SnifferFor(p, po.DefaultAgent, runner.Logger))
	return NewPathViewModel(p, agent, steps), nil
}

// PathViewModel is the bubbletea model for stepping through a path.
// Cursor 0 is the start position; cursor i > 0 is after step i.
type PathViewModel struct {
	Problem *maze.Problem
	Agent   string
	Steps   []route.Step
	Cursor  int
	Height  int

	keys viewKeys
	help help.Model
}

// NewPathViewModel creates a viewer positioned at the agent's start.
func NewPathViewModel(p *maze.Problem, agent string, steps []route.Step) PathViewModel {
	return PathViewModel{
		Problem: p,
		Agent:   agent,
		Steps:   steps,
		Height:  10,
		keys:    defaultViewKeys,
		help:    help.New(),
	}
}

func (m PathViewModel) Init() tea.Cmd { return nil }

func (m PathViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			if m.Cursor < len(m.Steps) {
				m.Cursor++
			}
		case key.Matches(msg, m.keys.Prev):
			if m.Cursor > 0 {
				m.Cursor--
			}
		case key.Matches(msg, m.keys.First):
			m.Cursor = 0
		case key.Matches(msg, m.keys.Last):
			m.Cursor = len(m.Steps)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-16, 3)
		m.help.Width = msg.Width
	}
	return m, nil
}

// Position returns the agent's cell at the cursor.
func (m PathViewModel) Position() string {
	if m.Cursor == 0 {
		if a, ok := m.Problem.Agent(m.Agent); ok {
			return a.Start
		}
		if len(m.Steps) > 0 {
			return m.Steps[0].Cells()[0]
		}
		return ""
	}
	cells := m.Steps[m.Cursor-1].Cells()
	return cells[len(cells)-1]
}

func (m PathViewModel) View() string {
	var b strings.Builder
	pos := m.Position()

	b.WriteString(StyleTitle.Render("Path of " + m.Agent))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")

	layer, _ := gridview.LayerOf(m.Problem, pos)
	grid, err := gridview.Render(m.Problem, gridview.Options{
		Layer:  layer,
		Agent:  m.Agent,
		Path:   route.Cells(m.Steps[:m.Cursor]),
		Cursor: pos,
	})
	if err != nil {
		grid = err.Error()
	}
	b.WriteString(gridStyle.Render(grid))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("step %s  cell %s  layer %d\n\n",
		StyleHighlight.Render(fmt.Sprintf("%d/%d", m.Cursor, len(m.Steps))),
		StyleValue.Render(orDefault(pos, "?")), layer))

	start := max(0, m.Cursor-m.Height/2)
	end := min(len(m.Steps), start+m.Height)
	for i := start; i < end; i++ {
		a := m.Steps[i].Source()
		line := fmt.Sprintf("%7.3f  %s", a.Start, a.Text())
		switch {
		case i == m.Cursor-1:
			b.WriteString(listSelectedStyle.Render("▸ " + line))
		case i < m.Cursor-1:
			b.WriteString(listDimStyle.Render("  " + line))
		default:
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if len(m.Steps) == 0 {
		b.WriteString(StyleWarning.Render("No actions for " + m.Agent))
		b.WriteString("\n")
	}
	return b.String()
}
