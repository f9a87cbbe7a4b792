// Package tui is the interactive console for the newsroom. It uses
// bubbletea's Elm-style loop: the App model holds all state, Update
// reacts to messages, View renders the current screen.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yourusername/newsroom/internal/agent"
	"github.com/yourusername/newsroom/internal/newsroom"
	"github.com/yourusername/newsroom/internal/orchestrator"
)

// appState represents which screen we're on.
type appState int

const (
	stateMenu    appState = iota
	stateCompose          // manual article creation: pick desk, enter lead
	stateRunning
	stateResult
)

type actionID string

const (
	actionCycle     actionID = "cycle"
	actionDiscovery actionID = "discovery"
	actionReview    actionID = "review"
	actionPublish   actionID = "publish"
	actionResearch  actionID = "research"
	actionCompose   actionID = "compose"
	actionStatus    actionID = "status"
	actionQuit      actionID = "quit"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	resultStyle = lipgloss.NewStyle().PaddingLeft(2)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle   = lipgloss.NewStyle().Faint(true)
)

type menuItem struct {
	id    actionID
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

type deskItem struct {
	id string
}

func (i deskItem) Title() string       { return i.id }
func (i deskItem) Description() string { return "reporter desk" }
func (i deskItem) FilterValue() string { return i.id }

// resultMsg carries a finished workflow run back into the update loop.
type resultMsg struct {
	text string
	err  error
}

// App is the top-level bubbletea model.
type App struct {
	orch  *orchestrator.Orchestrator
	state appState

	menu      list.Model
	deskMenu  list.Model
	leadInput textinput.Model
	desk      string

	result string
	err    error
	width  int
	height int
}

// NewApp builds the console around an assembled orchestrator.
func NewApp(orch *orchestrator.Orchestrator) *App {
	items := []list.Item{
		menuItem{actionCycle, "Run complete cycle", "discovery, writing, review, publish"},
		menuItem{actionDiscovery, "Run discovery", "scan sources and write new drafts"},
		menuItem{actionReview, "Run review", "editor reviews the submission queue"},
		menuItem{actionPublish, "Publish approved", "write approved articles to the site"},
		menuItem{actionResearch, "Run research report", "weekly model benchmark comparison"},
		menuItem{actionCompose, "Create article", "assign a lead to a desk manually"},
		menuItem{actionStatus, "Show status", "queue depths and desk roster"},
		menuItem{actionQuit, "Quit", "leave the newsroom console"},
	}
	menu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "NEWSROOM"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)

	deskItems := make([]list.Item, 0)
	for _, id := range orch.Manager().ReporterIDs() {
		deskItems = append(deskItems, deskItem{id: id})
	}
	deskMenu := list.New(deskItems, list.NewDefaultDelegate(), 0, 0)
	deskMenu.Title = "PICK A DESK"
	deskMenu.SetShowStatusBar(false)
	deskMenu.SetFilteringEnabled(false)

	input := textinput.New()
	input.Placeholder = "lead title"
	input.CharLimit = 120

	return &App{
		orch:      orch,
		state:     stateMenu,
		menu:      menu,
		deskMenu:  deskMenu,
		leadInput: input,
	}
}

// Init is part of tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is part of tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.menu.SetSize(msg.Width, msg.Height-2)
		a.deskMenu.SetSize(msg.Width, msg.Height-2)
		return a, nil
	case resultMsg:
		a.state = stateResult
		a.result = msg.text
		a.err = msg.err
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a.routeToActiveComponent(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}
	switch a.state {
	case stateMenu:
		if msg.Type == tea.KeyEnter {
			item, ok := a.menu.SelectedItem().(menuItem)
			if !ok {
				return a, nil
			}
			return a.dispatch(item.id)
		}
	case stateCompose:
		switch msg.Type {
		case tea.KeyEsc:
			a.state = stateMenu
			return a, nil
		case tea.KeyEnter:
			if a.desk == "" {
				item, ok := a.deskMenu.SelectedItem().(deskItem)
				if !ok {
					return a, nil
				}
				a.desk = item.id
				a.leadInput.Focus()
				return a, textinput.Blink
			}
			title := strings.TrimSpace(a.leadInput.Value())
			if title == "" {
				return a, nil
			}
			desk := a.desk
			a.state = stateRunning
			return a, a.runCompose(desk, title)
		}
	case stateResult:
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			a.state = stateMenu
			a.result = ""
			a.err = nil
			return a, nil
		}
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil
	}
	return a.routeToActiveComponent(msg)
}

func (a *App) routeToActiveComponent(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.state {
	case stateMenu:
		a.menu, cmd = a.menu.Update(msg)
	case stateCompose:
		if a.desk == "" {
			a.deskMenu, cmd = a.deskMenu.Update(msg)
		} else {
			a.leadInput, cmd = a.leadInput.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) dispatch(id actionID) (tea.Model, tea.Cmd) {
	switch id {
	case actionQuit:
		return a, tea.Quit
	case actionStatus:
		a.state = stateResult
		a.result = renderStatus(a.orch.Manager().Status(), a.orch.Manager().ReporterIDs())
		return a, nil
	case actionCompose:
		a.state = stateCompose
		a.desk = ""
		a.leadInput.SetValue("")
		return a, nil
	default:
		a.state = stateRunning
		return a, a.runWorkflow(id)
	}
}

func (a *App) runWorkflow(id actionID) tea.Cmd {
	orch := a.orch
	return func() tea.Msg {
		ctx := context.Background()
		switch id {
		case actionCycle:
			summary := orch.RunCompleteCycle(ctx)
			return resultMsg{text: renderSummary(summary)}
		case actionDiscovery:
			discovered, written, errs := orch.RunDiscovery(ctx)
			text := fmt.Sprintf("%d leads discovered, %d articles written", discovered, written)
			return resultMsg{text: text, err: firstError(errs)}
		case actionReview:
			reviewed, approved, errs := orch.RunReviewCycle(ctx)
			text := fmt.Sprintf("%d articles reviewed, %d approved", reviewed, approved)
			return resultMsg{text: text, err: firstError(errs)}
		case actionPublish:
			locations, err := orch.RunPublish(ctx)
			return resultMsg{text: fmt.Sprintf("%d articles published", len(locations)), err: err}
		case actionResearch:
			if err := orch.RunResearch(ctx, nil); err != nil {
				return resultMsg{err: err}
			}
			return resultMsg{text: "research report submitted for review"}
		}
		return resultMsg{err: fmt.Errorf("tui: unknown action %s", id)}
	}
}

func (a *App) runCompose(desk, title string) tea.Cmd {
	orch := a.orch
	return func() tea.Msg {
		lead := agent.Lead{Title: title, Slug: slugify(title)}
		outcome, err := orch.Manager().CreateArticle(context.Background(), desk, lead)
		if err != nil {
			return resultMsg{err: err}
		}
		state := "held in drafts"
		if outcome.ReadyForReview {
			state = "submitted for review"
		}
		return resultMsg{text: fmt.Sprintf("article %s %s", outcome.Article.ID, state)}
	}
}

// View is part of tea.Model.
func (a *App) View() string {
	switch a.state {
	case stateCompose:
		if a.desk == "" {
			return a.deskMenu.View()
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("NEW LEAD FOR "+strings.ToUpper(a.desk)),
			a.leadInput.View(),
			hintStyle.Render("enter to write, esc to cancel"),
		)
	case stateRunning:
		return titleStyle.Render("working...")
	case stateResult:
		lines := []string{titleStyle.Render("RESULT")}
		if a.result != "" {
			lines = append(lines, resultStyle.Render(a.result))
		}
		if a.err != nil {
			lines = append(lines, errStyle.Render(a.err.Error()))
		}
		lines = append(lines, hintStyle.Render("enter to continue, q to quit"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	default:
		return a.menu.View()
	}
}

// Run starts the console and blocks until the user quits.
func Run(orch *orchestrator.Orchestrator) error {
	program := tea.NewProgram(NewApp(orch), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func renderStatus(s newsroom.Snapshot, desks []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "draft queue:     %d\n", s.DraftQueue)
	fmt.Fprintf(&b, "review queue:    %d\n", s.ReviewQueue)
	fmt.Fprintf(&b, "approved:        %d\n", s.ApprovedArticles)
	fmt.Fprintf(&b, "reporter desks:  %s", strings.Join(desks, ", "))
	return b.String()
}

func renderSummary(s orchestrator.CycleSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "cycle finished in %s\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "discovered: %d  written: %d\n", s.Discovered, s.Written)
	fmt.Fprintf(&b, "reviewed: %d  approved: %d  published: %d", s.Reviewed, s.Approved, s.Published)
	if len(s.Errors) > 0 {
		fmt.Fprintf(&b, "\nerrors: %d", len(s.Errors))
	}
	return b.String()
}

func firstError(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", errs[0])
}

func slugify(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
