package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pointzapp/bhakti-console/internal/mutate"
	"github.com/pointzapp/bhakti-console/internal/record"
)

type entityTab int

const (
	tabMantras entityTab = iota
	tabStories
)

// appModel is the dashboard root: two list tabs, an optional modal form, and
// a status line fed by the mutation pipeline.
type appModel struct {
	deps    Deps
	mutator *mutate.Mutator
	events  chan tea.Msg

	tab     entityTab
	mantras listModel
	stories listModel

	mantraItems []record.Mantra
	storyItems  []record.Story

	form          *formModel
	confirmDelete string
	searching     bool
	submitting    bool

	status statusMsg
	width  int
}

func newApp(deps Deps, mutator *mutate.Mutator, events chan tea.Msg) *appModel {
	mantraCols := []table.Column{
		{Title: "ID", Width: 24},
		{Title: "Title", Width: 32},
		{Title: "Photos", Width: 6},
		{Title: "Tags", Width: 28},
	}
	storyCols := []table.Column{
		{Title: "ID", Width: 24},
		{Title: "Title", Width: 28},
		{Title: "Category", Width: 10},
		{Title: "Mode", Width: 6},
		{Title: "Tags", Width: 22},
	}
	return &appModel{
		deps:    deps,
		mutator: mutator,
		events:  events,
		mantras: newListModel("mantras", mantraCols, deps.PageLimit),
		stories: newListModel("stories", storyCols, deps.PageLimit),
	}
}

func (a *appModel) Init() tea.Cmd {
	a.mantras.loading = true
	a.stories.loading = true
	return tea.Batch(
		listenEvents(a.events),
		loadMantras(a.deps, a.mantras.params),
		loadStories(a.deps, a.stories.params),
		a.mantras.spin.Tick,
	)
}

func (a *appModel) active() *listModel {
	if a.tab == tabStories {
		return &a.stories
	}
	return &a.mantras
}

func (a *appModel) reloadActive() tea.Cmd {
	list := a.active()
	list.loading = true
	if a.tab == tabStories {
		return loadStories(a.deps, list.params)
	}
	return loadMantras(a.deps, list.params)
}

func (a *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case sessionEndedMsg:
		return a, tea.Quit

	case statusMsg:
		a.status = msg
		if !msg.isErr {
			// A successful mutation settled: close the dialog and re-fetch.
			if a.form != nil {
				a.form.close()
				a.form = nil
			}
			a.submitting = false
			return a, tea.Batch(listenEvents(a.events), a.reloadActive())
		}
		a.submitting = false
		return a, listenEvents(a.events)

	case mantrasLoadedMsg:
		a.mantraItems = msg.items
		a.mantras.setRows(mantraRows(msg.items), msg.page)
		return a, nil

	case storiesLoadedMsg:
		a.storyItems = msg.items
		a.stories.setRows(storyRows(msg.items), msg.page)
		return a, nil

	case loadFailedMsg:
		if msg.entity == "stories" {
			a.stories.loading = false
		} else {
			a.mantras.loading = false
		}
		a.status = statusMsg{text: "Failed to load " + msg.entity, isErr: true}
		return a, nil

	case submitFinishedMsg:
		a.submitting = false
		if a.form != nil && len(msg.fieldErrs) > 0 {
			a.form.errs = msg.fieldErrs
		}
		return a, nil

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if a.mantras.loading || a.stories.loading {
			var cmd tea.Cmd
			a.mantras.spin, cmd = a.mantras.spin.Update(msg)
			cmds = append(cmds, cmd)
			a.stories.spin, _ = a.stories.spin.Update(msg)
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	if a.form != nil {
		return a.updateForm(msg)
	}

	list := a.active()

	if a.searching {
		switch msg.Type {
		case tea.KeyEnter:
			a.searching = false
			list.search.Blur()
			list.applySearch()
			return a, a.reloadActive()
		case tea.KeyEsc:
			a.searching = false
			list.search.Blur()
			list.search.SetValue("")
			list.applySearch()
			return a, a.reloadActive()
		default:
			var cmd tea.Cmd
			list.search, cmd = list.search.Update(msg)
			return a, cmd
		}
	}

	if a.confirmDelete != "" {
		switch msg.String() {
		case "y":
			id := a.confirmDelete
			a.confirmDelete = ""
			a.submitting = true
			return a, a.deleteCmd(id)
		default:
			a.confirmDelete = ""
			return a, nil
		}
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "tab":
		if a.tab == tabMantras {
			a.tab = tabStories
		} else {
			a.tab = tabMantras
		}
		return a, nil
	case "/":
		a.searching = true
		list.search.Focus()
		return a, nil
	case "]", "right":
		if list.nextPage() {
			return a, a.reloadActive()
		}
		return a, nil
	case "[", "left":
		if list.prevPage() {
			return a, a.reloadActive()
		}
		return a, nil
	case "r":
		a.deps.Cache.InvalidateEntity(list.entity)
		return a, a.reloadActive()
	case "n":
		a.form = a.newCreateForm()
		return a, nil
	case "e":
		if form := a.newEditForm(list.selectedID()); form != nil {
			a.form = form
		}
		return a, nil
	case "d":
		if id := list.selectedID(); id != "" {
			a.confirmDelete = id
		}
		return a, nil
	}

	var cmd tea.Cmd
	list.table, cmd = list.table.Update(msg)
	return a, cmd
}

func (a *appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if !a.submitting {
			a.form.close()
			a.form = nil
		}
		return a, nil
	case tea.KeyEnter:
		// Submit is disabled while a submission is in flight.
		if a.submitting {
			return a, nil
		}
		a.submitting = true
		return a, a.form.submitCmd(a.mutator)
	default:
		return a, a.form.handleKey(msg)
	}
}

func (a *appModel) deleteCmd(id string) tea.Cmd {
	tab := a.tab
	return func() tea.Msg {
		var err error
		if tab == tabStories {
			err = a.mutator.DeleteStory(context.Background(), id)
		} else {
			err = a.mutator.DeleteMantra(context.Background(), id)
		}
		// Outcome reaches the UI through the notifier channel.
		return submitFinishedMsg{err: err}
	}
}

func (a *appModel) newCreateForm() *formModel {
	if a.tab == tabStories {
		return newStoryForm(nil)
	}
	return newMantraForm(nil)
}

func (a *appModel) newEditForm(id string) *formModel {
	if id == "" {
		return nil
	}
	if a.tab == tabStories {
		for i := range a.storyItems {
			if a.storyItems[i].ID == id {
				return newStoryForm(&a.storyItems[i])
			}
		}
		return nil
	}
	for i := range a.mantraItems {
		if a.mantraItems[i].ID == id {
			return newMantraForm(&a.mantraItems[i])
		}
	}
	return nil
}

func (a *appModel) View() string {
	if a.form != nil {
		return a.form.view(a.submitting)
	}

	var b strings.Builder

	mantraTab := tabStyle.Render("Mantras")
	storyTab := tabStyle.Render("Stories")
	if a.tab == tabMantras {
		mantraTab = activeTabStyle.Render("Mantras")
	} else {
		storyTab = activeTabStyle.Render("Stories")
	}
	b.WriteString(headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, mantraTab, storyTab)))
	b.WriteString("\n")

	list := a.active()
	if a.searching || list.params.Search != "" {
		b.WriteString("search: " + list.search.View() + "\n")
	}
	b.WriteString(list.table.View())
	b.WriteString("\n" + helpStyle.Render(list.footer()) + "\n")

	if a.confirmDelete != "" {
		b.WriteString(statusErrStyle.Render("delete "+a.confirmDelete+"? (y/n)") + "\n")
	} else if a.status.text != "" {
		style := statusOKStyle
		if a.status.isErr {
			style = statusErrStyle
		}
		b.WriteString(style.Render(a.status.text) + "\n")
	}

	b.WriteString(helpStyle.Render("tab switch  / search  n new  e edit  d delete  [/] page  r refresh  q quit"))
	return b.String()
}
