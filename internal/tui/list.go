package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pointzapp/bhakti-console/internal/query"
	"github.com/pointzapp/bhakti-console/internal/record"
)

// listModel is one entity tab: a paged table plus a search box. The rows are
// display-only; the root model keeps the underlying records for edit dialogs.
type listModel struct {
	entity  string
	table   table.Model
	search  textinput.Model
	spin    spinner.Model
	params  record.ListParams
	page    record.Pagination
	loading bool
}

func newListModel(entity string, columns []table.Column, limit int) listModel {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	search := textinput.New()
	search.Placeholder = "search title or tags"
	search.CharLimit = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return listModel{
		entity: entity,
		table:  t,
		search: search,
		spin:   sp,
		params: record.ListParams{Page: 1, Limit: limit},
	}
}

func (m *listModel) setRows(rows []table.Row, page record.Pagination) {
	m.table.SetRows(rows)
	m.page = page
	m.loading = false
}

func (m *listModel) selectedID() string {
	row := m.table.SelectedRow()
	if row == nil {
		return ""
	}
	return row[0]
}

// applySearch resets to the first page with the current search text.
func (m *listModel) applySearch() {
	m.params.Search = m.search.Value()
	m.params.Page = 1
}

func (m *listModel) nextPage() bool {
	if !m.page.HasMore() {
		return false
	}
	m.params.Page++
	return true
}

func (m *listModel) prevPage() bool {
	if m.params.Page <= 1 {
		return false
	}
	m.params.Page--
	return true
}

func (m *listModel) footer() string {
	if m.loading {
		return m.spin.View() + " loading"
	}
	if m.page.Total == 0 {
		return "no records"
	}
	return fmt.Sprintf("page %d/%d, %d total", m.page.Page, m.page.TotalPages, m.page.Total)
}

type mantrasLoadedMsg struct {
	items []record.Mantra
	page  record.Pagination
}

type storiesLoadedMsg struct {
	items []record.Story
	page  record.Pagination
}

type loadFailedMsg struct {
	entity string
	err    error
}

type mantraPage struct {
	Items []record.Mantra
	Page  record.Pagination
}

type storyPage struct {
	Items []record.Story
	Page  record.Pagination
}

func loadMantras(deps Deps, params record.ListParams) tea.Cmd {
	return func() tea.Msg {
		result, err := query.Through(context.Background(), deps.Cache,
			query.ListKey("mantras", params.CacheKey(), params.Page),
			func(ctx context.Context) (mantraPage, error) {
				items, page, err := deps.Client.Mantras().List(ctx, params)
				return mantraPage{Items: items, Page: page}, err
			})
		if err != nil {
			return loadFailedMsg{entity: "mantras", err: err}
		}
		return mantrasLoadedMsg{items: result.Items, page: result.Page}
	}
}

func loadStories(deps Deps, params record.ListParams) tea.Cmd {
	return func() tea.Msg {
		result, err := query.Through(context.Background(), deps.Cache,
			query.ListKey("stories", params.CacheKey(), params.Page),
			func(ctx context.Context) (storyPage, error) {
				items, page, err := deps.Client.Stories().List(ctx, params)
				return storyPage{Items: items, Page: page}, err
			})
		if err != nil {
			return loadFailedMsg{entity: "stories", err: err}
		}
		return storiesLoadedMsg{items: result.Items, page: result.Page}
	}
}

func mantraRows(items []record.Mantra) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, m := range items {
		rows = append(rows, table.Row{m.ID, m.Title, fmt.Sprintf("%d", len(m.Photos)), m.Tags.String()})
	}
	return rows
}

func storyRows(items []record.Story) []table.Row {
	rows := make([]table.Row, 0, len(items))
	for _, s := range items {
		rows = append(rows, table.Row{s.ID, s.Title, string(s.Category), string(s.Mode()), s.Tags.String()})
	}
	return rows
}
