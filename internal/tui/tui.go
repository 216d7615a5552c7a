// Package tui is the interactive terminal dashboard: paged tables of mantras
// and stories with search, and create/edit/delete dialogs driving the
// mutation pipeline. It renders with bubbletea; logs go to the configured log
// writer, never to the screen.
package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pointzapp/bhakti-console/internal/api"
	"github.com/pointzapp/bhakti-console/internal/mutate"
	"github.com/pointzapp/bhakti-console/internal/query"
	"github.com/pointzapp/bhakti-console/internal/session"
)

// Deps is everything the dashboard needs from the app core.
type Deps struct {
	Client    *api.Client
	Cache     *query.Cache
	Session   *session.Session
	Logger    *slog.Logger
	PageLimit int
}

// statusMsg is a transient outcome line shown at the bottom of the screen.
type statusMsg struct {
	text  string
	isErr bool
}

// sessionEndedMsg terminates the dashboard when the session logs out,
// locally or because the server rejected the token mid-flight.
type sessionEndedMsg struct{}

// channelNotifier feeds mutation outcomes into the bubbletea event loop.
type channelNotifier struct {
	events chan tea.Msg
}

func (n *channelNotifier) Success(msg string) {
	n.events <- statusMsg{text: msg}
}

func (n *channelNotifier) Error(msg string) {
	n.events <- statusMsg{text: msg, isErr: true}
}

// listenEvents re-arms after every delivered message; bubbletea runs the
// returned command again once the message is consumed.
func listenEvents(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

// Run starts the dashboard and blocks until the user quits or the session
// ends.
func Run(deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.PageLimit <= 0 {
		deps.PageLimit = 10
	}

	events := make(chan tea.Msg, 16)
	mutator := mutate.New(deps.Client, deps.Cache, &channelNotifier{events: events}, deps.Logger)

	unsubscribe := deps.Session.OnLogout(func() {
		events <- sessionEndedMsg{}
	})
	defer unsubscribe()

	app := newApp(deps, mutator, events)
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
