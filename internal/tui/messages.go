package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// sessionMsg carries a published session snapshot.
type sessionMsg struct {
	session types.Session
}

// verifiedMsg ends the second boot phase.
type verifiedMsg struct {
	err error
}

// navigateMsg asks the shell to move to loc.
type navigateMsg struct {
	loc route.Location
}

// loadedMsg is the result of a query issued by a screen. Results whose
// ticket is no longer valid are dropped by the shell.
type loadedMsg struct {
	ticket query.Ticket
	key    string
	value  any
	err    error
}

// mutatedMsg is the result of a mutation issued by a screen.
type mutatedMsg struct {
	ticket query.Ticket
	key    string
	value  any
	err    error
}

// noticeMsg raises a dismissible message above the screen.
type noticeMsg struct {
	text  string
	isErr bool
}

func navigate(loc route.Location) tea.Cmd {
	return func() tea.Msg { return navigateMsg{loc: loc} }
}

func notify(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return noticeMsg{text: text, isErr: isErr} }
}

// load runs fn off the update loop and reports its result under key.
func load[T any](ctx context.Context, t query.Ticket, key string, fn func(context.Context) (T, error)) tea.Cmd {
	return func() tea.Msg {
		v, err := fn(ctx)
		return loadedMsg{ticket: t, key: key, value: v, err: err}
	}
}

// mutate runs fn off the update loop. Mutations use a context that
// outlives the screen, so leaving a screen never aborts a write halfway.
func mutate[T any](ctx context.Context, t query.Ticket, key string, fn func(context.Context) (T, error)) tea.Cmd {
	return func() tea.Msg {
		v, err := fn(ctx)
		return mutatedMsg{ticket: t, key: key, value: v, err: err}
	}
}

func waitForSession(updates <-chan types.Session) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return sessionMsg{session: s}
	}
}
