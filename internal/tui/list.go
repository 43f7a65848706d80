package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amply-impact/amply/internal/platform"
	"github.com/amply-impact/amply/internal/query"
	"github.com/amply-impact/amply/internal/route"
	"github.com/amply-impact/amply/pkg/amply/types"
)

type column[T any] struct {
	title string
	width int
	cell  func(T) string
}

// listConfig describes one table screen.
type listConfig[T any] struct {
	key     string
	title   string
	empty   string
	columns []column[T]
	// cacheKey is invalidated by an explicit reload.
	cacheKey query.Key
	paged    bool
	fetch    func(ctx context.Context, api *platform.Client, page int) (*types.Page[T], error)

	// Optional row actions.
	open   func(T) route.Location
	create func(e *env) *formScreen
	newLoc *route.Location
	remove func(ctx context.Context, api *platform.Client, item T) error
	label  func(T) string
}

type listScreen[T any] struct {
	env *env
	cfg listConfig[T]

	table   table.Model
	page    int
	data    *types.Page[T]
	loading bool
	err     error
	ticket  query.Ticket

	confirming *T
	form       *formScreen
	width      int
}

func newListScreen[T any](e *env, cfg listConfig[T]) *listScreen[T] {
	cols := make([]table.Column, 0, len(cfg.columns))
	for _, c := range cfg.columns {
		cols = append(cols, table.Column{Title: c.title, Width: c.width})
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	return &listScreen[T]{env: e, cfg: cfg, table: t, page: 1}
}

func (s *listScreen[T]) Init(ctx context.Context, t query.Ticket) tea.Cmd {
	s.ticket = t
	return s.fetch(ctx)
}

func (s *listScreen[T]) fetch(ctx context.Context) tea.Cmd {
	s.loading = true
	api, page, fetch := s.env.api, s.page, s.cfg.fetch
	return load(ctx, s.ticket, s.cfg.key, func(ctx context.Context) (*types.Page[T], error) {
		return fetch(ctx, api, page)
	})
}

// reload starts a new generation so results of the previous fetch are dropped.
func (s *listScreen[T]) reload() tea.Cmd {
	t, ctx := s.env.reload()
	s.ticket = t
	return s.fetch(ctx)
}

func (s *listScreen[T]) Capturing() bool {
	return s.form != nil || s.confirming != nil
}

func (s *listScreen[T]) selected() (T, bool) {
	var zero T
	if s.data == nil {
		return zero, false
	}
	i := s.table.Cursor()
	if i < 0 || i >= len(s.data.Items) {
		return zero, false
	}
	return s.data.Items[i], true
}

func (s *listScreen[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.table.SetWidth(msg.Width)
		s.table.SetHeight(max(msg.Height-4, 3))
		return nil

	case loadedMsg:
		if msg.key != s.cfg.key {
			return nil
		}
		s.loading = false
		s.err = msg.err
		if msg.err == nil {
			s.data, _ = msg.value.(*types.Page[T])
			s.setRows()
		}
		return nil

	case mutatedMsg:
		if s.form != nil {
			return s.form.Update(msg)
		}
		if msg.key != s.cfg.key+".delete" {
			return nil
		}
		if msg.err != nil {
			if isExpired(msg.err) {
				return nil
			}
			return notify(errorText(msg.err), true)
		}
		return tea.Batch(notify("Deleted", false), s.reload())

	case formClosedMsg:
		s.form = nil
		if msg.saved {
			return s.reload()
		}
		return nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.form != nil {
		return s.form.Update(msg)
	}
	return nil
}

func (s *listScreen[T]) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.form != nil {
		return s.form.Update(msg)
	}

	if s.confirming != nil {
		switch {
		case key.Matches(msg, keys.Confirm):
			item := *s.confirming
			s.confirming = nil
			api, remove := s.env.api, s.cfg.remove
			return mutate(s.env.ctx, s.ticket, s.cfg.key+".delete", func(ctx context.Context) (struct{}, error) {
				return struct{}{}, remove(ctx, api, item)
			})
		case key.Matches(msg, keys.Cancel):
			s.confirming = nil
		}
		return nil
	}

	switch {
	case key.Matches(msg, keys.Open) && s.cfg.open != nil:
		if item, ok := s.selected(); ok {
			return navigate(s.cfg.open(item))
		}
		return nil

	case key.Matches(msg, keys.New) && s.cfg.create != nil:
		s.form = s.cfg.create(s.env)
		return s.form.Init(s.env.ctx, s.ticket)

	case key.Matches(msg, keys.New) && s.cfg.newLoc != nil:
		return navigate(*s.cfg.newLoc)

	case key.Matches(msg, keys.Delete) && s.cfg.remove != nil:
		if item, ok := s.selected(); ok {
			s.confirming = &item
		}
		return nil

	case key.Matches(msg, keys.Reload):
		s.env.api.Cache().Invalidate(s.cfg.cacheKey)
		return s.reload()

	case key.Matches(msg, keys.NextPage) && s.cfg.paged:
		if s.data != nil && s.data.HasMore && !s.loading {
			s.page++
			return s.reload()
		}
		return nil

	case key.Matches(msg, keys.PrevPage) && s.cfg.paged:
		if s.page > 1 && !s.loading {
			s.page--
			return s.reload()
		}
		return nil
	}

	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return cmd
}

func (s *listScreen[T]) setRows() {
	if s.data == nil {
		s.table.SetRows(nil)
		return
	}
	rows := make([]table.Row, 0, len(s.data.Items))
	for _, item := range s.data.Items {
		row := make(table.Row, 0, len(s.cfg.columns))
		for _, c := range s.cfg.columns {
			row = append(row, c.cell(item))
		}
		rows = append(rows, row)
	}
	s.table.SetRows(rows)
	if s.table.Cursor() >= len(rows) {
		s.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (s *listScreen[T]) View(width int) string {
	st := s.env.styles
	var b strings.Builder
	b.WriteString(st.Title.Render(s.env.T(s.cfg.title)))
	b.WriteString("\n")

	if s.form != nil {
		b.WriteString(s.form.View(width))
		return b.String()
	}

	switch {
	case s.err != nil:
		b.WriteString(st.Error.Render("✗ " + errorText(s.err)))
		b.WriteString("\n")
		b.WriteString(st.Muted.Render("press r to retry"))
		return b.String()
	case s.data == nil && s.loading:
		b.WriteString(st.Muted.Render(s.env.T("common.loading")))
		return b.String()
	case s.data != nil && len(s.data.Items) == 0:
		empty := s.cfg.empty
		if empty == "" {
			empty = s.env.T("common.empty")
		}
		b.WriteString(st.Muted.Render(empty))
	default:
		b.WriteString(s.table.View())
	}
	b.WriteString("\n")
	b.WriteString(s.footer())

	if s.confirming != nil {
		b.WriteString("\n")
		b.WriteString(st.Warning.Render(fmt.Sprintf("Delete %s? ", s.cfg.label(*s.confirming))))
		b.WriteString(st.Key.Render("y") + "/" + st.Key.Render("n"))
	}
	return b.String()
}

func (s *listScreen[T]) footer() string {
	st := s.env.styles
	var parts []string
	if s.data != nil {
		if s.cfg.paged {
			parts = append(parts, fmt.Sprintf("page %d · %d total", s.page, s.data.Total))
		} else {
			parts = append(parts, fmt.Sprintf("%d total", s.data.Total))
		}
	}
	if s.loading {
		parts = append(parts, "refreshing…")
	}
	var hints []string
	if s.cfg.open != nil {
		hints = append(hints, st.Key.Render("enter")+" open")
	}
	if s.cfg.create != nil || s.cfg.newLoc != nil {
		hints = append(hints, st.Key.Render("n")+" new")
	}
	if s.cfg.remove != nil {
		hints = append(hints, st.Key.Render("d")+" delete")
	}
	if s.cfg.paged {
		hints = append(hints, st.Key.Render("←/→")+" page")
	}
	line := st.Muted.Render(strings.Join(parts, " · "))
	if len(hints) > 0 {
		line += "  " + strings.Join(hints, "  ")
	}
	return line
}
