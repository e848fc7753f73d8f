package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"krist-explorer/listing"
	"krist-explorer/ui"
	"krist-explorer/utils"
)

// paneConfig describes one listing screen
type paneConfig[T any] struct {
	slot     string
	title    string
	kind     listing.Kind
	lookup   listing.Lookup[T]
	filter   listing.Filter
	defaults listing.Options
	cols     listing.ColumnSet
	cell     ui.CellFunc[T]
	line     ui.LineFunc[T]

	// open is where enter on a row leads, alt where the Sent key does
	open func(T) (route, bool)
	alt  func(T) (route, bool)
}

// pane is a listing screen: a controller bound to a history slot, plus the
// table and list presentations that render it
type pane[T any] struct {
	id    string
	cfg   paneConfig[T]
	ctrl  *listing.Controller[T]
	store *listing.OptionStore
	table table.Model

	cursor int
	width  int
	height int
	mode   listing.RenderMode
}

// fetchedMsg delivers a settled lookup to the pane that issued it
type fetchedMsg[T any] struct {
	paneID string
	resp   listing.Response[T]
}

func newPane[T any](h *listing.History, entryID string, caps listing.Capability, pageSize int, log logrus.FieldLogger, cfg paneConfig[T]) (*pane[T], error) {
	store, err := h.Bind(entryID, cfg.slot, cfg.defaults)
	if err != nil {
		return nil, errors.Wrapf(err, "binding %s listing", cfg.slot)
	}

	ctrl := listing.NewController(listing.Config[T]{
		Kind:         cfg.kind,
		Lookup:       cfg.lookup,
		Store:        store,
		Filter:       cfg.filter,
		Capabilities: caps,
		PageSize:     pageSize,
		Log:          log,
	})

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(textColor).
		Background(primaryColor)

	t := table.New(table.WithFocused(true), table.WithStyles(styles))

	return &pane[T]{
		id:    uuid.NewString(),
		cfg:   cfg,
		ctrl:  ctrl,
		store: store,
		table: t,
	}, nil
}

func (p *pane[T]) release() {
	p.store.Release()
}

func (p *pane[T]) fetch(ctx context.Context, req *listing.Request) tea.Cmd {
	if req == nil {
		return nil
	}
	id, ctrl := p.id, p.ctrl
	r := *req
	return func() tea.Msg {
		return fetchedMsg[T]{paneID: id, resp: ctrl.Run(ctx, &r)}
	}
}

// apply settles a fetched message. A clamp re-fetch is returned as a command.
func (p *pane[T]) apply(ctx context.Context, msg fetchedMsg[T]) tea.Cmd {
	if msg.paneID != p.id {
		return nil
	}
	req, _ := p.ctrl.Apply(msg.resp)
	p.sync()
	return p.fetch(ctx, req)
}

func (p *pane[T]) setLocked(locked bool) *listing.Request {
	if locked {
		p.ctrl.Lock()
		return nil
	}
	return p.ctrl.Unlock()
}

// handleKey maps listing keys onto controller operations
func (p *pane[T]) handleKey(msg tea.KeyMsg, keys keyMap) (*listing.Request, bool, error) {
	opts := p.ctrl.Options()
	caps := p.ctrl.Capabilities()

	switch {
	case key.Matches(msg, keys.NextPage):
		return p.ctrl.NextPage(), true, nil
	case key.Matches(msg, keys.PrevPage):
		return p.ctrl.PrevPage(), true, nil
	case key.Matches(msg, keys.Sort):
		next := p.cfg.kind.NextSort(opts.OrderBy, caps)
		return p.ctrl.SetSort(next, opts.Order), true, nil
	case key.Matches(msg, keys.Order):
		return p.ctrl.SetSort(opts.OrderBy, opts.Order.Toggle()), true, nil
	case key.Matches(msg, keys.Bigger), key.Matches(msg, keys.Smaller):
		step := 1
		if key.Matches(msg, keys.Smaller) {
			step = -1
		}
		size := listing.NextPageSize(opts.PageSize, step)
		if size == opts.PageSize {
			return nil, true, nil
		}
		req, err := p.ctrl.SetPageSize(size)
		return req, true, err
	case key.Matches(msg, keys.Mined):
		if p.cfg.kind.Name != listing.Transactions.Name {
			return nil, false, nil
		}
		if opts.Filters == nil {
			opts.Filters = map[string]string{}
		}
		if opts.Filters["includeMined"] == "true" {
			delete(opts.Filters, "includeMined")
		} else {
			opts.Filters["includeMined"] = "true"
		}
		opts.Offset = 0
		return p.ctrl.SetOptions(opts), true, nil
	case key.Matches(msg, keys.Refresh):
		return p.ctrl.Refresh(), true, nil
	case key.Matches(msg, keys.Lock):
		return p.setLocked(!p.ctrl.Locked()), true, nil
	case key.Matches(msg, keys.Up):
		if p.mode == listing.ModeList {
			if p.cursor > 0 {
				p.cursor--
			}
		} else {
			p.table.MoveUp(1)
		}
		return nil, true, nil
	case key.Matches(msg, keys.Down):
		if p.mode == listing.ModeList {
			if items, ok := p.ctrl.Latest(); ok && p.cursor < len(items.Items)-1 {
				p.cursor++
			}
		} else {
			p.table.MoveDown(1)
		}
		return nil, true, nil
	}
	return nil, false, nil
}

// selected returns the item under the cursor
func (p *pane[T]) selected() (T, bool) {
	var zero T
	res, ok := p.ctrl.Latest()
	if !ok {
		return zero, false
	}
	i := p.cursor
	if p.mode == listing.ModeTable {
		i = p.table.Cursor()
	}
	if i < 0 || i >= len(res.Items) {
		return zero, false
	}
	return res.Items[i], true
}

// resize records the area the pane renders into
func (p *pane[T]) resize(width, height, breakpoint int) {
	p.width = width
	p.height = height
	p.mode = listing.SelectMode(width, breakpoint)
	p.sync()
}

// sync copies the latest result into the table
func (p *pane[T]) sync() {
	v := p.ctrl.View(p.width, 0)
	res := v.Result
	cols := p.cfg.cols.For(p.ctrl.Capabilities())
	if p.width > 0 {
		cols = cols.Fit(p.width-len(cols)*2, 4)
	}

	tcols := make([]table.Column, len(cols))
	for i, c := range cols {
		tcols[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	rows := ui.Rows(cols, res.Items, v.ResultOptions.Offset, p.cfg.cell)
	trows := make([]table.Row, len(rows))
	for i, r := range rows {
		trows[i] = table.Row(r)
	}

	// rows must never be wider than the columns, even transiently
	p.table.SetRows(nil)
	p.table.SetColumns(tcols)
	p.table.SetRows(trows)
	if p.height > 0 {
		p.table.SetHeight(p.height)
	}
	if p.width > 0 {
		p.table.SetWidth(p.width)
	}
	if p.table.Cursor() >= len(trows) {
		p.table.SetCursor(max(len(trows)-1, 0))
	}
	if p.cursor >= len(res.Items) {
		p.cursor = max(len(res.Items)-1, 0)
	}
}

// render draws the status line and the listing body
func (p *pane[T]) render(breakpoint int, spin string) string {
	v := p.ctrl.View(p.width, breakpoint)
	var s strings.Builder

	s.WriteString(titleStyle.Render(p.cfg.title) + "\n")
	s.WriteString(p.statusLine(v, spin) + "\n\n")

	switch ui.StatusOf(v) {
	case ui.StatusLoading:
		s.WriteString(spin + " " + helpStyle.Render("Loading..."))
	case ui.StatusError:
		s.WriteString(renderResult(ui.ResultFor(v.State.Err)))
	case ui.StatusEmpty:
		s.WriteString(placeholderStyle.Render("Nothing to show"))
	default:
		if v.Mode == listing.ModeList {
			s.WriteString(p.renderList(v))
		} else {
			s.WriteString(p.table.View())
		}
	}
	// a failed refresh keeps the last page on screen
	if v.State.Status == listing.StatusFailed && v.HasResult {
		s.WriteString("\n" + errorStyle.Render(ui.ResultFor(v.State.Err).Title))
	}

	return s.String()
}

func (p *pane[T]) statusLine(v listing.View[T], spin string) string {
	from, to := v.Shown().Range()
	parts := []string{
		fmt.Sprintf("%d-%d of %s", from, to, utils.FormatNumber(int64(v.Page.Total))),
		v.Page.String(),
		fmt.Sprintf("%d per page", v.Options.PageSize),
		"sort " + p.cfg.kind.DisplayName(v.Options.OrderBy) + " " + string(v.Options.Order),
	}
	if v.Options.Filters["includeMined"] == "true" {
		parts = append(parts, "incl. mined")
	}
	line := progressTextStyle.Render(strings.Join(parts, "  ·  "))
	if v.Locked {
		line += "  " + warningStyle.Render("LOCKED")
	}
	if v.State.Status == listing.StatusLoading && v.HasResult {
		line += "  " + spin
	}
	return line
}

func (p *pane[T]) renderList(v listing.View[T]) string {
	var s strings.Builder
	for i, item := range v.Result.Items {
		title, detail := p.cfg.line(item, v.ResultOptions.Offset+i)
		if p.width > 0 {
			title = utils.TruncateString(title, p.width-2)
			detail = utils.TruncateString(detail, p.width-4)
		}
		if i == p.cursor {
			s.WriteString("> " + selectedStyle.Render(title) + "\n")
		} else {
			s.WriteString("  " + choiceStyle.Render(title) + "\n")
		}
		s.WriteString("    " + helpStyle.Render(detail) + "\n")
	}
	return strings.TrimRight(s.String(), "\n")
}
