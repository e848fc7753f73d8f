package listing

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Status is the fetch state of a listing
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// FetchState drives the loading/error/content rendering of a listing
type FetchState[T any] struct {
	Status Status
	Result Result[T]
	Err    error
}

// Lookup fetches one page of a listing
type Lookup[T any] func(ctx context.Context, filter Filter, opts Options) (Result[T], error)

// Request is one issued fetch. Seq increases with every request a controller
// issues; only the response to the latest Seq is applied.
type Request struct {
	ID      string
	Seq     uint64
	Options Options
	Filter  Filter
}

// Response is the settled outcome of a Request
type Response[T any] struct {
	Request Request
	Result  Result[T]
	Err     error
}

// Config configures a Controller
type Config[T any] struct {
	Kind         Kind
	Lookup       Lookup[T]
	Store        *OptionStore
	Filter       Filter
	Capabilities Capability
	PageSize     int
	Log          logrus.FieldLogger
}

// Controller turns a server-side paged collection into listing state:
// options, filter, fetch state, lock, and request sequencing.
type Controller[T any] struct {
	kind     Kind
	lookup   Lookup[T]
	store    *OptionStore
	pageSize int
	log      logrus.FieldLogger

	mu        sync.Mutex
	caps      Capability
	filter    Filter
	state     FetchState[T]
	stale     Result[T]
	staleOpts Options
	hasStale  bool
	seq       uint64
	refreshID int
	locked    bool
	dirty     bool
}

// NewController builds a controller and normalises the stored options
func NewController[T any](cfg Config[T]) *Controller[T] {
	log := cfg.Log
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	c := &Controller[T]{
		kind:     cfg.Kind,
		lookup:   cfg.Lookup,
		store:    cfg.Store,
		pageSize: cfg.PageSize,
		log:      log.WithField("listing", cfg.Kind.Name),
		caps:     cfg.Capabilities,
		filter:   cfg.Filter,
	}

	opts := c.normalize(cfg.Store.Options())
	if !opts.Equal(cfg.Store.Options()) {
		cfg.Store.SetOptions(opts)
	}

	return c
}

// Kind returns the listing type
func (c *Controller[T]) Kind() Kind {
	return c.kind
}

// Options returns the current options
func (c *Controller[T]) Options() Options {
	return c.store.Options()
}

// Filter returns the current filter
func (c *Controller[T]) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Capabilities returns the capability flags the sort set is narrowed by
func (c *Controller[T]) Capabilities() Capability {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caps
}

// State returns the current fetch state
func (c *Controller[T]) State() FetchState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Latest returns the last successful result, which stays visible while a
// newer request is loading or while the listing is locked.
func (c *Controller[T]) Latest() (Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale, c.hasStale
}

// Locked reports whether fetches are suppressed
func (c *Controller[T]) Locked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// Pagination returns the UI-facing pagination for the current options and
// the last known total.
func (c *Controller[T]) Pagination() Descriptor {
	opts := c.store.Options()
	c.mu.Lock()
	total := c.stale.Total
	c.mu.Unlock()
	return Paginate(total, opts.PageSize, opts.Page())
}

// Start issues the initial fetch
func (c *Controller[T]) Start() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trigger("start")
}

// SetOptions replaces the options. Options equal to the current ones do not
// trigger a fetch.
func (c *Controller[T]) SetOptions(opts Options) *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setOptionsLocked(opts, "options")
}

// SetPage moves to a 1-based page
func (c *Controller[T]) SetPage(page int) *Request {
	opts := c.store.Options()
	last := LastPage(c.lastTotal(), opts.PageSize)
	if page > last && c.hasResult() {
		page = last
	}
	if page < 1 {
		page = 1
	}
	opts.Offset = PageQuery(page, opts.PageSize).Offset
	return c.SetOptions(opts)
}

// NextPage and PrevPage step through pages within the known range
func (c *Controller[T]) NextPage() *Request {
	return c.SetPage(c.store.Options().Page() + 1)
}

func (c *Controller[T]) PrevPage() *Request {
	return c.SetPage(c.store.Options().Page() - 1)
}

// SetPageSize changes the page size and resets to the first page. Sizes that
// are not one of PageSizes are rejected.
func (c *Controller[T]) SetPageSize(size int) (*Request, error) {
	if !ValidPageSize(size) {
		return nil, &ValidationError{Field: "pageSize", Value: strconv.Itoa(size), Reason: "not a page-size choice"}
	}
	opts := c.store.Options()
	opts.PageSize = size
	opts.Offset = 0
	return c.SetOptions(opts), nil
}

// SetSort changes the sort field and direction and returns to the first page
func (c *Controller[T]) SetSort(orderBy string, order Order) *Request {
	opts := c.store.Options()
	if opts.OrderBy == orderBy && opts.Order == order {
		return nil
	}
	opts.OrderBy = orderBy
	opts.Order = order
	opts.Offset = 0
	return c.SetOptions(opts)
}

// SetFilter replaces the filter, e.g. when the wallet address set changes
func (c *Controller[T]) SetFilter(f Filter) *Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.filter.Equal(f) {
		return nil
	}
	c.filter = f
	return c.trigger("filter")
}

// SetCapabilities updates the capability flags. If the current sort key is
// no longer allowed the options fall back to the default order.
func (c *Controller[T]) SetCapabilities(caps Capability) *Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.caps == caps {
		return nil
	}
	c.caps = caps
	return c.setOptionsLocked(c.store.Options(), "capabilities")
}

// Refresh re-fetches the current options
func (c *Controller[T]) Refresh() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshID++
	return c.trigger("refresh")
}

// Lock suppresses all fetch triggers until Unlock
func (c *Controller[T]) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.locked {
		c.locked = true
		c.dirty = false
		c.log.Debug("listing locked")
	}
}

// Unlock lifts the lock. A fetch is issued only if the options, filter or
// refresh trigger changed while locked.
func (c *Controller[T]) Unlock() *Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.locked {
		return nil
	}
	c.locked = false
	dirty := c.dirty
	c.dirty = false
	c.log.WithField("changed", dirty).Debug("listing unlocked")
	if !dirty {
		return nil
	}
	return c.trigger("unlock")
}

// Run performs the lookup for a request. It does not touch controller state,
// so it can run on any goroutine.
func (c *Controller[T]) Run(ctx context.Context, req *Request) Response[T] {
	resp := Response[T]{Request: *req}
	log := c.log.WithFields(logrus.Fields{"request": req.ID, "seq": req.Seq})

	if req.Filter.Empty() {
		// An empty address set would be read by the server as "no filter"
		log.Debug("address set is empty, skipping lookup")
		resp.Result = EmptyResult[T]()
		return resp
	}

	started := time.Now()
	result, err := c.lookup(ctx, req.Filter, req.Options)
	if err != nil {
		log.WithError(err).Warn("listing lookup failed")
		resp.Err = err
		return resp
	}
	if result.Items == nil {
		result.Items = []T{}
	}
	log.WithFields(logrus.Fields{
		"count":   result.Count,
		"total":   result.Total,
		"elapsed": time.Since(started).Round(time.Millisecond),
	}).Debug("listing lookup settled")

	resp.Result = result
	return resp
}

// Apply settles a response. Responses to superseded requests are dropped and
// reported as not applied. If the new total leaves the current page out of
// range, the page is clamped and the follow-up request is returned.
func (c *Controller[T]) Apply(resp Response[T]) (*Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if resp.Request.Seq != c.seq {
		c.log.WithFields(logrus.Fields{"seq": resp.Request.Seq, "latest": c.seq}).Debug("discarding stale response")
		return nil, false
	}

	if resp.Err != nil {
		c.state = FetchState[T]{Status: StatusFailed, Err: resp.Err}
		return nil, true
	}

	c.state = FetchState[T]{Status: StatusLoaded, Result: resp.Result}
	c.stale = resp.Result
	c.staleOpts = resp.Request.Options
	c.hasStale = true

	opts := c.store.Options()
	page, changed := Clamp(resp.Result.Total, opts.PageSize, opts.Page())
	if !changed {
		return nil, true
	}

	c.log.WithFields(logrus.Fields{"from": opts.Page(), "to": page, "total": resp.Result.Total}).Debug("clamping page")
	opts.Offset = PageQuery(page, opts.PageSize).Offset
	c.store.SetOptions(opts)
	return c.trigger("clamp"), true
}

// Fetch triggers a refresh and runs it to completion, following a clamp
// re-fetch if one is needed. Used outside the interactive explorer.
func (c *Controller[T]) Fetch(ctx context.Context) (Result[T], error) {
	req := c.Refresh()
	for req != nil {
		if err := ctx.Err(); err != nil {
			return Result[T]{}, errors.WithStack(err)
		}
		req, _ = c.Apply(c.Run(ctx, req))
	}

	state := c.State()
	switch state.Status {
	case StatusLoaded:
		return state.Result, nil
	case StatusFailed:
		return Result[T]{}, state.Err
	}
	if res, ok := c.Latest(); ok {
		return res, nil
	}
	return Result[T]{}, errors.New("listing is locked")
}

// View returns what both presentations render from
func (c *Controller[T]) View(width, breakpoint int) View[T] {
	opts := c.store.Options()

	c.mu.Lock()
	defer c.mu.Unlock()

	return View[T]{
		Mode:          SelectMode(width, breakpoint),
		State:         c.state,
		Result:        c.stale,
		ResultOptions: c.staleOpts,
		HasResult:     c.hasStale,
		Options:       opts,
		Page:          Paginate(c.stale.Total, opts.PageSize, opts.Page()),
		SortOptions:   c.kind.SortOptions(c.caps),
		Locked:        c.locked,
	}
}

func (c *Controller[T]) setOptionsLocked(opts Options, reason string) *Request {
	opts = c.normalize(opts)
	if opts.Equal(c.store.Options()) {
		return nil
	}
	c.store.SetOptions(opts)
	return c.trigger(reason)
}

// trigger must be called with mu held
func (c *Controller[T]) trigger(reason string) *Request {
	if c.locked {
		c.dirty = true
		c.log.WithField("reason", reason).Debug("skipping lookup; listing locked")
		return nil
	}

	c.seq++
	c.state = FetchState[T]{Status: StatusLoading}
	req := &Request{
		ID:      uuid.NewString(),
		Seq:     c.seq,
		Options: c.store.Options(),
		Filter:  c.filter,
	}
	c.log.WithFields(logrus.Fields{
		"request": req.ID,
		"seq":     req.Seq,
		"reason":  reason,
		"orderBy": req.Options.OrderBy,
		"order":   req.Options.Order,
		"offset":  req.Options.Offset,
	}).Debug("issuing lookup")
	return req
}

func (c *Controller[T]) normalize(opts Options) Options {
	opts, err := c.kind.Normalize(opts, c.caps)
	if err != nil {
		c.log.WithError(err).Debug("falling back to default order")
	}
	opts, err = NormalizePage(opts, c.pageSize)
	if err != nil {
		c.log.WithError(err).Debug("falling back to default page size")
	}
	return opts
}

func (c *Controller[T]) lastTotal() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale.Total
}

func (c *Controller[T]) hasResult() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasStale
}
