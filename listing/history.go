package listing

import (
	"io"
	"net/url"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Entry is one step of navigation history. Slots hold the serialised options
// of each listing shown on that page.
type Entry struct {
	ID    string
	Route string
	Slots map[string]string
}

// Snapshot is the persisted form of History
type Snapshot struct {
	Entries []Entry
	Cursor  int

	// Capabilities are the network flags last seen. Restored listings
	// validate their sort against them until the network answers again.
	Capabilities      Capability
	CapabilitiesKnown bool
}

// Backend persists history so a restart restores the same views
type Backend interface {
	LoadHistory() (*Snapshot, error)
	SaveHistory(*Snapshot) error
}

// maxEntries bounds the history stack; older entries are dropped
const maxEntries = 100

// History is the navigation stack. Back/Forward move the cursor without
// discarding entries; Push drops everything after the cursor.
type History struct {
	mu      sync.Mutex
	entries []Entry
	cursor  int
	claims  map[string]map[string]bool
	caps    Capability
	known   bool
	backend Backend
	log     logrus.FieldLogger
}

// NewHistory restores history from the backend, if any
func NewHistory(backend Backend, log logrus.FieldLogger) *History {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	h := &History{
		cursor:  -1,
		claims:  make(map[string]map[string]bool),
		backend: backend,
		log:     log,
	}

	if backend != nil {
		snap, err := backend.LoadHistory()
		if err != nil {
			log.WithError(err).Warn("could not restore navigation history")
		} else if snap != nil {
			h.caps, h.known = snap.Capabilities, snap.CapabilitiesKnown
			if len(snap.Entries) > 0 {
				h.entries = snap.Entries
				h.cursor = snap.Cursor
				if h.cursor < 0 || h.cursor >= len(h.entries) {
					h.cursor = len(h.entries) - 1
				}
			}
		}
	}

	return h
}

// Push adds a new entry after the cursor and makes it current
func (h *History) Push(route string) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < len(h.entries)-1 {
		for _, e := range h.entries[h.cursor+1:] {
			delete(h.claims, e.ID)
		}
		h.entries = h.entries[:h.cursor+1]
	}

	entry := Entry{ID: uuid.NewString(), Route: route, Slots: make(map[string]string)}
	h.entries = append(h.entries, entry)
	if len(h.entries) > maxEntries {
		dropped := h.entries[0]
		delete(h.claims, dropped.ID)
		h.entries = h.entries[1:]
	}
	h.cursor = len(h.entries) - 1

	h.save()
	return entry
}

// Current returns the entry under the cursor
func (h *History) Current() (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < 0 {
		return Entry{}, false
	}
	return h.entries[h.cursor], true
}

// Back moves to the previous entry
func (h *History) Back() (Entry, bool) {
	return h.move(-1)
}

// Forward moves to the next entry
func (h *History) Forward() (Entry, bool) {
	return h.move(1)
}

func (h *History) move(step int) (Entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.cursor + step
	if next < 0 || next >= len(h.entries) {
		return Entry{}, false
	}
	h.cursor = next
	h.save()
	return h.entries[h.cursor], true
}

// Len returns the number of entries
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Capabilities returns the last recorded network flags and whether any were
// recorded at all
func (h *History) Capabilities() (Capability, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.caps, h.known
}

// SetCapabilities records the network flags with the history
func (h *History) SetCapabilities(caps Capability) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.known && h.caps == caps {
		return
	}
	h.caps, h.known = caps, true
	h.save()
}

// Bind claims a slot on an entry for one listing. Each slot can be held by
// one listing at a time; a second claim fails with ErrSlotInUse.
func (h *History) Bind(entryID, slot string, defaults Options) (*OptionStore, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := h.indexOf(entryID)
	if idx < 0 {
		return nil, errors.Errorf("unknown history entry %s", entryID)
	}

	claimed := h.claims[entryID]
	if claimed == nil {
		claimed = make(map[string]bool)
		h.claims[entryID] = claimed
	}
	if claimed[slot] {
		return nil, errors.Wrapf(ErrSlotInUse, "slot %s", slot)
	}
	claimed[slot] = true

	opts := defaults.Clone()
	if raw, ok := h.entries[idx].Slots[slot]; ok {
		restored, err := DecodeOptions(raw)
		if err != nil {
			h.log.WithError(err).WithField("slot", slot).Debug("ignoring unreadable history slot")
		} else {
			restored.Filters = opts.Filters
			opts = restored
		}
	}

	return &OptionStore{history: h, entryID: entryID, slot: slot, opts: opts}, nil
}

func (h *History) release(entryID, slot string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if claimed := h.claims[entryID]; claimed != nil {
		delete(claimed, slot)
	}
}

func (h *History) write(entryID, slot, raw string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := h.indexOf(entryID)
	if idx < 0 {
		return
	}
	if h.entries[idx].Slots == nil {
		h.entries[idx].Slots = make(map[string]string)
	}
	h.entries[idx].Slots[slot] = raw
	h.save()
}

func (h *History) indexOf(entryID string) int {
	for i, e := range h.entries {
		if e.ID == entryID {
			return i
		}
	}
	return -1
}

// save must be called with mu held
func (h *History) save() {
	if h.backend == nil {
		return
	}
	snap := &Snapshot{
		Entries:           make([]Entry, len(h.entries)),
		Cursor:            h.cursor,
		Capabilities:      h.caps,
		CapabilitiesKnown: h.known,
	}
	for i, e := range h.entries {
		slots := make(map[string]string, len(e.Slots))
		for k, v := range e.Slots {
			slots[k] = v
		}
		snap.Entries[i] = Entry{ID: e.ID, Route: e.Route, Slots: slots}
	}
	if err := h.backend.SaveHistory(snap); err != nil {
		h.log.WithError(err).Warn("could not persist navigation history")
	}
}

// OptionStore is the single source of truth for one listing's options.
// Every change is mirrored into its history slot.
type OptionStore struct {
	history *History
	entryID string
	slot    string

	mu   sync.Mutex
	opts Options
}

// Options returns a copy of the current options
func (s *OptionStore) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Clone()
}

// SetOptions updates the options and writes them into the history entry
func (s *OptionStore) SetOptions(opts Options) {
	s.mu.Lock()
	s.opts = opts.Clone()
	s.mu.Unlock()

	raw, err := EncodeOptions(opts)
	if err != nil {
		s.history.log.WithError(err).WithField("slot", s.slot).Warn("could not serialise listing options")
		return
	}
	s.history.write(s.entryID, s.slot, raw)
}

// Slot returns the slot key this store writes to
func (s *OptionStore) Slot() string {
	return s.slot
}

// Release frees the slot when the listing goes away
func (s *OptionStore) Release() {
	s.history.release(s.entryID, s.slot)
}

// slotState is the subset of Options kept in history
type slotState struct {
	OrderBy  string `url:"orderBy,omitempty" mapstructure:"orderBy"`
	Order    string `url:"order,omitempty" mapstructure:"order"`
	Offset   int    `url:"offset" mapstructure:"offset"`
	PageSize int    `url:"pageSize" mapstructure:"pageSize"`
}

// EncodeOptions serialises orderBy, order, offset and pageSize as a query
// string
func EncodeOptions(opts Options) (string, error) {
	values, err := query.Values(slotState{
		OrderBy:  opts.OrderBy,
		Order:    string(opts.Order),
		Offset:   opts.Offset,
		PageSize: opts.PageSize,
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding history slot")
	}
	return values.Encode(), nil
}

// DecodeOptions is the inverse of EncodeOptions
func DecodeOptions(raw string) (Options, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return Options{}, errors.Wrap(err, "parsing history slot")
	}

	input := make(map[string]any, len(values))
	for k := range values {
		input[k] = values.Get(k)
	}

	var state slotState
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &state,
	})
	if err != nil {
		return Options{}, errors.Wrap(err, "building history decoder")
	}
	if err := decoder.Decode(input); err != nil {
		return Options{}, errors.Wrap(err, "decoding history slot")
	}

	return Options{
		OrderBy:  state.OrderBy,
		Order:    Order(state.Order),
		Offset:   state.Offset,
		PageSize: state.PageSize,
	}, nil
}
