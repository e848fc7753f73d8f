package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"krist-explorer/api"
	"krist-explorer/bus"
	"krist-explorer/cache"
	"krist-explorer/listing"
	"krist-explorer/models"
	"krist-explorer/wallets"
)

// AppState represents the current screen
type AppState int

const (
	StateDashboard AppState = iota
	StateNames
	StateTransactions
	StateAddresses
	StateNameCheck
	StateTransactionLookup
	StateTransactionDetail
	StateWalletInput
	StateAddressInput
	StateHelp
	StateError
)

// Deps are the services the explorer works against
type Deps struct {
	Config  *models.Config
	Client  *api.Client
	History *listing.History
	Wallets *wallets.Store
	Bus     *bus.Bus
	Caches  *cache.Caches
	Log     logrus.FieldLogger
}

// Model represents the main TUI model
type Model struct {
	deps Deps
	ctx  context.Context
	log  logrus.FieldLogger

	state   AppState
	current route
	entryID string
	width   int
	height  int

	// Pane layout
	leftPaneWidth  int
	rightPaneWidth int
	showRightPane  bool

	caps  listing.Capability
	motd  *models.MOTD
	keys  keyMap
	help  help.Model
	spin  spinner.Model
	input textinput.Model

	// Dashboard
	cursor        int
	choices       []menuChoice
	walletData    *api.AddressesResult
	walletErr     error
	walletLoading bool
	dashboardSeq  uint64
	recent        *recentFeed
	recentState   listing.FetchState[models.Transaction]

	// Active listing; at most one is set
	names *pane[models.Name]
	txs   *pane[models.Transaction]
	addrs *pane[models.Address]

	// Lookups
	nameCheck   *nameCheckResult
	transaction *models.Transaction
	lookupErr   error
	lookupBusy  bool
	inputErr    string

	// Wallet manager
	walletFocus  bool
	walletCursor int

	// Activity log for right pane
	activity       []string
	activityScroll int

	err error
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, deps Deps) Model {
	if deps.Log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		deps.Log = discard
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = highlightStyle

	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 256

	throttle := 300 * time.Millisecond
	if deps.Config != nil && deps.Config.Throttle > 0 {
		throttle = deps.Config.Throttle
	}

	var caps listing.Capability
	if deps.History != nil {
		caps, _ = deps.History.Capabilities()
	}

	return Model{
		deps:    deps,
		caps:    caps,
		ctx:     ctx,
		log:     deps.Log.WithField("component", "tui"),
		state:   StateDashboard,
		keys:    newKeyMap(),
		help:    help.New(),
		spin:    sp,
		input:   ti,
		choices: menuChoices,
		recent:  newRecentFeed(ctx, deps.Client, throttle, deps.Log),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, restoreCmd(), autoRefreshCmd(m.autoRefresh()))
}

func (m Model) breakpoint() int {
	if m.deps.Config != nil && m.deps.Config.Breakpoint > 0 {
		return m.deps.Config.Breakpoint
	}
	return models.DefaultConfig.Breakpoint
}

func (m Model) pageSize() int {
	if m.deps.Config != nil {
		return m.deps.Config.PageSize
	}
	return listing.DefaultPageSize
}

func (m Model) autoRefresh() time.Duration {
	if m.deps.Config != nil {
		return m.deps.Config.AutoRefresh
	}
	return 0
}
