package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"krist-explorer/api"
	"krist-explorer/cache"
	"krist-explorer/listing"
	"krist-explorer/models"
	"krist-explorer/ui"
	"krist-explorer/utils"
	"krist-explorer/wallets"
)

// listFlags tune a one-shot listing
type listFlags struct {
	page    int
	sort    string
	order   string
	mined   bool
	compact bool
	yes     bool
}

// cli runs the non-interactive commands
type cli struct {
	ctx     context.Context
	cfg     *models.Config
	client  *api.Client
	caches  *cache.Caches
	wallets *wallets.Store
	out     *ui.Printer
	prompt  *ui.Prompter
	log     logrus.FieldLogger
	width   int
	flags   listFlags
	now     func() time.Time
}

// usageError is returned for malformed command lines
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func (c *cli) run(args []string) error {
	if len(args) == 0 {
		return usagef("missing command")
	}

	switch args[0] {
	case "list", "ls":
		return c.list(args[1:])
	case "check":
		if len(args) != 2 {
			return usagef("usage: check <name>")
		}
		return c.checkName(args[1])
	case "tx", "transaction":
		if len(args) != 2 {
			return usagef("usage: tx <id>")
		}
		return c.transaction(args[1])
	case "address":
		if len(args) != 2 {
			return usagef("usage: address <address>")
		}
		return c.address(args[1])
	case "wallets":
		return c.manageWallets(args[1:])
	}
	return usagef("unknown command %q", args[0])
}

// capabilities reads the network flags; without them optional columns and
// sorts stay hidden
func (c *cli) capabilities() listing.Capability {
	motd, err := c.caches.MOTDOf(c.ctx, c.client.GetMOTD)
	if err != nil {
		c.log.WithError(err).Debug("could not load MOTD")
		return 0
	}
	return api.Capabilities(&motd)
}

func (c *cli) list(args []string) error {
	if len(args) == 0 {
		return usagef("usage: list names|transactions|addresses [scope] [subject]")
	}

	scope, subject := "", ""
	if len(args) > 1 {
		scope = args[1]
	}
	if len(args) > 2 {
		subject = args[2]
	}

	walletFilter := listing.Filter{Addresses: c.wallets.Addresses(), AddressScoped: true}
	mined := listing.Options{Filters: map[string]string{"includeMined": "true"}}

	switch args[0] {
	case "names":
		kind, title, filter := listing.Names, "Network names", listing.Filter{}
		switch scope {
		case "":
		case "wallets", "mine":
			title, filter = "My names", walletFilter
		case "recent":
			kind, title = listing.RecentNames, "Recently registered names"
		default:
			return usagef("unknown names listing %q", scope)
		}
		return runListing(c, title, kind, c.client.LookupNames, filter, listing.Options{},
			ui.NameColumns, ui.NameCells, c.nameLine)

	case "transactions", "txs":
		lookup := c.client.TransactionLookup(api.ScopeAddresses)
		title, filter, defaults := "Network transactions", listing.Filter{}, listing.Options{}
		switch scope {
		case "":
		case "wallets", "mine":
			title, filter, defaults = "My transactions", walletFilter, mined
		case "address":
			if err := utils.ValidateAddress(subject); err != nil {
				return err
			}
			title = "Transactions of " + subject
			filter = listing.Filter{Addresses: []string{subject}, AddressScoped: true}
			defaults = mined
		case "name", "sent":
			name := utils.NormalizeName(subject)
			if err := utils.ValidateName(name); err != nil {
				return err
			}
			filter = listing.Filter{Name: name}
			title = "History of " + name + utils.NameSuffix
			lookup = c.client.TransactionLookup(api.ScopeNameHistory)
			if scope == "sent" {
				title = "Transactions sent to " + name + utils.NameSuffix
				lookup = c.client.TransactionLookup(api.ScopeNameSent)
			}
		default:
			return usagef("unknown transactions listing %q", scope)
		}
		return runListing(c, title, listing.Transactions, lookup, filter, defaults,
			ui.TransactionColumns, ui.TransactionCells, c.transactionLine)

	case "addresses", "rich":
		return runListing(c, "Rich list", listing.Addresses, c.client.RichAddresses, listing.Filter{}, listing.Options{},
			ui.AddressColumns, ui.AddressCell, ui.AddressLine)
	}

	return usagef("unknown listing %q", args[0])
}

func (c *cli) nameLine(n models.Name, _ int) (string, string) {
	return ui.NameLine(n, c.now())
}

func (c *cli) transactionLine(tx models.Transaction, _ int) (string, string) {
	return ui.TransactionLine(tx, c.now())
}

// runListing fetches one page through a listing controller and prints it
func runListing[T any](c *cli, title string, kind listing.Kind, lookup listing.Lookup[T], filter listing.Filter,
	defaults listing.Options, cols listing.ColumnSet, cell ui.CellFunc[T], line ui.LineFunc[T]) error {

	h := listing.NewHistory(nil, c.log)
	entry := h.Push("cli/" + kind.Name)
	store, err := h.Bind(entry.ID, kind.Name, defaults)
	if err != nil {
		return err
	}
	defer store.Release()

	caps := c.capabilities()
	ctrl := listing.NewController(listing.Config[T]{
		Kind:         kind,
		Lookup:       lookup,
		Store:        store,
		Filter:       filter,
		Capabilities: caps,
		PageSize:     c.cfg.PageSize,
		Log:          c.log,
	})

	opts := ctrl.Options()
	if c.flags.sort != "" {
		if !kind.CanSortBy(c.flags.sort, caps) {
			return &listing.ValidationError{Field: "orderBy", Value: c.flags.sort, Reason: "not sortable here"}
		}
		opts.OrderBy = c.flags.sort
	}
	if c.flags.order != "" {
		order, ok := listing.ParseOrder(c.flags.order)
		if !ok {
			return &listing.ValidationError{Field: "order", Value: c.flags.order, Reason: "use ASC or DESC"}
		}
		opts.Order = order
	}
	if c.flags.mined && kind.Name == listing.Transactions.Name {
		opts.Filters = map[string]string{"includeMined": "true"}
	}
	if c.flags.page > 1 {
		opts.Offset = listing.PageQuery(c.flags.page, opts.PageSize).Offset
	}
	ctrl.SetOptions(opts)

	if _, err := ctrl.Fetch(c.ctx); err != nil {
		c.out.SectionHeader(title)
		c.out.Result(ui.ResultFor(err))
		c.out.SectionFooter()
		return err
	}

	width := c.width
	if c.flags.compact {
		width = 1
	}
	if width > 0 {
		cols = cols.For(caps).Fit(width-2-len(cols), 4)
	} else {
		cols = cols.For(caps)
	}
	ui.PrintListing(c.out, title, ctrl.View(width, c.cfg.Breakpoint), cols, cell, line)
	return nil
}

func (c *cli) checkName(input string) error {
	name := utils.NormalizeName(input)
	if err := utils.ValidateName(name); err != nil {
		return err
	}

	available, err := c.caches.CheckName(c.ctx, name, c.client.CheckName)
	c.out.SectionHeader("Name " + name + utils.NameSuffix)
	defer c.out.SectionFooter()
	if err != nil {
		c.out.Result(ui.ResultFor(err))
		return err
	}
	if available {
		c.out.Result(ui.Result{Severity: ui.SeverityInfo, Title: "Available", Message: name + utils.NameSuffix + " can be purchased."})
		return nil
	}
	c.out.Result(ui.Result{Severity: ui.SeverityWarning, Title: "Taken", Message: name + utils.NameSuffix + " is already registered."})
	return nil
}

func (c *cli) transaction(input string) error {
	id, err := utils.ParseTransactionID(input)
	if err != nil {
		return err
	}

	tx, err := c.client.GetTransaction(c.ctx, id)
	c.out.SectionHeader("Transaction #" + strconv.Itoa(id))
	defer c.out.SectionFooter()
	if err != nil {
		c.out.Result(ui.TransactionResultFor(err))
		return err
	}

	c.out.Field("Type", ui.TransactionTypeLabel(*tx))
	c.out.Field("Value", utils.FormatKrist(tx.Value))
	if tx.From != "" {
		c.out.Field("From", tx.From)
	}
	c.out.Field("To", tx.To)
	c.out.Field("Time", utils.FormatTime(tx.Time)+" ("+utils.FormatAge(tx.Time, c.now())+")")
	if tx.Name != "" {
		c.out.Field("Name", tx.Name+utils.NameSuffix)
	}
	if tx.SentName != "" {
		c.out.Field("Sent to", ui.TransactionCell(*tx, "sent_name"))
	}
	if tx.Metadata != "" {
		c.out.Field("Metadata", tx.Metadata)
	}
	return nil
}

func (c *cli) address(input string) error {
	if err := utils.ValidateAddress(input); err != nil {
		return err
	}

	addr, err := c.client.GetAddress(c.ctx, input, true)
	c.out.SectionHeader("Address " + input)
	defer c.out.SectionFooter()
	if err != nil {
		c.out.Result(ui.ResultFor(err))
		return err
	}

	c.out.Field("Balance", utils.FormatKrist(addr.Balance))
	c.out.Field("Total in", utils.FormatKrist(addr.TotalIn))
	c.out.Field("Total out", utils.FormatKrist(addr.TotalOut))
	c.out.Field("Names", utils.FormatNumber(int64(addr.Names)))
	c.out.Field("First seen", utils.FormatTime(addr.FirstSeen))
	return nil
}

func (c *cli) manageWallets(args []string) error {
	if len(args) == 0 || args[0] == "list" {
		c.out.SectionHeader("Wallets")
		defer c.out.SectionFooter()
		tracked := c.wallets.Wallets()
		if len(tracked) == 0 {
			c.out.Result(ui.Result{Severity: ui.SeverityInfo, Title: "No wallets tracked", Message: "Add one with: wallets add <address> [label]"})
			return nil
		}
		for _, w := range tracked {
			c.out.Field(w.Address, w.Label)
		}
		return nil
	}

	switch args[0] {
	case "add":
		address := ""
		if len(args) > 1 {
			address = args[1]
		} else {
			address = c.prompt.Input("Address to track", "")
		}
		label := ""
		if len(args) > 2 {
			label = strings.Join(args[2:], " ")
		}
		if err := c.wallets.Add(address, label); err != nil {
			return err
		}
		c.out.Result(ui.Result{Severity: ui.SeverityInfo, Title: "Added " + address})
		return nil

	case "remove", "rm":
		if len(args) != 2 {
			return usagef("usage: wallets remove <address>")
		}
		if !c.flags.yes && !c.prompt.Confirm("Stop tracking "+args[1]+"?", false) {
			return nil
		}
		if err := c.wallets.Remove(args[1]); err != nil {
			return err
		}
		c.out.Result(ui.Result{Severity: ui.SeverityInfo, Title: "Removed " + args[1]})
		return nil

	case "import":
		input := strings.Join(args[1:], ",")
		if input == "" {
			input = c.prompt.Input("Addresses to import (address[:label], comma separated)", "")
		}
		var list []models.Wallet
		for _, item := range utils.ParseCommaSeparatedList(input) {
			address, label, _ := strings.Cut(item, ":")
			list = append(list, models.Wallet{Address: address, Label: label})
		}
		if len(list) == 0 {
			return usagef("nothing to import")
		}
		added, rejected, err := c.wallets.Import(list)
		if err != nil {
			return err
		}
		c.out.Result(ui.Result{Severity: ui.SeverityInfo, Title: fmt.Sprintf("%d wallet(s) added", added)})
		if len(rejected) > 0 {
			c.out.Result(ui.Result{Severity: ui.SeverityWarning, Title: "Rejected", Message: strings.Join(rejected, ", ")})
		}
		return nil
	}

	return errors.WithStack(usagef("unknown wallets command %q", args[0]))
}
