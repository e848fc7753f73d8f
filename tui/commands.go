package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"krist-explorer/api"
	"krist-explorer/cache"
	"krist-explorer/models"
	"krist-explorer/wallets"
)

// restoreMsg asks the model to reopen the current history entry
type restoreMsg struct{}

// dashboardMsg carries the wallet overview and network MOTD
type dashboardMsg struct {
	seq       uint64
	wallets   *api.AddressesResult
	walletErr error
	motd      *models.MOTD
	motdErr   error
}

// walletsChangedMsg is forwarded from the event bus
type walletsChangedMsg struct {
	addresses []string
}

// lockMsg is forwarded from the event bus
type lockMsg struct {
	listing string
	locked  bool
}

type nameCheckMsg struct {
	name      string
	available bool
	err       error
}

type transactionMsg struct {
	id  int
	tx  *models.Transaction
	err error
}

// walletOpMsg reports the outcome of a wallet change
type walletOpMsg struct {
	summary string
	err     error
}

func restoreCmd() tea.Cmd {
	return func() tea.Msg { return restoreMsg{} }
}

// dashboardCmd fetches wallet balances and the MOTD in parallel. The group
// has no shared context: a failed balance lookup must not cancel the MOTD,
// so each half records its own error and returns nil.
func dashboardCmd(ctx context.Context, client *api.Client, caches *cache.Caches, seq uint64, addresses []string) tea.Cmd {
	return func() tea.Msg {
		msg := dashboardMsg{seq: seq}
		var g errgroup.Group

		g.Go(func() error {
			msg.wallets, msg.walletErr = client.LookupAddresses(ctx, addresses, true)
			return nil
		})
		g.Go(func() error {
			var motd models.MOTD
			if caches != nil {
				motd, msg.motdErr = caches.MOTDOf(ctx, client.GetMOTD)
			} else {
				var m *models.MOTD
				m, msg.motdErr = client.GetMOTD(ctx)
				if m != nil {
					motd = *m
				}
			}
			if msg.motdErr == nil {
				msg.motd = &motd
			}
			return nil
		})
		_ = g.Wait()

		return msg
	}
}

func checkNameCmd(ctx context.Context, client *api.Client, caches *cache.Caches, name string) tea.Cmd {
	return func() tea.Msg {
		var available bool
		var err error
		if caches != nil {
			available, err = caches.CheckName(ctx, name, client.CheckName)
		} else {
			available, err = client.CheckName(ctx, name)
		}
		return nameCheckMsg{name: name, available: available, err: err}
	}
}

func transactionCmd(ctx context.Context, client *api.Client, id int) tea.Cmd {
	return func() tea.Msg {
		tx, err := client.GetTransaction(ctx, id)
		return transactionMsg{id: id, tx: tx, err: err}
	}
}

// importWalletsCmd runs a bulk import. Store changes publish on the event
// bus, which must never happen from inside Update.
func importWalletsCmd(store *wallets.Store, list []models.Wallet) tea.Cmd {
	return func() tea.Msg {
		added, rejected, err := store.Import(list)
		summary := fmt.Sprintf("%d wallet(s) added", added)
		if len(rejected) > 0 {
			summary += fmt.Sprintf(", %d rejected", len(rejected))
		}
		return walletOpMsg{summary: summary, err: err}
	}
}

func removeWalletCmd(store *wallets.Store, address string) tea.Cmd {
	return func() tea.Msg {
		err := store.Remove(address)
		return walletOpMsg{summary: "removed " + address, err: err}
	}
}
