package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"krist-explorer/bus"
)

// Run starts the explorer and blocks until it exits
func Run(ctx context.Context, deps Deps) error {
	m := NewModel(ctx, deps)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	// Wallet changes happen inside commands, off the update loop, so
	// forwarding them synchronously cannot block Update.
	m.recent.attach(p.Send)
	defer m.recent.stop()

	onWallets := func(e bus.WalletsEvent) {
		p.Send(walletsChangedMsg{addresses: e.Addresses})
	}
	onLock := func(e bus.LockEvent) {
		p.Send(lockMsg{listing: e.Listing, locked: e.Locked})
	}
	if deps.Bus != nil {
		if err := deps.Bus.Subscribe(bus.TopicWalletsChanged, onWallets); err != nil {
			return err
		}
		defer deps.Bus.Unsubscribe(bus.TopicWalletsChanged, onWallets)
		if err := deps.Bus.Subscribe(bus.TopicListingLock, onLock); err != nil {
			return err
		}
		defer deps.Bus.Unsubscribe(bus.TopicListingLock, onLock)
	}

	finalModel, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "running explorer")
	}

	if final, ok := finalModel.(Model); ok {
		final.releasePanes()
		if final.err != nil {
			final.log.WithError(final.err).Warn("explorer closed on an error screen")
		}
	}

	return nil
}
