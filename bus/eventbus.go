package bus

import (
	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// TopicWalletsChanged carries a WalletsEvent
	TopicWalletsChanged = "wallets:changed"
	// TopicListingLock carries a LockEvent
	TopicListingLock = "listing:lock"
)

// Listing names used in lock events
const (
	ListingNames        = "names"
	ListingTransactions = "transactions"
)

// WalletsEvent reports the wallet address set after a change
type WalletsEvent struct {
	Addresses []string
}

// LockEvent engages or releases the lock of a listing
type LockEvent struct {
	Listing string
	Locked  bool
}

// Bus is the application event bus
type Bus struct {
	impl EventBus.Bus
	log  logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Bus {
	return &Bus{impl: EventBus.New(), log: log}
}

func (b *Bus) Subscribe(topic string, handle interface{}) error {
	return errors.Wrapf(b.impl.Subscribe(topic, handle), "subscribing to %s", topic)
}

func (b *Bus) SubscribeAsync(topic string, handle interface{}) error {
	return errors.Wrapf(b.impl.SubscribeAsync(topic, handle, false), "subscribing to %s", topic)
}

func (b *Bus) Unsubscribe(topic string, handle interface{}) error {
	return errors.Wrapf(b.impl.Unsubscribe(topic, handle), "unsubscribing from %s", topic)
}

// PublishWallets announces a new wallet address set
func (b *Bus) PublishWallets(addresses []string) {
	if b.log != nil {
		b.log.WithField("wallets", len(addresses)).Debug("publishing wallet change")
	}
	b.impl.Publish(TopicWalletsChanged, WalletsEvent{Addresses: addresses})
}

// PublishLock engages or releases a listing lock
func (b *Bus) PublishLock(listing string, locked bool) {
	if b.log != nil {
		b.log.WithFields(logrus.Fields{"listing": listing, "locked": locked}).Debug("publishing listing lock")
	}
	b.impl.Publish(TopicListingLock, LockEvent{Listing: listing, Locked: locked})
}

func (b *Bus) WaitAsync() {
	b.impl.WaitAsync()
}
