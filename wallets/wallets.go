package wallets

import (
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"krist-explorer/bus"
	"krist-explorer/models"
	"krist-explorer/utils"
)

// Persister saves the wallet list between runs
type Persister interface {
	LoadWallets() ([]models.Wallet, error)
	SaveWallets([]models.Wallet) error
}

// Store is the dynamic set of addresses the wallet-scoped listings filter
// by. Only addresses and labels are kept; keys never touch the store.
type Store struct {
	mu      sync.RWMutex
	wallets map[string]models.Wallet
	persist Persister
	bus     *bus.Bus
	log     logrus.FieldLogger
}

// NewStore loads saved wallets. Seeds are added (without persisting) on
// top, e.g. addresses given on the command line.
func NewStore(persist Persister, b *bus.Bus, log logrus.FieldLogger, seeds []string) (*Store, error) {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	s := &Store{
		wallets: make(map[string]models.Wallet),
		persist: persist,
		bus:     b,
		log:     log,
	}

	if persist != nil {
		saved, err := persist.LoadWallets()
		if err != nil {
			return nil, errors.Wrap(err, "loading wallets")
		}
		for _, w := range saved {
			s.wallets[w.Address] = w
		}
	}

	for _, addr := range utils.RemoveDuplicates(seeds) {
		if err := utils.ValidateAddress(addr); err != nil {
			log.WithError(err).Warn("ignoring configured wallet")
			continue
		}
		if _, ok := s.wallets[addr]; !ok {
			s.wallets[addr] = models.Wallet{Address: addr}
		}
	}

	return s, nil
}

// Addresses returns the sorted address set
func (s *Store) Addresses() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.wallets))
	for addr := range s.wallets {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Wallets returns the wallets sorted by address
func (s *Store) Wallets() []models.Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.wallets)
}

// Label returns the label of a tracked address
func (s *Store) Label(address string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[address]
	return w.Label, ok
}

// Add tracks an address, or relabels it if already tracked
func (s *Store) Add(address, label string) error {
	if err := utils.ValidateAddress(address); err != nil {
		return err
	}

	s.mu.Lock()
	s.wallets[address] = models.Wallet{Address: address, Label: label}
	err := s.saveLocked()
	s.mu.Unlock()

	s.log.WithField("address", address).Info("wallet added")
	s.publish()
	return err
}

// Remove stops tracking an address
func (s *Store) Remove(address string) error {
	s.mu.Lock()
	if _, ok := s.wallets[address]; !ok {
		s.mu.Unlock()
		return errors.Errorf("wallet %s is not tracked", address)
	}
	delete(s.wallets, address)
	err := s.saveLocked()
	s.mu.Unlock()

	s.log.WithField("address", address).Info("wallet removed")
	s.publish()
	return err
}

// Import adds many wallets at once. The wallet-scoped listings are locked
// for the duration so they fetch once at the end instead of per wallet.
// Invalid addresses are skipped and returned.
func (s *Store) Import(wallets []models.Wallet) (added int, rejected []string, err error) {
	s.lock(true)
	defer s.lock(false)

	s.mu.Lock()
	for _, w := range wallets {
		if verr := utils.ValidateAddress(w.Address); verr != nil {
			rejected = append(rejected, w.Address)
			continue
		}
		if _, exists := s.wallets[w.Address]; !exists {
			added++
		}
		s.wallets[w.Address] = w
	}
	if added > 0 {
		err = s.saveLocked()
	}
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"added": added, "rejected": len(rejected)}).Info("wallets imported")
	if added > 0 {
		s.publish()
	}
	return added, rejected, err
}

func (s *Store) lock(locked bool) {
	if s.bus == nil {
		return
	}
	s.bus.PublishLock(bus.ListingNames, locked)
	s.bus.PublishLock(bus.ListingTransactions, locked)
}

func (s *Store) publish() {
	if s.bus != nil {
		s.bus.PublishWallets(s.Addresses())
	}
}

func (s *Store) sortedLocked() []models.Wallet {
	out := make([]models.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// saveLocked must be called with mu held
func (s *Store) saveLocked() error {
	if s.persist == nil {
		return nil
	}
	return errors.Wrap(s.persist.SaveWallets(s.sortedLocked()), "saving wallets")
}
