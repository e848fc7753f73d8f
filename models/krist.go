package models

import "time"

// Name represents a registered Krist name
type Name struct {
	Name          string     `json:"name"`
	Owner         string     `json:"owner"`
	OriginalOwner string     `json:"original_owner,omitempty"`
	Registered    time.Time  `json:"registered"`
	Updated       *time.Time `json:"updated,omitempty"`
	Transferred   *time.Time `json:"transferred,omitempty"`
	Data          string     `json:"a,omitempty"`
	Unpaid        int        `json:"unpaid"`
}

// IsNew reports whether the name was registered after the given instant.
// With mining disabled this replaces the unpaid-blocks highlight.
func (n Name) IsNew(since time.Time) bool {
	return n.Registered.After(since)
}

// TransactionType is the kind of a Krist transaction
type TransactionType string

const (
	TransactionTransfer     TransactionType = "transfer"
	TransactionMined        TransactionType = "mined"
	TransactionNamePurchase TransactionType = "name_purchase"
	TransactionNameARecord  TransactionType = "name_a_record"
	TransactionNameTransfer TransactionType = "name_transfer"
	TransactionUnknown      TransactionType = "unknown"
)

// Transaction represents a Krist transaction
type Transaction struct {
	ID           int             `json:"id"`
	From         string          `json:"from,omitempty"`
	To           string          `json:"to"`
	Value        int64           `json:"value"`
	Time         time.Time       `json:"time"`
	Name         string          `json:"name,omitempty"`
	Metadata     string          `json:"metadata,omitempty"`
	SentMetaname string          `json:"sent_metaname,omitempty"`
	SentName     string          `json:"sent_name,omitempty"`
	Type         TransactionType `json:"type"`
}

// Address represents a Krist address and its balance
type Address struct {
	Address   string    `json:"address"`
	Balance   int64     `json:"balance"`
	TotalIn   int64     `json:"totalin"`
	TotalOut  int64     `json:"totalout"`
	FirstSeen time.Time `json:"firstseen"`
	Names     int       `json:"names,omitempty"`
}

// MOTD is the sync node's message of the day, including network flags
type MOTD struct {
	MOTD          string    `json:"motd"`
	Set           time.Time `json:"set"`
	PublicURL     string    `json:"public_url"`
	MiningEnabled bool      `json:"mining_enabled"`
	DebugMode     bool      `json:"debug_mode"`
}

// Wallet is an address tracked by the user. Private keys are never stored.
type Wallet struct {
	Address string `json:"address"`
	Label   string `json:"label,omitempty"`
}
