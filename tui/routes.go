package tui

import "strings"

// Route scopes
const (
	scopeNetwork     = ""
	scopeWallets     = "wallets"
	scopeRecent      = "recent"
	scopeAddress     = "address"
	scopeNameHistory = "name"
	scopeNameSent    = "sent"
)

// route identifies a screen in navigation history, e.g.
// "transactions/address/kaaaaaaaaa"
type route struct {
	state   AppState
	scope   string
	subject string
}

var routeNames = map[AppState]string{
	StateDashboard:         "dashboard",
	StateNames:             "names",
	StateTransactions:      "transactions",
	StateAddresses:         "addresses",
	StateNameCheck:         "check",
	StateTransactionLookup: "tx",
	StateTransactionDetail: "tx",
	StateWalletInput:       "wallets",
	StateAddressInput:      "address",
	StateHelp:              "help",
}

func (r route) String() string {
	name, ok := routeNames[r.state]
	if !ok {
		name = "dashboard"
	}
	switch {
	case r.state == StateTransactionDetail:
		return name + "/" + r.subject
	case r.scope == "":
		return name
	case r.subject == "":
		return name + "/" + r.scope
	}
	return name + "/" + r.scope + "/" + r.subject
}

// parseRoute is the inverse of route.String. Unknown routes land on the
// dashboard.
func parseRoute(s string) route {
	parts := strings.SplitN(s, "/", 3)
	r := route{state: StateDashboard}

	switch parts[0] {
	case "names":
		r.state = StateNames
	case "transactions":
		r.state = StateTransactions
	case "addresses":
		r.state = StateAddresses
	case "check":
		r.state = StateNameCheck
	case "tx":
		r.state = StateTransactionLookup
		if len(parts) == 2 && parts[1] != "" {
			r.state = StateTransactionDetail
			r.subject = parts[1]
		}
		return r
	case "wallets":
		r.state = StateWalletInput
	case "address":
		r.state = StateAddressInput
	case "help":
		r.state = StateHelp
	default:
		return r
	}

	if len(parts) > 1 {
		r.scope = parts[1]
	}
	if len(parts) > 2 {
		r.subject = parts[2]
	}
	return r
}
