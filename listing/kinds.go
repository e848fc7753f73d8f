package listing

// Names lists registered names, alphabetically by default
var Names = Kind{
	Name: "names",
	Sortable: []SortOption{
		{SortKey: "name", DisplayKey: "Name"},
		{SortKey: "owner", DisplayKey: "Owner"},
		{SortKey: "original_owner", DisplayKey: "Original owner"},
		{SortKey: "a", DisplayKey: "Data"},
		{SortKey: "unpaid", DisplayKey: "Unpaid blocks", Requires: CapMining},
		{SortKey: "registered", DisplayKey: "Registered"},
		{SortKey: "transferred", DisplayKey: "Transferred"},
		{SortKey: "updated", DisplayKey: "Updated"},
	},
	DefaultOrderBy: "name",
	DefaultOrder:   OrderAsc,
}

// RecentNames is the newest-first variant of Names
var RecentNames = Names.WithDefault("registered", OrderDesc)

// Transactions lists transactions, newest first
var Transactions = Kind{
	Name: "transactions",
	Sortable: []SortOption{
		{SortKey: "id", DisplayKey: "ID"},
		{SortKey: "from", DisplayKey: "From"},
		{SortKey: "to", DisplayKey: "To"},
		{SortKey: "value", DisplayKey: "Value"},
		{SortKey: "time", DisplayKey: "Time"},
		{SortKey: "sent_name", DisplayKey: "Sent name"},
		{SortKey: "sent_metaname", DisplayKey: "Sent metaname"},
	},
	DefaultOrderBy: "id",
	DefaultOrder:   OrderDesc,
}

// Addresses is the rich list; the server only orders it by balance
var Addresses = Kind{
	Name: "addresses",
	Sortable: []SortOption{
		{SortKey: "balance", DisplayKey: "Balance"},
	},
	DefaultOrderBy: "balance",
	DefaultOrder:   OrderDesc,
}
