package ui

import (
	"strconv"
	"time"

	"krist-explorer/listing"
	"krist-explorer/models"
	"krist-explorer/utils"
)

var NameColumns = listing.ColumnSet{
	{Key: "name", Title: "Name", Width: 24},
	{Key: "owner", Title: "Owner", Width: 12},
	{Key: "original_owner", Title: "Original owner", Width: 14},
	{Key: "a", Title: "Data", Width: 20},
	{Key: "unpaid", Title: "Unpaid", Width: 8, Requires: listing.CapMining},
	{Key: "registered", Title: "Registered", Width: 16},
	{Key: "updated", Title: "Updated", Width: 16},
}

var TransactionColumns = listing.ColumnSet{
	{Key: "id", Title: "ID", Width: 8},
	{Key: "type", Title: "Type", Width: 13},
	{Key: "from", Title: "From", Width: 12},
	{Key: "to", Title: "To", Width: 16},
	{Key: "value", Title: "Value", Width: 14},
	{Key: "sent_name", Title: "Name", Width: 18},
	{Key: "time", Title: "Time", Width: 16},
}

var AddressColumns = listing.ColumnSet{
	{Key: "rank", Title: "#", Width: 5},
	{Key: "address", Title: "Address", Width: 12},
	{Key: "balance", Title: "Balance", Width: 16},
	{Key: "totalin", Title: "Total in", Width: 16},
	{Key: "totalout", Title: "Total out", Width: 16},
	{Key: "firstseen", Title: "First seen", Width: 16},
}

// NameCell renders one column of a name row
func NameCell(n models.Name, key string) string {
	switch key {
	case "name":
		return n.Name + utils.NameSuffix
	case "owner":
		return n.Owner
	case "original_owner":
		return n.OriginalOwner
	case "a":
		return n.Data
	case "unpaid":
		return strconv.Itoa(n.Unpaid)
	case "registered":
		return utils.FormatTime(n.Registered)
	case "updated":
		if n.Updated == nil {
			return "-"
		}
		return utils.FormatTime(*n.Updated)
	}
	return ""
}

// TransactionCell renders one column of a transaction row
func TransactionCell(tx models.Transaction, key string) string {
	switch key {
	case "id":
		return strconv.Itoa(tx.ID)
	case "type":
		return TransactionTypeLabel(tx)
	case "from":
		if tx.From == "" {
			return "-"
		}
		return tx.From
	case "to":
		if tx.To == "name" {
			return "(name)"
		}
		return tx.To
	case "value":
		return utils.FormatKrist(tx.Value)
	case "sent_name":
		switch {
		case tx.Name != "":
			return tx.Name + utils.NameSuffix
		case tx.SentName != "":
			if tx.SentMetaname != "" {
				return tx.SentMetaname + "@" + tx.SentName + utils.NameSuffix
			}
			return tx.SentName + utils.NameSuffix
		}
		return ""
	case "time":
		return utils.FormatTime(tx.Time)
	}
	return ""
}

// AddressCell renders one column of a rich-list row
func AddressCell(a models.Address, index int, key string) string {
	switch key {
	case "rank":
		return strconv.Itoa(index + 1)
	case "address":
		return a.Address
	case "balance":
		return utils.FormatKrist(a.Balance)
	case "totalin":
		return utils.FormatKrist(a.TotalIn)
	case "totalout":
		return utils.FormatKrist(a.TotalOut)
	case "firstseen":
		return utils.FormatTime(a.FirstSeen)
	}
	return ""
}

// TransactionTypeLabel describes a transaction for display
func TransactionTypeLabel(tx models.Transaction) string {
	switch tx.Type {
	case models.TransactionMined:
		return "Mined"
	case models.TransactionNamePurchase:
		return "Name purchase"
	case models.TransactionNameARecord:
		return "Name update"
	case models.TransactionNameTransfer:
		return "Name transfer"
	case models.TransactionTransfer:
		return "Transfer"
	}
	return "Unknown"
}

// CellFunc renders column key of an item; index is the item's position in
// the whole listing, not the page
type CellFunc[T any] func(item T, index int, key string) string

// Rows renders items as table rows for the given columns
func Rows[T any](cols listing.ColumnSet, items []T, offset int, cell CellFunc[T]) [][]string {
	rows := make([][]string, len(items))
	for i, item := range items {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = cell(item, offset+i, c.Key)
		}
		rows[i] = row
	}
	return rows
}

// NameLine is the condensed, single-entry form of a name
func NameLine(n models.Name, now time.Time) (title, detail string) {
	return n.Name + utils.NameSuffix, "owned by " + n.Owner + ", registered " + utils.FormatAge(n.Registered, now)
}

// TransactionLine is the condensed form of a transaction
func TransactionLine(tx models.Transaction, now time.Time) (title, detail string) {
	title = "#" + strconv.Itoa(tx.ID) + " " + TransactionTypeLabel(tx) + " " + utils.FormatKrist(tx.Value)
	from := tx.From
	if from == "" {
		from = "-"
	}
	detail = from + " → " + tx.To + ", " + utils.FormatAge(tx.Time, now)
	return title, detail
}

// AddressLine is the condensed form of a rich-list entry
func AddressLine(a models.Address, index int) (title, detail string) {
	return strconv.Itoa(index+1) + ". " + a.Address, utils.FormatKrist(a.Balance)
}

// NameCells and TransactionCells adapt the cell renderers to CellFunc
func NameCells(n models.Name, _ int, key string) string { return NameCell(n, key) }

func TransactionCells(tx models.Transaction, _ int, key string) string {
	return TransactionCell(tx, key)
}
