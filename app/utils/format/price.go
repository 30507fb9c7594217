package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var priceFormatter = accounting.Accounting{Symbol: "$", Precision: 2, Thousand: ",", Decimal: ".", Format: "%s%v"}

// Price renders a catalog amount for CLI listings, e.g. 1599 -> "$1,599.00".
func Price(amount decimal.Decimal) string {
	return priceFormatter.FormatMoney(amount)
}
