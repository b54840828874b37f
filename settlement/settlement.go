// Package settlement turns signed per-player nets into the smallest practical
// list of "who pays whom" transfers.
package settlement

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/wfunc/teenpatti/money"
)

// Transaction is one settle-up payment.
type Transaction struct {
	From     string          `json:"fromUid"`
	FromName string          `json:"from,omitempty"`
	To       string          `json:"toUid"`
	ToName   string          `json:"to,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

type balance struct {
	id     string
	amount decimal.Decimal
}

func sortDesc(list []balance) {
	sort.Slice(list, func(i, j int) bool {
		if c := list[i].amount.Cmp(list[j].amount); c != 0 {
			return c > 0
		}
		return list[i].id < list[j].id
	})
}

// Settle matches the largest creditor with the largest debtor until one side
// runs out. Positive nets are owed money, negative nets owe. names is
// optional and only decorates the output.
//
// For N non-zero participants at most N-1 transactions are produced, and the
// per-player totals of the output reproduce nets exactly.
func Settle(nets map[string]decimal.Decimal, names map[string]string) []Transaction {
	var creditors, debtors []balance
	for id, net := range nets {
		rounded := money.Round(net)
		switch rounded.Sign() {
		case 1:
			creditors = append(creditors, balance{id: id, amount: rounded})
		case -1:
			debtors = append(debtors, balance{id: id, amount: rounded.Abs()})
		}
	}
	sortDesc(creditors)
	sortDesc(debtors)

	transactions := make([]Transaction, 0, len(creditors)+len(debtors))
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		c, dr := &creditors[i], &debtors[j]
		amount := money.Round(decimal.Min(c.amount, dr.amount))

		transactions = append(transactions, Transaction{
			From:     dr.id,
			FromName: names[dr.id],
			To:       c.id,
			ToName:   names[c.id],
			Amount:   amount,
		})

		c.amount = money.Sub(c.amount, amount)
		dr.amount = money.Sub(dr.amount, amount)
		if c.amount.IsZero() {
			i++
		}
		if dr.amount.IsZero() {
			j++
		}
	}
	return transactions
}
