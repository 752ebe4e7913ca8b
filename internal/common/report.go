package common

import (
	"encoding/json"
	"math/big"
)

type ReportHeader struct {
	Name    string
	Network Network
	Range   BlockRange
}

type UserDetail struct {
	UserRecord
	TransactionCount int
}

// AggregateReport is the result of one strategy run. Amounts are exact; the
// average is floor(SumTxCost / AmountTransactions), or 0 with no transactions.
type AggregateReport struct {
	ReportHeader
	AmountTransactions int
	AmountUsers        int
	SumTxCost          *big.Int
	AverageTxCost      *big.Int
	PerUserDetail      []UserDetail
	PagesFetched       int
	// offsets of pages that failed and were skipped; non-empty means an under-count
	SkippedOffsets []int
}

func (r *AggregateReport) Complete() bool {
	return len(r.SkippedOffsets) == 0
}

type transactionModel struct {
	ID     string `json:"id"`
	TxCost string `json:"txCost"`
}

type userModel struct {
	ID               string             `json:"id"`
	TransactionCount int                `json:"transactionCount"`
	Transactions     []transactionModel `json:"transactions"`
}

type ReportModel struct {
	Name               string      `json:"name"`
	Network            string      `json:"network"`
	FromBlock          uint64      `json:"fromBlock"`
	ToBlock            uint64      `json:"toBlock"`
	AmountTransactions int         `json:"amountTransactions"`
	AmountUsers        int         `json:"amountUsers"`
	SumTxCost          string      `json:"sumTxCost"`
	AverageTxCost      string      `json:"averageTxCost"`
	PagesFetched       int         `json:"pagesFetched"`
	SkippedOffsets     []int       `json:"skippedOffsets"`
	TxPerUser          []userModel `json:"txPerUser"`
}

// Serialize converts the report to its wire model. Big integers become decimal strings.
func (r *AggregateReport) Serialize() ReportModel {
	users := make([]userModel, 0, len(r.PerUserDetail))
	for _, u := range r.PerUserDetail {
		txs := make([]transactionModel, 0, len(u.Transactions))
		for _, tx := range u.Transactions {
			txs = append(txs, transactionModel{ID: tx.ID, TxCost: bigString(tx.Cost)})
		}
		users = append(users, userModel{ID: u.ID, TransactionCount: u.TransactionCount, Transactions: txs})
	}
	skipped := r.SkippedOffsets
	if skipped == nil {
		skipped = []int{}
	}
	return ReportModel{
		Name:               r.Name,
		Network:            r.Network.String(),
		FromBlock:          r.Range.FromBlock,
		ToBlock:            r.Range.ToBlock,
		AmountTransactions: r.AmountTransactions,
		AmountUsers:        r.AmountUsers,
		SumTxCost:          bigString(r.SumTxCost),
		AverageTxCost:      bigString(r.AverageTxCost),
		PagesFetched:       r.PagesFetched,
		SkippedOffsets:     skipped,
		TxPerUser:          users,
	}
}

func (r *AggregateReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Serialize())
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
