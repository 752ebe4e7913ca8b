package aggregator

import (
	"iter"
	"math/big"

	"github.com/pkg/errors"

	"github.com/dollet000/dollet-stats/internal/common"
)

type accumulator struct {
	amountTransactions int
	amountUsers        int
	sumTxCost          *big.Int
	perUser            []common.UserDetail
	pagesFetched       int
	skippedOffsets     []int
}

func (a *accumulator) addUser(user common.UserRecord) {
	if len(user.Transactions) == 0 {
		return
	}
	a.amountUsers++
	a.amountTransactions += len(user.Transactions)
	a.perUser = append(a.perUser, common.UserDetail{UserRecord: user, TransactionCount: len(user.Transactions)})
	for _, tx := range user.Transactions {
		if tx.Cost != nil {
			a.sumTxCost.Add(a.sumTxCost, tx.Cost)
		}
	}
}

func (a *accumulator) report(header common.ReportHeader) *common.AggregateReport {
	average := new(big.Int)
	if a.amountTransactions > 0 {
		// costs are non-negative, so Euclidean division is floor division
		average.Div(a.sumTxCost, big.NewInt(int64(a.amountTransactions)))
	}
	perUser := a.perUser
	if perUser == nil {
		perUser = []common.UserDetail{}
	}
	return &common.AggregateReport{
		ReportHeader:       header,
		AmountTransactions: a.amountTransactions,
		AmountUsers:        a.amountUsers,
		SumTxCost:          a.sumTxCost,
		AverageTxCost:      average,
		PerUserDetail:      perUser,
		PagesFetched:       a.pagesFetched,
		SkippedOffsets:     a.skippedOffsets,
	}
}

// Aggregate consumes pages to completion and folds them into a report.
//
// Users without transactions are dropped. A *common.PageError is recorded as a
// skipped offset; any other error aborts and is returned.
func Aggregate(header common.ReportHeader, pages iter.Seq2[common.Page, error]) (*common.AggregateReport, error) {
	acc := &accumulator{sumTxCost: new(big.Int)}
	for page, err := range pages {
		if err != nil {
			var pageErr *common.PageError
			if errors.As(err, &pageErr) {
				acc.skippedOffsets = append(acc.skippedOffsets, pageErr.Offset)
				continue
			}
			return nil, err
		}
		acc.pagesFetched++
		for _, user := range page.Users {
			acc.addUser(user)
		}
	}
	return acc.report(header), nil
}
