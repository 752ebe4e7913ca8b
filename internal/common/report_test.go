package common

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateReportJSON(t *testing.T) {
	sum, _ := new(big.Int).SetString("18446744073709551617", 10)
	report := &AggregateReport{
		ReportHeader: ReportHeader{
			Name:    "Strategy1",
			Network: NetworkArbitrum,
			Range:   BlockRange{FromBlock: 10, ToBlock: 20},
		},
		AmountTransactions: 1,
		AmountUsers:        1,
		SumTxCost:          sum,
		AverageTxCost:      sum,
		PerUserDetail: []UserDetail{{
			UserRecord: UserRecord{
				ID:           "0xabc",
				Transactions: []TransactionRecord{{ID: "0xtx", Cost: sum}},
			},
			TransactionCount: 1,
		}},
		PagesFetched: 1,
	}

	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Strategy1", decoded["name"])
	assert.Equal(t, "arbitrum", decoded["network"])
	assert.Equal(t, "18446744073709551617", decoded["sumTxCost"])
	assert.Equal(t, "18446744073709551617", decoded["averageTxCost"])
	assert.Equal(t, []interface{}{}, decoded["skippedOffsets"])

	users := decoded["txPerUser"].([]interface{})
	require.Len(t, users, 1)
	user := users[0].(map[string]interface{})
	assert.Equal(t, "0xabc", user["id"])
	assert.Equal(t, float64(1), user["transactionCount"])
	tx := user["transactions"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "18446744073709551617", tx["txCost"])
	assert.True(t, report.Complete())
}

func TestAggregateReportJSON_NilAmounts(t *testing.T) {
	report := &AggregateReport{ReportHeader: ReportHeader{Name: "empty", Network: NetworkEthereum}}
	model := report.Serialize()
	assert.Equal(t, "0", model.SumTxCost)
	assert.Equal(t, "0", model.AverageTxCost)
	assert.Empty(t, model.TxPerUser)
}
