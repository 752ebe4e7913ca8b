package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	config "github.com/dollet000/dollet-stats/configs"
	"github.com/dollet000/dollet-stats/internal/common"
)

func testReport() *common.AggregateReport {
	return &common.AggregateReport{
		ReportHeader: common.ReportHeader{
			Name:    "Strategy2",
			Network: common.NetworkEthereum,
			Range:   common.BlockRange{FromBlock: 100, ToBlock: 200},
		},
		AmountTransactions: 3,
		AmountUsers:        2,
		SumTxCost:          big.NewInt(10),
		AverageTxCost:      big.NewInt(3),
		PerUserDetail: []common.UserDetail{{
			UserRecord:       common.UserRecord{ID: "0xa", Transactions: []common.TransactionRecord{{ID: "0x1", Cost: big.NewInt(10)}}},
			TransactionCount: 1,
		}},
		PagesFetched: 1,
	}
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Name() string {
	return m.Called().String(0)
}

func (m *mockSink) Publish(ctx context.Context, report *common.AggregateReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *mockSink) Close() error {
	return m.Called().Error(0)
}

func TestPublisher_FanOutContinuesAfterFailure(t *testing.T) {
	report := testReport()
	failing := &mockSink{}
	failing.On("Name").Return("failing")
	failing.On("Publish", mock.Anything, report).Return(errors.New("down"))
	failing.On("Close").Return(nil)

	healthy := &mockSink{}
	healthy.On("Name").Return("healthy")
	healthy.On("Publish", mock.Anything, report).Return(nil)
	healthy.On("Close").Return(nil)

	p := New(failing, healthy)
	err := p.Publish(context.Background(), report)
	assert.EqualError(t, err, "down")
	require.NoError(t, p.Close())

	failing.AssertExpectations(t)
	healthy.AssertExpectations(t)
}

func TestConsoleSink_Text(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "text")

	require.NoError(t, sink.Publish(context.Background(), testReport()))
	out := buf.String()
	assert.Contains(t, out, "name: Strategy2\n")
	assert.Contains(t, out, "blocks: 100-200\n")
	assert.Contains(t, out, "AmountTransactions: 3\n")
	assert.Contains(t, out, "AverageTxCost: 3\n")
	assert.Contains(t, out, "AmountUsers: 2\n")
	assert.Contains(t, out, "SumTxCost: 10\n")
	assert.Contains(t, out, `"transactionCount": 1`)
	assert.NotContains(t, out, "SkippedOffsets")
}

func TestConsoleSink_TextShowsSkippedOffsets(t *testing.T) {
	var buf bytes.Buffer
	report := testReport()
	report.SkippedOffsets = []int{100, 300}

	require.NoError(t, NewConsoleSink(&buf, "text").Publish(context.Background(), report))
	assert.Contains(t, buf.String(), "SkippedOffsets: [100 300]\n")
}

func TestConsoleSink_JSON(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "json")

	require.NoError(t, sink.Publish(context.Background(), testReport()))
	var decoded common.ReportModel
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Strategy2", decoded.Name)
	assert.Equal(t, "10", decoded.SumTxCost)
	assert.Equal(t, "3", decoded.AverageTxCost)
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeProducer) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeProducer) Close() {
	f.closed = true
}

func TestKafkaSink(t *testing.T) {
	producer := &fakeProducer{}
	sink := newKafkaSink(producer, "reports")

	report := testReport()
	report.SkippedOffsets = []int{0}
	require.NoError(t, sink.Publish(context.Background(), report))
	require.Len(t, producer.records, 1)
	assert.Equal(t, "reports", producer.records[0].Topic)
	assert.Equal(t, []byte("Strategy2"), producer.records[0].Key)

	var msg PublishableReport
	require.NoError(t, json.Unmarshal(producer.records[0].Value, &msg))
	assert.Equal(t, "partial", msg.Status)
	assert.Equal(t, "10", msg.Data.SumTxCost)

	producer.err = errors.New("broker gone")
	assert.Error(t, sink.Publish(context.Background(), testReport()))

	require.NoError(t, sink.Close())
	assert.True(t, producer.closed)
}

type fakeHash struct {
	key    string
	values []interface{}
	err    error
}

func (f *fakeHash) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.key = key
	f.values = values
	return redis.NewIntResult(1, f.err)
}

func (f *fakeHash) Close() error {
	return nil
}

func TestRedisSink(t *testing.T) {
	hash := &fakeHash{}
	sink := newRedisSink(hash, "")

	require.NoError(t, sink.Publish(context.Background(), testReport()))
	assert.Equal(t, "strategy_reports", hash.key)
	require.Len(t, hash.values, 2)
	assert.Equal(t, "Strategy2", hash.values[0])

	var decoded common.ReportModel
	require.NoError(t, json.Unmarshal(hash.values[1].([]byte), &decoded))
	assert.Equal(t, "10", decoded.SumTxCost)

	hash.err = errors.New("READONLY")
	assert.Error(t, sink.Publish(context.Background(), testReport()))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink(t *testing.T) {
	putter := &fakePutter{}
	sink := newS3Sink(putter, "bucket", "reports", func() time.Time { return time.Unix(1700000000, 0) })

	require.NoError(t, sink.Publish(context.Background(), testReport()))
	assert.Equal(t, "bucket", *putter.input.Bucket)
	assert.Equal(t, "reports/Strategy2/1700000000.json", *putter.input.Key)
	assert.Equal(t, "application/json", *putter.input.ContentType)
	assert.Contains(t, string(putter.body), `"sumTxCost":"10"`)
}

func TestFromConfig_ConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	p, err := FromConfig(context.Background(), config.Config{Output: config.OutputConfig{Format: "json"}}, &buf)
	require.NoError(t, err)
	require.Len(t, p.sinks, 1)
	assert.Equal(t, "console", p.sinks[0].Name())
}
