package rpc

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	gethRpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dollet000/dollet-stats/internal/common"
)

type ethService struct {
	head    uint64
	chainID int64
	fail    bool
}

func (s *ethService) BlockNumber() (hexutil.Uint64, error) {
	if s.fail {
		return 0, errors.New("node unavailable")
	}
	return hexutil.Uint64(s.head), nil
}

func (s *ethService) ChainId() (*hexutil.Big, error) {
	return (*hexutil.Big)(big.NewInt(s.chainID)), nil
}

func newInProcClient(t *testing.T, svc *ethService, opts Options) *Client {
	t.Helper()
	server := gethRpc.NewServer()
	require.NoError(t, server.RegisterName("eth", svc))
	t.Cleanup(server.Stop)

	client := NewClient(gethRpc.DialInProc(server), opts)
	t.Cleanup(client.Close)
	return client
}

func TestGetLatestBlockNumber(t *testing.T) {
	client := newInProcClient(t, &ethService{head: 19_000_123, chainID: 1}, Options{
		Network:        common.NetworkEthereum,
		URL:            "inproc",
		RequestTimeout: time.Second,
	})

	head, err := client.GetLatestBlockNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(19_000_123), head)
}

func TestGetLatestBlockNumber_NetworkError(t *testing.T) {
	client := newInProcClient(t, &ethService{fail: true, chainID: 1}, Options{Network: common.NetworkEthereum})

	_, err := client.GetLatestBlockNumber(context.Background())
	require.Error(t, err)
	var netErr *common.NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestSetChainID(t *testing.T) {
	client := newInProcClient(t, &ethService{chainID: 42161}, Options{Network: common.NetworkArbitrum})

	require.NoError(t, client.setChainID(context.Background()))
	assert.Equal(t, big.NewInt(42161), client.GetChainID())
	assert.True(t, client.checkChainID())

	mismatched := newInProcClient(t, &ethService{chainID: 1}, Options{Network: common.NetworkArbitrum})
	require.NoError(t, mismatched.setChainID(context.Background()))
	assert.False(t, mismatched.checkChainID())
}

func TestIsWebsocket(t *testing.T) {
	assert.True(t, NewClient(nil, Options{URL: "wss://node.example"}).IsWebsocket())
	assert.False(t, NewClient(nil, Options{URL: "https://node.example"}).IsWebsocket())
}
