package rpc

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	gethRpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"

	"github.com/dollet000/dollet-stats/internal/common"
	"github.com/dollet000/dollet-stats/internal/metrics"
)

// IRPCClient is the chain provider used to read the current head of a network.
type IRPCClient interface {
	GetLatestBlockNumber(ctx context.Context) (uint64, error)
	GetChainID() *big.Int
	GetURL() string
	IsWebsocket() bool
	Close()
}

type Options struct {
	Network common.Network
	URL     string
	// defaults to the network's well-known chain id
	ExpectedChainID *big.Int
	RequestTimeout  time.Duration
}

type Client struct {
	RPCClient       *gethRpc.Client
	EthClient       *ethclient.Client
	network         common.Network
	isWebsocket     bool
	url             string
	chainID         *big.Int
	expectedChainID *big.Int
	requestTimeout  time.Duration
}

func Initialize(ctx context.Context, opts Options) (IRPCClient, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("RPC url for network %s is not set", opts.Network)
	}
	log.Debug().Str("network", opts.Network.String()).Msg("Initializing RPC")
	rpcClient, dialErr := gethRpc.DialContext(ctx, opts.URL)
	if dialErr != nil {
		return nil, &common.NetworkError{Op: "rpc dial", Err: dialErr}
	}

	rpc := NewClient(rpcClient, opts)
	if err := rpc.setChainID(ctx); err != nil {
		rpc.Close()
		return nil, err
	}
	rpc.checkChainID()
	return IRPCClient(rpc), nil
}

func NewClient(rpcClient *gethRpc.Client, opts Options) *Client {
	expected := opts.ExpectedChainID
	if expected == nil {
		expected = opts.Network.DefaultChainID()
	}
	return &Client{
		RPCClient:       rpcClient,
		EthClient:       ethclient.NewClient(rpcClient),
		network:         opts.Network,
		url:             opts.URL,
		isWebsocket:     strings.HasPrefix(opts.URL, "ws://") || strings.HasPrefix(opts.URL, "wss://"),
		expectedChainID: expected,
		requestTimeout:  opts.RequestTimeout,
	}
}

func (rpc *Client) GetChainID() *big.Int {
	return rpc.chainID
}

func (rpc *Client) GetURL() string {
	return rpc.url
}

func (rpc *Client) IsWebsocket() bool {
	return rpc.isWebsocket
}

func (rpc *Client) Close() {
	rpc.EthClient.Close()
}

func (rpc *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if rpc.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, rpc.requestTimeout)
}

func (rpc *Client) setChainID(ctx context.Context) error {
	ctx, cancel := rpc.withTimeout(ctx)
	defer cancel()
	chainID, err := rpc.EthClient.ChainID(ctx)
	if err != nil {
		return &common.NetworkError{Op: "eth_chainId", Err: err}
	}
	rpc.chainID = chainID
	return nil
}

// checkChainID warns when the node serves a different chain than configured.
func (rpc *Client) checkChainID() bool {
	expected := rpc.expectedChainID
	if expected == nil || rpc.chainID == nil {
		return true
	}
	if expected.Cmp(rpc.chainID) != 0 {
		log.Warn().
			Str("network", rpc.network.String()).
			Str("expected", expected.String()).
			Str("actual", rpc.chainID.String()).
			Msg("RPC chain id does not match network")
		return false
	}
	return true
}

func (rpc *Client) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := rpc.withTimeout(ctx)
	defer cancel()
	blockNumber, err := rpc.EthClient.BlockNumber(ctx)
	if err != nil {
		return 0, &common.NetworkError{Op: "eth_blockNumber", Err: fmt.Errorf("failed to get latest block number: %v", err)}
	}
	metrics.ChainHead.WithLabelValues(rpc.network.String()).Set(float64(blockNumber))
	return blockNumber, nil
}
