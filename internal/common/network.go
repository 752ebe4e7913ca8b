package common

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

type Network string

const (
	NetworkEthereum Network = "ethereum"
	NetworkArbitrum Network = "arbitrum"
)

var Networks = []Network{NetworkEthereum, NetworkArbitrum}

var explorers = map[Network]string{
	NetworkEthereum: "etherscan",
	NetworkArbitrum: "arbiscan",
}

var chainIDs = map[Network]*big.Int{
	NetworkEthereum: big.NewInt(1),
	NetworkArbitrum: big.NewInt(42161),
}

func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := explorers[n]; !ok {
		return "", errors.Errorf("unknown network %q", s)
	}
	return n, nil
}

// ExplorerName is the etherscan-family explorer serving this network.
func (n Network) ExplorerName() string {
	return explorers[n]
}

func (n Network) DefaultExplorerURL() string {
	return "https://api." + explorers[n] + ".io"
}

func (n Network) DefaultChainID() *big.Int {
	id, ok := chainIDs[n]
	if !ok {
		return nil
	}
	return new(big.Int).Set(id)
}

func (n Network) String() string {
	return string(n)
}
