package common

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCost(t *testing.T) {
	v, err := ParseCost("21000000000000")
	require.NoError(t, err)
	assert.Equal(t, "21000000000000", v.String())

	// well beyond 2^53 and 2^256
	huge := "1157920892373161954235709850086879078532699846656405640394575840079131296399360"
	v, err = ParseCost(huge)
	require.NoError(t, err)
	assert.Equal(t, huge, v.String())

	v, err = ParseCost("0x1bc16d674ec80000")
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000000", v.String())

	v, err = ParseCost(" 0 ")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(big.NewInt(0)))

	for _, bad := range []string{"", "abc", "-1", "0x-5", "1.5", "1e18"} {
		_, err := ParseCost(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseNetwork(t *testing.T) {
	n, err := ParseNetwork("Ethereum")
	require.NoError(t, err)
	assert.Equal(t, NetworkEthereum, n)
	assert.Equal(t, "etherscan", n.ExplorerName())
	assert.Equal(t, "https://api.etherscan.io", n.DefaultExplorerURL())
	assert.Equal(t, big.NewInt(1), n.DefaultChainID())

	n, err = ParseNetwork("arbitrum")
	require.NoError(t, err)
	assert.Equal(t, "https://api.arbiscan.io", n.DefaultExplorerURL())
	assert.Equal(t, big.NewInt(42161), n.DefaultChainID())

	_, err = ParseNetwork("polygon")
	assert.Error(t, err)
}

func TestNewBlockRange(t *testing.T) {
	r, err := NewBlockRange(100, 200)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), r.FromBlock)
	assert.Equal(t, uint64(200), r.ToBlock)
	assert.Equal(t, "100-200", r.String())

	_, err = NewBlockRange(200, 200)
	assert.NoError(t, err)

	_, err = NewBlockRange(201, 200)
	assert.Error(t, err)
}
