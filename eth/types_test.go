package eth

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestTxParams_Merge(t *testing.T) {
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	user := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	defaults := TxParams{From: owner, Gas: 6712390, GasPrice: big.NewInt(6000000000)}

	merged := defaults.Merge(TxParams{From: user, GasPrice: big.NewInt(1)})

	assert.Equal(t, user, merged.From)
	assert.Equal(t, uint64(6712390), merged.Gas)
	assert.Equal(t, big.NewInt(1), merged.GasPrice)

	// neither side is touched
	assert.Equal(t, owner, defaults.From)
	assert.Equal(t, big.NewInt(6000000000), defaults.GasPrice)
}

func TestTxParams_MergeCopiesBigInts(t *testing.T) {
	price := big.NewInt(10)
	defaults := TxParams{GasPrice: price}

	merged := defaults.Merge(TxParams{})
	merged.GasPrice.SetInt64(99)

	assert.Equal(t, int64(10), price.Int64())
}

func TestTxParams_MergeEmptyOverride(t *testing.T) {
	defaults := TxParams{Gas: 21000, Value: big.NewInt(5)}
	assert.Equal(t, defaults, defaults.Merge(TxParams{}))
}
