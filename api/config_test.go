package api_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nando-os/setprotocol-go/api"
)

func TestLoadAddressesFromEnv(t *testing.T) {
	t.Setenv("SET_CORE_ADDRESS", "0x00000000000000000000000000000000000000c1")
	t.Setenv("SET_VAULT_ADDRESS", " 0x00000000000000000000000000000000000000c2 ")
	t.Setenv("SET_TRANSFER_PROXY_ADDRESS", "0x00000000000000000000000000000000000000c3")
	t.Setenv("SET_TOKEN_FACTORY_ADDRESS", "")

	addrs, err := api.LoadAddresses(nil)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xc1"), addrs.Core)
	assert.Equal(t, common.HexToAddress("0xc2"), addrs.Vault)
	assert.Equal(t, common.HexToAddress("0xc3"), addrs.TransferProxy)
	assert.Equal(t, common.Address{}, addrs.SetTokenFactory)

	assert.NoError(t, addrs.Require("core", "vault", "transfer_proxy"))
	err = addrs.Require("core", "token_factory")
	assert.ErrorIs(t, err, api.ErrAddressNotConfigured)
	assert.ErrorContains(t, err, "SET_TOKEN_FACTORY_ADDRESS is not set")
	assert.Error(t, addrs.Require("exchange"))
}

func TestLoadAddressesFromViper(t *testing.T) {
	v := viper.New()
	v.Set("set.core_address", "0x00000000000000000000000000000000000000d1")

	addrs, err := api.LoadAddresses(v)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xd1"), addrs.Core)
}

func TestLoadAddressesRejectsMalformed(t *testing.T) {
	t.Setenv("SET_VAULT_ADDRESS", "0x1234")

	_, err := api.LoadAddresses(nil)
	assert.ErrorContains(t, err, "SET_VAULT_ADDRESS")
}
