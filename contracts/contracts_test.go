package contracts_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/contracts"
	"github.com/nando-os/setprotocol-go/eth"
	"github.com/nando-os/setprotocol-go/internal/ethtest"
)

func TestInterfaceTables(t *testing.T) {
	tests := []struct {
		name    string
		parsed  abi.ABI
		methods []string
	}{
		{contracts.NameAuthorizable, contracts.AuthorizableABI, []string{"owner", "addAuthorizedAddress", "getAuthorizedAddresses"}},
		{contracts.NameERC20, contracts.ERC20ABI, []string{"balanceOf", "allowance", "approve", "transferFrom"}},
		{contracts.NameSetToken, contracts.SetTokenABI, []string{"issue", "redeem", "naturalUnit", "getComponents", "getUnits", "balanceOf"}},
		{contracts.NameSetTokenFactory, contracts.SetTokenFactoryABI, []string{"create", "setCoreAddress", "addAuthorizedAddress"}},
		{contracts.NameCore, contracts.CoreABI, []string{"create", "issue", "redeem", "deposit", "batchWithdraw", "validSets"}},
		{contracts.NameVault, contracts.VaultABI, []string{"getOwnerBalance", "authorized"}},
		{contracts.NameTransferProxy, contracts.TransferProxyABI, []string{"transfer", "authorities"}},
		{contracts.NameWhitelist, contracts.WhitelistABI, []string{"validAddresses", "addAddress", "removeAddress"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, method := range tt.methods {
				assert.Contains(t, tt.parsed.Methods, method)
			}
		})
	}
	assert.Len(t, contracts.StandardTokenMockABI.Constructor.Inputs, 5)
}

func TestCreatedSetAddress(t *testing.T) {
	coreAddress := common.HexToAddress("0x00000000000000000000000000000000000000c0")
	set := common.HexToAddress("0x00000000000000000000000000000000000005e7")
	core := contracts.NewCore(contract.New(contracts.NameCore, contracts.CoreABI, coreAddress, nil, eth.TxParams{}))
	created := contracts.CoreABI.Events["SetTokenCreated"].ID

	receipt := &eth.TransactionReceipt{
		Logs: []*types.Log{
			{Address: common.HexToAddress("0x01"), Topics: []common.Hash{created, common.BytesToHash(common.HexToAddress("0xbad").Bytes())}},
			{Address: coreAddress, Topics: []common.Hash{contracts.ERC20ABI.Events["Transfer"].ID}},
			{Address: coreAddress, Topics: []common.Hash{created, common.BytesToHash(set.Bytes())}},
		},
	}
	got, err := core.CreatedSetAddress(receipt)
	require.NoError(t, err)
	assert.Equal(t, set, got)

	_, err = core.CreatedSetAddress(&eth.TransactionReceipt{})
	assert.ErrorIs(t, err, contracts.ErrEventNotFound)
}

func TestWrappersAgainstProtocol(t *testing.T) {
	ctx := context.Background()
	chain := ethtest.New(ethtest.ChainID)
	protocol := ethtest.NewProtocol(chain)
	owner := ethtest.NewAccount(t, "owner")
	other := ethtest.NewAccount(t, "other")
	client := ethtest.NewClient(t, chain, owner, other)
	defaults := eth.TxParams{From: owner.Address}
	artifacts := protocol.Artifacts()

	deployed, err := contract.Deploy(ctx, contract.DeployRequest{
		Name:     contracts.NameTransferProxy,
		ABI:      artifacts[contracts.NameTransferProxy].ABI,
		Bytecode: artifacts[contracts.NameTransferProxy].Bytecode,
	}, client, defaults)
	require.NoError(t, err)
	proxy := contracts.NewTransferProxy(deployed)

	got, err := proxy.Owner.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, owner.Address, got)

	send := func(tx *contract.Tx, params eth.TxParams, args ...interface{}) {
		t.Helper()
		hash, err := tx.SendTransaction(ctx, params, args...)
		require.NoError(t, err)
		receipt, err := client.WaitForTransaction(ctx, hash)
		require.NoError(t, err)
		require.True(t, receipt.Succeeded())
	}

	send(proxy.AddAuthorizedAddress, eth.TxParams{}, other.Address)
	authorized, err := proxy.Authorized.Call(ctx, other.Address)
	require.NoError(t, err)
	assert.True(t, authorized)

	first, err := proxy.Authorities.Call(ctx, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, other.Address, first)

	// only the owner may change authorizations
	_, err = proxy.RemoveAuthorizedAddress.SendTransaction(ctx, eth.TxParams{From: other.Address}, other.Address)
	assert.ErrorIs(t, err, ethtest.ErrReverted)

	send(proxy.RemoveAuthorizedAddressAtIndex, eth.TxParams{}, other.Address, big.NewInt(0))
	list, err := proxy.GetAuthorizedAddresses.Call(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	send(proxy.TransferOwnership, eth.TxParams{}, other.Address)
	got, err = proxy.Owner.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, other.Address, got)

	send(proxy.RenounceOwnership, eth.TxParams{From: other.Address})
	got, err = proxy.Owner.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, got)
}

func TestWhitelistWrapper(t *testing.T) {
	ctx := context.Background()
	chain := ethtest.New(ethtest.ChainID)
	protocol := ethtest.NewProtocol(chain)
	owner := ethtest.NewAccount(t, "owner")
	client := ethtest.NewClient(t, chain, owner)
	artifact := protocol.Artifacts()[contracts.NameWhitelist]
	member := common.HexToAddress("0x00000000000000000000000000000000000000e1")

	deployed, err := contract.Deploy(ctx, contract.DeployRequest{
		Name:     contracts.NameWhitelist,
		ABI:      artifact.ABI,
		Bytecode: artifact.Bytecode,
		Args:     []interface{}{[]common.Address{}},
	}, client, eth.TxParams{From: owner.Address})
	require.NoError(t, err)

	whitelist, err := contracts.WhitelistAt(ctx, deployed.Address(), client, eth.TxParams{From: owner.Address})
	require.NoError(t, err)

	hash, err := whitelist.AddAddress.SendTransaction(ctx, eth.TxParams{}, member)
	require.NoError(t, err)
	_, err = client.WaitForTransaction(ctx, hash)
	require.NoError(t, err)

	listed, err := whitelist.WhiteList.Call(ctx, member)
	require.NoError(t, err)
	assert.True(t, listed)

	_, err = whitelist.AddAddress.EstimateGas(ctx, eth.TxParams{}, member)
	assert.ErrorIs(t, err, ethtest.ErrReverted)

	hash, err = whitelist.RemoveAddress.SendTransaction(ctx, eth.TxParams{}, member)
	require.NoError(t, err)
	_, err = client.WaitForTransaction(ctx, hash)
	require.NoError(t, err)

	addresses, err := whitelist.ValidAddresses.Call(ctx)
	require.NoError(t, err)
	assert.Empty(t, addresses)
}

func TestAtRejectsMissingCode(t *testing.T) {
	chain := ethtest.New(ethtest.ChainID)
	client := ethtest.NewClient(t, chain)

	_, err := contracts.SetTokenAt(context.Background(), common.HexToAddress("0x5e7"), client, eth.TxParams{})
	assert.ErrorIs(t, err, contract.ErrContractNotFound)
	_, err = contracts.VaultAt(context.Background(), common.HexToAddress("0x5e7"), client, eth.TxParams{})
	assert.ErrorIs(t, err, contract.ErrContractNotFound)
}
