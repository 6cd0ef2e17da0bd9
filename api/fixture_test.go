package api_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/nando-os/setprotocol-go/api"
	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/contracts"
	"github.com/nando-os/setprotocol-go/deployer"
	"github.com/nando-os/setprotocol-go/eth"
	"github.com/nando-os/setprotocol-go/internal/ethtest"
)

var (
	naturalUnit = big.NewInt(10)
	unitA       = big.NewInt(2)
	unitB       = big.NewInt(3)
)

// protocolFixture is a deployed protocol with one two-component Set created by owner.
type protocolFixture struct {
	chain     *ethtest.Chain
	client    eth.Client
	owner     *eth.Account
	user      *eth.Account
	addresses api.Addresses
	sdk       *api.SetProtocol
	set       common.Address
	tokens    []common.Address
}

func newProtocolFixture(t *testing.T) *protocolFixture {
	t.Helper()
	ctx := context.Background()

	chain := ethtest.New(ethtest.ChainID)
	protocol := ethtest.NewProtocol(chain)
	owner := ethtest.NewAccount(t, "owner")
	user := ethtest.NewAccount(t, "user")
	client := ethtest.NewClient(t, chain, owner, user)

	d := deployer.New(client, protocol.Artifacts(), eth.TxParams{From: owner.Address}, deployer.WithLogger(ethtest.NullLogger()))
	_, addresses, err := d.InitializeCoreAPI(ctx)
	require.NoError(t, err)
	addresses.SetTokenFactory, err = d.DeploySetTokenFactory(ctx, addresses.Core)
	require.NoError(t, err)
	tokens, err := d.DeployTokensForSetWithApproval(ctx, []deployer.Component{
		{Name: "Component A", Symbol: "A", Decimals: big.NewInt(18), Supply: big.NewInt(1_000_000)},
		{Name: "Component B", Symbol: "B", Decimals: big.NewInt(18), Supply: big.NewInt(1_000_000)},
	}, addresses.TransferProxy)
	require.NoError(t, err)

	sdk := api.New(client, addresses, api.WithLogger(ethtest.NullLogger()))
	hash, err := sdk.Core.Create(ctx, owner.Address, addresses.SetTokenFactory, tokens,
		[]*big.Int{unitA, unitB}, naturalUnit, "Test Set", "TST")
	require.NoError(t, err)
	set, err := sdk.Core.SetAddressFromCreateTx(ctx, hash)
	require.NoError(t, err)

	return &protocolFixture{
		chain:     chain,
		client:    client,
		owner:     owner,
		user:      user,
		addresses: addresses,
		sdk:       sdk,
		set:       set,
		tokens:    tokens,
	}
}

func (f *protocolFixture) token(t *testing.T, i int) *contracts.ERC20 {
	t.Helper()
	token, err := contracts.ERC20At(context.Background(), f.tokens[i], f.client, eth.TxParams{})
	require.NoError(t, err)
	return token
}

// fund gives user amount of component i from owner.
func (f *protocolFixture) fund(t *testing.T, i int, amount *big.Int) {
	t.Helper()
	f.mine(t, f.token(t, i).Transfer, eth.TxParams{From: f.owner.Address}, f.user.Address, amount)
}

// approve sets user's allowance of component i for spender.
func (f *protocolFixture) approve(t *testing.T, i int, spender common.Address, amount *big.Int) {
	t.Helper()
	f.mine(t, f.token(t, i).Approve, eth.TxParams{From: f.user.Address}, spender, amount)
}

func (f *protocolFixture) mine(t *testing.T, tx *contract.Tx, params eth.TxParams, args ...interface{}) {
	t.Helper()
	hash, err := tx.SendTransaction(context.Background(), params, args...)
	require.NoError(t, err)
	f.requireMined(t, hash)
}

func (f *protocolFixture) requireMined(t *testing.T, hash common.Hash) {
	t.Helper()
	receipt, err := f.client.WaitForTransaction(context.Background(), hash)
	require.NoError(t, err)
	require.True(t, receipt.Succeeded(), "transaction %s reverted", hash.Hex())
}

// readyUser funds and approves exactly what issuing quantity requires.
func (f *protocolFixture) readyUser(t *testing.T, quantity *big.Int) {
	t.Helper()
	for i, unit := range []*big.Int{unitA, unitB} {
		required := new(big.Int).Mul(quantity, unit)
		required.Div(required, naturalUnit)
		f.fund(t, i, required)
		f.approve(t, i, f.addresses.TransferProxy, required)
	}
}

func (f *protocolFixture) balance(t *testing.T, token common.Address, owner common.Address) *big.Int {
	t.Helper()
	erc20, err := contracts.ERC20At(context.Background(), token, f.client, eth.TxParams{})
	require.NoError(t, err)
	balance, err := erc20.BalanceOf.Call(context.Background(), owner)
	require.NoError(t, err)
	return balance
}
