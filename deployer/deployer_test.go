package deployer_test

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nando-os/setprotocol-go/api"
	"github.com/nando-os/setprotocol-go/contracts"
	"github.com/nando-os/setprotocol-go/deployer"
	"github.com/nando-os/setprotocol-go/eth"
	"github.com/nando-os/setprotocol-go/internal/ethtest"
)

type fixture struct {
	chain    *ethtest.Chain
	client   eth.Client
	owner    *eth.Account
	user     *eth.Account
	deployer *deployer.Deployer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	chain := ethtest.New(ethtest.ChainID)
	protocol := ethtest.NewProtocol(chain)
	owner := ethtest.NewAccount(t, "owner")
	user := ethtest.NewAccount(t, "user")
	client := ethtest.NewClient(t, chain, owner, user)
	return &fixture{
		chain:  chain,
		client: client,
		owner:  owner,
		user:   user,
		deployer: deployer.New(client, protocol.Artifacts(), eth.TxParams{From: owner.Address},
			deployer.WithLogger(ethtest.NullLogger())),
	}
}

func TestInitializeCoreAPI(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	coreAPI, addresses, err := f.deployer.InitializeCoreAPI(ctx, api.WithLogger(ethtest.NullLogger()))
	require.NoError(t, err)
	assert.Equal(t, addresses.Core, coreAPI.CoreAddress())

	vault, err := coreAPI.GetVaultAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, addresses.Vault, vault)

	proxy, err := coreAPI.GetTransferProxyAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, addresses.TransferProxy, proxy)

	authorizable := api.NewAuthorizableAPI(api.NewContracts(f.client, api.WithLogger(ethtest.NullLogger())))
	for _, address := range []common.Address{addresses.TransferProxy, addresses.Vault} {
		authorized, err := authorizable.GetAuthorizedAddresses(ctx, address)
		require.NoError(t, err)
		assert.Equal(t, []common.Address{addresses.Core}, authorized)
	}
}

func TestDeploySetTokenFactory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	coreAPI, addresses, err := f.deployer.InitializeCoreAPI(ctx, api.WithLogger(ethtest.NullLogger()))
	require.NoError(t, err)

	factory, err := f.deployer.DeploySetTokenFactory(ctx, addresses.Core)
	require.NoError(t, err)

	valid, err := coreAPI.IsValidFactory(ctx, factory)
	require.NoError(t, err)
	assert.True(t, valid)

	bound, err := contracts.SetTokenFactoryAt(ctx, factory, f.client, eth.TxParams{})
	require.NoError(t, err)
	core, err := bound.Core.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, addresses.Core, core)
}

func TestDeployTokensForSetWithApproval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	proxy := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	tokens, err := f.deployer.DeployTokensForSetWithApproval(ctx, []deployer.Component{
		{Name: "Component A", Symbol: "A", Decimals: big.NewInt(18), Supply: big.NewInt(1_000_000)},
		{Name: "Component B", Symbol: "B", Decimals: big.NewInt(6), Supply: big.NewInt(500)},
	}, proxy)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	second, err := contracts.ERC20At(ctx, tokens[1], f.client, eth.TxParams{})
	require.NoError(t, err)

	symbol, err := second.Symbol.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "B", symbol)

	balance, err := second.BalanceOf.Call(ctx, f.owner.Address)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance.Int64())

	allowance, err := second.Allowance.Call(ctx, f.owner.Address, proxy)
	require.NoError(t, err)
	assert.Equal(t, 0, deployer.UnlimitedAllowance.Cmp(allowance))
}

func TestApproveForFill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	proxy := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	tokens, err := f.deployer.DeployTokensForSetWithApproval(ctx, []deployer.Component{
		{Name: "Maker", Symbol: "MKR", Decimals: big.NewInt(18), Supply: big.NewInt(50_000)},
		{Name: "Relayer", Symbol: "RLY", Decimals: big.NewInt(18), Supply: big.NewInt(50_000)},
	}, proxy)
	require.NoError(t, err)

	err = f.deployer.ApproveForFill(ctx, deployer.Fill{
		Maker:         f.owner.Address,
		MakerToken:    tokens[0],
		RelayerToken:  tokens[1],
		Taker:         f.user.Address,
		TransferProxy: proxy,
	})
	require.NoError(t, err)

	relayer, err := contracts.ERC20At(ctx, tokens[1], f.client, eth.TxParams{})
	require.NoError(t, err)
	balance, err := relayer.BalanceOf.Call(ctx, f.user.Address)
	require.NoError(t, err)
	assert.Equal(t, 0, deployer.FillTakerAmount.Cmp(balance))

	allowance, err := relayer.Allowance.Call(ctx, f.user.Address, proxy)
	require.NoError(t, err)
	assert.Equal(t, 0, deployer.UnlimitedAllowance.Cmp(allowance))
}

func TestDeployWhitelist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	members := []common.Address{f.owner.Address, f.user.Address}

	address, err := f.deployer.DeployWhitelist(ctx, members)
	require.NoError(t, err)

	listed, err := api.NewWhitelistAPI(api.NewContracts(f.client, api.WithLogger(ethtest.NullLogger()))).ValidAddresses(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, members, listed)
}

func TestDeployMissingArtifact(t *testing.T) {
	f := newFixture(t)
	d := deployer.New(f.client, nil, eth.TxParams{From: f.owner.Address}, deployer.WithLogger(ethtest.NullLogger()))

	_, err := d.DeployCore(context.Background())
	assert.ErrorIs(t, err, deployer.ErrMissingArtifact)
	assert.Empty(t, f.chain.Sent())
}

func TestLoadArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifact := `{
		"contractName": "Whitelist",
		"abi": [{"type":"function","name":"validAddresses","inputs":[],"outputs":[{"name":"","type":"address[]"}],"stateMutability":"view"}],
		"bytecode": "0x6080604006",
		"networks": {"1337": {"address": "0x00000000000000000000000000000000000000cc"}}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Whitelist.json"), []byte(artifact), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("not an artifact"), 0o600))

	artifacts, err := deployer.LoadArtifacts(dir)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	whitelist := artifacts[contracts.NameWhitelist]
	require.NotNil(t, whitelist)
	assert.Equal(t, ethtest.WhitelistCode, whitelist.Bytecode)
	address, ok := whitelist.Address(ethtest.ChainID)
	assert.True(t, ok)
	assert.Equal(t, common.HexToAddress("0xcc"), address)
}

func TestLoadArtifactsMissingDir(t *testing.T) {
	_, err := deployer.LoadArtifacts(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
