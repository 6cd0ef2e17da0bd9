// Package deployer deploys and wires a complete protocol instance, mainly for tests and
// local networks.
package deployer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/sirupsen/logrus"

	"github.com/nando-os/setprotocol-go/api"
	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/contracts"
	"github.com/nando-os/setprotocol-go/eth"
	"github.com/nando-os/setprotocol-go/internal/metrics"
)

// UnlimitedAllowance is the largest uint256, the conventional "approve everything" value.
var UnlimitedAllowance = new(big.Int).Set(math.MaxBig256)

// ErrMissingArtifact is returned when a deployment needs an artifact that was not loaded.
var ErrMissingArtifact = errors.New("missing contract artifact")

// ErrTransactionFailed is returned when a wiring transaction is mined but reverts.
var ErrTransactionFailed = errors.New("transaction reverted")

type Option func(*Deployer)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Deployer) {
		d.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Deployer) {
		d.metrics = m
	}
}

// Deployer sends every transaction from defaults.From and waits for each one to be mined
// before the next, so later steps can rely on earlier state.
type Deployer struct {
	client    eth.Client
	artifacts map[string]*contract.Artifact
	defaults  eth.TxParams
	logger    logrus.FieldLogger
	metrics   *metrics.Metrics
}

func New(client eth.Client, artifacts map[string]*contract.Artifact, defaults eth.TxParams, opts ...Option) *Deployer {
	d := &Deployer{
		client:    client,
		artifacts: artifacts,
		defaults:  defaults,
		logger:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.WithField("component", "deployer")
	return d
}

// LoadArtifacts reads every truffle artifact (*.json) in dir, keyed by contract name.
func LoadArtifacts(dir string) (map[string]*contract.Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifacts directory: %w", err)
	}
	artifacts := make(map[string]*contract.Artifact)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		artifact, err := contract.LoadArtifactFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		name := artifact.ContractName
		if name == "" {
			name = strings.TrimSuffix(entry.Name(), ".json")
		}
		artifacts[name] = artifact
	}
	return artifacts, nil
}

func (d *Deployer) contractOptions() []contract.Option {
	return []contract.Option{contract.WithLogger(d.logger), contract.WithMetrics(d.metrics)}
}

func (d *Deployer) deploy(ctx context.Context, name string, args ...interface{}) (*contract.Contract, error) {
	artifact, ok := d.artifacts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, name)
	}
	return contract.Deploy(ctx, contract.DeployRequest{
		Name:     name,
		ABI:      artifact.ABI,
		Bytecode: artifact.Bytecode,
		Args:     args,
	}, d.client, d.defaults, d.contractOptions()...)
}

// send submits tx and waits until it is mined successfully.
func (d *Deployer) send(ctx context.Context, tx *contract.Tx, params eth.TxParams, args ...interface{}) error {
	hash, err := tx.SendTransaction(ctx, params, args...)
	if err != nil {
		return err
	}
	receipt, err := d.client.WaitForTransaction(ctx, hash)
	if err != nil {
		return err
	}
	if !receipt.Succeeded() {
		return fmt.Errorf("%w: %s %s", ErrTransactionFailed, tx.Name(), hash.Hex())
	}
	return nil
}

func (d *Deployer) DeployCore(ctx context.Context) (common.Address, error) {
	c, err := d.deploy(ctx, contracts.NameCore)
	if err != nil {
		return common.Address{}, err
	}
	return c.Address(), nil
}

// DeployTransferProxy deploys a TransferProxy and authorizes core on it.
func (d *Deployer) DeployTransferProxy(ctx context.Context, core common.Address) (common.Address, error) {
	c, err := d.deploy(ctx, contracts.NameTransferProxy)
	if err != nil {
		return common.Address{}, err
	}
	proxy := contracts.NewTransferProxy(c)
	if err := d.send(ctx, proxy.AddAuthorizedAddress, eth.TxParams{}, core); err != nil {
		return common.Address{}, err
	}
	return c.Address(), nil
}

// DeployVault deploys a Vault and authorizes core on it.
func (d *Deployer) DeployVault(ctx context.Context, core common.Address) (common.Address, error) {
	c, err := d.deploy(ctx, contracts.NameVault)
	if err != nil {
		return common.Address{}, err
	}
	vault := contracts.NewVault(c)
	if err := d.send(ctx, vault.AddAuthorizedAddress, eth.TxParams{}, core); err != nil {
		return common.Address{}, err
	}
	return c.Address(), nil
}

// DeploySetTokenFactory deploys a factory, points it at core, authorizes core on it and
// enables it on core.
func (d *Deployer) DeploySetTokenFactory(ctx context.Context, core common.Address) (common.Address, error) {
	c, err := d.deploy(ctx, contracts.NameSetTokenFactory)
	if err != nil {
		return common.Address{}, err
	}
	factory := contracts.NewSetTokenFactory(c)
	if err := d.send(ctx, factory.SetCoreAddress, eth.TxParams{}, core); err != nil {
		return common.Address{}, err
	}
	if err := d.send(ctx, factory.AddAuthorizedAddress, eth.TxParams{}, core); err != nil {
		return common.Address{}, err
	}
	coreWrapper, err := contracts.CoreAt(ctx, core, d.client, d.defaults, d.contractOptions()...)
	if err != nil {
		return common.Address{}, err
	}
	if err := d.send(ctx, coreWrapper.EnableFactory, eth.TxParams{}, c.Address()); err != nil {
		return common.Address{}, err
	}
	return c.Address(), nil
}

// Component describes a test token to deploy. The whole supply goes to the deploying account.
type Component struct {
	Name     string
	Symbol   string
	Decimals *big.Int
	Supply   *big.Int
}

// DeployTokensForSetWithApproval deploys one StandardTokenMock per component and approves
// transferProxy for an unlimited amount of each. Addresses are returned in component order.
func (d *Deployer) DeployTokensForSetWithApproval(ctx context.Context, components []Component, transferProxy common.Address) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(components))
	for _, component := range components {
		c, err := d.deploy(ctx, contracts.NameStandardTokenMock,
			d.defaults.From, component.Supply, component.Name, component.Symbol, component.Decimals)
		if err != nil {
			return nil, err
		}
		token := contracts.NewERC20(c)
		if err := d.send(ctx, token.Approve, eth.TxParams{}, transferProxy, UnlimitedAllowance); err != nil {
			return nil, err
		}
		d.logger.WithFields(logrus.Fields{
			"symbol":  component.Symbol,
			"address": c.Address().Hex(),
		}).Info("Component token deployed")
		addresses = append(addresses, c.Address())
	}
	return addresses, nil
}

// Fill names the parties of an order fill.
type Fill struct {
	Maker         common.Address
	MakerToken    common.Address
	RelayerToken  common.Address
	Taker         common.Address
	TransferProxy common.Address
}

// FillTakerAmount is the amount of relayer token handed to the taker by ApproveForFill.
var FillTakerAmount = big.NewInt(10000)

// ApproveForFill funds the taker with relayer tokens from the maker and approves the transfer
// proxy for maker and taker. Maker and taker must both be configured signing accounts.
func (d *Deployer) ApproveForFill(ctx context.Context, fill Fill) error {
	makerToken, err := contracts.StandardTokenMockAt(ctx, fill.MakerToken, d.client, d.defaults, d.contractOptions()...)
	if err != nil {
		return err
	}
	relayerToken, err := contracts.StandardTokenMockAt(ctx, fill.RelayerToken, d.client, d.defaults, d.contractOptions()...)
	if err != nil {
		return err
	}

	maker := eth.TxParams{From: fill.Maker}
	taker := eth.TxParams{From: fill.Taker}
	if err := d.send(ctx, relayerToken.Transfer, maker, fill.Taker, FillTakerAmount); err != nil {
		return err
	}
	if err := d.send(ctx, makerToken.Approve, maker, fill.TransferProxy, UnlimitedAllowance); err != nil {
		return err
	}
	if err := d.send(ctx, relayerToken.Approve, maker, fill.TransferProxy, UnlimitedAllowance); err != nil {
		return err
	}
	return d.send(ctx, relayerToken.Approve, taker, fill.TransferProxy, UnlimitedAllowance)
}

func (d *Deployer) DeployWhitelist(ctx context.Context, addresses []common.Address) (common.Address, error) {
	c, err := d.deploy(ctx, contracts.NameWhitelist, addresses)
	if err != nil {
		return common.Address{}, err
	}
	return c.Address(), nil
}

// InitializeCoreAPI deploys Core, TransferProxy and Vault, registers the latter two on Core
// and returns a CoreAPI bound to them.
func (d *Deployer) InitializeCoreAPI(ctx context.Context, opts ...api.Option) (*api.CoreAPI, api.Addresses, error) {
	core, err := d.DeployCore(ctx)
	if err != nil {
		return nil, api.Addresses{}, err
	}
	transferProxy, err := d.DeployTransferProxy(ctx, core)
	if err != nil {
		return nil, api.Addresses{}, err
	}
	vault, err := d.DeployVault(ctx, core)
	if err != nil {
		return nil, api.Addresses{}, err
	}

	coreWrapper, err := contracts.CoreAt(ctx, core, d.client, d.defaults, d.contractOptions()...)
	if err != nil {
		return nil, api.Addresses{}, err
	}
	if err := d.send(ctx, coreWrapper.SetVaultAddress, eth.TxParams{}, vault); err != nil {
		return nil, api.Addresses{}, err
	}
	if err := d.send(ctx, coreWrapper.SetTransferProxyAddress, eth.TxParams{}, transferProxy); err != nil {
		return nil, api.Addresses{}, err
	}

	addresses := api.Addresses{Core: core, TransferProxy: transferProxy, Vault: vault}
	d.logger.WithFields(logrus.Fields{
		"core":           core.Hex(),
		"transfer_proxy": transferProxy.Hex(),
		"vault":          vault.Hex(),
	}).Info("Core initialized")
	return api.NewCoreAPI(api.NewContracts(d.client, opts...), addresses), addresses, nil
}
