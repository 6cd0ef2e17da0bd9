package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/nando-os/setprotocol-go/eth"
	"github.com/nando-os/setprotocol-go/internal/metrics"
)

// Contract is a deployed contract instance: an (address, ABI) pair bound to a client,
// plus the transaction defaults every call starts from.
type Contract struct {
	name     string
	address  common.Address
	abi      abi.ABI
	client   eth.Client
	defaults eth.TxParams
	base     logrus.FieldLogger
	logger   logrus.FieldLogger
	metrics  *metrics.Metrics
}

type Option func(*Contract)

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Contract) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Contract) {
		c.metrics = m
	}
}

// New binds an address without checking that code exists there. Use At for user-supplied addresses.
func New(name string, parsed abi.ABI, address common.Address, client eth.Client, defaults eth.TxParams, opts ...Option) *Contract {
	c := &Contract{
		name:     name,
		address:  address,
		abi:      parsed,
		client:   client,
		defaults: defaults,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.base = c.logger
	c.logger = c.logger.WithFields(logrus.Fields{
		"contract": name,
		"address":  address.Hex(),
	})
	return c
}

// At attaches to an existing deployment. It fails with ErrContractNotFound when the address has no code.
func At(ctx context.Context, name string, parsed abi.ABI, address common.Address, client eth.Client, defaults eth.TxParams, opts ...Option) (*Contract, error) {
	c := New(name, parsed, address, client, defaults, opts...)
	if err := c.ensureCode(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Deployed attaches to the address an artifact records for the client's network.
func Deployed(ctx context.Context, artifact *Artifact, client eth.Client, defaults eth.TxParams, opts ...Option) (*Contract, error) {
	address, ok := artifact.Address(client.ChainID())
	if !ok {
		return nil, fmt.Errorf("%w: no address for %s on network %d", ErrContractNotFound, artifact.ContractName, client.ChainID())
	}
	return At(ctx, artifact.ContractName, artifact.ABI, address, client, defaults, opts...)
}

// DeployRequest describes a creation transaction.
type DeployRequest struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
	// Params override the client defaults for this transaction only.
	Params eth.TxParams
	Args   []interface{}
}

// Deploy submits a creation transaction, waits until it is mined and returns the bound contract.
func Deploy(ctx context.Context, req DeployRequest, client eth.Client, defaults eth.TxParams, opts ...Option) (*Contract, error) {
	if len(req.Bytecode) == 0 {
		return nil, fmt.Errorf("%w: %s has no bytecode", ErrDeployFailed, req.Name)
	}
	input, err := req.ABI.Pack("", req.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s constructor arguments: %w", req.Name, err)
	}
	data := append(append([]byte{}, req.Bytecode...), input...)

	// the zero address is a placeholder until the receipt names the real one
	c := New(req.Name, req.ABI, common.Address{}, client, defaults, opts...)
	start := time.Now()
	address, err := c.deploy(ctx, defaults.Merge(req.Params), data)
	c.metrics.Observe(req.Name, "", metrics.OpDeploy, start, err)
	if err != nil {
		return nil, err
	}

	deployed := New(req.Name, req.ABI, address, client, defaults, opts...)
	if err := deployed.ensureCode(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeployFailed, err)
	}
	deployed.logger.Info("Contract deployed")
	return deployed, nil
}

func (c *Contract) deploy(ctx context.Context, params eth.TxParams, data []byte) (common.Address, error) {
	if params.Gas == 0 {
		estimated, err := c.client.Backend().EstimateGas(ctx, ethereum.CallMsg{
			From:  params.From,
			Value: params.Value,
			Data:  data,
		})
		if err != nil {
			return common.Address{}, fmt.Errorf("failed to estimate %s deployment gas: %w", c.name, err)
		}
		if params.Gas, err = c.client.BufferGasLimit(ctx, estimated, true); err != nil {
			return common.Address{}, err
		}
	}

	signed, err := c.client.SignTransaction(ctx, eth.NewTransaction(params, nil, data))
	if err != nil {
		return common.Address{}, err
	}
	if _, err := c.client.SendTransaction(ctx, signed); err != nil {
		return common.Address{}, err
	}
	c.logger.WithField("hash", signed.Hash().Hex()).Info("Waiting for deployment to be mined")

	receipt, err := c.client.WaitForTransaction(ctx, signed.Hash())
	if err != nil {
		return common.Address{}, fmt.Errorf("failed waiting for %s deployment: %w", c.name, err)
	}
	if !receipt.Succeeded() {
		return common.Address{}, fmt.Errorf("%w: %s transaction %s reverted", ErrDeployFailed, c.name, receipt.TxHash.Hex())
	}
	if receipt.ContractAddress == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s receipt has no contract address", ErrDeployFailed, c.name)
	}
	return receipt.ContractAddress, nil
}

func (c *Contract) ensureCode(ctx context.Context) error {
	start := time.Now()
	code, err := c.client.Backend().CodeAt(ctx, c.address, nil)
	c.metrics.Observe(c.name, "", metrics.OpAttach, start, err)
	if err != nil {
		return fmt.Errorf("failed to get code of %s at %s: %w", c.name, c.address.Hex(), err)
	}
	if len(code) == 0 {
		return fmt.Errorf("%w: %s at %s on network %d", ErrContractNotFound, c.name, c.address.Hex(), c.client.ChainID())
	}
	return nil
}

func (c *Contract) Name() string {
	return c.name
}

func (c *Contract) Address() common.Address {
	return c.address
}

func (c *Contract) ABI() abi.ABI {
	return c.abi
}

func (c *Contract) Client() eth.Client {
	return c.client
}

// Defaults returns the transaction defaults. The result is a copy.
func (c *Contract) Defaults() eth.TxParams {
	return c.defaults.Merge(eth.TxParams{})
}

// Options returns the options c was built with, for binding related contracts the same way.
func (c *Contract) Options() []Option {
	return []Option{WithLogger(c.base), WithMetrics(c.metrics)}
}

func (c *Contract) observe(method, op string, start time.Time, err error) {
	c.metrics.Observe(c.name, method, op, start, err)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"method": method, "op": op}).WithError(err).Debug("Contract operation failed")
	}
}
