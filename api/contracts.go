package api

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/contracts"
	"github.com/nando-os/setprotocol-go/eth"
	"github.com/nando-os/setprotocol-go/internal/metrics"
)

type Option func(*options)

type options struct {
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records every contract operation made through the API.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Contracts attaches typed wrappers on demand. Every load checks that code exists at the
// address; nothing is cached between loads.
type Contracts struct {
	client eth.Client
	logger logrus.FieldLogger
	opts   []contract.Option
}

func NewContracts(client eth.Client, opts ...Option) *Contracts {
	o := options{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Contracts{
		client: client,
		logger: o.logger,
		opts:   []contract.Option{contract.WithLogger(o.logger), contract.WithMetrics(o.metrics)},
	}
}

func (c *Contracts) Client() eth.Client {
	return c.client
}

// Defaults merges params over the configured wrapper defaults.
func (c *Contracts) Defaults(params eth.TxParams) eth.TxParams {
	return eth.DefaultTxParams(c.client.Config(), common.Address{}).Merge(params)
}

func (c *Contracts) LoadSetToken(ctx context.Context, address common.Address, params eth.TxParams) (*contracts.SetToken, error) {
	return contracts.SetTokenAt(ctx, address, c.client, c.Defaults(params), c.opts...)
}

func (c *Contracts) LoadERC20(ctx context.Context, address common.Address, params eth.TxParams) (*contracts.ERC20, error) {
	return contracts.ERC20At(ctx, address, c.client, c.Defaults(params), c.opts...)
}

func (c *Contracts) LoadCore(ctx context.Context, address common.Address, params eth.TxParams) (*contracts.Core, error) {
	return contracts.CoreAt(ctx, address, c.client, c.Defaults(params), c.opts...)
}

func (c *Contracts) LoadVault(ctx context.Context, address common.Address, params eth.TxParams) (*contracts.Vault, error) {
	return contracts.VaultAt(ctx, address, c.client, c.Defaults(params), c.opts...)
}

func (c *Contracts) LoadTransferProxy(ctx context.Context, address common.Address, params eth.TxParams) (*contracts.TransferProxy, error) {
	return contracts.TransferProxyAt(ctx, address, c.client, c.Defaults(params), c.opts...)
}

func (c *Contracts) LoadSetTokenFactory(ctx context.Context, address common.Address, params eth.TxParams) (*contracts.SetTokenFactory, error) {
	return contracts.SetTokenFactoryAt(ctx, address, c.client, c.Defaults(params), c.opts...)
}

func (c *Contracts) LoadAuthorizable(ctx context.Context, address common.Address, params eth.TxParams) (*contracts.Authorizable, error) {
	return contracts.AuthorizableAt(ctx, address, c.client, c.Defaults(params), c.opts...)
}

func (c *Contracts) LoadWhitelist(ctx context.Context, address common.Address, params eth.TxParams) (*contracts.Whitelist, error) {
	return contracts.WhitelistAt(ctx, address, c.client, c.Defaults(params), c.opts...)
}
