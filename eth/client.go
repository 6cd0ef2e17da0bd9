package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUnknownAccount is returned when a transaction's sender has no configured signing key.
	ErrUnknownAccount = errors.New("no signing key configured for account")
	// ErrChainMismatch is returned when the node reports a different chain than configured.
	ErrChainMismatch = errors.New("chain ID mismatch")
)

type Client interface {
	// ChainID returns the verified chain ID of the connected network
	ChainID() int64

	// Config returns the configuration the client was built with
	Config() Config

	// Backend returns the raw JSON-RPC seam used for reads
	Backend() EthClient

	// Account returns the configured account for an address
	Account(address common.Address) (*Account, error)

	// BufferGasLimit turns a raw gas estimate into a gas limit for submission
	BufferGasLimit(ctx context.Context, estimated uint64, hasData bool) (uint64, error)

	// SignTransaction signs a transaction with the key of its sender
	SignTransaction(ctx context.Context, tx *Transaction) (*types.Transaction, error)

	// SendTransaction sends a signed transaction to the network
	SendTransaction(ctx context.Context, signedTx *types.Transaction) (*TransactionReceipt, error)

	// GetBalance returns the ETH balance of an address
	GetBalance(ctx context.Context, address common.Address) (*big.Int, error)

	// WaitForTransaction waits for a transaction to be mined and returns the receipt
	WaitForTransaction(ctx context.Context, hash common.Hash) (*TransactionReceipt, error)

	// GetTransactionReceipt returns the receipt for a transaction if it exists
	GetTransactionReceipt(ctx context.Context, hash common.Hash) (*TransactionReceipt, error)

	// Close closes the Ethereum client connection
	Close()
}

// EthClient is the subset of *ethclient.Client the SDK needs. It is the only I/O seam.
type EthClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	Close()
}

// Ensure *ethclient.Client implements EthClient
var _ EthClient = (*ethclient.Client)(nil)

type Option func(*client)

// WithLogger sets the logger used by the client.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

type client struct {
	client   EthClient
	chainId  int64
	accounts map[common.Address]*Account
	config   Config
	logger   logrus.FieldLogger
}

// NewClient dials the configured RPC endpoint and verifies the chain ID.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (Client, error) {
	logger := logrus.StandardLogger().WithField("component", "eth")

	// Log proxy usage if configured
	if os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" {
		logger.WithFields(logrus.Fields{
			"http_proxy":  os.Getenv("HTTP_PROXY"),
			"https_proxy": os.Getenv("HTTPS_PROXY"),
		}).Info("Connecting to Ethereum network via proxy")
	}

	// HTTP_PROXY and HTTPS_PROXY environment variables are automatically used by ethclient.DialContext
	logger.WithField("url", cfg.RPCURL()).Info("Connecting to Ethereum RPC")
	backend, err := ethclient.DialContext(ctx, cfg.RPCURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum network: %w", err)
	}

	c, err := NewClientWithBackend(ctx, backend, cfg, append([]Option{WithLogger(logger)}, opts...)...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return c, nil
}

// NewClientWithBackend wraps an existing provider, e.g. an in-process or simulated backend.
func NewClientWithBackend(ctx context.Context, backend EthClient, cfg Config, opts ...Option) (Client, error) {
	c := &client{
		client:   backend,
		chainId:  cfg.ChainID(),
		accounts: make(map[common.Address]*Account),
		config:   cfg,
		logger:   logrus.StandardLogger().WithField("component", "eth"),
	}
	for _, opt := range opts {
		opt(c)
	}

	// -- validate accounts
	for _, account := range cfg.Accounts() {
		if account.Address == (common.Address{}) {
			return nil, fmt.Errorf("account %q address is not set", account.Label)
		}
		if account.ChainId != 0 && account.ChainId != cfg.ChainID() {
			return nil, fmt.Errorf("account %q: %w: expected %d, got %d", account.Label, ErrChainMismatch, cfg.ChainID(), account.ChainId)
		}
		c.accounts[account.Address] = account
	}

	// -- Verify connection and get chain ID
	clientChainId, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if clientChainId.Int64() != cfg.ChainID() {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrChainMismatch, cfg.ChainID(), clientChainId.Int64())
	}

	c.logger.WithFields(logrus.Fields{
		"chain_id": clientChainId.Int64(),
		"accounts": len(c.accounts),
	}).Info("Successfully connected to Ethereum network")
	return c, nil
}

func (c *client) ChainID() int64 {
	return c.chainId
}

func (c *client) Config() Config {
	return c.config
}

func (c *client) Backend() EthClient {
	return c.client
}

// Account returns the configured account for address
func (c *client) Account(address common.Address) (*Account, error) {
	account, ok := c.accounts[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, address.Hex())
	}
	return account, nil
}

// SendTransaction sends a signed transaction to the network and returns without waiting for it to be mined
func (c *client) SendTransaction(ctx context.Context, signedTx *types.Transaction) (*TransactionReceipt, error) {
	log := c.logger.WithField("hash", signedTx.Hash().Hex())
	log.Info("Sending transaction to network")

	if err := c.client.SendTransaction(ctx, signedTx); err != nil {
		log.WithError(err).Error("Failed to send transaction")
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	log.Info("Transaction sent successfully")

	receipt := &TransactionReceipt{
		TxHash: signedTx.Hash(),
		Status: 0, // Pending
		From:   c.sender(signedTx),
	}
	if to := signedTx.To(); to != nil {
		receipt.To = *to
	}
	return receipt, nil
}

// BufferGasLimit applies the configured buffer to a gas estimate and checks it against the block gas limit.
func (c *client) BufferGasLimit(ctx context.Context, estimated uint64, hasData bool) (uint64, error) {
	// Add dynamic buffer based on transaction complexity
	var buffer float64
	if hasData {
		buffer = c.config.GasLimitBufferComplex()
	} else {
		buffer = c.config.GasLimitBufferSimple()
	}
	gasLimit := uint64(float64(estimated) * buffer)
	c.logger.WithFields(logrus.Fields{
		"estimated":   estimated,
		"buffer":      buffer,
		"with_buffer": gasLimit,
	}).Debug("Gas limit calculated")

	// Validate against network gas limit, transaction will get blocked if goes above it
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err == nil && header.GasLimit > 0 {
		maxGas := header.GasLimit * 2 / 3 // Use 2/3 of block gas limit
		if gasLimit > maxGas {
			c.logger.WithFields(logrus.Fields{"gas_limit": gasLimit, "max_allowed": maxGas}).Error("Gas limit too high")
			return 0, fmt.Errorf("gas limit %d exceeds maximum allowed %d", gasLimit, maxGas)
		}
	}
	return gasLimit, nil
}

// estimateGasAndSetLimit estimates gas for the transaction and sets tx.GasLimit accordingly.
func (c *client) estimateGasAndSetLimit(ctx context.Context, tx *Transaction) error {
	msg := ethereum.CallMsg{
		From:  tx.From,
		To:    tx.To,
		Value: tx.Value,
		Data:  tx.Data,
	}

	estimated, err := c.client.EstimateGas(ctx, msg)
	if err != nil {
		c.logger.WithError(err).Error("Failed to estimate gas")
		return fmt.Errorf("failed to estimate gas: %w", err)
	}

	gasLimit, err := c.BufferGasLimit(ctx, estimated, len(tx.Data) > 0)
	if err != nil {
		return err
	}
	tx.GasLimit = gasLimit
	return nil
}

// SignTransaction signs a transaction with the configured key of tx.From
func (c *client) SignTransaction(ctx context.Context, tx *Transaction) (*types.Transaction, error) {
	log := c.logger.WithField("from", tx.From.Hex())
	if tx.To != nil {
		log = log.WithField("to", tx.To.Hex())
	}
	log.Debug("Starting transaction signing process")

	account, err := c.Account(tx.From)
	if err != nil {
		return nil, err
	}
	if !account.CanSign() {
		return nil, fmt.Errorf("%w: %s is read-only", ErrUnknownAccount, tx.From.Hex())
	}

	// Get nonce if not provided
	if tx.Nonce == 0 {
		nonce, err := c.client.PendingNonceAt(ctx, tx.From)
		if err != nil {
			log.WithError(err).Error("Failed to get nonce")
			return nil, fmt.Errorf("failed to get nonce: %w", err)
		}
		tx.Nonce = nonce
	}

	// Estimate gas if not provided
	if tx.GasLimit == 0 {
		if err := c.estimateGasAndSetLimit(ctx, tx); err != nil {
			return nil, err
		}
	}

	// Calculate fees based on network conditions
	if err := c.calculateOptimalFees(ctx, tx); err != nil {
		log.WithError(err).Error("Failed to calculate fees")
		return nil, fmt.Errorf("failed to calculate fees: %w", err)
	}

	chainID := big.NewInt(c.chainId)
	tx.ChainID = chainID

	var ethereumTx *types.Transaction
	if tx.MaxFeePerGas != nil && tx.MaxPriorityFeePerGas != nil {
		// EIP-1559 transaction
		ethereumTx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     tx.Nonce,
			GasTipCap: tx.MaxPriorityFeePerGas,
			GasFeeCap: tx.MaxFeePerGas,
			Gas:       tx.GasLimit,
			To:        tx.To,
			Value:     tx.Value,
			Data:      tx.Data,
		})
	} else if tx.GasPrice != nil {
		// Legacy transaction
		ethereumTx = types.NewTx(&types.LegacyTx{
			Nonce:    tx.Nonce,
			GasPrice: tx.GasPrice,
			Gas:      tx.GasLimit,
			To:       tx.To,
			Value:    tx.Value,
			Data:     tx.Data,
		})
	} else {
		return nil, fmt.Errorf("transaction must specify either EIP-1559 fields (MaxFeePerGas, MaxPriorityFeePerGas) or legacy GasPrice")
	}

	signedTx, err := types.SignTx(ethereumTx, types.LatestSignerForChainID(chainID), account.PrivateKey)
	if err != nil {
		log.WithError(err).Error("Failed to sign transaction")
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	log.WithFields(logrus.Fields{
		"hash":      signedTx.Hash().Hex(),
		"nonce":     tx.Nonce,
		"gas_limit": tx.GasLimit,
	}).Debug("Transaction signed successfully")
	return signedTx, nil
}

// calculateOptimalFees fills in fee fields the caller left unset
func (c *client) calculateOptimalFees(ctx context.Context, tx *Transaction) error {
	// An explicit legacy gas price wins over EIP-1559 pricing
	if tx.GasPrice != nil && (tx.MaxFeePerGas == nil || tx.MaxPriorityFeePerGas == nil) {
		tx.MaxFeePerGas, tx.MaxPriorityFeePerGas = nil, nil
		return nil
	}

	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to get latest header: %w", err)
	}

	if header.BaseFee != nil && (tx.MaxFeePerGas == nil || tx.MaxPriorityFeePerGas == nil) {
		// EIP-1559 network - fixed priority fee on top of 2x base fee. Only missing fields are filled.
		if tx.MaxPriorityFeePerGas == nil {
			tx.MaxPriorityFeePerGas = c.getFixedPriorityFee()
			// the tip can never exceed a caller-set cap
			if tx.MaxFeePerGas != nil && tx.MaxPriorityFeePerGas.Cmp(tx.MaxFeePerGas) > 0 {
				tx.MaxPriorityFeePerGas = new(big.Int).Set(tx.MaxFeePerGas)
			}
		}
		if tx.MaxFeePerGas == nil {
			maxFee := new(big.Int).Mul(header.BaseFee, big.NewInt(2))
			maxFee.Add(maxFee, tx.MaxPriorityFeePerGas)
			tx.MaxFeePerGas = maxFee
		}
	} else if tx.MaxFeePerGas == nil || tx.MaxPriorityFeePerGas == nil {
		// Legacy network - use gas price
		gasPrice, err := c.client.SuggestGasPrice(ctx)
		if err != nil {
			return fmt.Errorf("failed to get gas price: %w", err)
		}
		tx.GasPrice = gasPrice
		tx.MaxFeePerGas, tx.MaxPriorityFeePerGas = nil, nil
	}

	return c.validateFees(tx)
}

// getFixedPriorityFee returns a fixed priority fee based on the network
func (c *client) getFixedPriorityFee() *big.Int {
	switch c.chainId {
	case 1: // Ethereum mainnet
		return c.config.PriorityFeeMainnet()
	case 8453: // Base
		return c.config.PriorityFeeBase()
	default:
		return c.config.PriorityFeeDefault()
	}
}

// validateFees rejects fee caps above the configured maximum
func (c *client) validateFees(tx *Transaction) error {
	if tx.MaxFeePerGas == nil {
		return nil // Legacy transaction
	}

	maxAllowed := c.config.MaxFeePerGas()
	if tx.MaxFeePerGas.Cmp(maxAllowed) > 0 {
		return fmt.Errorf("max fee too high: %s wei", tx.MaxFeePerGas.String())
	}

	return nil
}

// GetBalance returns the ETH balance of an address
func (c *client) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	balance, err := c.client.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// WaitForTransaction polls for the receipt until it is available, the timeout elapses or ctx is done
func (c *client) WaitForTransaction(ctx context.Context, hash common.Hash) (*TransactionReceipt, error) {
	timeout := time.Duration(c.config.TransactionTimeoutSeconds()) * time.Second
	tickerInterval := time.Duration(c.config.TransactionTickerSeconds()) * time.Second

	timeoutChan := time.After(timeout)
	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.GetTransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeoutChan:
			return nil, fmt.Errorf("transaction timeout: %s", hash.Hex())
		case <-ticker.C:
		}
	}
}

// GetTransactionReceipt returns the receipt for a transaction if it exists
func (c *client) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*TransactionReceipt, error) {
	receipt, err := c.client.TransactionReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("transaction not found or pending: %w", err)
	}

	tx, _, err := c.client.TransactionByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	result := &TransactionReceipt{
		TxHash:          receipt.TxHash,
		Status:          receipt.Status,
		GasUsed:         receipt.GasUsed,
		From:            c.sender(tx),
		ContractAddress: receipt.ContractAddress,
		Logs:            receipt.Logs,
	}
	if receipt.BlockNumber != nil {
		result.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if to := tx.To(); to != nil {
		result.To = *to
	}
	return result, nil
}

// sender recovers the signer of tx, zero address if it cannot be recovered
func (c *client) sender(tx *types.Transaction) common.Address {
	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(c.chainId)), tx)
	if err != nil {
		return common.Address{}
	}
	return from
}

// Close closes the Ethereum client connection
func (c *client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}
