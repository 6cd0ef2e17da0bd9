package eth

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/viper"
)

const (
	keyRpcURL  = "eth.rpc_url"
	keyChainID = "eth.chain_id"

	// -- accounts and private keys
	keyAccountsList         = "eth.accounts"
	keyAccountPrivateKeyFmt = "eth.account.%s.private_key"
	keyAccountPublicKeyFmt  = "eth.account.%s.public_key"

	// -- gas configuration
	// Recommended settings:
	// Development/Testing:
	//   ETH_GAS_LIMIT_BUFFER_SIMPLE=1.2    # Higher buffers for testing
	//   ETH_GAS_LIMIT_BUFFER_COMPLEX=1.4
	// Production - Ethereum Mainnet:
	//   ETH_GAS_LIMIT_BUFFER_SIMPLE=1.1    # Higher costs, more conservative
	//   ETH_GAS_LIMIT_BUFFER_COMPLEX=1.25
	keyGasLimitBufferSimple  = "eth.gas_limit_buffer_simple"
	keyGasLimitBufferComplex = "eth.gas_limit_buffer_complex"

	// Wrapper-level transaction defaults. Zero means "estimate" / "ask the node".
	keyDefaultGasLimit = "eth.default_gas_limit"
	keyDefaultGasPrice = "eth.default_gas_price"

	// -- fee configuration
	// Max fee per gas in wei (default: 500 gwei)
	keyMaxFeePerGas = "eth.max_fee_per_gas"
	// Priority fee per gas in wei (network-specific, defaults: 2 gwei for mainnet, 1 gwei for Base, 1.5 gwei for others)
	keyPriorityFeeMainnet = "eth.priority_fee_mainnet"
	keyPriorityFeeBase    = "eth.priority_fee_base"
	keyPriorityFeeDefault = "eth.priority_fee_default"

	keyTransactionTimeoutSeconds = "eth.transaction_timeout_seconds"
	keyTransactionTickerSeconds  = "eth.transaction_ticker_seconds"

	// --- Units and defaults ---
	GWEI = 1000000000 // 1 gwei in wei

	DEFAULT_PRIORITY_FEE_MAINNET = 2 * GWEI       // 2 gwei
	DEFAULT_PRIORITY_FEE_BASE    = 1 * GWEI       // 1 gwei
	DEFAULT_PRIORITY_FEE_OTHER   = 15 * GWEI / 10 // 1.5 gwei
	DEFAULT_MAX_FEE_PER_GAS      = 500 * GWEI     // 500 gwei

	DEFAULT_GAS_LIMIT_BUFFER_SIMPLE  = 1.1
	DEFAULT_GAS_LIMIT_BUFFER_COMPLEX = 1.2

	// --- Transaction monitoring defaults ---
	DEFAULT_TRANSACTION_TIMEOUT_SECONDS = 300 // 5 minutes
	DEFAULT_TRANSACTION_TICKER_SECONDS  = 3   // 3 seconds
)

// Config is the read-only view of the client configuration.
type Config interface {
	ChainID() int64
	Accounts() []*Account
	RPCURL() string
	GasLimitBufferSimple() float64
	GasLimitBufferComplex() float64
	DefaultGasLimit() uint64
	DefaultGasPrice() *big.Int
	MaxFeePerGas() *big.Int
	PriorityFeeMainnet() *big.Int
	PriorityFeeBase() *big.Int
	PriorityFeeDefault() *big.Int
	TransactionTimeoutSeconds() int
	TransactionTickerSeconds() int
}

type config struct {
	chainId int64
	acounts []*Account
	rpcURL  string
	v       *viper.Viper
}

var _ Config = (*config)(nil)

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyGasLimitBufferSimple, DEFAULT_GAS_LIMIT_BUFFER_SIMPLE)
	v.SetDefault(keyGasLimitBufferComplex, DEFAULT_GAS_LIMIT_BUFFER_COMPLEX)
	v.SetDefault(keyTransactionTimeoutSeconds, DEFAULT_TRANSACTION_TIMEOUT_SECONDS)
	v.SetDefault(keyTransactionTickerSeconds, DEFAULT_TRANSACTION_TICKER_SECONDS)
	return v
}

// NewConfiguration loads the configuration from ETH_* environment variables.
func NewConfiguration() (*config, error) {
	return loadConfiguration(newViper())
}

// NewConfigurationFromFile loads a YAML (or any viper-supported) file.
// Environment variables still take precedence over values from the file.
func NewConfigurationFromFile(path string) (*config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return loadConfiguration(v)
}

// NewStaticConfiguration builds a configuration from explicit accounts, e.g. for an
// in-process backend. Tunables are still read from ETH_* variables when present.
func NewStaticConfiguration(chainID int64, rpcURL string, accounts ...*Account) Config {
	return &config{chainId: chainID, rpcURL: rpcURL, acounts: accounts, v: newViper()}
}

func loadConfiguration(v *viper.Viper) (*config, error) {
	if v.GetString(keyChainID) == "" {
		return nil, fmt.Errorf("ETH_CHAIN_ID environment variable is not set")
	}

	chainId, err := parseInt64(v.GetString(keyChainID))
	if err != nil {
		return nil, fmt.Errorf("invalid ETH_CHAIN_ID: %w", err)
	}

	accounts, err := loadAccounts(v, chainId)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts found in ETH_ACCOUNTS environment variable")
	}

	return &config{
		rpcURL:  v.GetString(keyRpcURL),
		chainId: chainId,
		acounts: accounts,
		v:       v,
	}, nil
}

func parseInt64(s string) (int64, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || !n.IsInt64() {
		return 0, fmt.Errorf("not an int64: %q", s)
	}
	return n.Int64(), nil
}

func (c *config) ChainID() int64 {
	return c.chainId
}

func (c *config) Accounts() []*Account {
	return c.acounts
}

func (c *config) RPCURL() string {
	return c.rpcURL
}

// GasLimitBufferSimple returns the buffer multiplier for calls without data
func (c *config) GasLimitBufferSimple() float64 {
	return c.buffer(keyGasLimitBufferSimple, DEFAULT_GAS_LIMIT_BUFFER_SIMPLE)
}

// GasLimitBufferComplex returns the buffer multiplier for contract calls
func (c *config) GasLimitBufferComplex() float64 {
	return c.buffer(keyGasLimitBufferComplex, DEFAULT_GAS_LIMIT_BUFFER_COMPLEX)
}

func (c *config) buffer(key string, fallback float64) float64 {
	buffer := c.v.GetFloat64(key)
	// Keep within reasonable bounds (0.5 to 3.0)
	if buffer < 0.5 || buffer > 3.0 {
		return fallback
	}
	return buffer
}

// DefaultGasLimit returns the wrapper-level gas limit, 0 when gas should be estimated
func (c *config) DefaultGasLimit() uint64 {
	return c.v.GetUint64(keyDefaultGasLimit)
}

// DefaultGasPrice returns the wrapper-level legacy gas price, nil when fees are computed per call
func (c *config) DefaultGasPrice() *big.Int {
	return c.bigOrNil(keyDefaultGasPrice)
}

// MaxFeePerGas returns the max fee per gas in wei (default: 500 gwei)
func (c *config) MaxFeePerGas() *big.Int {
	return c.bigOrDefault(keyMaxFeePerGas, DEFAULT_MAX_FEE_PER_GAS)
}

// PriorityFeeMainnet returns the fixed priority fee for Ethereum mainnet (default: 2 gwei)
func (c *config) PriorityFeeMainnet() *big.Int {
	return c.bigOrDefault(keyPriorityFeeMainnet, DEFAULT_PRIORITY_FEE_MAINNET)
}

// PriorityFeeBase returns the fixed priority fee for Base (default: 1 gwei)
func (c *config) PriorityFeeBase() *big.Int {
	return c.bigOrDefault(keyPriorityFeeBase, DEFAULT_PRIORITY_FEE_BASE)
}

// PriorityFeeDefault returns the fixed priority fee for other networks (default: 1.5 gwei)
func (c *config) PriorityFeeDefault() *big.Int {
	return c.bigOrDefault(keyPriorityFeeDefault, DEFAULT_PRIORITY_FEE_OTHER)
}

func (c *config) bigOrDefault(key string, fallback int64) *big.Int {
	if v := c.bigOrNil(key); v != nil {
		return v
	}
	return big.NewInt(fallback)
}

func (c *config) bigOrNil(key string) *big.Int {
	s := c.v.GetString(key)
	if s == "" {
		return nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil
	}
	return v
}

// TransactionTimeoutSeconds returns the transaction timeout in seconds (default: 300)
func (c *config) TransactionTimeoutSeconds() int {
	timeout := c.v.GetInt(keyTransactionTimeoutSeconds)
	if timeout <= 0 {
		return DEFAULT_TRANSACTION_TIMEOUT_SECONDS
	}
	return timeout
}

// TransactionTickerSeconds returns the transaction ticker interval in seconds (default: 3)
func (c *config) TransactionTickerSeconds() int {
	ticker := c.v.GetInt(keyTransactionTickerSeconds)
	if ticker <= 0 {
		return DEFAULT_TRANSACTION_TICKER_SECONDS
	}
	return ticker
}

// DefaultTxParams returns the wrapper defaults for the given sender.
func DefaultTxParams(cfg Config, from common.Address) TxParams {
	return TxParams{
		From:     from,
		Gas:      cfg.DefaultGasLimit(),
		GasPrice: cfg.DefaultGasPrice(),
	}
}

func loadAccounts(v *viper.Viper, chainID int64) ([]*Account, error) {
	var accounts []*Account
	accountLabels := v.GetString(keyAccountsList)
	if accountLabels == "" {
		return nil, fmt.Errorf("ETH_ACCOUNTS env variable not set")
	}
	for _, label := range strings.Split(accountLabels, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)

		privHex := v.GetString(fmt.Sprintf(keyAccountPrivateKeyFmt, key))
		pubHex := v.GetString(fmt.Sprintf(keyAccountPublicKeyFmt, key))

		switch {
		case privHex != "":
			// create account based on private key
			privKey, err := crypto.HexToECDSA(strings.TrimPrefix(privHex, "0x"))
			if err != nil {
				return nil, fmt.Errorf("invalid private key for %s: %w", label, err)
			}
			pubKey := privKey.Public().(*ecdsa.PublicKey)
			accounts = append(accounts, &Account{
				Address:    crypto.PubkeyToAddress(*pubKey),
				PublicKey:  pubKey,
				ChainId:    chainID,
				Label:      label,
				PrivateKey: privKey,
			})
		case pubHex != "":
			// read-only account: can be a query target but never a sender
			pubKey, err := crypto.UnmarshalPubkey(common.FromHex(pubHex))
			if err != nil {
				return nil, fmt.Errorf("invalid public key for %s: %w", label, err)
			}
			accounts = append(accounts, &Account{
				Address:   crypto.PubkeyToAddress(*pubKey),
				PublicKey: pubKey,
				ChainId:   chainID,
				Label:     label,
			})
		default:
			return nil, fmt.Errorf("no private or public key found for account[%s] in environment variables", label)
		}
	}
	return accounts, nil
}
