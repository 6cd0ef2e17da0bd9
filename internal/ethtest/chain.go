// Package ethtest provides an in-memory chain that implements eth.EthClient by decoding
// calldata against registered ABIs and dispatching it to Go handlers.
package ethtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nando-os/setprotocol-go/eth"
)

const (
	DefaultGasEstimate = uint64(120_000)
	DefaultBlockGas    = uint64(30_000_000)
)

// ErrReverted is wrapped by every failed execution, mirroring the node's "execution reverted".
var ErrReverted = errors.New("execution reverted")

var _ eth.EthClient = (*Chain)(nil)

// Handler executes one contract method. Returned values are packed with the method outputs.
type Handler func(env *Env, args []interface{}) ([]interface{}, error)

// Constructor initialises a freshly created contract from its decoded constructor arguments.
type Constructor func(env *Env, c *Contract, args []interface{}) error

type Contract struct {
	Address  common.Address
	ABI      abi.ABI
	Code     []byte
	handlers map[string]Handler
}

// On registers the handler for a method of the contract ABI.
func (c *Contract) On(method string, h Handler) *Contract {
	if _, ok := c.ABI.Methods[method]; !ok {
		panic(fmt.Sprintf("ethtest: %s has no method %q", c.Address.Hex(), method))
	}
	c.handlers[method] = h
	return c
}

type creation struct {
	abi  abi.ABI
	code []byte
	init Constructor
}

// Chain mines every accepted transaction into its own block.
type Chain struct {
	mu sync.Mutex

	chainID  *big.Int
	baseFee  *big.Int
	gasPrice *big.Int
	signer   types.Signer

	contracts map[common.Address]*Contract
	creations []creation
	nonces    map[common.Address]uint64
	balances  map[common.Address]*big.Int
	txs       map[common.Hash]*types.Transaction
	receipts  map[common.Hash]*types.Receipt
	sent      []*types.Transaction
	block     uint64

	// GasEstimate is returned by EstimateGas for calls that do not revert.
	GasEstimate uint64
}

func New(chainID int64) *Chain {
	id := big.NewInt(chainID)
	return &Chain{
		chainID:     id,
		baseFee:     big.NewInt(eth.GWEI),
		gasPrice:    big.NewInt(eth.GWEI),
		signer:      types.LatestSignerForChainID(id),
		contracts:   make(map[common.Address]*Contract),
		nonces:      make(map[common.Address]uint64),
		balances:    make(map[common.Address]*big.Int),
		txs:         make(map[common.Hash]*types.Transaction),
		receipts:    make(map[common.Hash]*types.Receipt),
		GasEstimate: DefaultGasEstimate,
	}
}

// Install places a contract at address without a creation transaction.
func (c *Chain) Install(address common.Address, parsed abi.ABI) *Contract {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.install(address, parsed, []byte{0x60, 0x80})
}

func (c *Chain) install(address common.Address, parsed abi.ABI, code []byte) *Contract {
	ct := &Contract{
		Address:  address,
		ABI:      parsed,
		Code:     append([]byte{}, code...),
		handlers: make(map[string]Handler),
	}
	c.contracts[address] = ct
	return ct
}

// RegisterCreation makes creation transactions whose data starts with code build a contract
// with init. Longer codes are matched first.
func (c *Chain) RegisterCreation(code []byte, parsed abi.ABI, init Constructor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creations = append(c.creations, creation{abi: parsed, code: append([]byte{}, code...), init: init})
}

// SetBalance sets the ether balance of an account.
func (c *Chain) SetBalance(address common.Address, balance *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[address] = new(big.Int).Set(balance)
}

// Sent returns every transaction accepted so far, in order.
func (c *Chain) Sent() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.sent...)
}

func (c *Chain) ChainID(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.chainID), nil
}

func (c *Chain) BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.balances[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (c *Chain) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ct, ok := c.contracts[account]; ok {
		return append([]byte{}, ct.Code...), nil
	}
	return nil, nil
}

// CallContract executes msg and discards every state change.
func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.To == nil {
		return nil, fmt.Errorf("%w: call without recipient", ErrReverted)
	}
	if _, ok := c.contracts[*msg.To]; !ok {
		return nil, nil
	}
	env := c.newEnv(msg.From, *msg.To, msg.Value)
	defer env.journal.revert()
	return env.dispatch(msg.Data)
}

// EstimateGas executes msg, discards its changes and returns GasEstimate unless it reverted.
func (c *Chain) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.To == nil {
		if _, _, err := c.creationFor(msg.Data); err != nil {
			return 0, err
		}
		return c.GasEstimate, nil
	}
	if _, ok := c.contracts[*msg.To]; !ok {
		return 21_000, nil
	}
	env := c.newEnv(msg.From, *msg.To, msg.Value)
	defer env.journal.revert()
	if _, err := env.dispatch(msg.Data); err != nil {
		return 0, err
	}
	return c.GasEstimate, nil
}

// SendTransaction verifies the signature and nonce, executes the transaction and mines it.
// A reverted execution still produces a receipt, with a failed status.
func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	from, err := types.Sender(c.signer, tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if tx.ChainId().Cmp(c.chainID) != 0 {
		return fmt.Errorf("invalid chain id %s", tx.ChainId())
	}
	if expected := c.nonces[from]; tx.Nonce() != expected {
		return fmt.Errorf("nonce too low or too high: expected %d, got %d", expected, tx.Nonce())
	}
	if _, dup := c.txs[tx.Hash()]; dup {
		return errors.New("already known")
	}
	nonce := c.nonces[from]
	c.nonces[from] = nonce + 1
	c.block++

	receipt := &types.Receipt{
		Type:              tx.Type(),
		Status:            types.ReceiptStatusSuccessful,
		TxHash:            tx.Hash(),
		GasUsed:           c.GasEstimate,
		CumulativeGasUsed: c.GasEstimate,
		BlockNumber:       new(big.Int).SetUint64(c.block),
	}

	var env *Env
	if tx.To() == nil {
		address := crypto.CreateAddress(from, nonce)
		env = c.newEnv(from, address, tx.Value())
		if err := env.create(tx.Data()); err != nil {
			env.journal.revert()
			receipt.Status = types.ReceiptStatusFailed
		} else {
			receipt.ContractAddress = address
		}
	} else {
		env = c.newEnv(from, *tx.To(), tx.Value())
		if _, ok := c.contracts[*tx.To()]; ok {
			if _, err := env.dispatch(tx.Data()); err != nil {
				env.journal.revert()
				receipt.Status = types.ReceiptStatusFailed
			}
		}
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		receipt.Logs = env.journal.logs
		for i, log := range receipt.Logs {
			log.TxHash = tx.Hash()
			log.BlockNumber = c.block
			log.Index = uint(i)
		}
	}
	if receipt.Logs == nil {
		receipt.Logs = []*types.Log{}
	}

	c.txs[tx.Hash()] = tx
	c.receipts[tx.Hash()] = receipt
	c.sent = append(c.sent, tx)
	return nil
}

func (c *Chain) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx, ok := c.txs[hash]
	if !ok {
		return nil, false, ethereum.NotFound
	}
	return tx, false, nil
}

func (c *Chain) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	receipt, ok := c.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func (c *Chain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], nil
}

func (c *Chain) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &types.Header{
		Number:   new(big.Int).SetUint64(c.block),
		GasLimit: DefaultBlockGas,
		BaseFee:  new(big.Int).Set(c.baseFee),
	}, nil
}

func (c *Chain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(c.gasPrice), nil
}

func (c *Chain) Close() {}

func (c *Chain) creationFor(data []byte) (creation, []byte, error) {
	best := -1
	for i, cr := range c.creations {
		if bytes.HasPrefix(data, cr.code) && (best < 0 || len(cr.code) > len(c.creations[best].code)) {
			best = i
		}
	}
	if best < 0 {
		return creation{}, nil, fmt.Errorf("%w: unknown creation code", ErrReverted)
	}
	cr := c.creations[best]
	return cr, data[len(cr.code):], nil
}
