package eth

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a configured signer. Accounts loaded from a public key only are read-only.
type Account struct {
	Address    common.Address    // Ethereum address
	PublicKey  *ecdsa.PublicKey  // Public key (optional, can be derived)
	ChainId    int64             // Chain ID for transaction signing
	Label      string            // Optional: human-readable label
	PrivateKey *ecdsa.PrivateKey // Private key for signing transactions
}

// NewAccount returns a signing account for key.
func NewAccount(label string, key *ecdsa.PrivateKey, chainID int64) *Account {
	return &Account{
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PublicKey:  &key.PublicKey,
		ChainId:    chainID,
		Label:      label,
		PrivateKey: key,
	}
}

// CanSign reports whether the account holds a private key.
func (a *Account) CanSign() bool {
	return a != nil && a.PrivateKey != nil
}

// TxParams are the per-call transaction parameters a contract wrapper applies.
// Zero fields mean "unset": the wrapper default applies, and if that is unset too
// the value is derived from the network (gas estimate, suggested fees).
type TxParams struct {
	From                 common.Address
	Gas                  uint64
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Value                *big.Int
}

// Merge returns a copy of p with every set field of override applied on top.
// Neither receiver nor argument is modified.
func (p TxParams) Merge(override TxParams) TxParams {
	merged := TxParams{
		From:                 p.From,
		Gas:                  p.Gas,
		GasPrice:             copyBig(p.GasPrice),
		MaxFeePerGas:         copyBig(p.MaxFeePerGas),
		MaxPriorityFeePerGas: copyBig(p.MaxPriorityFeePerGas),
		Value:                copyBig(p.Value),
	}
	if override.From != (common.Address{}) {
		merged.From = override.From
	}
	if override.Gas != 0 {
		merged.Gas = override.Gas
	}
	if override.GasPrice != nil {
		merged.GasPrice = copyBig(override.GasPrice)
	}
	if override.MaxFeePerGas != nil {
		merged.MaxFeePerGas = copyBig(override.MaxFeePerGas)
	}
	if override.MaxPriorityFeePerGas != nil {
		merged.MaxPriorityFeePerGas = copyBig(override.MaxPriorityFeePerGas)
	}
	if override.Value != nil {
		merged.Value = copyBig(override.Value)
	}
	return merged
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// Transaction represents an unsigned Ethereum transaction. A nil To creates a contract.
type Transaction struct {
	From                 common.Address  `json:"from"`
	To                   *common.Address `json:"to"`
	Value                *big.Int        `json:"value"`
	Data                 []byte          `json:"data"`
	GasLimit             uint64          `json:"gas_limit"`
	GasPrice             *big.Int        `json:"gas_price"`
	MaxFeePerGas         *big.Int        `json:"max_fee_per_gas"`
	MaxPriorityFeePerGas *big.Int        `json:"max_priority_fee_per_gas"`
	Nonce                uint64          `json:"nonce"`
	ChainID              *big.Int        `json:"chain_id"`
}

// NewTransaction builds a transaction from merged call parameters.
func NewTransaction(params TxParams, to *common.Address, data []byte) *Transaction {
	return &Transaction{
		From:                 params.From,
		To:                   to,
		Value:                params.Value,
		Data:                 data,
		GasLimit:             params.Gas,
		GasPrice:             params.GasPrice,
		MaxFeePerGas:         params.MaxFeePerGas,
		MaxPriorityFeePerGas: params.MaxPriorityFeePerGas,
	}
}

// TransactionReceipt represents transaction execution result
type TransactionReceipt struct {
	TxHash          common.Hash    `json:"tx_hash"`
	Status          uint64         `json:"status"`
	BlockNumber     uint64         `json:"block_number"`
	GasUsed         uint64         `json:"gas_used"`
	From            common.Address `json:"from"`
	To              common.Address `json:"to"`
	ContractAddress common.Address `json:"contract_address"`
	Logs            []*types.Log   `json:"logs"`
}

// Succeeded reports whether the transaction was mined without reverting.
func (r *TransactionReceipt) Succeeded() bool {
	return r.Status == types.ReceiptStatusSuccessful
}
