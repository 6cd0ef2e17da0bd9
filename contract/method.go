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

// Tx is a state-changing method of a contract.
type Tx struct {
	contract *Contract
	method   abi.Method
}

// Tx returns the transaction descriptor for a method. It panics if the ABI has no such
// method; descriptors are built once from fixed interface tables.
func (c *Contract) Tx(name string) *Tx {
	return &Tx{contract: c, method: c.method(name)}
}

func (c *Contract) method(name string) abi.Method {
	m, ok := c.abi.Methods[name]
	if !ok {
		panic(fmt.Sprintf("contract: %s has no method %q", c.name, name))
	}
	return m
}

func (t *Tx) Name() string {
	return t.method.Name
}

// EncodeCallData returns the calldata for args without touching the network.
func (t *Tx) EncodeCallData(args ...interface{}) ([]byte, error) {
	return encode(t.contract, t.method, args)
}

// EstimateGas returns the raw node estimate for the call, unbuffered.
func (t *Tx) EstimateGas(ctx context.Context, params eth.TxParams, args ...interface{}) (gas uint64, err error) {
	start := time.Now()
	defer func() { t.contract.observe(t.method.Name, metrics.OpEstimate, start, err) }()

	data, err := t.EncodeCallData(args...)
	if err != nil {
		return 0, err
	}
	merged := t.contract.defaults.Merge(params)
	gas, err = t.contract.client.Backend().EstimateGas(ctx, callMsg(t.contract.address, merged, data, false))
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas for %s.%s: %w", t.contract.name, t.method.Name, err)
	}
	return gas, nil
}

// SendTransaction signs and submits the call and returns its hash as soon as the node
// accepts it. Gas is estimated and buffered when neither params nor the defaults set it.
func (t *Tx) SendTransaction(ctx context.Context, params eth.TxParams, args ...interface{}) (hash common.Hash, err error) {
	start := time.Now()
	defer func() { t.contract.observe(t.method.Name, metrics.OpSend, start, err) }()

	data, err := t.EncodeCallData(args...)
	if err != nil {
		return common.Hash{}, err
	}
	merged := t.contract.defaults.Merge(params)
	if merged.Gas == 0 {
		estimated, err := t.contract.client.Backend().EstimateGas(ctx, callMsg(t.contract.address, merged, data, false))
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to estimate gas for %s.%s: %w", t.contract.name, t.method.Name, err)
		}
		if merged.Gas, err = t.contract.client.BufferGasLimit(ctx, estimated, true); err != nil {
			return common.Hash{}, err
		}
	}

	to := t.contract.address
	signed, err := t.contract.client.SignTransaction(ctx, eth.NewTransaction(merged, &to, data))
	if err != nil {
		return common.Hash{}, err
	}
	if _, err := t.contract.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, err
	}

	t.contract.logger.WithFields(logrus.Fields{
		"method": t.method.Name,
		"hash":   signed.Hash().Hex(),
		"from":   merged.From.Hex(),
	}).Info("Transaction submitted")
	return signed.Hash(), nil
}

// Call simulates the transaction against the latest block and returns its decoded outputs.
func (t *Tx) Call(ctx context.Context, params eth.TxParams, args ...interface{}) (out []interface{}, err error) {
	start := time.Now()
	defer func() { t.contract.observe(t.method.Name, metrics.OpCall, start, err) }()

	return call(ctx, t.contract, t.method, t.contract.defaults.Merge(params), args)
}

// View is a read-only method whose single return value decodes to T.
// Methods with several outputs decode into a struct T with matching field names.
type View[T any] struct {
	contract *Contract
	method   abi.Method
}

// NewView returns the typed descriptor for a read-only method. It panics if the ABI has no such method.
func NewView[T any](c *Contract, name string) *View[T] {
	return &View[T]{contract: c, method: c.method(name)}
}

func (v *View[T]) Name() string {
	return v.method.Name
}

func (v *View[T]) EncodeCallData(args ...interface{}) ([]byte, error) {
	return encode(v.contract, v.method, args)
}

// Call executes the method with the contract defaults.
func (v *View[T]) Call(ctx context.Context, args ...interface{}) (T, error) {
	return v.CallWith(ctx, eth.TxParams{}, args...)
}

// CallWith executes the method with params merged over the contract defaults.
func (v *View[T]) CallWith(ctx context.Context, params eth.TxParams, args ...interface{}) (result T, err error) {
	start := time.Now()
	defer func() { v.contract.observe(v.method.Name, metrics.OpCall, start, err) }()

	out, err := call(ctx, v.contract, v.method, v.contract.defaults.Merge(params), args)
	if err != nil {
		return result, err
	}
	if len(out) == 1 {
		value, ok := out[0].(T)
		if !ok {
			return result, fmt.Errorf("%w: %s.%s returned %T, want %T", ErrUnexpectedOutput, v.contract.name, v.method.Name, out[0], result)
		}
		return value, nil
	}
	if err := v.method.Outputs.Copy(&result, out); err != nil {
		return result, fmt.Errorf("%w: %s.%s: %v", ErrUnexpectedOutput, v.contract.name, v.method.Name, err)
	}
	return result, nil
}

func encode(c *Contract, method abi.Method, args []interface{}) ([]byte, error) {
	data, err := c.abi.Pack(method.Name, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s.%s: %w", c.name, method.Name, err)
	}
	return data, nil
}

func call(ctx context.Context, c *Contract, method abi.Method, params eth.TxParams, args []interface{}) ([]interface{}, error) {
	data, err := encode(c, method, args)
	if err != nil {
		return nil, err
	}
	raw, err := c.client.Backend().CallContract(ctx, callMsg(c.address, params, data, true), nil)
	if err != nil {
		return nil, fmt.Errorf("call to %s.%s failed: %w", c.name, method.Name, err)
	}
	out, err := method.Outputs.Unpack(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s.%s output: %w", c.name, method.Name, err)
	}
	return out, nil
}

// callMsg builds the eth_call/eth_estimateGas message. Fee fields are never set.
func callMsg(to common.Address, params eth.TxParams, data []byte, withGas bool) ethereum.CallMsg {
	msg := ethereum.CallMsg{
		From:  params.From,
		To:    &to,
		Value: params.Value,
		Data:  data,
	}
	if withGas {
		msg.Gas = params.Gas
	}
	return msg
}
