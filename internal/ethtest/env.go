package ethtest

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

type journal struct {
	undo []func()
	logs []*types.Log
}

func (j *journal) revert() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo, j.logs = nil, nil
}

// Env is the execution context of one message: msg.sender, the called contract and
// the journal every state change is recorded in.
type Env struct {
	chain   *Chain
	Sender  common.Address
	Self    common.Address
	Value   *big.Int
	journal *journal
}

func (c *Chain) newEnv(sender, self common.Address, value *big.Int) *Env {
	return &Env{chain: c, Sender: sender, Self: self, Value: value, journal: &journal{}}
}

// Revertf aborts the execution.
func Revertf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrReverted, fmt.Sprintf(format, args...))
}

// Call invokes another contract with Self as msg.sender and returns its decoded outputs.
func (e *Env) Call(to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	ct, ok := e.chain.contracts[to]
	if !ok {
		return nil, Revertf("call to non-contract %s", to.Hex())
	}
	data, err := ct.ABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	inner := &Env{chain: e.chain, Sender: e.Self, Self: to, Value: new(big.Int), journal: e.journal}
	raw, err := inner.dispatch(data)
	if err != nil {
		return nil, err
	}
	return ct.ABI.Methods[method].Outputs.Unpack(raw)
}

// Deploy creates a contract owned by Self at the next address of its nonce.
func (e *Env) Deploy(parsed abi.ABI) *Contract {
	nonce := e.chain.nonces[e.Self]
	SetEntry(e, e.chain.nonces, e.Self, nonce+1)
	address := crypto.CreateAddress(e.Self, nonce)
	ct := e.chain.install(address, parsed, []byte{0x60, 0x80})
	e.OnRevert(func() { delete(e.chain.contracts, address) })
	return ct
}

// Emit appends a log for event, splitting args into indexed topics and data by the event ABI.
func (e *Env) Emit(parsed abi.ABI, event string, args ...interface{}) error {
	ev, ok := parsed.Events[event]
	if !ok {
		return fmt.Errorf("unknown event %q", event)
	}
	if len(args) != len(ev.Inputs) {
		return fmt.Errorf("event %s: expected %d arguments, got %d", event, len(ev.Inputs), len(args))
	}
	topics := []common.Hash{ev.ID}
	var data []interface{}
	for i, input := range ev.Inputs {
		if !input.Indexed {
			data = append(data, args[i])
			continue
		}
		addr, ok := args[i].(common.Address)
		if !ok {
			return fmt.Errorf("event %s: only address topics are supported", event)
		}
		topics = append(topics, common.BytesToHash(addr.Bytes()))
	}
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return err
	}
	e.journal.logs = append(e.journal.logs, &types.Log{Address: e.Self, Topics: topics, Data: packed})
	return nil
}

// OnRevert records an undo step for a state change made outside SetEntry.
func (e *Env) OnRevert(undo func()) {
	e.journal.undo = append(e.journal.undo, undo)
}

// SetEntry writes m[k] = v and journals the previous value.
func SetEntry[K comparable, V any](e *Env, m map[K]V, k K, v V) {
	old, had := m[k]
	m[k] = v
	e.OnRevert(func() {
		if had {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
}

func (e *Env) dispatch(data []byte) ([]byte, error) {
	ct := e.chain.contracts[e.Self]
	if len(data) < 4 {
		return nil, Revertf("no fallback on %s", e.Self.Hex())
	}
	method, err := ct.ABI.MethodById(data[:4])
	if err != nil {
		return nil, Revertf("unknown selector %x", data[:4])
	}
	h, ok := ct.handlers[method.Name]
	if !ok {
		return nil, Revertf("%s is not implemented", method.Name)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, Revertf("bad arguments for %s: %v", method.Name, err)
	}
	out, err := h(e, args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

func (e *Env) create(data []byte) error {
	cr, input, err := e.chain.creationFor(data)
	if err != nil {
		return err
	}
	args, err := cr.abi.Constructor.Inputs.Unpack(input)
	if err != nil {
		return Revertf("bad constructor arguments: %v", err)
	}
	ct := e.chain.install(e.Self, cr.abi, cr.code)
	e.OnRevert(func() { delete(e.chain.contracts, ct.Address) })
	if cr.init == nil {
		return nil
	}
	return cr.init(e, ct, args)
}
