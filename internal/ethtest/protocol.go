package ethtest

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/contracts"
)

// Creation codes of the simulated protocol contracts, one per artifact.
var (
	CoreCode              = []byte{0x60, 0x80, 0x60, 0x40, 0x01}
	VaultCode             = []byte{0x60, 0x80, 0x60, 0x40, 0x02}
	TransferProxyCode     = []byte{0x60, 0x80, 0x60, 0x40, 0x03}
	SetTokenFactoryCode   = []byte{0x60, 0x80, 0x60, 0x40, 0x04}
	StandardTokenMockCode = []byte{0x60, 0x80, 0x60, 0x40, 0x05}
	WhitelistCode         = []byte{0x60, 0x80, 0x60, 0x40, 0x06}
)

// Protocol simulates the Set Protocol contracts on a Chain.
type Protocol struct {
	chain     *Chain
	tokens    map[common.Address]*token
	sets      map[common.Address]*setToken
	factories map[common.Address]*factory
	cores     map[common.Address]*core
	vaults    map[common.Address]*vault
	proxies   map[common.Address]*authorizable
}

type authorizable struct {
	owner       common.Address
	authorized  map[common.Address]bool
	authorities []common.Address
}

type token struct {
	name, symbol string
	decimals     *big.Int
	supply       *big.Int
	balances     map[common.Address]*big.Int
	allowances   map[[2]common.Address]*big.Int
}

type setToken struct {
	*token
	factory     common.Address
	components  []common.Address
	units       []*big.Int
	naturalUnit *big.Int
}

type factory struct {
	*authorizable
	core common.Address
}

type core struct {
	owner          common.Address
	vault          common.Address
	transferProxy  common.Address
	validFactories map[common.Address]bool
	validSets      map[common.Address]bool
}

type vault struct {
	*authorizable
	balances map[[2]common.Address]*big.Int
}

// NewProtocol registers the creation codes of every protocol contract on chain.
func NewProtocol(chain *Chain) *Protocol {
	p := &Protocol{
		chain:     chain,
		tokens:    make(map[common.Address]*token),
		sets:      make(map[common.Address]*setToken),
		factories: make(map[common.Address]*factory),
		cores:     make(map[common.Address]*core),
		vaults:    make(map[common.Address]*vault),
		proxies:   make(map[common.Address]*authorizable),
	}
	chain.RegisterCreation(CoreCode, contracts.CoreABI, p.initCore)
	chain.RegisterCreation(VaultCode, contracts.VaultABI, p.initVault)
	chain.RegisterCreation(TransferProxyCode, contracts.TransferProxyABI, p.initTransferProxy)
	chain.RegisterCreation(SetTokenFactoryCode, contracts.SetTokenFactoryABI, p.initFactory)
	chain.RegisterCreation(StandardTokenMockCode, contracts.StandardTokenMockABI, p.initStandardToken)
	chain.RegisterCreation(WhitelistCode, contracts.WhitelistABI, p.initWhitelist)
	return p
}

// Artifacts returns build artifacts for the simulated contracts, keyed by contract name.
func (p *Protocol) Artifacts() map[string]*contract.Artifact {
	artifact := func(name string, parsed abi.ABI, code []byte) *contract.Artifact {
		return &contract.Artifact{ContractName: name, ABI: parsed, Bytecode: code, Networks: map[string]contract.NetworkInfo{}}
	}
	return map[string]*contract.Artifact{
		contracts.NameCore:              artifact(contracts.NameCore, contracts.CoreABI, CoreCode),
		contracts.NameVault:             artifact(contracts.NameVault, contracts.VaultABI, VaultCode),
		contracts.NameTransferProxy:     artifact(contracts.NameTransferProxy, contracts.TransferProxyABI, TransferProxyCode),
		contracts.NameSetTokenFactory:   artifact(contracts.NameSetTokenFactory, contracts.SetTokenFactoryABI, SetTokenFactoryCode),
		contracts.NameStandardTokenMock: artifact(contracts.NameStandardTokenMock, contracts.StandardTokenMockABI, StandardTokenMockCode),
		contracts.NameWhitelist:         artifact(contracts.NameWhitelist, contracts.WhitelistABI, WhitelistCode),
	}
}

func (p *Protocol) initCore(env *Env, ct *Contract, args []interface{}) error {
	s := &core{
		owner:          env.Sender,
		validFactories: make(map[common.Address]bool),
		validSets:      make(map[common.Address]bool),
	}
	SetEntry(env, p.cores, ct.Address, s)
	p.onOwnable(ct, &s.owner)

	ct.On("vaultAddress", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{s.vault}, nil
	})
	ct.On("transferProxyAddress", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{s.transferProxy}, nil
	})
	ct.On("validFactories", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{s.validFactories[args[0].(common.Address)]}, nil
	})
	ct.On("validSets", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{s.validSets[args[0].(common.Address)]}, nil
	})
	ct.On("setVaultAddress", onlyOwner(&s.owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		setField(env, &s.vault, args[0].(common.Address))
		return nil, nil
	}))
	ct.On("setTransferProxyAddress", onlyOwner(&s.owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		setField(env, &s.transferProxy, args[0].(common.Address))
		return nil, nil
	}))
	ct.On("enableFactory", onlyOwner(&s.owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		SetEntry(env, s.validFactories, args[0].(common.Address), true)
		return nil, nil
	}))
	ct.On("disableFactory", onlyOwner(&s.owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		SetEntry(env, s.validFactories, args[0].(common.Address), false)
		return nil, nil
	}))

	ct.On("create", func(env *Env, args []interface{}) ([]interface{}, error) {
		factoryAddress := args[0].(common.Address)
		if !s.validFactories[factoryAddress] {
			return nil, Revertf("factory %s is not enabled", factoryAddress.Hex())
		}
		out, err := env.Call(factoryAddress, "create", args[1:]...)
		if err != nil {
			return nil, err
		}
		set := out[0].(common.Address)
		SetEntry(env, s.validSets, set, true)
		if err := env.Emit(contracts.CoreABI, "SetTokenCreated", set, factoryAddress, args[1], args[2], args[3], args[4], args[5]); err != nil {
			return nil, err
		}
		return []interface{}{set}, nil
	})

	ct.On("issue", func(env *Env, args []interface{}) ([]interface{}, error) {
		setAddress, quantity := args[0].(common.Address), args[1].(*big.Int)
		set, err := p.validSet(s, setAddress, quantity)
		if err != nil {
			return nil, err
		}
		v, err := p.vaultOf(s)
		if err != nil {
			return nil, err
		}
		for i, component := range set.components {
			required := set.required(i, quantity)
			if _, err := env.Call(s.transferProxy, "transfer", component, required, env.Sender, s.vault); err != nil {
				return nil, err
			}
			v.credit(env, component, setAddress, required)
		}
		set.mint(env, env.Sender, quantity)
		return nil, nil
	})

	ct.On("redeem", func(env *Env, args []interface{}) ([]interface{}, error) {
		setAddress, quantity := args[0].(common.Address), args[1].(*big.Int)
		set, err := p.validSet(s, setAddress, quantity)
		if err != nil {
			return nil, err
		}
		v, err := p.vaultOf(s)
		if err != nil {
			return nil, err
		}
		if err := set.burn(env, env.Sender, quantity); err != nil {
			return nil, err
		}
		for i, component := range set.components {
			required := set.required(i, quantity)
			if err := v.debit(env, component, setAddress, required); err != nil {
				return nil, err
			}
			v.credit(env, component, env.Sender, required)
		}
		return nil, nil
	})

	deposit := func(env *Env, tokenAddress common.Address, quantity *big.Int) error {
		if quantity.Sign() <= 0 {
			return Revertf("quantity must be positive")
		}
		v, err := p.vaultOf(s)
		if err != nil {
			return err
		}
		if _, err := env.Call(s.transferProxy, "transfer", tokenAddress, quantity, env.Sender, s.vault); err != nil {
			return err
		}
		v.credit(env, tokenAddress, env.Sender, quantity)
		return nil
	}
	withdraw := func(env *Env, tokenAddress common.Address, quantity *big.Int) error {
		v, err := p.vaultOf(s)
		if err != nil {
			return err
		}
		if err := v.debit(env, tokenAddress, env.Sender, quantity); err != nil {
			return err
		}
		// the vault pays out, so the token sees the vault as msg.sender
		payout := &Env{chain: env.chain, Sender: env.Self, Self: s.vault, Value: new(big.Int), journal: env.journal}
		_, err = payout.Call(tokenAddress, "transfer", env.Sender, quantity)
		return err
	}
	ct.On("deposit", func(env *Env, args []interface{}) ([]interface{}, error) {
		return nil, deposit(env, args[0].(common.Address), args[1].(*big.Int))
	})
	ct.On("withdraw", func(env *Env, args []interface{}) ([]interface{}, error) {
		return nil, withdraw(env, args[0].(common.Address), args[1].(*big.Int))
	})
	batch := func(step func(*Env, common.Address, *big.Int) error) Handler {
		return func(env *Env, args []interface{}) ([]interface{}, error) {
			tokens, quantities := args[0].([]common.Address), args[1].([]*big.Int)
			if len(tokens) == 0 || len(tokens) != len(quantities) {
				return nil, Revertf("token and quantity lists must be non-empty and of equal length")
			}
			for i := range tokens {
				if err := step(env, tokens[i], quantities[i]); err != nil {
					return nil, err
				}
			}
			return nil, nil
		}
	}
	ct.On("batchDeposit", batch(deposit))
	ct.On("batchWithdraw", batch(withdraw))
	return nil
}

func (p *Protocol) validSet(s *core, address common.Address, quantity *big.Int) (*setToken, error) {
	if !s.validSets[address] {
		return nil, Revertf("set %s is not valid", address.Hex())
	}
	set := p.sets[address]
	if quantity.Sign() <= 0 || new(big.Int).Mod(quantity, set.naturalUnit).Sign() != 0 {
		return nil, Revertf("quantity %s is not a multiple of the natural unit", quantity)
	}
	return set, nil
}

func (p *Protocol) vaultOf(s *core) (*vault, error) {
	v, ok := p.vaults[s.vault]
	if !ok {
		return nil, Revertf("core has no vault")
	}
	return v, nil
}

func (p *Protocol) initVault(env *Env, ct *Contract, args []interface{}) error {
	v := &vault{
		authorizable: newAuthorizableState(env.Sender),
		balances:     make(map[[2]common.Address]*big.Int),
	}
	SetEntry(env, p.vaults, ct.Address, v)
	p.onAuthorizable(ct, v.authorizable)
	ct.On("getOwnerBalance", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{v.balance(args[0].(common.Address), args[1].(common.Address))}, nil
	})
	return nil
}

func (v *vault) balance(tokenAddress, owner common.Address) *big.Int {
	if b, ok := v.balances[[2]common.Address{tokenAddress, owner}]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (v *vault) credit(env *Env, tokenAddress, owner common.Address, amount *big.Int) {
	key := [2]common.Address{tokenAddress, owner}
	SetEntry(env, v.balances, key, new(big.Int).Add(v.balance(tokenAddress, owner), amount))
}

func (v *vault) debit(env *Env, tokenAddress, owner common.Address, amount *big.Int) error {
	current := v.balance(tokenAddress, owner)
	if current.Cmp(amount) < 0 {
		return Revertf("vault balance %s of %s is below %s", current, owner.Hex(), amount)
	}
	SetEntry(env, v.balances, [2]common.Address{tokenAddress, owner}, new(big.Int).Sub(current, amount))
	return nil
}

func (p *Protocol) initTransferProxy(env *Env, ct *Contract, args []interface{}) error {
	a := newAuthorizableState(env.Sender)
	SetEntry(env, p.proxies, ct.Address, a)
	p.onAuthorizable(ct, a)
	ct.On("transfer", onlyAuthorized(a, func(env *Env, args []interface{}) ([]interface{}, error) {
		tokenAddress, quantity := args[0].(common.Address), args[1].(*big.Int)
		from, to := args[2].(common.Address), args[3].(common.Address)
		_, err := env.Call(tokenAddress, "transferFrom", from, to, quantity)
		return nil, err
	}))
	return nil
}

func (p *Protocol) initFactory(env *Env, ct *Contract, args []interface{}) error {
	f := &factory{authorizable: newAuthorizableState(env.Sender)}
	SetEntry(env, p.factories, ct.Address, f)
	p.onAuthorizable(ct, f.authorizable)
	ct.On("core", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{f.core}, nil
	})
	ct.On("setCoreAddress", onlyOwner(&f.owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		setField(env, &f.core, args[0].(common.Address))
		return nil, nil
	}))
	ct.On("create", onlyAuthorized(f.authorizable, func(env *Env, args []interface{}) ([]interface{}, error) {
		components, units := args[0].([]common.Address), args[1].([]*big.Int)
		naturalUnit := args[2].(*big.Int)
		if len(components) == 0 || len(components) != len(units) {
			return nil, Revertf("components and units must be non-empty and of equal length")
		}
		if naturalUnit.Sign() <= 0 {
			return nil, Revertf("natural unit must be positive")
		}
		for i, unit := range units {
			if unit.Sign() <= 0 {
				return nil, Revertf("unit %d must be positive", i)
			}
			if _, ok := p.chain.contracts[components[i]]; !ok {
				return nil, Revertf("component %s is not a contract", components[i].Hex())
			}
		}
		set := &setToken{
			token:       newToken(args[3].(string), args[4].(string), big.NewInt(18)),
			factory:     env.Self,
			components:  append([]common.Address(nil), components...),
			units:       append([]*big.Int(nil), units...),
			naturalUnit: new(big.Int).Set(naturalUnit),
		}
		setContract := env.Deploy(contracts.SetTokenABI)
		SetEntry(env, p.sets, setContract.Address, set)
		SetEntry(env, p.tokens, setContract.Address, set.token)
		p.onSetToken(setContract, set)
		return []interface{}{setContract.Address}, nil
	}))
	return nil
}

func (p *Protocol) initStandardToken(env *Env, ct *Contract, args []interface{}) error {
	t := newToken(args[2].(string), args[3].(string), args[4].(*big.Int))
	t.supply = new(big.Int).Set(args[1].(*big.Int))
	t.balances[args[0].(common.Address)] = new(big.Int).Set(t.supply)
	SetEntry(env, p.tokens, ct.Address, t)
	p.onERC20(ct, t)
	return nil
}

func (p *Protocol) initWhitelist(env *Env, ct *Contract, args []interface{}) error {
	owner := env.Sender
	list := append([]common.Address(nil), args[0].([]common.Address)...)
	members := make(map[common.Address]bool, len(list))
	for _, a := range list {
		members[a] = true
	}
	p.onOwnable(ct, &owner)
	ct.On("validAddresses", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{append([]common.Address{}, list...)}, nil
	})
	ct.On("whiteList", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{members[args[0].(common.Address)]}, nil
	})
	ct.On("addAddress", onlyOwner(&owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		a := args[0].(common.Address)
		if members[a] {
			return nil, Revertf("%s is already whitelisted", a.Hex())
		}
		SetEntry(env, members, a, true)
		setField(env, &list, append(append([]common.Address{}, list...), a))
		return nil, nil
	}))
	ct.On("removeAddress", onlyOwner(&owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		a := args[0].(common.Address)
		if !members[a] {
			return nil, Revertf("%s is not whitelisted", a.Hex())
		}
		SetEntry(env, members, a, false)
		setField(env, &list, without(list, a))
		return nil, nil
	}))
	return nil
}

func (p *Protocol) onSetToken(ct *Contract, set *setToken) {
	p.onERC20(ct, set.token)
	ct.On("naturalUnit", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{new(big.Int).Set(set.naturalUnit)}, nil
	})
	ct.On("factory", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{set.factory}, nil
	})
	ct.On("getComponents", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{append([]common.Address{}, set.components...)}, nil
	})
	ct.On("getUnits", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{append([]*big.Int{}, set.units...)}, nil
	})

	// Direct issuance pulls components through the protocol transfer proxy.
	ct.On("issue", func(env *Env, args []interface{}) ([]interface{}, error) {
		quantity := args[0].(*big.Int)
		if quantity.Sign() <= 0 || new(big.Int).Mod(quantity, set.naturalUnit).Sign() != 0 {
			return nil, Revertf("quantity %s is not a multiple of the natural unit", quantity)
		}
		proxy := p.transferProxyOf(set)
		if proxy == (common.Address{}) {
			return nil, Revertf("set has no transfer proxy")
		}
		asProxy := &Env{chain: env.chain, Sender: env.Self, Self: proxy, Value: new(big.Int), journal: env.journal}
		for i, component := range set.components {
			if _, err := asProxy.Call(component, "transferFrom", env.Sender, env.Self, set.required(i, quantity)); err != nil {
				return nil, err
			}
		}
		set.mint(env, env.Sender, quantity)
		if err := env.Emit(contracts.SetTokenABI, "LogIssuance", env.Sender, quantity); err != nil {
			return nil, err
		}
		return []interface{}{true}, nil
	})
	ct.On("redeem", func(env *Env, args []interface{}) ([]interface{}, error) {
		quantity := args[0].(*big.Int)
		if quantity.Sign() <= 0 || new(big.Int).Mod(quantity, set.naturalUnit).Sign() != 0 {
			return nil, Revertf("quantity %s is not a multiple of the natural unit", quantity)
		}
		if err := set.burn(env, env.Sender, quantity); err != nil {
			return nil, err
		}
		for i, component := range set.components {
			if _, err := env.Call(component, "transfer", env.Sender, set.required(i, quantity)); err != nil {
				return nil, err
			}
		}
		if err := env.Emit(contracts.SetTokenABI, "LogRedemption", env.Sender, quantity); err != nil {
			return nil, err
		}
		return []interface{}{true}, nil
	})
}

func (p *Protocol) transferProxyOf(set *setToken) common.Address {
	f, ok := p.factories[set.factory]
	if !ok {
		return common.Address{}
	}
	c, ok := p.cores[f.core]
	if !ok {
		return common.Address{}
	}
	return c.transferProxy
}

func (s *setToken) required(i int, quantity *big.Int) *big.Int {
	required := new(big.Int).Mul(quantity, s.units[i])
	return required.Div(required, s.naturalUnit)
}

func (p *Protocol) onERC20(ct *Contract, t *token) {
	ct.On("name", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{t.name}, nil
	})
	ct.On("symbol", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{t.symbol}, nil
	})
	ct.On("decimals", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{new(big.Int).Set(t.decimals)}, nil
	})
	ct.On("totalSupply", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{new(big.Int).Set(t.supply)}, nil
	})
	ct.On("balanceOf", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{t.balance(args[0].(common.Address))}, nil
	})
	ct.On("allowance", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{t.allowance(args[0].(common.Address), args[1].(common.Address))}, nil
	})
	ct.On("transfer", func(env *Env, args []interface{}) ([]interface{}, error) {
		if err := t.move(env, env.Sender, args[0].(common.Address), args[1].(*big.Int)); err != nil {
			return nil, err
		}
		return []interface{}{true}, nil
	})
	ct.On("approve", func(env *Env, args []interface{}) ([]interface{}, error) {
		spender, value := args[0].(common.Address), args[1].(*big.Int)
		SetEntry(env, t.allowances, [2]common.Address{env.Sender, spender}, new(big.Int).Set(value))
		if err := env.Emit(contracts.ERC20ABI, "Approval", env.Sender, spender, value); err != nil {
			return nil, err
		}
		return []interface{}{true}, nil
	})
	ct.On("transferFrom", func(env *Env, args []interface{}) ([]interface{}, error) {
		from, to, value := args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int)
		allowed := t.allowance(from, env.Sender)
		if allowed.Cmp(value) < 0 {
			return nil, Revertf("allowance %s of %s is below %s", allowed, env.Sender.Hex(), value)
		}
		if err := t.move(env, from, to, value); err != nil {
			return nil, err
		}
		SetEntry(env, t.allowances, [2]common.Address{from, env.Sender}, allowed.Sub(allowed, value))
		return []interface{}{true}, nil
	})
}

func newToken(name, symbol string, decimals *big.Int) *token {
	return &token{
		name:       name,
		symbol:     symbol,
		decimals:   new(big.Int).Set(decimals),
		supply:     new(big.Int),
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[[2]common.Address]*big.Int),
	}
}

func (t *token) balance(owner common.Address) *big.Int {
	if b, ok := t.balances[owner]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (t *token) allowance(owner, spender common.Address) *big.Int {
	if a, ok := t.allowances[[2]common.Address{owner, spender}]; ok {
		return new(big.Int).Set(a)
	}
	return new(big.Int)
}

func (t *token) move(env *Env, from, to common.Address, value *big.Int) error {
	balance := t.balance(from)
	if balance.Cmp(value) < 0 {
		return Revertf("balance %s of %s is below %s", balance, from.Hex(), value)
	}
	SetEntry(env, t.balances, from, new(big.Int).Sub(balance, value))
	SetEntry(env, t.balances, to, new(big.Int).Add(t.balance(to), value))
	return env.Emit(contracts.ERC20ABI, "Transfer", from, to, value)
}

func (t *token) mint(env *Env, to common.Address, value *big.Int) {
	SetEntry(env, t.balances, to, new(big.Int).Add(t.balance(to), value))
	setField(env, &t.supply, new(big.Int).Add(t.supply, value))
}

func (t *token) burn(env *Env, from common.Address, value *big.Int) error {
	balance := t.balance(from)
	if balance.Cmp(value) < 0 {
		return Revertf("balance %s of %s is below %s", balance, from.Hex(), value)
	}
	SetEntry(env, t.balances, from, new(big.Int).Sub(balance, value))
	setField(env, &t.supply, new(big.Int).Sub(t.supply, value))
	return nil
}

func newAuthorizableState(owner common.Address) *authorizable {
	return &authorizable{owner: owner, authorized: make(map[common.Address]bool)}
}

func (p *Protocol) onOwnable(ct *Contract, owner *common.Address) {
	ct.On("owner", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{*owner}, nil
	})
	ct.On("transferOwnership", onlyOwner(owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		next := args[0].(common.Address)
		if next == (common.Address{}) {
			return nil, Revertf("new owner is the zero address")
		}
		setField(env, owner, next)
		return nil, nil
	}))
	ct.On("renounceOwnership", onlyOwner(owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		setField(env, owner, common.Address{})
		return nil, nil
	}))
}

func (p *Protocol) onAuthorizable(ct *Contract, a *authorizable) {
	p.onOwnable(ct, &a.owner)
	ct.On("authorized", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{a.authorized[args[0].(common.Address)]}, nil
	})
	ct.On("authorities", func(env *Env, args []interface{}) ([]interface{}, error) {
		i := args[0].(*big.Int)
		if !i.IsInt64() || i.Int64() >= int64(len(a.authorities)) {
			return nil, Revertf("index %s out of range", i)
		}
		return []interface{}{a.authorities[i.Int64()]}, nil
	})
	ct.On("getAuthorizedAddresses", func(env *Env, args []interface{}) ([]interface{}, error) {
		return []interface{}{append([]common.Address{}, a.authorities...)}, nil
	})
	ct.On("addAuthorizedAddress", onlyOwner(&a.owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		target := args[0].(common.Address)
		if a.authorized[target] {
			return nil, Revertf("%s is already authorized", target.Hex())
		}
		SetEntry(env, a.authorized, target, true)
		setField(env, &a.authorities, append(append([]common.Address{}, a.authorities...), target))
		return nil, env.Emit(ct.ABI, "AddressAuthorized", target, env.Sender)
	}))
	ct.On("removeAuthorizedAddress", onlyOwner(&a.owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		target := args[0].(common.Address)
		if !a.authorized[target] {
			return nil, Revertf("%s is not authorized", target.Hex())
		}
		SetEntry(env, a.authorized, target, false)
		setField(env, &a.authorities, without(a.authorities, target))
		return nil, env.Emit(ct.ABI, "AuthorizedAddressRemoved", target, env.Sender)
	}))
	ct.On("removeAuthorizedAddressAtIndex", onlyOwner(&a.owner, func(env *Env, args []interface{}) ([]interface{}, error) {
		target, i := args[0].(common.Address), args[1].(*big.Int)
		if !i.IsInt64() || i.Int64() >= int64(len(a.authorities)) || a.authorities[i.Int64()] != target {
			return nil, Revertf("%s is not at index %s", target.Hex(), i)
		}
		SetEntry(env, a.authorized, target, false)
		setField(env, &a.authorities, without(a.authorities, target))
		return nil, env.Emit(ct.ABI, "AuthorizedAddressRemoved", target, env.Sender)
	}))
}

func onlyOwner(owner *common.Address, h Handler) Handler {
	return func(env *Env, args []interface{}) ([]interface{}, error) {
		if env.Sender != *owner {
			return nil, Revertf("caller %s is not the owner", env.Sender.Hex())
		}
		return h(env, args)
	}
}

func onlyAuthorized(a *authorizable, h Handler) Handler {
	return func(env *Env, args []interface{}) ([]interface{}, error) {
		if !a.authorized[env.Sender] {
			return nil, Revertf("caller %s is not authorized", env.Sender.Hex())
		}
		return h(env, args)
	}
}

func setField[T any](env *Env, field *T, value T) {
	old := *field
	*field = value
	env.OnRevert(func() { *field = old })
}

func without(list []common.Address, a common.Address) []common.Address {
	out := make([]common.Address, 0, len(list))
	for _, item := range list {
		if item != a {
			out = append(out, item)
		}
	}
	return out
}
