package api

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/nando-os/setprotocol-go/assertions"
	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/contracts"
	"github.com/nando-os/setprotocol-go/eth"
)

// CoreAPI drives Set creation, issuance, redemption and vault movements through Core.
type CoreAPI struct {
	contracts     *Contracts
	core          common.Address
	transferProxy common.Address
	vault         common.Address
	logger        logrus.FieldLogger
}

func NewCoreAPI(c *Contracts, addresses Addresses) *CoreAPI {
	return &CoreAPI{
		contracts:     c,
		core:          addresses.Core,
		transferProxy: addresses.TransferProxy,
		vault:         addresses.Vault,
		logger:        c.logger.WithField("api", "core"),
	}
}

func (a *CoreAPI) CoreAddress() common.Address {
	return a.core
}

func (a *CoreAPI) TransferProxyAddress() common.Address {
	return a.transferProxy
}

func (a *CoreAPI) VaultAddress() common.Address {
	return a.vault
}

// Create validates the Set definition and sends core.create from user. The new Set address is
// only known once the transaction is mined; see SetAddressFromCreateTx.
func (a *CoreAPI) Create(ctx context.Context, user, factory common.Address, components []common.Address, units []*big.Int, naturalUnit *big.Int, name, symbol string) (common.Hash, error) {
	if err := assertions.IsValidComponents(components, units); err != nil {
		return common.Hash{}, err
	}
	if err := assertions.GreaterThanZero(naturalUnit, fmt.Sprintf("The natural unit %s inputted needs to be non-zero", naturalUnit)); err != nil {
		return common.Hash{}, err
	}
	core, err := a.contracts.LoadCore(ctx, a.core, eth.TxParams{From: user})
	if err != nil {
		return common.Hash{}, err
	}
	for _, component := range components {
		if _, err := a.contracts.LoadERC20(ctx, component, eth.TxParams{}); err != nil {
			return common.Hash{}, err
		}
	}

	hash, err := core.Create.SendTransaction(ctx, eth.TxParams{From: user}, factory, components, units, naturalUnit, name, symbol)
	if err != nil {
		return common.Hash{}, err
	}
	a.logger.WithFields(logrus.Fields{
		"factory":    factory.Hex(),
		"components": len(components),
		"name":       name,
		"hash":       hash.Hex(),
	}).Info("Set creation submitted")
	return hash, nil
}

// SetAddressFromCreateTx waits for a create transaction and returns the address of the new Set.
func (a *CoreAPI) SetAddressFromCreateTx(ctx context.Context, hash common.Hash) (common.Address, error) {
	core, err := a.contracts.LoadCore(ctx, a.core, eth.TxParams{})
	if err != nil {
		return common.Address{}, err
	}
	receipt, err := a.contracts.Client().WaitForTransaction(ctx, hash)
	if err != nil {
		return common.Address{}, err
	}
	if !receipt.Succeeded() {
		return common.Address{}, fmt.Errorf("create transaction %s reverted", hash.Hex())
	}
	return core.CreatedSetAddress(receipt)
}

// Issue checks balances and allowances for the Set's components and sends core.issue from user.
func (a *CoreAPI) Issue(ctx context.Context, user, set common.Address, quantity *big.Int) (common.Hash, error) {
	if err := requireAddress(a.transferProxy, keyTransferProxyAddress); err != nil {
		return common.Hash{}, err
	}
	token, err := a.contracts.LoadSetToken(ctx, set, eth.TxParams{From: user})
	if err != nil {
		return common.Hash{}, err
	}
	if err := checkQuantity(ctx, token, quantity); err != nil {
		return common.Hash{}, err
	}
	if err := assertions.HasSufficientBalances(ctx, token, quantity, user); err != nil {
		return common.Hash{}, err
	}
	if err := assertions.HasSufficientAllowances(ctx, token, quantity, user, a.transferProxy); err != nil {
		return common.Hash{}, err
	}
	return a.send(ctx, user, func(c *contracts.Core) *contract.Tx { return c.Issue }, set, quantity)
}

// Redeem checks the user's Set balance and sends core.redeem from user.
func (a *CoreAPI) Redeem(ctx context.Context, user, set common.Address, quantity *big.Int) (common.Hash, error) {
	token, err := a.contracts.LoadSetToken(ctx, set, eth.TxParams{From: user})
	if err != nil {
		return common.Hash{}, err
	}
	if err := checkQuantity(ctx, token, quantity); err != nil {
		return common.Hash{}, err
	}
	if err := assertions.HasSufficientTokenBalance(ctx, &token.ERC20, user, quantity); err != nil {
		return common.Hash{}, err
	}
	return a.send(ctx, user, func(c *contracts.Core) *contract.Tx { return c.Redeem }, set, quantity)
}

// Deposit moves quantity of token from user into the vault.
func (a *CoreAPI) Deposit(ctx context.Context, user, token common.Address, quantity *big.Int) (common.Hash, error) {
	if err := a.checkDeposit(ctx, user, token, quantity); err != nil {
		return common.Hash{}, err
	}
	return a.send(ctx, user, func(c *contracts.Core) *contract.Tx { return c.Deposit }, token, quantity)
}

// Withdraw moves quantity of token held for user in the vault back to user.
func (a *CoreAPI) Withdraw(ctx context.Context, user, token common.Address, quantity *big.Int) (common.Hash, error) {
	if err := a.checkWithdraw(ctx, user, token, quantity); err != nil {
		return common.Hash{}, err
	}
	return a.send(ctx, user, func(c *contracts.Core) *contract.Tx { return c.Withdraw }, token, quantity)
}

func (a *CoreAPI) BatchDeposit(ctx context.Context, user common.Address, tokens []common.Address, quantities []*big.Int) (common.Hash, error) {
	if err := batchShape(tokens, quantities); err != nil {
		return common.Hash{}, err
	}
	for i := range tokens {
		if err := a.checkDeposit(ctx, user, tokens[i], quantities[i]); err != nil {
			return common.Hash{}, err
		}
	}
	return a.send(ctx, user, func(c *contracts.Core) *contract.Tx { return c.BatchDeposit }, tokens, quantities)
}

func (a *CoreAPI) BatchWithdraw(ctx context.Context, user common.Address, tokens []common.Address, quantities []*big.Int) (common.Hash, error) {
	if err := batchShape(tokens, quantities); err != nil {
		return common.Hash{}, err
	}
	for i := range tokens {
		if err := a.checkWithdraw(ctx, user, tokens[i], quantities[i]); err != nil {
			return common.Hash{}, err
		}
	}
	return a.send(ctx, user, func(c *contracts.Core) *contract.Tx { return c.BatchWithdraw }, tokens, quantities)
}

func (a *CoreAPI) GetVaultAddress(ctx context.Context) (common.Address, error) {
	core, err := a.contracts.LoadCore(ctx, a.core, eth.TxParams{})
	if err != nil {
		return common.Address{}, err
	}
	return core.VaultAddress.Call(ctx)
}

func (a *CoreAPI) GetTransferProxyAddress(ctx context.Context) (common.Address, error) {
	core, err := a.contracts.LoadCore(ctx, a.core, eth.TxParams{})
	if err != nil {
		return common.Address{}, err
	}
	return core.TransferProxyAddress.Call(ctx)
}

func (a *CoreAPI) IsValidFactory(ctx context.Context, factory common.Address) (bool, error) {
	core, err := a.contracts.LoadCore(ctx, a.core, eth.TxParams{})
	if err != nil {
		return false, err
	}
	return core.ValidFactories.Call(ctx, factory)
}

func (a *CoreAPI) IsValidSet(ctx context.Context, set common.Address) (bool, error) {
	core, err := a.contracts.LoadCore(ctx, a.core, eth.TxParams{})
	if err != nil {
		return false, err
	}
	return core.ValidSets.Call(ctx, set)
}

func (a *CoreAPI) checkDeposit(ctx context.Context, user, token common.Address, quantity *big.Int) error {
	if err := requireAddress(a.transferProxy, keyTransferProxyAddress); err != nil {
		return err
	}
	if err := assertions.GreaterThanZero(quantity, QuantityNeedsToBeNonZero(quantity)); err != nil {
		return err
	}
	if err := assertions.FitsUint256(quantity); err != nil {
		return err
	}
	erc20, err := a.contracts.LoadERC20(ctx, token, eth.TxParams{})
	if err != nil {
		return err
	}
	if err := assertions.HasSufficientTokenBalance(ctx, erc20, user, quantity); err != nil {
		return err
	}
	return assertions.HasSufficientTokenAllowance(ctx, erc20, user, a.transferProxy, quantity)
}

func (a *CoreAPI) checkWithdraw(ctx context.Context, user, token common.Address, quantity *big.Int) error {
	if err := requireAddress(a.vault, keyVaultAddress); err != nil {
		return err
	}
	if err := assertions.GreaterThanZero(quantity, QuantityNeedsToBeNonZero(quantity)); err != nil {
		return err
	}
	if err := assertions.FitsUint256(quantity); err != nil {
		return err
	}
	vault, err := a.contracts.LoadVault(ctx, a.vault, eth.TxParams{})
	if err != nil {
		return err
	}
	return assertions.HasSufficientVaultBalance(ctx, vault, token, user, quantity)
}

func (a *CoreAPI) send(ctx context.Context, user common.Address, method func(*contracts.Core) *contract.Tx, args ...interface{}) (common.Hash, error) {
	core, err := a.contracts.LoadCore(ctx, a.core, eth.TxParams{From: user})
	if err != nil {
		return common.Hash{}, err
	}
	tx := method(core)
	hash, err := tx.SendTransaction(ctx, eth.TxParams{From: user}, args...)
	if err != nil {
		return common.Hash{}, err
	}
	a.logger.WithFields(logrus.Fields{
		"method": tx.Name(),
		"user":   user.Hex(),
		"hash":   hash.Hex(),
	}).Info("Core transaction submitted")
	return hash, nil
}

func batchShape(tokens []common.Address, quantities []*big.Int) error {
	if len(tokens) == 0 || len(tokens) != len(quantities) {
		return &assertions.ValidationError{
			Kind:    assertions.ErrInvalidComponents,
			Message: fmt.Sprintf("Batch has %d tokens and %d quantities", len(tokens), len(quantities)),
		}
	}
	return nil
}
