// Package assertions checks issuance and redemption preconditions against current chain
// state before a transaction is sent. The checks race with on-chain changes; they only save
// gas on transactions that would revert anyway.
package assertions

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nando-os/setprotocol-go/contracts"
)

// GreaterThanZero fails with message unless quantity > 0.
func GreaterThanZero(quantity *big.Int, message string) error {
	if quantity == nil || quantity.Sign() <= 0 {
		return invalid(ErrNonPositiveQuantity, message)
	}
	return nil
}

// FitsUint256 fails for negative quantities and quantities above 2^256-1.
func FitsUint256(quantity *big.Int) error {
	if quantity == nil || quantity.Sign() < 0 {
		return invalid(ErrQuantityOverflow, fmt.Sprintf("The quantity %s is not a valid uint256", quantity))
	}
	if _, overflow := uint256.FromBig(quantity); overflow {
		return invalid(ErrQuantityOverflow, fmt.Sprintf("The quantity %s exceeds the maximum uint256 value", quantity))
	}
	return nil
}

// IsMultipleOfNaturalUnit reads the Set's natural unit and checks quantity against it.
func IsMultipleOfNaturalUnit(ctx context.Context, set *contracts.SetToken, quantity *big.Int) error {
	naturalUnit, err := set.NaturalUnit.Call(ctx)
	if err != nil {
		return err
	}
	if naturalUnit.Sign() <= 0 || new(big.Int).Mod(quantity, naturalUnit).Sign() != 0 {
		return invalid(ErrNotMultipleOfNaturalUnit, fmt.Sprintf(
			"Quantity of Set %s inputted needs to be a multiple of the natural unit %s for Set %s",
			quantity, naturalUnit, set.Address().Hex()))
	}
	return nil
}

// Requirement is the amount of one component needed to issue a quantity of a Set.
type Requirement struct {
	Token  *contracts.ERC20
	Amount *big.Int
}

// ComponentRequirements computes quantity * unit / naturalUnit for every component of set.
func ComponentRequirements(ctx context.Context, set *contracts.SetToken, quantity *big.Int) ([]Requirement, error) {
	components, err := set.GetComponents.Call(ctx)
	if err != nil {
		return nil, err
	}
	units, err := set.GetUnits.Call(ctx)
	if err != nil {
		return nil, err
	}
	naturalUnit, err := set.NaturalUnit.Call(ctx)
	if err != nil {
		return nil, err
	}
	if len(components) != len(units) {
		return nil, fmt.Errorf("set %s reports %d components and %d units", set.Address().Hex(), len(components), len(units))
	}
	if naturalUnit.Sign() <= 0 {
		return nil, fmt.Errorf("set %s reports natural unit %s", set.Address().Hex(), naturalUnit)
	}

	c := set.Contract()
	requirements := make([]Requirement, 0, len(components))
	for i, address := range components {
		token, err := contracts.ERC20At(ctx, address, c.Client(), c.Defaults(), c.Options()...)
		if err != nil {
			return nil, err
		}
		amount := new(big.Int).Mul(quantity, units[i])
		requirements = append(requirements, Requirement{Token: token, Amount: amount.Div(amount, naturalUnit)})
	}
	return requirements, nil
}

// HasSufficientBalances checks that owner holds every component needed to issue quantity of set.
func HasSufficientBalances(ctx context.Context, set *contracts.SetToken, quantity *big.Int, owner common.Address) error {
	requirements, err := ComponentRequirements(ctx, set, quantity)
	if err != nil {
		return err
	}
	for _, r := range requirements {
		if err := HasSufficientTokenBalance(ctx, r.Token, owner, r.Amount); err != nil {
			return err
		}
	}
	return nil
}

// HasSufficientAllowances checks that owner approved spender, normally the transfer proxy,
// for every component needed to issue quantity of set.
func HasSufficientAllowances(ctx context.Context, set *contracts.SetToken, quantity *big.Int, owner, spender common.Address) error {
	requirements, err := ComponentRequirements(ctx, set, quantity)
	if err != nil {
		return err
	}
	for _, r := range requirements {
		if err := HasSufficientTokenAllowance(ctx, r.Token, owner, spender, r.Amount); err != nil {
			return err
		}
	}
	return nil
}

func HasSufficientTokenBalance(ctx context.Context, token *contracts.ERC20, owner common.Address, required *big.Int) error {
	balance, err := token.BalanceOf.Call(ctx, owner)
	if err != nil {
		return err
	}
	if balance.Cmp(required) < 0 {
		return invalid(ErrInsufficientBalance, fmt.Sprintf(
			"User %s has balance of %s of token %s, which is less than the required %s",
			owner.Hex(), balance, token.Address().Hex(), required))
	}
	return nil
}

func HasSufficientTokenAllowance(ctx context.Context, token *contracts.ERC20, owner, spender common.Address, required *big.Int) error {
	allowance, err := token.Allowance.Call(ctx, owner, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(required) < 0 {
		return invalid(ErrInsufficientAllowance, fmt.Sprintf(
			"User %s has allowance of %s for spender %s on token %s, which is less than the required %s",
			owner.Hex(), allowance, spender.Hex(), token.Address().Hex(), required))
	}
	return nil
}

// HasSufficientVaultBalance checks the amount of token the vault holds for owner.
func HasSufficientVaultBalance(ctx context.Context, vault *contracts.Vault, token, owner common.Address, required *big.Int) error {
	balance, err := vault.GetOwnerBalance.Call(ctx, token, owner)
	if err != nil {
		return err
	}
	if balance.Cmp(required) < 0 {
		return invalid(ErrInsufficientBalance, fmt.Sprintf(
			"User %s has vault balance of %s of token %s, which is less than the required %s",
			owner.Hex(), balance, token.Hex(), required))
	}
	return nil
}

// IsValidComponents checks the static shape of a Set definition: matching non-empty lists,
// no zero or repeated component and strictly positive units.
func IsValidComponents(components []common.Address, units []*big.Int) error {
	if len(components) == 0 {
		return invalid(ErrInvalidComponents, "The Set must have at least one component")
	}
	if len(components) != len(units) {
		return invalid(ErrInvalidComponents, fmt.Sprintf(
			"The Set has %d components but %d units", len(components), len(units)))
	}
	seen := make(map[common.Address]bool, len(components))
	for i, component := range components {
		if component == (common.Address{}) {
			return invalid(ErrInvalidComponents, fmt.Sprintf("Component %d is the zero address", i))
		}
		if seen[component] {
			return invalid(ErrInvalidComponents, fmt.Sprintf("Component %s is listed more than once", component.Hex()))
		}
		seen[component] = true
		if err := GreaterThanZero(units[i], fmt.Sprintf("The unit %s of component %s needs to be non-zero", units[i], component.Hex())); err != nil {
			return err
		}
	}
	return nil
}
