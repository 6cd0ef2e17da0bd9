package api

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/nando-os/setprotocol-go/assertions"
	"github.com/nando-os/setprotocol-go/contracts"
	"github.com/nando-os/setprotocol-go/eth"
)

// QuantityNeedsToBeNonZero is the message of the positive-quantity check.
func QuantityNeedsToBeNonZero(quantity *big.Int) string {
	return fmt.Sprintf("The quantity %s inputted needs to be non-zero", quantity)
}

// SetTokenAPI issues and redeems Sets directly on the SetToken contract.
type SetTokenAPI struct {
	contracts     *Contracts
	transferProxy common.Address
	logger        logrus.FieldLogger
}

// NewSetTokenAPI returns the issuance API. Component allowances are checked against transferProxy.
func NewSetTokenAPI(c *Contracts, transferProxy common.Address) *SetTokenAPI {
	return &SetTokenAPI{
		contracts:     c,
		transferProxy: transferProxy,
		logger:        c.logger.WithField("api", "set_token"),
	}
}

func (a *SetTokenAPI) GetNaturalUnit(ctx context.Context, set common.Address) (*big.Int, error) {
	token, err := a.contracts.LoadSetToken(ctx, set, eth.TxParams{})
	if err != nil {
		return nil, err
	}
	return token.NaturalUnit.Call(ctx)
}

// IssueSet checks the user's component balances and allowances, then sends issue(quantity)
// from user. The hash is returned as soon as the node accepts the transaction.
func (a *SetTokenAPI) IssueSet(ctx context.Context, set common.Address, quantity *big.Int, user common.Address) (common.Hash, error) {
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

	hash, err := token.Issue.SendTransaction(ctx, eth.TxParams{From: user}, quantity)
	if err != nil {
		return common.Hash{}, err
	}
	a.logger.WithFields(logrus.Fields{
		"set":      set.Hex(),
		"quantity": quantity.String(),
		"user":     user.Hex(),
		"hash":     hash.Hex(),
	}).Info("Set issuance submitted")
	return hash, nil
}

// RedeemSet checks the user's Set balance, then sends redeem(quantity) from user.
func (a *SetTokenAPI) RedeemSet(ctx context.Context, set common.Address, quantity *big.Int, user common.Address) (common.Hash, error) {
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

	hash, err := token.Redeem.SendTransaction(ctx, eth.TxParams{From: user}, quantity)
	if err != nil {
		return common.Hash{}, err
	}
	a.logger.WithFields(logrus.Fields{
		"set":      set.Hex(),
		"quantity": quantity.String(),
		"user":     user.Hex(),
		"hash":     hash.Hex(),
	}).Info("Set redemption submitted")
	return hash, nil
}

// checkQuantity runs the quantity checks shared by issuance and redemption.
func checkQuantity(ctx context.Context, set *contracts.SetToken, quantity *big.Int) error {
	if err := assertions.GreaterThanZero(quantity, QuantityNeedsToBeNonZero(quantity)); err != nil {
		return err
	}
	if err := assertions.FitsUint256(quantity); err != nil {
		return err
	}
	return assertions.IsMultipleOfNaturalUnit(ctx, set, quantity)
}
