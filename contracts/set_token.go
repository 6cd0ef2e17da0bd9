package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/eth"
)

// SetToken is an ERC20 basket token backed by fixed units of its component tokens.
// naturalUnit is the smallest quantity that can be issued or redeemed.
type SetToken struct {
	ERC20

	Issue         *contract.Tx
	Redeem        *contract.Tx
	NaturalUnit   *contract.View[*big.Int]
	Factory       *contract.View[common.Address]
	GetComponents *contract.View[[]common.Address]
	GetUnits      *contract.View[[]*big.Int]
}

func NewSetToken(c *contract.Contract) *SetToken {
	return &SetToken{
		ERC20:         newERC20(c),
		Issue:         c.Tx("issue"),
		Redeem:        c.Tx("redeem"),
		NaturalUnit:   contract.NewView[*big.Int](c, "naturalUnit"),
		Factory:       contract.NewView[common.Address](c, "factory"),
		GetComponents: contract.NewView[[]common.Address](c, "getComponents"),
		GetUnits:      contract.NewView[[]*big.Int](c, "getUnits"),
	}
}

func SetTokenAt(ctx context.Context, address common.Address, client eth.Client, defaults eth.TxParams, opts ...contract.Option) (*SetToken, error) {
	return at(ctx, NameSetToken, SetTokenABI, NewSetToken, address, client, defaults, opts)
}

// SetTokenFactory creates SetTokens on behalf of Core.
type SetTokenFactory struct {
	Authorizable

	Core           *contract.View[common.Address]
	SetCoreAddress *contract.Tx
	Create         *contract.Tx
}

func NewSetTokenFactory(c *contract.Contract) *SetTokenFactory {
	return &SetTokenFactory{
		Authorizable:   newAuthorizable(c),
		Core:           contract.NewView[common.Address](c, "core"),
		SetCoreAddress: c.Tx("setCoreAddress"),
		Create:         c.Tx("create"),
	}
}

func SetTokenFactoryAt(ctx context.Context, address common.Address, client eth.Client, defaults eth.TxParams, opts ...contract.Option) (*SetTokenFactory, error) {
	return at(ctx, NameSetTokenFactory, SetTokenFactoryABI, NewSetTokenFactory, address, client, defaults, opts)
}
