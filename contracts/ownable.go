package contracts

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/eth"
)

type binding struct {
	contract *contract.Contract
}

// Contract returns the underlying generic wrapper.
func (b binding) Contract() *contract.Contract {
	return b.contract
}

func (b binding) Address() common.Address {
	return b.contract.Address()
}

// Ownable is the ownership surface shared by every protocol contract.
type Ownable struct {
	binding

	Owner             *contract.View[common.Address]
	TransferOwnership *contract.Tx
	RenounceOwnership *contract.Tx
}

func newOwnable(c *contract.Contract) Ownable {
	return Ownable{
		binding:           binding{contract: c},
		Owner:             contract.NewView[common.Address](c, "owner"),
		TransferOwnership: c.Tx("transferOwnership"),
		RenounceOwnership: c.Tx("renounceOwnership"),
	}
}

// Authorizable is an Ownable contract that keeps a list of addresses allowed to call its
// restricted functions.
type Authorizable struct {
	Ownable

	AddAuthorizedAddress           *contract.Tx
	RemoveAuthorizedAddress        *contract.Tx
	RemoveAuthorizedAddressAtIndex *contract.Tx
	Authorized                     *contract.View[bool]
	Authorities                    *contract.View[common.Address]
	GetAuthorizedAddresses         *contract.View[[]common.Address]
}

// NewAuthorizable binds the Authorizable surface of c. The ABI of c must contain it.
func NewAuthorizable(c *contract.Contract) *Authorizable {
	a := newAuthorizable(c)
	return &a
}

func newAuthorizable(c *contract.Contract) Authorizable {
	return Authorizable{
		Ownable:                        newOwnable(c),
		AddAuthorizedAddress:           c.Tx("addAuthorizedAddress"),
		RemoveAuthorizedAddress:        c.Tx("removeAuthorizedAddress"),
		RemoveAuthorizedAddressAtIndex: c.Tx("removeAuthorizedAddressAtIndex"),
		Authorized:                     contract.NewView[bool](c, "authorized"),
		Authorities:                    contract.NewView[common.Address](c, "authorities"),
		GetAuthorizedAddresses:         contract.NewView[[]common.Address](c, "getAuthorizedAddresses"),
	}
}

// AuthorizableAt attaches to any contract exposing the Authorizable interface.
func AuthorizableAt(ctx context.Context, address common.Address, client eth.Client, defaults eth.TxParams, opts ...contract.Option) (*Authorizable, error) {
	return at(ctx, NameAuthorizable, AuthorizableABI, NewAuthorizable, address, client, defaults, opts)
}

// at is the attach step shared by the typed constructors.
func at[T any](ctx context.Context, name string, parsed abi.ABI, bind func(*contract.Contract) *T, address common.Address, client eth.Client, defaults eth.TxParams, opts []contract.Option) (*T, error) {
	c, err := contract.At(ctx, name, parsed, address, client, defaults, opts...)
	if err != nil {
		return nil, err
	}
	return bind(c), nil
}
