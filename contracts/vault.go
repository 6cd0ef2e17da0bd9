package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/eth"
)

// Vault holds component tokens in custody for their owners.
type Vault struct {
	Authorizable

	GetOwnerBalance *contract.View[*big.Int]
}

func NewVault(c *contract.Contract) *Vault {
	return &Vault{
		Authorizable:    newAuthorizable(c),
		GetOwnerBalance: contract.NewView[*big.Int](c, "getOwnerBalance"),
	}
}

func VaultAt(ctx context.Context, address common.Address, client eth.Client, defaults eth.TxParams, opts ...contract.Option) (*Vault, error) {
	return at(ctx, NameVault, VaultABI, NewVault, address, client, defaults, opts)
}

// TransferProxy moves tokens users have approved it for. Only authorized callers may use it.
type TransferProxy struct {
	Authorizable

	Transfer *contract.Tx
}

func NewTransferProxy(c *contract.Contract) *TransferProxy {
	return &TransferProxy{
		Authorizable: newAuthorizable(c),
		Transfer:     c.Tx("transfer"),
	}
}

func TransferProxyAt(ctx context.Context, address common.Address, client eth.Client, defaults eth.TxParams, opts ...contract.Option) (*TransferProxy, error) {
	return at(ctx, NameTransferProxy, TransferProxyABI, NewTransferProxy, address, client, defaults, opts)
}

type Whitelist struct {
	Ownable

	ValidAddresses *contract.View[[]common.Address]
	WhiteList      *contract.View[bool]
	AddAddress     *contract.Tx
	RemoveAddress  *contract.Tx
}

func NewWhitelist(c *contract.Contract) *Whitelist {
	return &Whitelist{
		Ownable:        newOwnable(c),
		ValidAddresses: contract.NewView[[]common.Address](c, "validAddresses"),
		WhiteList:      contract.NewView[bool](c, "whiteList"),
		AddAddress:     c.Tx("addAddress"),
		RemoveAddress:  c.Tx("removeAddress"),
	}
}

func WhitelistAt(ctx context.Context, address common.Address, client eth.Client, defaults eth.TxParams, opts ...contract.Option) (*Whitelist, error) {
	return at(ctx, NameWhitelist, WhitelistABI, NewWhitelist, address, client, defaults, opts)
}
