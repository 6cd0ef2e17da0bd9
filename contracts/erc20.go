package contracts

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/eth"
)

// ERC20 is the standard fungible token interface.
type ERC20 struct {
	binding

	Name         *contract.View[string]
	Symbol       *contract.View[string]
	Decimals     *contract.View[*big.Int]
	TotalSupply  *contract.View[*big.Int]
	BalanceOf    *contract.View[*big.Int]
	Allowance    *contract.View[*big.Int]
	Transfer     *contract.Tx
	Approve      *contract.Tx
	TransferFrom *contract.Tx
}

func NewERC20(c *contract.Contract) *ERC20 {
	t := newERC20(c)
	return &t
}

func newERC20(c *contract.Contract) ERC20 {
	return ERC20{
		binding:      binding{contract: c},
		Name:         contract.NewView[string](c, "name"),
		Symbol:       contract.NewView[string](c, "symbol"),
		Decimals:     contract.NewView[*big.Int](c, "decimals"),
		TotalSupply:  contract.NewView[*big.Int](c, "totalSupply"),
		BalanceOf:    contract.NewView[*big.Int](c, "balanceOf"),
		Allowance:    contract.NewView[*big.Int](c, "allowance"),
		Transfer:     c.Tx("transfer"),
		Approve:      c.Tx("approve"),
		TransferFrom: c.Tx("transferFrom"),
	}
}

func ERC20At(ctx context.Context, address common.Address, client eth.Client, defaults eth.TxParams, opts ...contract.Option) (*ERC20, error) {
	return at(ctx, NameERC20, ERC20ABI, NewERC20, address, client, defaults, opts)
}

// StandardTokenMockAt attaches to a test token. Its callable surface is plain ERC20.
func StandardTokenMockAt(ctx context.Context, address common.Address, client eth.Client, defaults eth.TxParams, opts ...contract.Option) (*ERC20, error) {
	return at(ctx, NameStandardTokenMock, StandardTokenMockABI, NewERC20, address, client, defaults, opts)
}
