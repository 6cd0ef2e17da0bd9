package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nando-os/setprotocol-go/contract"
	"github.com/nando-os/setprotocol-go/eth"
)

// ErrEventNotFound is returned when a receipt carries no log of the requested event.
var ErrEventNotFound = errors.New("event not found in receipt")

// Core is the protocol entry point: it registers factories and Sets, and moves
// component tokens between users and the Vault through the TransferProxy.
type Core struct {
	Ownable

	VaultAddress            *contract.View[common.Address]
	TransferProxyAddress    *contract.View[common.Address]
	ValidFactories          *contract.View[bool]
	ValidSets               *contract.View[bool]
	SetVaultAddress         *contract.Tx
	SetTransferProxyAddress *contract.Tx
	EnableFactory           *contract.Tx
	DisableFactory          *contract.Tx
	Create                  *contract.Tx
	Issue                   *contract.Tx
	Redeem                  *contract.Tx
	Deposit                 *contract.Tx
	Withdraw                *contract.Tx
	BatchDeposit            *contract.Tx
	BatchWithdraw           *contract.Tx
}

func NewCore(c *contract.Contract) *Core {
	return &Core{
		Ownable:                 newOwnable(c),
		VaultAddress:            contract.NewView[common.Address](c, "vaultAddress"),
		TransferProxyAddress:    contract.NewView[common.Address](c, "transferProxyAddress"),
		ValidFactories:          contract.NewView[bool](c, "validFactories"),
		ValidSets:               contract.NewView[bool](c, "validSets"),
		SetVaultAddress:         c.Tx("setVaultAddress"),
		SetTransferProxyAddress: c.Tx("setTransferProxyAddress"),
		EnableFactory:           c.Tx("enableFactory"),
		DisableFactory:          c.Tx("disableFactory"),
		Create:                  c.Tx("create"),
		Issue:                   c.Tx("issue"),
		Redeem:                  c.Tx("redeem"),
		Deposit:                 c.Tx("deposit"),
		Withdraw:                c.Tx("withdraw"),
		BatchDeposit:            c.Tx("batchDeposit"),
		BatchWithdraw:           c.Tx("batchWithdraw"),
	}
}

func CoreAt(ctx context.Context, address common.Address, client eth.Client, defaults eth.TxParams, opts ...contract.Option) (*Core, error) {
	return at(ctx, NameCore, CoreABI, NewCore, address, client, defaults, opts)
}

// CreatedSetAddress returns the address of the Set announced by a SetTokenCreated log in receipt.
func (c *Core) CreatedSetAddress(receipt *eth.TransactionReceipt) (common.Address, error) {
	event := CoreABI.Events["SetTokenCreated"]
	for _, log := range receipt.Logs {
		if log.Address != c.Address() || len(log.Topics) < 2 || log.Topics[0] != event.ID {
			continue
		}
		return common.BytesToAddress(log.Topics[1].Bytes()), nil
	}
	return common.Address{}, fmt.Errorf("%w: SetTokenCreated in %s", ErrEventNotFound, receipt.TxHash.Hex())
}
