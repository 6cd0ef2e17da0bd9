package api

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nando-os/setprotocol-go/eth"
)

type AuthorizableAPI struct {
	contracts *Contracts
}

func NewAuthorizableAPI(c *Contracts) *AuthorizableAPI {
	return &AuthorizableAPI{contracts: c}
}

// GetAuthorizedAddresses lists the addresses allowed to call the restricted functions of an
// Authorizable contract (TransferProxy, Vault, SetTokenFactory).
func (a *AuthorizableAPI) GetAuthorizedAddresses(ctx context.Context, authorizable common.Address) ([]common.Address, error) {
	instance, err := a.contracts.LoadAuthorizable(ctx, authorizable, eth.TxParams{})
	if err != nil {
		return nil, err
	}
	return instance.GetAuthorizedAddresses.Call(ctx)
}

type WhitelistAPI struct {
	contracts *Contracts
}

func NewWhitelistAPI(c *Contracts) *WhitelistAPI {
	return &WhitelistAPI{contracts: c}
}

func (a *WhitelistAPI) ValidAddresses(ctx context.Context, whitelist common.Address) ([]common.Address, error) {
	instance, err := a.contracts.LoadWhitelist(ctx, whitelist, eth.TxParams{})
	if err != nil {
		return nil, err
	}
	return instance.ValidAddresses.Call(ctx)
}

type VaultAPI struct {
	contracts *Contracts
	vault     common.Address
}

func NewVaultAPI(c *Contracts, vault common.Address) *VaultAPI {
	return &VaultAPI{contracts: c, vault: vault}
}

// GetBalanceInVault returns the amount of token the vault holds on behalf of owner.
func (a *VaultAPI) GetBalanceInVault(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	instance, err := a.contracts.LoadVault(ctx, a.vault, eth.TxParams{})
	if err != nil {
		return nil, err
	}
	return instance.GetOwnerBalance.Call(ctx, token, owner)
}
