// Package api is the intent-level surface of the SDK: issue, redeem, create and query Sets,
// with client-side precondition checks before anything is broadcast.
package api

import (
	"github.com/nando-os/setprotocol-go/eth"
)

// SetProtocol bundles the APIs for one network deployment.
type SetProtocol struct {
	Contracts    *Contracts
	Core         *CoreAPI
	SetToken     *SetTokenAPI
	Authorizable *AuthorizableAPI
	Whitelist    *WhitelistAPI
	Vault        *VaultAPI
	Addresses    Addresses
}

func New(client eth.Client, addresses Addresses, opts ...Option) *SetProtocol {
	c := NewContracts(client, opts...)
	return &SetProtocol{
		Contracts:    c,
		Core:         NewCoreAPI(c, addresses),
		SetToken:     NewSetTokenAPI(c, addresses.TransferProxy),
		Authorizable: NewAuthorizableAPI(c),
		Whitelist:    NewWhitelistAPI(c),
		Vault:        NewVaultAPI(c, addresses.Vault),
		Addresses:    addresses,
	}
}
