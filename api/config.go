package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

const (
	keyCoreAddress            = "set.core_address"
	keyVaultAddress           = "set.vault_address"
	keyTransferProxyAddress   = "set.transfer_proxy_address"
	keySetTokenFactoryAddress = "set.token_factory_address"
)

// ErrAddressNotConfigured is returned when an operation needs a protocol address that is unset.
var ErrAddressNotConfigured = errors.New("protocol address not configured")

// Addresses are the per-network deployments of the protocol contracts.
type Addresses struct {
	Core            common.Address
	TransferProxy   common.Address
	Vault           common.Address
	SetTokenFactory common.Address
}

// LoadAddresses reads SET_* variables. v may be nil, in which case only the environment is read.
// Unset addresses stay zero; malformed ones are an error.
func LoadAddresses(v *viper.Viper) (Addresses, error) {
	if v == nil {
		v = viper.New()
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var addrs Addresses
	for key, dst := range map[string]*common.Address{
		keyCoreAddress:            &addrs.Core,
		keyVaultAddress:           &addrs.Vault,
		keyTransferProxyAddress:   &addrs.TransferProxy,
		keySetTokenFactoryAddress: &addrs.SetTokenFactory,
	} {
		value := strings.TrimSpace(v.GetString(key))
		if value == "" {
			continue
		}
		if !common.IsHexAddress(value) {
			return Addresses{}, fmt.Errorf("invalid %s: %q is not an address", envName(key), value)
		}
		*dst = common.HexToAddress(value)
	}
	return addrs, nil
}

// Require reports the first missing address among the given roles.
func (a Addresses) Require(roles ...string) error {
	for _, role := range roles {
		var addr common.Address
		switch role {
		case "core":
			addr = a.Core
		case "vault":
			addr = a.Vault
		case "transfer_proxy":
			addr = a.TransferProxy
		case "token_factory":
			addr = a.SetTokenFactory
		default:
			return fmt.Errorf("unknown contract role %q", role)
		}
		if err := requireAddress(addr, "set."+role+"_address"); err != nil {
			return err
		}
	}
	return nil
}

func requireAddress(addr common.Address, key string) error {
	if addr == (common.Address{}) {
		return fmt.Errorf("%s is not set: %w", envName(key), ErrAddressNotConfigured)
	}
	return nil
}

func envName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
