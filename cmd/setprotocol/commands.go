package main

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/nando-os/setprotocol-go/units"
)

func (c *cli) naturalUnitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "natural-unit SET",
		Short: "Print the natural unit of a Set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := parseAddress("set", args[0])
			if err != nil {
				return err
			}
			sdk, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			naturalUnit, err := sdk.SetToken.GetNaturalUnit(cmd.Context(), set)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), naturalUnit)
			return nil
		},
	}
}

func (c *cli) issueCmd() *cobra.Command {
	var viaCore bool
	cmd := &cobra.Command{
		Use:   "issue SET QUANTITY",
		Short: "Issue a quantity of a Set from its components",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setQuantityOperation(cmd, args, "issue", viaCore)
		},
	}
	cmd.Flags().BoolVar(&viaCore, "core", false, "issue through Core instead of the SetToken")
	return cmd
}

func (c *cli) redeemCmd() *cobra.Command {
	var viaCore bool
	cmd := &cobra.Command{
		Use:   "redeem SET QUANTITY",
		Short: "Redeem a quantity of a Set for its components",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setQuantityOperation(cmd, args, "redeem", viaCore)
		},
	}
	cmd.Flags().BoolVar(&viaCore, "core", false, "redeem through Core into the vault instead of the SetToken")
	return cmd
}

func (c *cli) setQuantityOperation(cmd *cobra.Command, args []string, operation string, viaCore bool) error {
	ctx := cmd.Context()
	set, err := parseAddress("set", args[0])
	if err != nil {
		return err
	}
	quantity, err := units.ToBaseUnits(args[1], c.flags.Decimals)
	if err != nil {
		return err
	}
	sdk, err := c.session(ctx)
	if err != nil {
		return err
	}
	var roles []string
	if operation == "issue" {
		roles = append(roles, "transfer_proxy")
	}
	if viaCore {
		roles = append(roles, "core")
	}
	if err := sdk.Addresses.Require(roles...); err != nil {
		return err
	}
	user, err := c.sender()
	if err != nil {
		return err
	}

	var hash common.Hash
	switch {
	case operation == "issue" && viaCore:
		hash, err = sdk.Core.Issue(ctx, user, set, quantity)
	case operation == "issue":
		hash, err = sdk.SetToken.IssueSet(ctx, set, quantity, user)
	case viaCore:
		hash, err = sdk.Core.Redeem(ctx, user, set, quantity)
	default:
		hash, err = sdk.SetToken.RedeemSet(ctx, set, quantity, user)
	}
	if err != nil {
		return err
	}
	return c.submitted(cmd, operation, user, set, quantity, hash)
}

func (c *cli) createCmd() *cobra.Command {
	var (
		factory     string
		components  []string
		naturalUnit string
		name        string
		symbol      string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new Set through Core",
		Example: `  setprotocol create --factory 0x... --name "Stable Set" --symbol STBL \
    --natural-unit 10 --component 0xTokenA=2 --component 0xTokenB=3 --wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tokens, componentUnits, err := parseComponents(components)
			if err != nil {
				return err
			}
			unit, ok := new(big.Int).SetString(naturalUnit, 10)
			if !ok {
				return fmt.Errorf("invalid natural unit %q", naturalUnit)
			}
			sdk, err := c.session(ctx)
			if err != nil {
				return err
			}
			factoryAddress := sdk.Addresses.SetTokenFactory
			if factory != "" {
				if factoryAddress, err = parseAddress("factory", factory); err != nil {
					return err
				}
			}
			if err := sdk.Addresses.Require("core"); err != nil {
				return err
			}
			if factoryAddress == (common.Address{}) {
				return fmt.Errorf("--factory is required when SET_TOKEN_FACTORY_ADDRESS is not set")
			}
			user, err := c.sender()
			if err != nil {
				return err
			}

			hash, err := sdk.Core.Create(ctx, user, factoryAddress, tokens, componentUnits, unit, name, symbol)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash.Hex())
			if !c.flags.Wait {
				return nil
			}
			set, err := sdk.Core.SetAddressFromCreateTx(ctx, hash)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "set %s\n", set.Hex())
			return nil
		},
	}
	cmd.Flags().StringVar(&factory, "factory", "", "SetTokenFactory address (default: SET_TOKEN_FACTORY_ADDRESS)")
	cmd.Flags().StringArrayVar(&components, "component", nil, "component as TOKEN=UNITS, repeatable")
	cmd.Flags().StringVar(&naturalUnit, "natural-unit", "1", "natural unit of the Set")
	cmd.Flags().StringVar(&name, "name", "", "Set name")
	cmd.Flags().StringVar(&symbol, "symbol", "", "Set symbol")
	return cmd
}

func (c *cli) depositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit TOKEN QUANTITY",
		Short: "Deposit a token into the vault",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.vaultOperation(cmd, args, "deposit")
		},
	}
}

func (c *cli) withdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw TOKEN QUANTITY",
		Short: "Withdraw a token from the vault",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.vaultOperation(cmd, args, "withdraw")
		},
	}
}

func (c *cli) vaultOperation(cmd *cobra.Command, args []string, operation string) error {
	ctx := cmd.Context()
	token, err := parseAddress("token", args[0])
	if err != nil {
		return err
	}
	quantity, err := units.ToBaseUnits(args[1], c.flags.Decimals)
	if err != nil {
		return err
	}
	sdk, err := c.session(ctx)
	if err != nil {
		return err
	}
	roles := []string{"core", "vault"}
	if operation == "deposit" {
		roles = []string{"core", "transfer_proxy"}
	}
	if err := sdk.Addresses.Require(roles...); err != nil {
		return err
	}
	user, err := c.sender()
	if err != nil {
		return err
	}

	var hash common.Hash
	if operation == "deposit" {
		hash, err = sdk.Core.Deposit(ctx, user, token, quantity)
	} else {
		hash, err = sdk.Core.Withdraw(ctx, user, token, quantity)
	}
	if err != nil {
		return err
	}
	return c.submitted(cmd, operation, user, token, quantity, hash)
}

func (c *cli) authorizedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "authorized CONTRACT",
		Short: "List the authorized addresses of a TransferProxy, Vault or factory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseAddress("contract", args[0])
			if err != nil {
				return err
			}
			sdk, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			addresses, err := sdk.Authorizable.GetAuthorizedAddresses(cmd.Context(), target)
			if err != nil {
				return err
			}
			printAddresses(cmd, addresses)
			return nil
		},
	}
}

func (c *cli) whitelistCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whitelist WHITELIST",
		Short: "List the addresses of a whitelist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseAddress("whitelist", args[0])
			if err != nil {
				return err
			}
			sdk, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			addresses, err := sdk.Whitelist.ValidAddresses(cmd.Context(), target)
			if err != nil {
				return err
			}
			printAddresses(cmd, addresses)
			return nil
		},
	}
}

func (c *cli) vaultBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vault-balance TOKEN [OWNER]",
		Short: "Print the vault balance of a token for an owner (default: the sender)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := parseAddress("token", args[0])
			if err != nil {
				return err
			}
			sdk, err := c.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := sdk.Addresses.Require("vault"); err != nil {
				return err
			}
			var owner common.Address
			if len(args) == 2 {
				owner, err = parseAddress("owner", args[1])
			} else {
				owner, err = c.sender()
			}
			if err != nil {
				return err
			}
			balance, err := sdk.Vault.GetBalanceInVault(cmd.Context(), token, owner)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), units.Format(balance, c.flags.Decimals))
			return nil
		},
	}
}

func (c *cli) waitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wait HASH",
		Short: "Wait for a transaction to be mined",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimPrefix(args[0], "0x")
			if len(raw) != 2*common.HashLength {
				return fmt.Errorf("invalid transaction hash %q", args[0])
			}
			if _, err := c.session(cmd.Context()); err != nil {
				return err
			}
			return c.waitFor(cmd, common.HexToHash(args[0]))
		},
	}
}

func parseAddress(what, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address %q", what, value)
	}
	return common.HexToAddress(value), nil
}

// parseComponents splits TOKEN=UNITS pairs. Units are raw integers, not scaled by --decimals.
func parseComponents(values []string) ([]common.Address, []*big.Int, error) {
	tokens := make([]common.Address, 0, len(values))
	componentUnits := make([]*big.Int, 0, len(values))
	for _, value := range values {
		token, unit, ok := strings.Cut(value, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid component %q: want TOKEN=UNITS", value)
		}
		address, err := parseAddress("component", strings.TrimSpace(token))
		if err != nil {
			return nil, nil, err
		}
		n, ok := new(big.Int).SetString(strings.TrimSpace(unit), 10)
		if !ok {
			return nil, nil, fmt.Errorf("invalid units %q for component %s", unit, address.Hex())
		}
		tokens = append(tokens, address)
		componentUnits = append(componentUnits, n)
	}
	return tokens, componentUnits, nil
}

func printAddresses(cmd *cobra.Command, addresses []common.Address) {
	for _, address := range addresses {
		fmt.Fprintln(cmd.OutOrStdout(), address.Hex())
	}
}
