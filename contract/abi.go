package contract

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ParseABI merges JSON ABI fragments, each a JSON array of entries, into a single ABI.
// Contracts built from shared bases (Ownable, Authorizable, ERC20) list one fragment per base.
func ParseABI(fragments ...string) (abi.ABI, error) {
	var entries []json.RawMessage
	for i, fragment := range fragments {
		var part []json.RawMessage
		if err := json.Unmarshal([]byte(fragment), &part); err != nil {
			return abi.ABI{}, fmt.Errorf("abi fragment %d: %w", i, err)
		}
		entries = append(entries, part...)
	}
	merged, err := json.Marshal(entries)
	if err != nil {
		return abi.ABI{}, err
	}
	return abi.JSON(bytes.NewReader(merged))
}

// MustParseABI is ParseABI for package-level interface tables.
func MustParseABI(fragments ...string) abi.ABI {
	parsed, err := ParseABI(fragments...)
	if err != nil {
		panic(fmt.Sprintf("contract: invalid ABI: %v", err))
	}
	return parsed
}
