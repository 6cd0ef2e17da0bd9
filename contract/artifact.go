package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Artifact is a compiled contract as emitted by truffle: interface, creation code
// and the addresses it was deployed at, keyed by network id.
type Artifact struct {
	ContractName string
	ABI          abi.ABI
	Bytecode     []byte
	Networks     map[string]NetworkInfo
}

type NetworkInfo struct {
	Address common.Address `json:"address"`
}

// LoadArtifact decodes a truffle build artifact.
func LoadArtifact(r io.Reader) (*Artifact, error) {
	var raw struct {
		ContractName string                 `json:"contractName"`
		ABI          json.RawMessage        `json:"abi"`
		Bytecode     string                 `json:"bytecode"`
		Networks     map[string]NetworkInfo `json:"networks"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if len(raw.ABI) == 0 {
		return nil, fmt.Errorf("artifact %q has no abi", raw.ContractName)
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("artifact %q: invalid abi: %w", raw.ContractName, err)
	}
	return &Artifact{
		ContractName: raw.ContractName,
		ABI:          parsed,
		Bytecode:     common.FromHex(raw.Bytecode),
		Networks:     raw.Networks,
	}, nil
}

// LoadArtifactFile reads an artifact from disk.
func LoadArtifactFile(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadArtifact(f)
}

// Address returns the deployed address recorded for a network.
func (a *Artifact) Address(networkID int64) (common.Address, bool) {
	info, ok := a.Networks[strconv.FormatInt(networkID, 10)]
	if !ok || info.Address == (common.Address{}) {
		return common.Address{}, false
	}
	return info.Address, true
}
