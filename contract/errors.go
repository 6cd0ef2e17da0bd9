package contract

import "errors"

var (
	// ErrContractNotFound means no contract code exists at the configured address.
	// It is a configuration error (wrong network or address) and is never retried.
	ErrContractNotFound = errors.New("contract not found on network")

	// ErrDeployFailed means the creation transaction was mined but reverted or left no code behind.
	ErrDeployFailed = errors.New("contract deployment failed")

	// ErrUnexpectedOutput means a call returned values that do not match the wrapper's type.
	ErrUnexpectedOutput = errors.New("unexpected call output")
)
