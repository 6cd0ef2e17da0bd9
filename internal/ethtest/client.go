package ethtest

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/nando-os/setprotocol-go/eth"
)

const ChainID = 1337

// NewAccount returns a signing account with a fresh key.
func NewAccount(t testing.TB, label string) *eth.Account {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return eth.NewAccount(label, key, ChainID)
}

// NewClient connects an eth.Client to chain with the given signing accounts.
func NewClient(t testing.TB, chain *Chain, accounts ...*eth.Account) eth.Client {
	t.Helper()
	client, err := eth.NewClientWithBackend(context.Background(), chain, eth.NewStaticConfiguration(ChainID, "", accounts...), eth.WithLogger(NullLogger()))
	require.NoError(t, err)
	return client
}

// NullLogger discards everything.
func NullLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}
