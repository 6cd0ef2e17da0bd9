package publisher

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Submission records a state-changing request accepted by the node. It says nothing about
// whether the transaction was mined or succeeded.
type Submission struct {
	Hash      common.Hash    `json:"hash"`
	Operation string         `json:"operation"`
	From      common.Address `json:"from"`
	Contract  common.Address `json:"contract"`
	Quantity  *big.Int       `json:"quantity,omitempty"`
	ChainID   int64          `json:"chain_id"`
	Submitted time.Time      `json:"submitted"`
}

// Publisher sends submission events to a message broker.
type Publisher interface {
	// Connect checks the broker is reachable
	Connect(ctx context.Context) error

	Close() error

	PublishSubmission(ctx context.Context, submission *Submission) error
}
