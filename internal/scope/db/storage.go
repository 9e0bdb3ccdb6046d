package db

import "context"

// PropositionCounter is the read side the API needs from the store.
type PropositionCounter interface {
	// CountPropositions returns the number of stored propositions
	CountPropositions(ctx context.Context) (int64, error)
}

var _ PropositionCounter = (*DB)(nil)
