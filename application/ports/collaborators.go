package ports

import (
	"context"

	"ideaweaver/domain/core/valueobjects"
)

// VectorMatch is one k-NN result from the vector store
type VectorMatch struct {
	NodeID   valueobjects.NodeID
	Distance float64
}

// VectorStore indexes idea embeddings per profile and answers k-NN
// queries. Partitions never leak across profiles.
type VectorStore interface {
	// Upsert stores or replaces the vector for a node
	Upsert(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID, vector []float32) error

	// Get retrieves the vector for a node, reporting whether one exists
	Get(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]float32, bool, error)

	// Nearest returns up to k matches closest to the query vector,
	// ordered by ascending distance. The anchor node, when present in
	// the partition, is included and must be filtered by the caller.
	Nearest(ctx context.Context, profileID valueobjects.ProfileID, query []float32, k int) ([]VectorMatch, error)

	// Delete removes the vector for a node
	Delete(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error

	// DropPartition removes a profile's entire partition
	DropPartition(ctx context.Context, profileID valueobjects.ProfileID) error

	// Count returns how many vectors the profile's partition holds
	Count(ctx context.Context, profileID valueobjects.ProfileID) (int, error)
}

// Embedder turns idea text into a vector
type Embedder interface {
	// Embed computes the embedding for a piece of text
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a prompt, used by the collective
// composer to draft in a profile's voice
type Generator interface {
	// Generate produces a completion for the given prompt
	Generate(ctx context.Context, prompt string) (string, error)
}

// Locker serializes writers over a named resource
type Locker interface {
	// Acquire takes the lock, blocking with backoff until it is held or
	// the context expires
	Acquire(ctx context.Context, resource string) (Lock, error)
}

// Lock is a held distributed lock
type Lock interface {
	// Release frees the lock
	Release(ctx context.Context) error
}
