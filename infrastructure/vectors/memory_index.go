package vectors

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"ideaweaver/application/ports"
	"ideaweaver/domain/autolink"
	"ideaweaver/domain/core/valueobjects"
)

// MemoryIndex is an in-process vector store partitioned by profile.
// Nearest runs an exact scan over the partition; corpora here are
// profile-sized, not web-sized, so exact beats approximate until the
// partitions grow by orders of magnitude.
type MemoryIndex struct {
	mu         sync.RWMutex
	partitions map[valueobjects.ProfileID]map[valueobjects.NodeID][]float32
	logger     *zap.Logger
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex(logger *zap.Logger) *MemoryIndex {
	return &MemoryIndex{
		partitions: make(map[valueobjects.ProfileID]map[valueobjects.NodeID][]float32),
		logger:     logger,
	}
}

// Upsert stores or replaces a node's vector in its profile partition
func (m *MemoryIndex) Upsert(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID, vector []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	partition, ok := m.partitions[profileID]
	if !ok {
		partition = make(map[valueobjects.NodeID][]float32)
		m.partitions[profileID] = partition
	}

	// Copy so later caller mutations cannot corrupt the index
	stored := make([]float32, len(vector))
	copy(stored, vector)
	partition[nodeID] = stored

	return nil
}

// Get returns a node's vector and whether one is stored
func (m *MemoryIndex) Get(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) ([]float32, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	partition, ok := m.partitions[profileID]
	if !ok {
		return nil, false, nil
	}
	vector, ok := partition[nodeID]
	if !ok {
		return nil, false, nil
	}

	out := make([]float32, len(vector))
	copy(out, vector)
	return out, true, nil
}

// Nearest returns up to k matches ordered by ascending cosine
// distance, node ID breaking ties. The anchor's own entry is included
// when it is stored; callers filter it.
func (m *MemoryIndex) Nearest(ctx context.Context, profileID valueobjects.ProfileID, vector []float32, k int) ([]ports.VectorMatch, error) {
	if k <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	partition := m.partitions[profileID]
	matches := make([]ports.VectorMatch, 0, len(partition))
	for nodeID, candidate := range partition {
		matches = append(matches, ports.VectorMatch{
			NodeID:   nodeID,
			Distance: autolink.CosineDistance(vector, candidate),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].NodeID.String() < matches[j].NodeID.String()
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Delete removes a node's vector
func (m *MemoryIndex) Delete(ctx context.Context, profileID valueobjects.ProfileID, nodeID valueobjects.NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if partition, ok := m.partitions[profileID]; ok {
		delete(partition, nodeID)
	}
	return nil
}

// DropPartition removes a profile's entire partition
func (m *MemoryIndex) DropPartition(ctx context.Context, profileID valueobjects.ProfileID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.partitions[profileID])
	delete(m.partitions, profileID)

	m.logger.Debug("Vector partition dropped",
		zap.String("profileID", profileID.String()),
		zap.Int("vectorCount", count),
	)
	return nil
}

// Count returns the number of vectors in a profile's partition
func (m *MemoryIndex) Count(ctx context.Context, profileID valueobjects.ProfileID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.partitions[profileID]), nil
}
