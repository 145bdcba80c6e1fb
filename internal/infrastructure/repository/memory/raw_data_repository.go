package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fpl-stats/internal/domain/rawdata"
)

type rawDataKey struct {
	source     string
	entityType string
	entityKey  string
}

type RawDataRepository struct {
	mu       sync.RWMutex
	payloads map[rawDataKey]rawdata.Payload
}

func NewRawDataRepository() *RawDataRepository {
	return &RawDataRepository{payloads: make(map[rawDataKey]rawdata.Payload)}
}

func (r *RawDataRepository) UpsertMany(_ context.Context, items []rawdata.Payload) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for _, item := range items {
		key := rawDataKey{source: item.Source, entityType: item.EntityType, entityKey: item.EntityKey}
		if stored, ok := r.payloads[key]; ok && stored.PayloadHash == item.PayloadHash {
			continue
		}
		r.payloads[key] = item
		changed++
	}
	return changed, nil
}

// Get returns the latest payload stored for the given identity.
func (r *RawDataRepository) Get(source, entityType, entityKey string) (rawdata.Payload, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payloads[rawDataKey{source: source, entityType: entityType, entityKey: entityKey}]
	return p, ok
}

func (r *RawDataRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payloads)
}
