package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	_ Store = (*MemStore)(nil)
)

// MemStore keeps bids for the lifetime of the process. Bids are stored
// encoded so callers never share memory with the store.
type MemStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{
		objects: make(map[string][]byte),
	}
}

func (m *MemStore) Put(_ context.Context, b *PendingBid) error {
	if b.BoxID == "" {
		return errors.New("pending bid without box id")
	}

	d, err := b.Marshal()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[b.BoxID] = d

	return nil
}

func (m *MemStore) Get(_ context.Context, boxID string) (*PendingBid, error) {
	m.mu.RLock()
	d, ok := m.objects[boxID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	b := &PendingBid{}
	if err := b.Unmarshal(d); err != nil {
		return nil, err
	}

	return b, nil
}

func (m *MemStore) Delete(_ context.Context, boxID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, boxID)

	return nil
}

func (m *MemStore) List(_ context.Context) ([]*PendingBid, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bids := make([]*PendingBid, 0, len(m.objects))
	for _, d := range m.objects {
		b := &PendingBid{}
		if err := b.Unmarshal(d); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}

	SortByAge(bids)

	return bids, nil
}

// SortByAge orders bids oldest first, breaking ties by box id.
func SortByAge(bids []*PendingBid) {
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].CreatedAt != bids[j].CreatedAt {
			return bids[i].CreatedAt < bids[j].CreatedAt
		}
		return bids[i].BoxID < bids[j].BoxID
	})
}
