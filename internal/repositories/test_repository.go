package repositories

import (
	"context"
	"errors"
	"sync"

	"testadmin/internal/models"

	"github.com/google/uuid"
)

var ErrTestNotFound = errors.New("test not found")

// TestRepository is the persistence contract for tests. Implementations hand
// out copies, so mutating a returned record never changes stored state.
type TestRepository interface {
	// Save inserts when ID is empty (assigning one) and otherwise replaces the
	// stored record, failing with ErrTestNotFound if there is none.
	Save(ctx context.Context, test *models.Test) (*models.Test, error)
	FindByID(ctx context.Context, id string) (*models.Test, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
	FindAll(ctx context.Context) ([]*models.Test, error)
	FindByAssignedCandidate(ctx context.Context, candidateID string) ([]*models.Test, error)
}

// MemoryTestRepository keeps tests in process, in insertion order.
type MemoryTestRepository struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*models.Test
}

func NewMemoryTestRepository() *MemoryTestRepository {
	return &MemoryTestRepository{byID: make(map[string]*models.Test)}
}

func (r *MemoryTestRepository) Save(_ context.Context, test *models.Test) (*models.Test, error) {
	stored := test.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.AssignedCandidates == nil {
		stored.AssignedCandidates = []string{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[stored.ID]; !ok {
		if test.ID != "" {
			return nil, ErrTestNotFound
		}
		r.order = append(r.order, stored.ID)
	}
	r.byID[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *MemoryTestRepository) FindByID(_ context.Context, id string) (*models.Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	test, ok := r.byID[id]
	if !ok {
		return nil, ErrTestNotFound
	}
	return test.Clone(), nil
}

func (r *MemoryTestRepository) ExistsByID(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok, nil
}

func (r *MemoryTestRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return nil
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryTestRepository) FindAll(_ context.Context) ([]*models.Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.Test, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}

func (r *MemoryTestRepository) FindByAssignedCandidate(_ context.Context, candidateID string) ([]*models.Test, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Test{}
	for _, id := range r.order {
		test := r.byID[id]
		for _, c := range test.AssignedCandidates {
			if c == candidateID {
				out = append(out, test.Clone())
				break
			}
		}
	}
	return out, nil
}

// Ping satisfies the readiness probe.
func (r *MemoryTestRepository) Ping(context.Context) error { return nil }
