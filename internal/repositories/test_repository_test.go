package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"testadmin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTestRepositorySaveAssignsID(t *testing.T) {
	repo := NewMemoryTestRepository()
	ctx := context.Background()

	saved, err := repo.Save(ctx, &models.Test{Name: "Quiz1", DurationMinutes: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.NotNil(t, saved.AssignedCandidates)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Quiz1", found.Name)
}

func TestMemoryTestRepositorySaveDoesNotRecreate(t *testing.T) {
	repo := NewMemoryTestRepository()
	ctx := context.Background()

	_, err := repo.Save(ctx, &models.Test{ID: "unknown", Name: "Ghost"})
	assert.True(t, errors.Is(err, ErrTestNotFound))

	saved, err := repo.Save(ctx, &models.Test{Name: "Quiz1"})
	require.NoError(t, err)
	stale := saved.Clone()
	require.NoError(t, repo.DeleteByID(ctx, saved.ID))

	stale.Active = true
	_, err = repo.Save(ctx, stale)
	assert.True(t, errors.Is(err, ErrTestNotFound))

	exists, err := repo.ExistsByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryTestRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryTestRepository()
	ctx := context.Background()
	start := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	saved, err := repo.Save(ctx, &models.Test{Name: "Quiz1", StartAt: &start, AssignedCandidates: []string{"c1"}})
	require.NoError(t, err)

	saved.AssignedCandidates[0] = "mutated"
	saved.Active = true

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, found.AssignedCandidates)
	assert.False(t, found.Active)
}

func TestMemoryTestRepositoryNotFoundAndDelete(t *testing.T) {
	repo := NewMemoryTestRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing")
	assert.True(t, errors.Is(err, ErrTestNotFound))

	a, _ := repo.Save(ctx, &models.Test{Name: "A"})
	b, _ := repo.Save(ctx, &models.Test{Name: "B"})
	c, _ := repo.Save(ctx, &models.Test{Name: "C"})

	require.NoError(t, repo.DeleteByID(ctx, b.ID))
	require.NoError(t, repo.DeleteByID(ctx, "missing"))

	exists, err := repo.ExistsByID(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, c.ID, all[1].ID)
}

func TestMemoryTestRepositoryFindByAssignedCandidate(t *testing.T) {
	repo := NewMemoryTestRepository()
	ctx := context.Background()

	_, _ = repo.Save(ctx, &models.Test{Name: "A", AssignedCandidates: []string{"c1", "c2"}})
	_, _ = repo.Save(ctx, &models.Test{Name: "B", AssignedCandidates: []string{"c2"}})
	_, _ = repo.Save(ctx, &models.Test{Name: "C"})

	tests, err := repo.FindByAssignedCandidate(ctx, "c2")
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.Equal(t, "A", tests[0].Name)
	assert.Equal(t, "B", tests[1].Name)

	none, err := repo.FindByAssignedCandidate(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
