package company

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServiceTest(t *testing.T) (context.Context, *StubRepository, Service) {
	repo := NewStubRepository()
	return context.Background(), repo, NewService(repo)
}

func TestServiceImpl_Create(t *testing.T) {
	// given
	ctx, repo, service := setupServiceTest(t)

	// when
	created, err := service.Create(ctx, Company{
		Name:      "Acme",
		Location:  "Pune",
		VisitDate: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
	})

	// then
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	stored, err := repo.FindById(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.Name)
	assert.Equal(t, "Pune", stored.Location)
}

func TestServiceImpl_Update(t *testing.T) {
	t.Run("should overwrite the stored fields", func(t *testing.T) {
		// given
		ctx, _, service := setupServiceTest(t)
		created, err := service.Create(ctx, Company{Name: "Acme"})
		require.NoError(t, err)

		// when
		created.Name = "Acme Corp"
		created.Location = "Mumbai"
		updated, err := service.Update(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", updated.Name)
		assert.Equal(t, "Mumbai", updated.Location)
	})

	t.Run("should fail when the company does not exist", func(t *testing.T) {
		// given
		ctx, _, service := setupServiceTest(t)

		// when
		_, err := service.Update(ctx, Company{ID: "missing", Name: "Ghost"})

		// then
		assert.ErrorIs(t, err, ErrCompanyNotFound)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should remove the company", func(t *testing.T) {
		// given
		ctx, _, service := setupServiceTest(t)
		created, err := service.Create(ctx, Company{Name: "Acme"})
		require.NoError(t, err)

		// when
		err = service.Delete(ctx, created.ID)

		// then
		require.NoError(t, err)
		_, err = service.Get(ctx, created.ID)
		assert.ErrorIs(t, err, ErrCompanyNotFound)
	})

	t.Run("should fail when the company does not exist", func(t *testing.T) {
		// given
		ctx, _, service := setupServiceTest(t)

		// when
		err := service.Delete(ctx, "missing")

		// then
		assert.ErrorIs(t, err, ErrCompanyNotFound)
	})
}

func TestServiceImpl_Exists(t *testing.T) {
	// given
	ctx, _, service := setupServiceTest(t)
	created, err := service.Create(ctx, Company{Name: "Acme"})
	require.NoError(t, err)

	// then
	exists, err := service.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = service.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}
