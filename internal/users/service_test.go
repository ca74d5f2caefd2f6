package users

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usercalc/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	return NewService(db)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateParams{Name: "Alice", Email: "alice@example.com", Age: 30})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, 30, got.Age)

	byEmail, err := svc.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{Name: "Alice", Email: "alice@example.com", Age: 30})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateParams{Name: "Other", Email: "alice@example.com", Age: 40})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		params CreateParams
	}{
		{"empty name", CreateParams{Name: "", Email: "a@example.com", Age: 30}},
		{"whitespace name", CreateParams{Name: "   ", Email: "a@example.com", Age: 30}},
		{"name too long", CreateParams{Name: strings.Repeat("x", 101), Email: "a@example.com", Age: 30}},
		{"bad email", CreateParams{Name: "Alice", Email: "not-an-email", Age: 30}},
		{"email no tld", CreateParams{Name: "Alice", Email: "a@example", Age: 30}},
		{"negative age", CreateParams{Name: "Alice", Email: "a@example.com", Age: -1}},
		{"age too high", CreateParams{Name: "Alice", Email: "a@example.com", Age: 151}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.params)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestUpdatePartial(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateParams{Name: "Alice", Email: "alice@example.com", Age: 30})
	require.NoError(t, err)

	name := "Alicia"
	updated, err := svc.Update(ctx, u.ID, UpdateParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, 30, updated.Age)

	// Empty update is a no-op that returns the current record.
	same, err := svc.Update(ctx, u.ID, UpdateParams{})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", same.Name)
}

func TestUpdateEmailConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParams{Name: "Alice", Email: "alice@example.com", Age: 30})
	require.NoError(t, err)
	bob, err := svc.Create(ctx, CreateParams{Name: "Bob", Email: "bob@example.com", Age: 40})
	require.NoError(t, err)

	taken := "alice@example.com"
	_, err = svc.Update(ctx, bob.ID, UpdateParams{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Re-submitting your own email is not a conflict.
	own := "bob@example.com"
	_, err = svc.Update(ctx, bob.ID, UpdateParams{Email: &own})
	assert.NoError(t, err)
}

func TestUpdateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateParams{Name: "Alice", Email: "alice@example.com", Age: 30})
	require.NoError(t, err)

	bad := 200
	_, err = svc.Update(ctx, u.ID, UpdateParams{Age: &bad})
	assert.ErrorIs(t, err, ErrInvalid)

	// Failed update must not persist.
	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Age)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateParams{Name: "Alice", Email: "alice@example.com", Age: 30})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))

	_, err = svc.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrNotFound)
}

func TestNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	name := "X"
	_, err = svc.Update(ctx, 12345, UpdateParams{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Create(ctx, CreateParams{Name: "Alice", Email: "alice@example.com", Age: 30})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateParams{Name: "Bob", Email: "bob@example.com", Age: 40})
	require.NoError(t, err)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "Bob", list[1].Name)
}
