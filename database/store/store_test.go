package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orrery/simulator/model"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateListGetDelete(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	bodies, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bodies)

	zeus, err := s.Create(ctx, model.NewBody("zeus", 140, 0.5, 6, model.Gaseous, "#004dff"))
	require.NoError(t, err)
	assert.NotEmpty(t, zeus.ID)
	_, err = s.Create(ctx, model.NewBody("hg", 14, 1, 2, model.Rocky, ""))
	require.NoError(t, err)

	bodies, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, "hg", bodies[0].Name, "ordered by radius")
	assert.Equal(t, zeus, bodies[1])

	got, err := s.Get(ctx, "zeus")
	require.NoError(t, err)
	assert.Equal(t, zeus, got)

	require.NoError(t, s.Delete(ctx, "zeus"))
	_, err = s.Get(ctx, "zeus")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "zeus"), ErrNotFound)
}

func TestCreateRejects(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	_, err := s.Create(ctx, model.NewBody("hg", 14, 1, 2, model.Rocky, ""))
	require.NoError(t, err)
	_, err = s.Create(ctx, model.NewBody("hg", 20, 1, 2, model.Rocky, ""))
	assert.ErrorIs(t, err, ErrExists)

	for _, b := range []model.BodySpec{
		model.NewBody("a", 0, 0, 1, model.Rocky, ""),
		model.NewBody("b", 10, 0, -1, model.Rocky, ""),
		model.NewBody("c", 10, 0, 1, "icy", ""),
		model.NewBody("", 10, 0, 1, model.Rocky, ""),
	} {
		_, err := s.Create(ctx, b)
		assert.Error(t, err, b.Name)
	}
	bodies, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, bodies, 1)
}
