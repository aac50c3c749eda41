package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/dashkit/internal/table"
)

func points(t *testing.T) *table.Table {
	t.Helper()
	s, err := table.NewSchema(
		table.Column{Name: "abbreviatedAddress", Kind: table.KindString},
		table.Column{Name: "price", Kind: table.KindNumber},
	)
	require.NoError(t, err)
	tb, err := table.New(s, [][]table.Value{
		{table.String("1 Main St"), table.Number(100)},
		{table.String("2 Oak Ave"), table.Number(300)},
	})
	require.NoError(t, err)
	return tb
}

func TestNewSessionHasUUID(t *testing.T) {
	s := New()
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, New().ID)
	_, ok := s.CurrentSelection()
	assert.False(t, ok)
	assert.Equal(t, -1, s.SelectedIndex())
}

func TestSelectOverwrites(t *testing.T) {
	s := New()
	s.Show(points(t))

	_, err := s.Select(0)
	require.NoError(t, err)
	rec, err := s.Select(1)
	require.NoError(t, err)

	cur, ok := s.CurrentSelection()
	require.True(t, ok)
	assert.Equal(t, rec, cur)
	addr, err := cur.Get("abbreviatedAddress")
	require.NoError(t, err)
	assert.Equal(t, "2 Oak Ave", addr.Str())
	assert.Equal(t, 1, s.SelectedIndex())
}

func TestSelectOutOfRangeKeepsPrevious(t *testing.T) {
	s := New()
	_, err := s.Select(0)
	assert.Error(t, err, "nothing displayed")

	s.Show(points(t))
	_, err = s.Select(0)
	require.NoError(t, err)
	_, err = s.Select(5)
	assert.True(t, errors.Is(err, table.ErrRowOutOfRange))
	assert.Equal(t, 0, s.SelectedIndex())
}

func TestShowAndClearResetSelection(t *testing.T) {
	s := New()
	s.Show(points(t))
	_, err := s.Select(1)
	require.NoError(t, err)
	s.Clear()
	_, ok := s.CurrentSelection()
	assert.False(t, ok)

	_, err = s.Select(1)
	require.NoError(t, err)
	s.Show(points(t))
	_, ok = s.CurrentSelection()
	assert.False(t, ok)
}
