package organisation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOfficeHierarchy(t *testing.T) {
	tenant := uuid.New()
	head, err := NewHeadOffice(tenant, "Head Office", date(2020, 1, 1), "")
	require.NoError(t, err)
	assert.True(t, head.IsHeadOffice())
	assert.Equal(t, "."+head.ID.String()+".", head.Hierarchy)

	branch, err := NewOffice(tenant, "Nairobi", head, date(2021, 1, 1), "NBO")
	require.NoError(t, err)
	assert.Equal(t, head.Hierarchy+branch.ID.String()+".", branch.Hierarchy)
	assert.True(t, head.IsAncestorOf(branch))
	assert.False(t, branch.IsAncestorOf(head))

	t.Run("rejects opening before parent", func(t *testing.T) {
		_, err := NewOffice(tenant, "Early", head, date(2019, 1, 1), "")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewOffice(tenant, "  ", head, date(2021, 1, 1), "")
		assert.Error(t, err)
	})

	t.Run("cannot move under descendant", func(t *testing.T) {
		sub, err := NewOffice(tenant, "Westlands", branch, date(2022, 1, 1), "")
		require.NoError(t, err)
		_, err = branch.MoveUnder(sub)
		assert.Error(t, err)
		_, err = branch.MoveUnder(branch)
		assert.Error(t, err)
	})

	t.Run("move rewrites hierarchy", func(t *testing.T) {
		other, err := NewOffice(tenant, "Mombasa", head, date(2020, 6, 1), "")
		require.NoError(t, err)
		old, err := branch.MoveUnder(other)
		require.NoError(t, err)
		assert.Equal(t, head.Hierarchy+branch.ID.String()+".", old)
		assert.Equal(t, other.Hierarchy+branch.ID.String()+".", branch.Hierarchy)
	})

	t.Run("head office cannot move", func(t *testing.T) {
		_, err := head.MoveUnder(branch)
		assert.Error(t, err)
	})
}
