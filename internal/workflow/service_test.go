package workflow_test

import (
	"testing"

	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/testutils"
	"github.com/jordymora1978/dropux-admin/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, workflow.CanTransition("", models.StorePending))
	assert.True(t, workflow.CanTransition(models.StorePending, models.StoreConnected))
	assert.True(t, workflow.CanTransition(models.StorePending, models.StoreFailed))
	assert.True(t, workflow.CanTransition(models.StoreFailed, models.StorePending))
	assert.True(t, workflow.CanTransition(models.StoreConnected, models.StorePending))

	assert.False(t, workflow.CanTransition(models.StoreFailed, models.StoreConnected))
	assert.False(t, workflow.CanTransition(models.StoreConnected, models.StoreFailed))
	assert.False(t, workflow.CanTransition(models.StorePending, models.StorePending))
	assert.False(t, workflow.CanTransition("", models.StoreConnected))
}

func TestTransition(t *testing.T) {
	db := testutils.TestDB(t)

	store := models.MarketplaceStore{ID: "store-1", SiteID: "MCO", StoreName: "Tienda", Status: models.StorePending, State: "abc"}
	require.NoError(t, db.Create(&store).Error)

	t.Run("Success - Applies updates and records history", func(t *testing.T) {
		err := workflow.Transition(db, &store, models.StoreFailed, 7, "denied", map[string]interface{}{"state": ""})
		require.NoError(t, err)
		assert.Equal(t, models.StoreFailed, store.Status)

		var got models.MarketplaceStore
		require.NoError(t, db.First(&got, "id = ?", store.ID).Error)
		assert.Equal(t, models.StoreFailed, got.Status)
		assert.Empty(t, got.State)

		history, err := workflow.GetStoreHistory(db, store.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.StorePending, history[0].FromStatus)
		assert.Equal(t, uint(7), history[0].ChangedBy)
		assert.Equal(t, "denied", history[0].Comment)
	})

	t.Run("Error - Disallowed transition", func(t *testing.T) {
		err := workflow.Transition(db, &store, models.StoreConnected, 0, "", nil)
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	})

	t.Run("Error - Stale copy loses the race", func(t *testing.T) {
		stale := store
		require.NoError(t, workflow.Transition(db, &store, models.StorePending, 0, "retry", nil))

		err := workflow.Transition(db, &stale, models.StorePending, 0, "retry", nil)
		assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

		history, err := workflow.GetStoreHistory(db, store.ID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})
}
