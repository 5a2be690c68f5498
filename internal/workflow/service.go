// Package workflow enforces the marketplace store status lifecycle and keeps
// its history.
package workflow

import (
	"errors"
	"fmt"

	"github.com/jordymora1978/dropux-admin/internal/models"
	"gorm.io/gorm"
)

var ErrInvalidTransition = errors.New("invalid store status transition")

var transitions = map[models.StoreStatus][]models.StoreStatus{
	"":                    {models.StorePending},
	models.StorePending:   {models.StoreConnected, models.StoreFailed},
	models.StoreFailed:    {models.StorePending},
	models.StoreConnected: {models.StorePending},
}

func CanTransition(from, to models.StoreStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves store to status, applying any extra column updates in
// the same statement, and appends a history row. The update only matches
// while the store is still in its current status, so two racing
// transitions cannot both win.
func Transition(tx *gorm.DB, store *models.MarketplaceStore, to models.StoreStatus, changedBy uint, comment string, updates map[string]interface{}) error {
	from := store.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	res := tx.Model(&models.MarketplaceStore{}).
		Where("id = ? AND status = ?", store.ID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: store %s is no longer %s", ErrInvalidTransition, store.ID, from)
	}

	store.Status = to
	return Record(tx, store.ID, from, to, changedBy, comment)
}

// Record appends a history row without touching the store.
func Record(tx *gorm.DB, storeID string, from, to models.StoreStatus, changedBy uint, comment string) error {
	return tx.Create(&models.StoreStatusHistory{
		StoreID:    storeID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  changedBy,
		Comment:    comment,
	}).Error
}

func GetStoreHistory(db *gorm.DB, storeID string) ([]models.StoreStatusHistory, error) {
	var history []models.StoreStatusHistory
	err := db.
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Find(&history).Error
	return history, err
}
