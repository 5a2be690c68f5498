package role

import (
	"encoding/json"
	"errors"

	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/permission"
	"gorm.io/gorm"
)

// SeedDefaultRoles creates every role and its default page list. Existing
// roles and permission rows are left alone, so edits survive restarts.
func SeedDefaultRoles(db *gorm.DB, cat *catalog.Catalog) error {
	defaults := permission.DefaultPermissions(cat)

	for _, r := range permission.Roles {
		role := models.Role{Name: string(r), Description: r.Description()}
		if err := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err != nil {
			return err
		}

		var perm models.RolePermission
		err := db.Where("role_id = ?", role.ID).First(&perm).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		ids := defaults[r]
		if ids == nil {
			ids = []string{}
		}
		raw, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		if err := db.Create(&models.RolePermission{RoleID: role.ID, PageIDs: raw}).Error; err != nil {
			return err
		}
		logger.WithModule("role").Infof("🌱 Seeded role %s with %d pages", r, len(ids))
	}
	return nil
}
