package role

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jordymora1978/dropux-admin/internal/catalog"
	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/permission"
	"github.com/jordymora1978/dropux-admin/internal/snapshot"
	"gorm.io/gorm"
)

var (
	// Catalog resolves page names at the HTTP boundary.
	Catalog = catalog.Default()
	// Archiver receives a snapshot after every successful save. Nil disables it.
	Archiver *snapshot.Archiver
)

var ErrUnknownRole = errors.New("unknown role")

func Configure(cat *catalog.Catalog, arch *snapshot.Archiver) {
	if cat != nil {
		Catalog = cat
	}
	Archiver = arch
}

func FindRole(db *gorm.DB, name string) (*models.Role, error) {
	if _, ok := permission.ParseRole(name); !ok {
		return nil, ErrUnknownRole
	}
	var r models.Role
	if err := db.Where("name = ?", name).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownRole
		}
		return nil, err
	}
	return &r, nil
}

func ListRoles(db *gorm.DB) ([]models.Role, error) {
	var roles []models.Role
	if err := db.Preload("Permission").Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// LoadPermissions returns every role's page IDs keyed by role name. Roles
// without a permission row map to an empty list.
func LoadPermissions(db *gorm.DB) (map[string][]string, error) {
	roles, err := ListRoles(db)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(roles))
	for _, r := range roles {
		ids := []string{}
		if r.Permission != nil && len(r.Permission.PageIDs) > 0 {
			if err := json.Unmarshal(r.Permission.PageIDs, &ids); err != nil {
				return nil, fmt.Errorf("decode pages for role %s: %w", r.Name, err)
			}
		}
		out[r.Name] = ids
	}
	return out, nil
}

func LoadRestrictedIDs(db *gorm.DB) ([]string, error) {
	var rows []models.RestrictedPage
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PageID)
	}
	return ids, nil
}

// SaveRolePermissions replaces the role's page list with pageIDs.
func SaveRolePermissions(db *gorm.DB, roleName string, pageIDs []string, by uint) ([]string, error) {
	r, err := FindRole(db, roleName)
	if err != nil {
		return nil, err
	}
	ids := uniqueNonEmpty(pageIDs)
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var perm models.RolePermission
		err := tx.Where("role_id = ?", r.ID).First(&perm).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			perm = models.RolePermission{RoleID: r.ID, PageIDs: raw, UpdatedBy: by}
			return tx.Create(&perm).Error
		case err != nil:
			return err
		}
		return tx.Model(&perm).Updates(map[string]interface{}{
			"page_ids":   raw,
			"updated_by": by,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	logger.WithModule("role").Infof("✅ Permissions for %s replaced (%d pages) by user %d", roleName, len(ids), by)
	archive(db, "role:"+roleName, by)
	return ids, nil
}

// SaveRestrictedPages replaces the restricted set. Entries may be display
// names, legacy names or IDs; unresolvable ones are returned as dropped.
func SaveRestrictedPages(db *gorm.DB, names []string, by uint) (ids, dropped []string, err error) {
	ids = []string{}
	for _, n := range names {
		id := Catalog.NameToID(n)
		if id == "" {
			dropped = append(dropped, n)
			continue
		}
		ids = append(ids, id)
	}
	ids = uniqueNonEmpty(ids)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.RestrictedPage{}).Error; err != nil {
			return err
		}
		for _, id := range ids {
			if err := tx.Create(&models.RestrictedPage{PageID: id, CreatedBy: by}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log := logger.WithModule("role")
	if len(dropped) > 0 {
		log.Warnf("⚠️ Dropped unknown restricted pages: %v", dropped)
	}
	log.Infof("🔒 Restricted pages replaced (%d pages) by user %d", len(ids), by)
	archive(db, "restricted", by)
	return ids, dropped, nil
}

// IsRestricted reports whether pageID is in the global restricted set.
func IsRestricted(db *gorm.DB, pageID string) (bool, error) {
	var n int64
	if err := db.Model(&models.RestrictedPage{}).Where("page_id = ?", pageID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// RoleHasPage reports whether the named role's stored list contains pageID.
func RoleHasPage(db *gorm.DB, roleName, pageID string) (bool, error) {
	r, err := FindRole(db, roleName)
	if err != nil {
		return false, err
	}
	var perm models.RolePermission
	if err := db.Where("role_id = ?", r.ID).First(&perm).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	var ids []string
	if err := json.Unmarshal(perm.PageIDs, &ids); err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == pageID {
			return true, nil
		}
	}
	return false, nil
}

func archive(db *gorm.DB, reason string, by uint) {
	if Archiver == nil {
		return
	}
	perms, err := LoadPermissions(db)
	if err != nil {
		logger.WithModule("role").Errorf("❌ Snapshot skipped: %v", err)
		return
	}
	restricted, err := LoadRestrictedIDs(db)
	if err != nil {
		logger.WithModule("role").Errorf("❌ Snapshot skipped: %v", err)
		return
	}
	_, err = Archiver.Archive(snapshot.Snapshot{
		Reason:          reason,
		ChangedBy:       by,
		Permissions:     perms,
		RestrictedPages: restricted,
	})
	if err != nil {
		logger.WithModule("role").Errorf("❌ Snapshot failed: %v", err)
	}
}

func uniqueNonEmpty(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
