package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role is one of the fixed dashboard roles. Rows are seeded, never created by users.
type Role struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:50;uniqueIndex" json:"name"`
	Description string          `json:"description"`
	Permission  *RolePermission `gorm:"foreignKey:RoleID" json:"permission,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// RolePermission holds the page IDs a role's menu may display.
type RolePermission struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	RoleID    uint           `gorm:"uniqueIndex" json:"role_id"`
	PageIDs   datatypes.JSON `json:"page_ids"` // ["dashboard", "orders"]
	UpdatedBy uint           `json:"updated_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// RestrictedPage is a member of the global restricted set, stored by page ID.
type RestrictedPage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PageID    string    `gorm:"size:100;uniqueIndex" json:"page_id"`
	CreatedBy uint      `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
