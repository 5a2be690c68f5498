package models

import (
	"time"

	"gorm.io/gorm"
)

type StoreStatus string

const (
	StorePending   StoreStatus = "pending"
	StoreConnected StoreStatus = "connected"
	StoreFailed    StoreStatus = "failed"
)

// MarketplaceStore is a seller account connected through the marketplace OAuth flow.
type MarketplaceStore struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	UserID       uint           `gorm:"index" json:"user_id"`
	SiteID       string         `gorm:"size:10;index" json:"site_id"`
	StoreName    string         `gorm:"size:100" json:"store_name"`
	AppID        string         `gorm:"size:50" json:"app_id"`
	AppSecret    string         `gorm:"size:255" json:"-"`
	SellerID     string         `gorm:"size:30" json:"seller_id,omitempty"`
	State        string         `gorm:"size:100;index" json:"-"`
	Status       StoreStatus    `gorm:"size:20;default:'pending'" json:"status"`
	AccessToken  string         `gorm:"type:text" json:"-"`
	RefreshToken string         `gorm:"type:text" json:"-"`
	TokenExpiry  *time.Time     `json:"token_expiry,omitempty"`
	ConnectedAt  *time.Time     `json:"connected_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// StoreStatusHistory records each status change of a store. ChangedBy is 0
// for changes made by the OAuth callback or the cleanup job.
type StoreStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	StoreID    string      `gorm:"size:36;index" json:"store_id"`
	FromStatus StoreStatus `gorm:"size:20" json:"from_status"`
	ToStatus   StoreStatus `gorm:"size:20" json:"to_status"`
	ChangedBy  uint        `json:"changed_by,omitempty"`
	Comment    string      `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}
