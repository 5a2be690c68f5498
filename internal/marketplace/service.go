package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/utils"
	"github.com/jordymora1978/dropux-admin/internal/workflow"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// Settings holds the OAuth endpoints shared by every site.
type Settings struct {
	RedirectURI    string
	TokenURL       string
	FrontendOrigin string
}

var settings = Settings{
	RedirectURI:    "http://localhost:8080/api/ml/callback",
	TokenURL:       "https://api.mercadolibre.com/oauth/token",
	FrontendOrigin: "http://localhost:3000",
}

var (
	ErrUnknownSite   = errors.New("unknown marketplace site")
	ErrInvalidState  = errors.New("invalid or expired state")
	ErrStoreNotFound = errors.New("store not found")
	ErrNotOwner      = errors.New("store belongs to another user")
)

var sanitizer = bluemonday.StrictPolicy()

func Configure(s Settings) {
	if s.RedirectURI != "" {
		settings.RedirectURI = s.RedirectURI
	}
	if s.TokenURL != "" {
		settings.TokenURL = s.TokenURL
	}
	if s.FrontendOrigin != "" {
		settings.FrontendOrigin = s.FrontendOrigin
	}
}

func oauthConfig(site Site, store *models.MarketplaceStore) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     store.AppID,
		ClientSecret: store.AppSecret,
		RedirectURL:  settings.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://" + site.AuthHost + "/authorization",
			TokenURL:  settings.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// ConnectStore records a pending store and returns the authorization URL
// the user must open.
func ConnectStore(db *gorm.DB, userID uint, req ConnectRequest) (*ConnectResponse, error) {
	site, ok := FindSite(req.SiteID)
	if !ok {
		return nil, ErrUnknownSite
	}

	state, err := utils.RandomState()
	if err != nil {
		return nil, err
	}

	store := models.MarketplaceStore{
		ID:        uuid.New().String(),
		UserID:    userID,
		SiteID:    site.ID,
		StoreName: strings.TrimSpace(sanitizer.Sanitize(req.StoreName)),
		AppID:     req.AppID,
		AppSecret: req.AppSecret,
		State:     state,
		Status:    models.StorePending,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&store).Error; err != nil {
			return err
		}
		return workflow.Record(tx, store.ID, "", models.StorePending, userID, "created")
	})
	if err != nil {
		return nil, err
	}

	logger.WithModule("marketplace").Infof("🛒 Store %s (%s) pending authorization for user %d", store.ID, site.ID, userID)
	return authorization(site, &store), nil
}

// ReconnectStore sends a failed or connected store back to pending with a
// fresh state, so the user can authorize it again.
func ReconnectStore(db *gorm.DB, id string, userID uint, admin bool) (*ConnectResponse, error) {
	store, err := ownedStore(db, id, userID, admin)
	if err != nil {
		return nil, err
	}
	site, ok := FindSite(store.SiteID)
	if !ok {
		return nil, ErrUnknownSite
	}

	state, err := utils.RandomState()
	if err != nil {
		return nil, err
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return workflow.Transition(tx, store, models.StorePending, userID, "reconnect", map[string]interface{}{
			"state": state,
		})
	})
	if err != nil {
		return nil, err
	}
	store.State = state

	logger.WithModule("marketplace").Infof("🔁 Store %s reauthorization requested by user %d", store.ID, userID)
	return authorization(site, store), nil
}

func authorization(site Site, store *models.MarketplaceStore) *ConnectResponse {
	return &ConnectResponse{
		StoreID:     store.ID,
		AuthURL:     oauthConfig(site, store).AuthCodeURL(store.State),
		RedirectURI: settings.RedirectURI,
		Instructions: []string{
			fmt.Sprintf("Verifica que la URL de redirección de tu aplicación sea %s", settings.RedirectURI),
			fmt.Sprintf("Se abrirá una ventana de Mercado Libre %s %s para autorizar la conexión", site.Country, site.Flag),
			fmt.Sprintf("Inicia sesión con la cuenta de la tienda %s", store.StoreName),
			fmt.Sprintf("Autoriza el acceso de la aplicación %s", store.AppID),
			"La ventana se cerrará automáticamente al terminar",
		},
	}
}

// CompleteConnection exchanges the authorization code for the store
// matching state and marks it connected. A failed exchange marks it failed.
func CompleteConnection(ctx context.Context, db *gorm.DB, state, code string) (*models.MarketplaceStore, error) {
	if state == "" {
		return nil, ErrInvalidState
	}

	var store models.MarketplaceStore
	if err := db.Where("state = ? AND status = ?", state, models.StorePending).First(&store).Error; err != nil {
		return nil, ErrInvalidState
	}
	site, ok := FindSite(store.SiteID)
	if !ok {
		return nil, ErrUnknownSite
	}

	token, err := oauthConfig(site, &store).Exchange(ctx, code)
	if err != nil {
		terr := db.Transaction(func(tx *gorm.DB) error {
			return workflow.Transition(tx, &store, models.StoreFailed, 0, "code exchange failed", map[string]interface{}{"state": ""})
		})
		if terr != nil {
			logger.WithModule("marketplace").Warnf("⚠️ Could not mark store %s failed: %v", store.ID, terr)
		}
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	updates := map[string]interface{}{
		"state":         "",
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
		"seller_id":     sellerID(token),
		"connected_at":  time.Now(),
	}
	if !token.Expiry.IsZero() {
		updates["token_expiry"] = token.Expiry
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return workflow.Transition(tx, &store, models.StoreConnected, 0, "authorized", updates)
	})
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidTransition) {
			return nil, ErrInvalidState
		}
		return nil, err
	}

	logger.WithModule("marketplace").Infof("✅ Store %s connected", store.ID)
	if err := db.First(&store, "id = ?", store.ID).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FailConnection marks the pending store for state as failed.
func FailConnection(db *gorm.DB, state, reason string) {
	if state == "" {
		return
	}
	var store models.MarketplaceStore
	if err := db.Where("state = ? AND status = ?", state, models.StorePending).First(&store).Error; err != nil {
		return
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return workflow.Transition(tx, &store, models.StoreFailed, 0, reason, map[string]interface{}{"state": ""})
	})
	if err != nil {
		logger.WithModule("marketplace").Warnf("⚠️ Could not mark store %s failed: %v", store.ID, err)
	}
}

// ExpirePending fails stores that have waited for authorization longer than
// maxAge. It returns how many were expired.
func ExpirePending(db *gorm.DB, maxAge time.Duration) (int, error) {
	var stores []models.MarketplaceStore
	err := db.Where("status = ? AND updated_at < ?", models.StorePending, time.Now().Add(-maxAge)).
		Find(&stores).Error
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stores {
		err := db.Transaction(func(tx *gorm.DB) error {
			return workflow.Transition(tx, &stores[i], models.StoreFailed, 0, "authorization expired", map[string]interface{}{"state": ""})
		})
		if err != nil {
			logger.WithModule("marketplace").Warnf("⚠️ Could not expire store %s: %v", stores[i].ID, err)
			continue
		}
		expired++
	}
	return expired, nil
}

func sellerID(token *oauth2.Token) string {
	switch v := token.Extra("user_id").(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	}
	return ""
}

// ListStores returns the user's stores, or every store when all is set.
func ListStores(db *gorm.DB, userID uint, all bool) ([]models.MarketplaceStore, error) {
	q := db.Order("created_at desc")
	if !all {
		q = q.Where("user_id = ?", userID)
	}
	var stores []models.MarketplaceStore
	if err := q.Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// DeleteStore removes a store owned by userID. Admins may remove any store.
func DeleteStore(db *gorm.DB, id string, userID uint, admin bool) error {
	store, err := ownedStore(db, id, userID, admin)
	if err != nil {
		return err
	}
	if err := db.Delete(store).Error; err != nil {
		return err
	}
	logger.WithModule("marketplace").Infof("🗑️ Store %s removed by user %d", id, userID)
	return nil
}

// StoreHistory lists a store's status changes, newest first.
func StoreHistory(db *gorm.DB, id string, userID uint, admin bool) ([]models.StoreStatusHistory, error) {
	if _, err := ownedStore(db, id, userID, admin); err != nil {
		return nil, err
	}
	return workflow.GetStoreHistory(db, id)
}

func ownedStore(db *gorm.DB, id string, userID uint, admin bool) (*models.MarketplaceStore, error) {
	var store models.MarketplaceStore
	if err := db.First(&store, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if !admin && store.UserID != userID {
		return nil, ErrNotOwner
	}
	return &store, nil
}
