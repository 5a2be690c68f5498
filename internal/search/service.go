package search

import (
	"strings"

	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"gorm.io/gorm"
)

type UserParams struct {
	Query   string `json:"query"`
	Role    string `json:"role,omitempty"`
	Active  *bool  `json:"active,omitempty"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	SortBy  string `json:"sort_by"`
	OrderBy string `json:"order_by"`
}

type UserResult struct {
	Users      []models.User `json:"users"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int64         `json:"total_pages"`
	Query      string        `json:"query"`
	Facets     *UserFacets   `json:"facets,omitempty"`
}

// UserFacets counts every user, not just the current page.
type UserFacets struct {
	Roles    map[string]int64 `json:"roles"`
	Statuses map[string]int64 `json:"statuses"`
}

type StoreParams struct {
	Query   string `json:"query"`
	SiteID  string `json:"site_id,omitempty"`
	Status  string `json:"status,omitempty"`
	UserID  uint   `json:"user_id,omitempty"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	SortBy  string `json:"sort_by"`
	OrderBy string `json:"order_by"`
}

type StoreResult struct {
	Stores     []models.MarketplaceStore `json:"stores"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	TotalPages int64                     `json:"total_pages"`
	Query      string                    `json:"query"`
}

func normalizePaging(page, limit *int) {
	if *page <= 0 {
		*page = 1
	}
	if *limit <= 0 {
		*limit = 10
	}
	if *limit > 100 {
		*limit = 100
	}
}

func totalPages(total int64, limit int) int64 {
	pages := total / int64(limit)
	if total%int64(limit) > 0 {
		pages++
	}
	return pages
}

func SearchUsers(params UserParams) (*UserResult, error) {
	normalizePaging(&params.Page, &params.Limit)

	query := database.DB.Model(&models.User{})

	if params.Role != "" {
		query = query.Joins("JOIN roles ON roles.id = users.role_id").
			Where("roles.name = ?", params.Role)
	}
	if params.Active != nil {
		query = query.Where("users.active = ?", *params.Active)
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		query = applyTextMatch(query, q, "users.name", "users.email")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	query = applySorting(query, params.SortBy, params.OrderBy, map[string]string{
		"created_at": "users.created_at",
		"name":       "users.name",
		"email":      "users.email",
	}, "users.created_at")

	var users []models.User
	err := query.Preload("Role").
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	return &UserResult{
		Users:      users,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages(total, params.Limit),
		Query:      params.Query,
	}, nil
}

func GetUserFacets() (*UserFacets, error) {
	facets := &UserFacets{
		Roles:    make(map[string]int64),
		Statuses: make(map[string]int64),
	}

	var roleCounts []struct {
		Name  string
		Count int64
	}
	err := database.DB.Model(&models.User{}).
		Select("roles.name as name, count(*) as count").
		Joins("JOIN roles ON roles.id = users.role_id").
		Group("roles.name").
		Scan(&roleCounts).Error
	if err != nil {
		return nil, err
	}
	for _, rc := range roleCounts {
		facets.Roles[rc.Name] = rc.Count
	}

	var statusCounts []struct {
		Active bool
		Count  int64
	}
	err = database.DB.Model(&models.User{}).
		Select("active, count(*) as count").
		Group("active").
		Scan(&statusCounts).Error
	if err != nil {
		return nil, err
	}
	for _, sc := range statusCounts {
		key := "inactive"
		if sc.Active {
			key = "active"
		}
		facets.Statuses[key] = sc.Count
	}

	return facets, nil
}

func SearchStores(params StoreParams) (*StoreResult, error) {
	normalizePaging(&params.Page, &params.Limit)

	query := database.DB.Model(&models.MarketplaceStore{})

	if params.SiteID != "" {
		query = query.Where("site_id = ?", strings.ToUpper(params.SiteID))
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.UserID > 0 {
		query = query.Where("user_id = ?", params.UserID)
	}
	if q := strings.TrimSpace(params.Query); q != "" {
		query = applyTextMatch(query, q, "store_name", "seller_id")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	query = applySorting(query, params.SortBy, params.OrderBy, map[string]string{
		"created_at":   "created_at",
		"connected_at": "connected_at",
		"store_name":   "store_name",
	}, "created_at")

	var stores []models.MarketplaceStore
	err := query.Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Find(&stores).Error
	if err != nil {
		return nil, err
	}

	return &StoreResult{
		Stores:     stores,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages(total, params.Limit),
		Query:      params.Query,
	}, nil
}

// applyTextMatch ORs a case-insensitive substring match over the columns.
func applyTextMatch(query *gorm.DB, q string, columns ...string) *gorm.DB {
	op := "LIKE"
	if database.DB.Dialector.Name() == "postgres" {
		op = "ILIKE"
	}

	conditions := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		if op == "LIKE" {
			conditions = append(conditions, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(q)+"%")
			continue
		}
		conditions = append(conditions, col+" ILIKE ?")
		args = append(args, "%"+q+"%")
	}
	return query.Where(strings.Join(conditions, " OR "), args...)
}

// applySorting only orders by whitelisted columns.
func applySorting(query *gorm.DB, sortBy, orderBy string, columns map[string]string, fallback string) *gorm.DB {
	orderBy = strings.ToLower(orderBy)
	if orderBy != "asc" && orderBy != "desc" {
		orderBy = "desc"
	}

	col, ok := columns[sortBy]
	if !ok {
		col = fallback
	}
	return query.Order(col + " " + orderBy)
}
