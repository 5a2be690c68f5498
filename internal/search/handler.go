package search

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/response"
)

func SearchUsersHandler(c *fiber.Ctx) error {
	params := UserParams{
		Query:   c.Query("q", ""),
		Role:    c.Query("role", ""),
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", 10),
		SortBy:  c.Query("sort_by", "created_at"),
		OrderBy: c.Query("order_by", "desc"),
	}

	if active := c.Query("active"); active != "" {
		v, err := strconv.ParseBool(active)
		if err != nil {
			return response.BadRequest(c, "Invalid active filter", active)
		}
		params.Active = &v
	}

	result, err := SearchUsers(params)
	if err != nil {
		return response.InternalError(c, "Search failed: "+err.Error())
	}

	if c.QueryBool("facets", false) {
		facets, err := GetUserFacets()
		if err != nil {
			return response.InternalError(c, "Failed to compute facets")
		}
		result.Facets = facets
	}

	meta := response.CalculateMeta(result.Page, result.Limit, result.Total)
	return response.SuccessWithMeta(c, result, meta, "Search completed successfully")
}

func SearchStoresHandler(c *fiber.Ctx) error {
	params := StoreParams{
		Query:   c.Query("q", ""),
		SiteID:  c.Query("site_id", ""),
		Status:  c.Query("status", ""),
		Page:    c.QueryInt("page", 1),
		Limit:   c.QueryInt("limit", 10),
		SortBy:  c.Query("sort_by", "created_at"),
		OrderBy: c.Query("order_by", "desc"),
	}
	if userID := c.QueryInt("user_id", 0); userID > 0 {
		params.UserID = uint(userID)
	}

	result, err := SearchStores(params)
	if err != nil {
		return response.InternalError(c, "Search failed: "+err.Error())
	}

	meta := response.CalculateMeta(result.Page, result.Limit, result.Total)
	return response.SuccessWithMeta(c, result, meta, "Search completed successfully")
}
