package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jordymora1978/dropux-admin/internal/database"
	"github.com/jordymora1978/dropux-admin/internal/logger"
	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/response"
	"github.com/jordymora1978/dropux-admin/internal/role"
	"github.com/jordymora1978/dropux-admin/internal/utils"
)

var expiresIn = int(utils.AccessTokenTTL.Seconds())

func LoginHandler(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if errs := utils.Validate(body); errs != nil {
		return response.ValidationError(c, errs)
	}

	accessToken, refreshToken, user, err := LoginUser(database.DB, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInactiveUser) {
			return response.Forbidden(c, "Account is disabled")
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	logger.WithModule("auth").Infof("🔑 User %d logged in", user.ID)

	return response.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_in":    expiresIn,
		"user":          user,
	}, "Login successful")
}

func RefreshHandler(c *fiber.Ctx) error {
	var body struct {
		UserID       uint   `json:"user_id" validate:"required"`
		RefreshToken string `json:"refresh_token" validate:"required"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if errs := utils.Validate(body); errs != nil {
		return response.ValidationError(c, errs)
	}

	accessToken, newRefreshToken, err := utils.RefreshTokenPair(database.DB, body.UserID, body.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, err.Error())
	}

	return response.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
		"expires_in":    expiresIn,
	}, "Token refreshed successfully")
}

// LogoutHandler revokes every outstanding refresh token of the caller.
func LogoutHandler(c *fiber.Ctx) error {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	if err := utils.RevokeRefreshTokens(database.DB, userID); err != nil {
		return response.InternalError(c, "Failed to revoke tokens")
	}
	logger.WithModule("auth").Infof("👋 User %d logged out", userID)

	return response.Success(c, fiber.Map{"user_id": userID}, "Logout successful")
}

// MeHandler returns the caller with the page IDs their menu may show.
func MeHandler(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(uint)

	var user models.User
	if err := database.DB.Preload("Role").First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User")
	}

	perms, err := role.LoadPermissions(database.DB)
	if err != nil {
		return response.InternalError(c, "Failed to load permissions")
	}
	pages := []string{}
	if user.Role != nil && perms[user.Role.Name] != nil {
		pages = perms[user.Role.Name]
	}

	return response.Success(c, fiber.Map{
		"user":  user,
		"pages": pages,
	}, "User retrieved successfully")
}
