package auth

import (
	"errors"

	"github.com/jordymora1978/dropux-admin/internal/models"
	"github.com/jordymora1978/dropux-admin/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

func LoginUser(db *gorm.DB, email, password string) (string, string, *models.User, error) {
	var user models.User
	if err := db.Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return "", "", nil, ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.Password) {
		return "", "", nil, ErrInvalidCredentials
	}
	if !user.Active {
		return "", "", nil, ErrInactiveUser
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}

	accessToken, err := utils.GenerateJWT(user.ID, roleName)
	if err != nil {
		return "", "", nil, err
	}

	refreshToken, err := utils.GenerateRefreshToken(db, user.ID)
	if err != nil {
		return "", "", nil, err
	}

	return accessToken, refreshToken, &user, nil
}
