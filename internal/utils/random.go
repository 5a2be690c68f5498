package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/jordymora1978/dropux-admin/internal/models"
	"gorm.io/gorm"
)

const RefreshTokenTTL = 7 * 24 * time.Hour

func GenerateRefreshToken(db *gorm.DB, userID uint) (string, error) {
	rawToken := RandomString(64)

	rt := models.RefreshToken{
		UserID:    userID,
		TokenHash: HashToken(rawToken),
		ExpiresAt: time.Now().Add(RefreshTokenTTL),
	}

	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}

	return rawToken, nil
}

// ConsumeRefreshToken revokes the token and reports whether it was valid.
// A refresh token can be used once.
func ConsumeRefreshToken(db *gorm.DB, userID uint, token string) bool {
	result := db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND token_hash = ? AND revoked = ? AND expires_at > ?", userID, HashToken(token), false, time.Now()).
		Update("revoked", true)

	return result.RowsAffected == 1
}

func RevokeRefreshTokens(db *gorm.DB, userID uint) error {
	return db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}

func RefreshTokenPair(db *gorm.DB, userID uint, oldToken string) (string, string, error) {
	if !ConsumeRefreshToken(db, userID, oldToken) {
		return "", "", fmt.Errorf("invalid or expired refresh token")
	}

	var user models.User
	if err := db.Preload("Role").First(&user, userID).Error; err != nil {
		return "", "", fmt.Errorf("user not found")
	}
	if !user.Active {
		return "", "", fmt.Errorf("user is inactive")
	}

	accessToken, err := GenerateJWT(user.ID, user.Role.Name)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	newRefreshToken, err := GenerateRefreshToken(db, userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

func RandomString(length int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		result[i] = chars[num.Int64()]
	}
	return string(result)
}

// RandomState returns a URL-safe value for OAuth state parameters.
func RandomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
