package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/OpenCCS/ccs/internal/approval/model"
)

// AuthService resolves bearer tokens to workflow users. Token issuance and
// rotation live outside this service; the workflow only needs the lookup.
type AuthService struct {
	db *gorm.DB
}

// NewAuthService creates a new AuthService instance
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{
		db: db,
	}
}

// GetUserByToken retrieves the user holding the given API token. Inactive
// users resolve the same as unknown tokens.
func (as *AuthService) GetUserByToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	var user model.User
	result := as.db.WithContext(ctx).
		Where("api_token = ? AND active = ?", token, true).
		First(&user)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Debug("no active user for token")
			return nil, result.Error
		}
		slog.Error("failed to fetch user from database", "error", result.Error)
		return nil, fmt.Errorf("failed to fetch user: %w", result.Error)
	}

	return &user, nil
}

// ExtractBearerToken pulls the token out of an Authorization header of the
// form "Bearer <token>". The scheme comparison is case-insensitive.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("authorization header is empty")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fmt.Errorf("authorization header is not a bearer token")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}
	return token, nil
}
