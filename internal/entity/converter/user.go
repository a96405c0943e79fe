package converter

import (
	"portfolio/internal/entity/db"
	"portfolio/internal/entity/dto"
	"time"
)

// UserToAuthResponse wraps an issued token for the given user.
func UserToAuthResponse(u *db.User, token string, expiresAt time.Time) dto.AuthResponse {
	if u == nil {
		return dto.AuthResponse{Token: token, Expiration: expiresAt}
	}
	return dto.AuthResponse{
		Token:      token,
		Expiration: expiresAt,
		Role:       u.Role,
	}
}
