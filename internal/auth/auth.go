package auth

import (
	"context"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PermissionViewCertificates   = "view_certificates"
	PermissionManageCertificates = "manage_certificates"
	PermissionAdmin              = "admin"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// User is the authenticated principal placed on the request context.
type User struct {
	ID          int64    `json:"id"`
	TenantID    int64    `json:"tenant_id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

func (u *User) HasPermission(permission string) bool {
	return slices.Contains(u.Permissions, permission)
}

func (u *User) HasAnyPermission(permissions []string) bool {
	if u.IsAdmin() {
		return true
	}
	for _, p := range permissions {
		if u.HasPermission(p) {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasPermission(PermissionAdmin)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Claims struct {
	UserID   int64  `json:"user_id"`
	TenantID int64  `json:"tenant_id"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Credentials is what the repository hands back for a login attempt.
type Credentials struct {
	UserID       int64
	TenantID     int64
	Email        string
	PasswordHash string
	IsActive     bool
}
