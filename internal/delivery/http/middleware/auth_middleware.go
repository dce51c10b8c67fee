package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"hivcare-booking/internal/domain/entity"
	"hivcare-booking/pkg/jwt"
	"hivcare-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	RoleIDKey    contextKey = "role_id"
	RoleKey      contextKey = "role"
	TokenIDKey   contextKey = "token_id"
)

// Identity is the authenticated caller as carried by the access token.
type Identity struct {
	UserID  uuid.UUID
	Email   string
	RoleID  int
	Role    string
	TokenID string
}

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
		log:         log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		// Check if token exists in Redis (not revoked)
		tokenKey := fmt.Sprintf("access_token:%s:%s", claims.UserID.String(), claims.TokenID)
		exists, err := m.redisClient.Exists(r.Context(), tokenKey).Result()
		if err != nil {
			m.log.Warnf("Failed to validate token: %+v", err)
			response.ServiceUnavailable(w, "Failed to validate token, please retry")
			return
		}
		if exists == 0 {
			response.Unauthorized(w, "Token has been revoked")
			return
		}

		role := claims.Role
		if role == "" {
			role = entity.RoleNameByID(claims.RoleID)
		}

		ctx := ContextWithIdentity(r.Context(), Identity{
			UserID:  claims.UserID,
			Email:   claims.Email,
			RoleID:  claims.RoleID,
			Role:    role,
			TokenID: claims.TokenID,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextWithIdentity stores the caller in ctx the same way Authenticate does.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id.UserID)
	ctx = context.WithValue(ctx, UserEmailKey, id.Email)
	ctx = context.WithValue(ctx, RoleIDKey, id.RoleID)
	ctx = context.WithValue(ctx, RoleKey, id.Role)
	ctx = context.WithValue(ctx, TokenIDKey, id.TokenID)
	return ctx
}

// GetIdentityFromContext returns the authenticated caller, false for anonymous requests.
func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return Identity{}, false
	}
	id := Identity{UserID: userID}
	id.Email, _ = GetUserEmailFromContext(ctx)
	id.RoleID, _ = GetRoleIDFromContext(ctx)
	id.Role, _ = GetRoleFromContext(ctx)
	id.TokenID, _ = GetTokenIDFromContext(ctx)
	return id, true
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmailFromContext extracts user email from context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailKey).(string)
	return email, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}

// GetRoleIDFromContext extracts role ID from context
func GetRoleIDFromContext(ctx context.Context) (int, bool) {
	roleID, ok := ctx.Value(RoleIDKey).(int)
	return roleID, ok
}

// GetRoleFromContext extracts the role name from context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
