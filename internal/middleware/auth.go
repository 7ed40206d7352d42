package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/barber-agenda/internal/config"
	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
)

const (
	ContextUserID   = "userID"
	ContextShopID   = "shopID"
	ContextUserRole = "userRole"
	ContextClientID = "clientID"
)

const tokenTTL = 24 * time.Hour

// Claims is what a token carries. ClientID is set only for client tokens.
type Claims struct {
	UserID   uuid.UUID
	ShopID   uuid.UUID
	Role     permissions.Role
	ClientID *uuid.UUID
}

func SignToken(secret string, c Claims) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    c.UserID.String(),
		"shopId": c.ShopID.String(),
		"role":   string(c.Role),
		"exp":    now.Add(tokenTTL).Unix(),
		"iat":    now.Unix(),
	}
	if c.ClientID != nil {
		claims["clientId"] = c.ClientID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

var errInvalidPayload = errors.New("invalid_token_payload")

func ParseToken(secret, tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenMalformed
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Claims{}, jwt.ErrTokenInvalidClaims
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, errInvalidPayload
	}

	sub, _ := mc["sub"].(string)
	shop, _ := mc["shopId"].(string)
	role, _ := mc["role"].(string)

	userID, err1 := uuid.Parse(sub)
	shopID, err2 := uuid.Parse(shop)
	r, known := permissions.ParseRole(role)
	if err1 != nil || err2 != nil || !known {
		return Claims{}, errInvalidPayload
	}

	out := Claims{UserID: userID, ShopID: shopID, Role: r}

	if raw, ok := mc["clientId"].(string); ok {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			return Claims{}, errInvalidPayload
		}
		out.ClientID = &clientID
	}
	if r == permissions.RoleClient && out.ClientID == nil {
		return Claims{}, errInvalidPayload
	}

	return out, nil
}

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			return
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextShopID, claims.ShopID)
		c.Set(ContextUserRole, claims.Role)
		if claims.ClientID != nil {
			c.Set(ContextClientID, *claims.ClientID)
		}

		c.Next()
	}
}

// ======================================================
// Context helpers
// ======================================================

func ShopID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextShopID).(uuid.UUID)
}

func UserID(c *gin.Context) uuid.UUID {
	return c.MustGet(ContextUserID).(uuid.UUID)
}

func Role(c *gin.Context) permissions.Role {
	r, _ := c.Get(ContextUserRole)
	role, _ := r.(permissions.Role)
	return role
}

// ClientID is false for staff tokens.
func ClientID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextClientID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
