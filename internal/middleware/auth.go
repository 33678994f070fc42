package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"botdash/internal/domain"
)

const userContextKey = "user"

// JWTClaims represents the identity provider token claims
type JWTClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   string    `json:"role"`
	Plan   string    `json:"plan"`
	jwt.RegisteredClaims
}

// Auth verifies tokens issued by the identity provider. It never issues
// sessions itself.
type Auth struct {
	secret []byte
	issuer string
}

// NewAuth creates a verifier for HS256 tokens signed with secret. An empty
// issuer accepts any issuer.
func NewAuth(secret, issuer string) *Auth {
	return &Auth{secret: []byte(secret), issuer: issuer}
}

// GenerateJWT mints a token for local development and tests
func (a *Auth) GenerateJWT(user *domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Plan:   user.Plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    a.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Parse validates tokenString and returns the session user it describes
func (a *Auth) Parse(tokenString string) (*domain.User, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	id := claims.UserID
	if id == uuid.Nil && claims.Subject != "" {
		if id, err = uuid.Parse(claims.Subject); err != nil {
			return nil, fmt.Errorf("invalid subject: %w", err)
		}
	}
	if id == uuid.Nil {
		return nil, fmt.Errorf("token has no user id")
	}

	role := strings.ToUpper(claims.Role)
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	plan := strings.ToUpper(claims.Plan)
	if plan == "" {
		plan = domain.PlanFree
	}

	return &domain.User{
		ID:    id,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  role,
		Plan:  plan,
	}, nil
}

// Middleware validates the bearer token (or token cookie) and stores the
// session user in the echo context
func (a *Auth) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Get token from Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			// Try to get from cookie
			cookie, err := c.Cookie("token")
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authentication token")
			}
			authHeader = "Bearer " + cookie.Value
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
		}

		user, err := a.Parse(parts[1])
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// AdminMiddleware checks if the authenticated user has ADMIN role
func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := GetUser(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found in context")
		}
		if !user.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
		}
		return next(c)
	}
}

// GetUser extracts the session user from echo context
func GetUser(c echo.Context) (*domain.User, error) {
	user, ok := c.Get(userContextKey).(*domain.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}
