package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdash/internal/domain"
)

func runAuth(t *testing.T, a *Auth, setup func(*http.Request), next echo.HandlerFunc) (*domain.User, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	setup(req)
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *domain.User
	h := a.Middleware(func(c echo.Context) error {
		u, err := GetUser(c)
		if err != nil {
			return err
		}
		seen = u
		if next != nil {
			return next(c)
		}
		return nil
	})
	return seen, h(c)
}

func TestMiddlewareAcceptsBearerToken(t *testing.T) {
	a := NewAuth("secret", "idp")
	user := &domain.User{ID: uuid.New(), Email: "a@b.c", Role: domain.RoleUser, Plan: domain.PlanPremium}
	token, err := a.GenerateJWT(user, time.Hour)
	require.NoError(t, err)

	got, err := runAuth(t, a, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.IsPremiumUser())
	assert.False(t, got.IsAdmin())
}

func TestMiddlewareAcceptsCookie(t *testing.T) {
	a := NewAuth("secret", "")
	user := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	token, err := a.GenerateJWT(user, time.Hour)
	require.NoError(t, err)

	got, err := runAuth(t, a, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "token", Value: token})
	}, nil)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
	assert.Equal(t, domain.PlanFree, got.Plan)
}

func TestMiddlewareRejects(t *testing.T) {
	good := NewAuth("secret", "idp")
	user := &domain.User{ID: uuid.New(), Role: domain.RoleUser}
	expired, err := good.GenerateJWT(user, -time.Minute)
	require.NoError(t, err)
	otherIssuer, err := NewAuth("secret", "other").GenerateJWT(user, time.Hour)
	require.NoError(t, err)
	wrongKey, err := NewAuth("nope", "idp").GenerateJWT(user, time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		UserID:           user.ID,
		Role:             domain.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID.String(), Issuer: "idp"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"missing":      "",
		"bad scheme":   "Token abc",
		"expired":      "Bearer " + expired,
		"wrong issuer": "Bearer " + otherIssuer,
		"wrong key":    "Bearer " + wrongKey,
		"no expiry":    "Bearer " + noExpiry,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runAuth(t, good, func(r *http.Request) {
				if header != "" {
					r.Header.Set("Authorization", header)
				}
			}, nil)
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}

func TestParseUsesSubjectWhenUserIDMissing(t *testing.T) {
	a := NewAuth("secret", "")
	id := uuid.New()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	user, err := a.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, domain.RoleUser, user.Role)
}

func TestAdminMiddleware(t *testing.T) {
	e := echo.New()
	handler := AdminMiddleware(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(userContextKey, &domain.User{ID: uuid.New(), Role: domain.RoleUser})
	var he *echo.HTTPError
	require.ErrorAs(t, handler(c), &he)
	assert.Equal(t, http.StatusForbidden, he.Code)

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(userContextKey, &domain.User{ID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
