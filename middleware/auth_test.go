package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelar-dev/go-tours/config"
	"github.com/avelar-dev/go-tours/models"
	"github.com/avelar-dev/go-tours/store"
	"github.com/avelar-dev/go-tours/utils"
)

const testSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		Env:           "development",
		JWTSecret:     testSecret,
		JWTExpiresIn:  time.Hour,
		JWTCookieDays: 90,
		ResetTokenTTL: 10 * time.Minute,
	}
}

func seedUser(t *testing.T, st store.UserStore, email string, role models.Role) *models.User {
	t.Helper()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)

	u := &models.User{Name: "Test User", Email: email, Password: hash, Role: role}
	require.NoError(t, st.Create(context.Background(), u))
	return u
}

// signToken crafts a session token with an arbitrary issue time, so tests
// can simulate tokens issued in the past.
func signToken(t *testing.T, userID string, issuedAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type gateApp struct {
	router  *gin.Engine
	store   *store.MemoryStore
	invoked *bool
}

func newGateApp(t *testing.T, allowed ...models.Role) *gateApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	cfg := testConfig()
	auth := NewAuth(st, cfg)

	invoked := false
	handler := func(c *gin.Context) {
		invoked = true
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user": user.Email})
	}

	router := gin.New()
	router.Use(ErrorHandler(false))

	if len(allowed) > 0 {
		router.GET("/restricted", auth.Protect(), auth.RestrictTo(allowed...), handler)
	}
	router.GET("/protected", auth.Protect(), handler)
	router.GET("/public", auth.IsLoggedIn(), func(c *gin.Context) {
		if user, ok := CurrentUser(c); ok {
			c.JSON(http.StatusOK, gin.H{"user": user.Email})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": "anonymous"})
	})

	return &gateApp{router: router, store: st, invoked: &invoked}
}

func (app *gateApp) get(path string, decorate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func sessionCookie(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
}

func TestProtect_MissingToken(t *testing.T) {
	app := newGateApp(t)

	rec := app.get("/protected", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *app.invoked)
}

func TestProtect_InvalidToken(t *testing.T) {
	app := newGateApp(t)

	rec := app.get("/protected", bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *app.invoked)
}

func TestProtect_DeletedUser(t *testing.T) {
	app := newGateApp(t)
	u := seedUser(t, app.store, "ann@x.com", models.RoleUser)
	token := signToken(t, u.ID.Hex(), time.Now())

	require.NoError(t, app.store.Deactivate(context.Background(), u.ID.Hex()))

	rec := app.get("/protected", bearer(token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *app.invoked)
}

func TestProtect_StaleTokenAfterPasswordChange(t *testing.T) {
	app := newGateApp(t)
	u := seedUser(t, app.store, "ann@x.com", models.RoleUser)

	// Token issued an hour ago; password changed just now.
	oldToken := signToken(t, u.ID.Hex(), time.Now().Add(-time.Hour))
	require.NoError(t, app.store.UpdatePassword(context.Background(), u.ID.Hex(), "$2a$10$newhash"))

	rec := app.get("/protected", bearer(oldToken))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *app.invoked)
}

func TestProtect_ValidToken(t *testing.T) {
	app := newGateApp(t)
	u := seedUser(t, app.store, "ann@x.com", models.RoleUser)
	token := signToken(t, u.ID.Hex(), time.Now())

	rec := app.get("/protected", bearer(token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *app.invoked)
	assert.Contains(t, rec.Body.String(), "ann@x.com")
}

func TestProtect_CookieTransport(t *testing.T) {
	app := newGateApp(t)
	u := seedUser(t, app.store, "ann@x.com", models.RoleUser)
	token := signToken(t, u.ID.Hex(), time.Now())

	rec := app.get("/protected", sessionCookie(token))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRestrictTo_Forbidden(t *testing.T) {
	app := newGateApp(t, models.RoleAdmin)
	guide := seedUser(t, app.store, "guide@x.com", models.RoleGuide)
	token := signToken(t, guide.ID.Hex(), time.Now())

	rec := app.get("/restricted", bearer(token))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, *app.invoked, "handler must never run for a forbidden role")
}

func TestRestrictTo_Allowed(t *testing.T) {
	app := newGateApp(t, models.RoleAdmin, models.RoleLeadGuide)
	admin := seedUser(t, app.store, "admin@x.com", models.RoleAdmin)
	token := signToken(t, admin.ID.Hex(), time.Now())

	rec := app.get("/restricted", bearer(token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, *app.invoked)
}

func TestIsLoggedIn_NoCookie(t *testing.T) {
	app := newGateApp(t)

	rec := app.get("/public", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "anonymous")
}

func TestIsLoggedIn_BadCookieNeverBlocks(t *testing.T) {
	app := newGateApp(t)

	rec := app.get("/public", sessionCookie("garbage"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "anonymous")
}

func TestIsLoggedIn_AttachesUser(t *testing.T) {
	app := newGateApp(t)
	u := seedUser(t, app.store, "ann@x.com", models.RoleUser)
	token := signToken(t, u.ID.Hex(), time.Now())

	rec := app.get("/public", sessionCookie(token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ann@x.com")
}

func TestIsLoggedIn_IgnoresAuthorizationHeader(t *testing.T) {
	app := newGateApp(t)
	u := seedUser(t, app.store, "ann@x.com", models.RoleUser)
	token := signToken(t, u.ID.Hex(), time.Now())

	// The soft gate personalizes browser pages and only reads the cookie.
	rec := app.get("/public", bearer(token))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "anonymous")
}
