package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avelar-dev/go-tours/config"
	"github.com/avelar-dev/go-tours/models"
	"github.com/avelar-dev/go-tours/store"
	"github.com/avelar-dev/go-tours/utils"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

// userKey is the gin context key the verified user is attached under.
const userKey = "currentUser"

// Auth builds the request gates. Route ordering is Protect → RestrictTo →
// handler; IsLoggedIn is independent and only used on public routes.
type Auth struct {
	Store store.UserStore
	Cfg   *config.Config
}

func NewAuth(st store.UserStore, cfg *config.Config) *Auth {
	return &Auth{Store: st, Cfg: cfg}
}

// CurrentUser returns the user attached by Protect or IsLoggedIn.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// Protect is the hard gate: it requires a valid session token from the
// Authorization header or the session cookie, for a user that still exists
// and has not changed their password since the token was issued.
func (a *Auth) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, utils.Unauthorized("You are not logged in. Please log in to get access."))
			return
		}

		user, err := a.resolveToken(c, token)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RestrictTo passes only users whose role is in the allowed set. It must run
// after Protect.
func (a *Auth) RestrictTo(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abort(c, utils.Unauthorized("You are not logged in. Please log in to get access."))
			return
		}
		if !user.Role.IsAllowed(allowed...) {
			abort(c, utils.Forbidden("You do not have permission to perform this action."))
			return
		}
		c.Next()
	}
}

// IsLoggedIn is the soft gate for personalized public pages: it attaches the
// user when the session cookie checks out and silently continues
// unauthenticated on any failure. It never blocks a request.
func (a *Auth) IsLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := a.resolveToken(c, token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// resolveToken verifies the token and checks the user still exists and has
// not changed their password since issuance.
func (a *Auth) resolveToken(c *gin.Context, token string) (*models.User, error) {
	claims, err := utils.VerifyToken(token, []byte(a.Cfg.JWTSecret))
	if err != nil {
		return nil, utils.Unauthorized("Invalid token. Please log in again.")
	}

	user, err := a.Store.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, utils.Unauthorized("The user belonging to this token no longer exists.")
	}

	if user.ChangedPasswordAfter(claims.IssuedAt) {
		return nil, utils.Unauthorized("Password recently changed. Please log in again.")
	}

	return user, nil
}

// extractToken prefers the Authorization header over the cookie.
func extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if token, err := c.Cookie(SessionCookie); err == nil {
		return token
	}
	return ""
}

// abort records an operational error for the boundary and stops the chain.
func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
