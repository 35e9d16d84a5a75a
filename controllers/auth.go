package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelar-dev/go-tours/config"
	"github.com/avelar-dev/go-tours/middleware"
	"github.com/avelar-dev/go-tours/models"
	"github.com/avelar-dev/go-tours/store"
	"github.com/avelar-dev/go-tours/utils"
)

// errInvalidCredentials is shared between "unknown email" and "wrong
// password" so the response never reveals which one it was.
var errInvalidCredentials = utils.Unauthorized("Incorrect email or password")

// AuthController orchestrates signup, login, logout and the password
// reset/update flows.
type AuthController struct {
	Store store.UserStore
	Mail  utils.Mailer
	Cfg   *config.Config
}

func NewAuthController(st store.UserStore, mail utils.Mailer, cfg *config.Config) *AuthController {
	return &AuthController{Store: st, Mail: mail, Cfg: cfg}
}

// SignupInput deliberately has no role field: every new account starts as a
// regular user.
type SignupInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordInput struct {
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

type UpdatePasswordInput struct {
	PasswordCurrent string `json:"passwordCurrent" binding:"required"`
	Password        string `json:"password" binding:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

// Signup creates a new account and logs it in right away.
func (a *AuthController) Signup(c *gin.Context) {
	var input SignupInput
	if !bindJSON(c, &input) {
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		fail(c, err)
		return
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hash,
		Role:     models.RoleUser,
	}

	if err := a.Store.Create(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			fail(c, utils.BadRequest("Email already in use. Please log in instead."))
			return
		}
		fail(c, err)
		return
	}

	a.sendToken(c, user, http.StatusCreated)
}

// Login authenticates by email and password.
func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := a.Store.FindByEmail(c.Request.Context(), input.Email)
	if err != nil {
		fail(c, errInvalidCredentials)
		return
	}

	if err := utils.CheckPassword(user.Password, input.Password); err != nil {
		fail(c, errInvalidCredentials)
		return
	}

	a.sendToken(c, user, http.StatusOK)
}

// Logout overwrites the session cookie with a sentinel that expires almost
// immediately, forcing the client to drop it.
func (a *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "loggedout", 10, "/", "", a.Cfg.Production(), true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ForgotPassword issues a single-use reset token and emails the reset link.
// Only the token's hash is persisted; if the mail cannot be delivered the
// token state is rolled back so a retry starts clean.
func (a *AuthController) ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if !bindJSON(c, &input) {
		return
	}

	ctx := c.Request.Context()

	user, err := a.Store.FindByEmail(ctx, input.Email)
	if err != nil {
		fail(c, utils.NotFound("There is no user with that email address."))
		return
	}

	raw, hashed, err := utils.GenerateResetToken()
	if err != nil {
		fail(c, err)
		return
	}

	expires := time.Now().Add(a.Cfg.ResetTokenTTL)
	if err := a.Store.SetResetToken(ctx, user.ID.Hex(), hashed, expires); err != nil {
		fail(c, err)
		return
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/users/resetPassword/%s", scheme(c), c.Request.Host, raw)

	if err := a.Mail.SendPasswordReset(ctx, user, resetURL); err != nil {
		// Compensating write: leave no reset state behind so the request
		// can simply be retried.
		_ = a.Store.ClearResetToken(ctx, user.ID.Hex())
		fail(c, utils.Internal("There was an error sending the email. Try again later.", err))
		return
	}

	c.Redirect(http.StatusSeeOther, "/login")
}

// ResetPassword consumes a reset token from the URL and sets a new password.
func (a *AuthController) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if !bindJSON(c, &input) {
		return
	}

	ctx := c.Request.Context()

	user, err := a.Store.FindByResetToken(ctx, utils.HashResetToken(c.Param("token")))
	if err != nil {
		fail(c, utils.BadRequest("Token is invalid or has expired"))
		return
	}

	if err := a.updatePassword(c, user, input.Password); err != nil {
		fail(c, err)
		return
	}
}

// UpdatePassword changes the password of the logged-in user. Runs behind
// Protect. Issuing a fresh token here matters: every previously issued token
// dies via the password-changed timestamp.
func (a *AuthController) UpdatePassword(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, utils.Unauthorized("You are not logged in. Please log in to get access."))
		return
	}

	var input UpdatePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	if err := utils.CheckPassword(user.Password, input.PasswordCurrent); err != nil {
		fail(c, utils.Unauthorized("Your current password is wrong."))
		return
	}

	if err := a.updatePassword(c, user, input.Password); err != nil {
		fail(c, err)
		return
	}
}

// updatePassword persists the new hash, reloads the record and answers with
// a fresh session token.
func (a *AuthController) updatePassword(c *gin.Context, user *models.User, newPassword string) error {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	ctx := c.Request.Context()
	if err := a.Store.UpdatePassword(ctx, user.ID.Hex(), hash); err != nil {
		return err
	}

	fresh, err := a.Store.FindByID(ctx, user.ID.Hex())
	if err != nil {
		return err
	}

	a.sendToken(c, fresh, http.StatusOK)
	return nil
}

// sendToken issues a session token, sets it as the HTTP-only session cookie
// and returns it in the body for non-cookie clients, together with the
// sanitized user.
func (a *AuthController) sendToken(c *gin.Context, user *models.User, status int) {
	token, err := utils.IssueToken(user.ID.Hex(), []byte(a.Cfg.JWTSecret), a.Cfg.JWTExpiresIn)
	if err != nil {
		fail(c, err)
		return
	}

	maxAge := a.Cfg.JWTCookieDays * 24 * 60 * 60
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", a.Cfg.Production(), true)

	c.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": user},
	})
}

// bindJSON validates the request body and records a 400 on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		fail(c, utils.WrapAppError(http.StatusBadRequest, "Invalid input data.", err))
		return false
	}
	return true
}

// fail records an error for the boundary middleware and stops the handler
// chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func scheme(c *gin.Context) string {
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
