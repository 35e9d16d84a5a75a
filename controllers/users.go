package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelar-dev/go-tours/middleware"
	"github.com/avelar-dev/go-tours/store"
	"github.com/avelar-dev/go-tours/utils"
)

// UserController covers the self-service profile handlers and the admin
// listing. All of its routes run behind Protect.
type UserController struct {
	Store store.UserStore
}

func NewUserController(st store.UserStore) *UserController {
	return &UserController{Store: st}
}

// UpdateMeInput is the static allow-list of self-updatable fields. Password
// fields are bound only so they can be rejected explicitly.
type UpdateMeInput struct {
	Name            string `json:"name"`
	Email           string `json:"email" binding:"omitempty,email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// GetMe returns the current user's profile.
func (u *UserController) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, utils.Unauthorized("You are not logged in. Please log in to get access."))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": user},
	})
}

// UpdateMe updates name and email only. Password changes must go through
// /updateMyPassword so the token lifecycle side effects apply.
func (u *UserController) UpdateMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, utils.Unauthorized("You are not logged in. Please log in to get access."))
		return
	}

	var input UpdateMeInput
	if !bindJSON(c, &input) {
		return
	}

	if input.Password != "" || input.PasswordConfirm != "" {
		fail(c, utils.BadRequest("This route is not for password updates. Please use /updateMyPassword."))
		return
	}

	updated, err := u.Store.UpdateProfile(c.Request.Context(), user.ID.Hex(), input.Name, input.Email)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"user": updated},
	})
}

// DeleteMe soft-deletes the account. The record stays in the store but the
// user disappears from logins and lookups.
func (u *UserController) DeleteMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, utils.Unauthorized("You are not logged in. Please log in to get access."))
		return
	}

	if err := u.Store.Deactivate(c.Request.Context(), user.ID.Hex()); err != nil {
		fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers is admin-only; the role gate runs in middleware.
func (u *UserController) ListUsers(c *gin.Context) {
	users, err := u.Store.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(users),
		"data":    gin.H{"users": users},
	})
}
