package handlers

import (
	"net/http"
	"strconv"

	"github.com/LovationAdmin/foodgram-api/middleware"
	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Users UserStore
}

func recipesLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// ListUsers returns one page of users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	p := parsePage(c)
	users, total, err := h.Users.List(c.Request.Context(), middleware.GetUserID(c), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, users, total))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.Users.GetByID(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	user, err := h.Users.GetByID(c.Request.Context(), userID, userID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, user)
}

// SetPassword changes the authenticated user's password.
func (h *UserHandler) SetPassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	err := h.Users.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondError(c, err, map[error]string{
			services.ErrForbidden: "Current password is incorrect",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscribe makes the authenticated user follow :id.
func (h *UserHandler) Subscribe(c *gin.Context) {
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID := middleware.GetUserID(c)

	if err := h.Users.Subscribe(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err, map[error]string{
			services.ErrAlreadyExists: "You are already subscribed to this author",
			services.ErrSelfFollow:    "You cannot subscribe to yourself",
		})
		return
	}

	sub, err := h.Users.Subscription(c.Request.Context(), userID, authorID, recipesLimit(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	authorID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Users.Unsubscribe(c.Request.Context(), middleware.GetUserID(c), authorID); err != nil {
		respondError(c, err, map[error]string{
			services.ErrNotInList: "You are not subscribed to this author",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the authenticated user follows.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	p := parsePage(c)
	subs, total, err := h.Users.Subscriptions(c.Request.Context(), middleware.GetUserID(c), recipesLimit(c), p.Limit, p.Offset())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, subs, total))
}
