package handlers

import (
	"errors"
	"net/http"

	"github.com/LovationAdmin/foodgram-api/models"
	"github.com/LovationAdmin/foodgram-api/services"
	"github.com/LovationAdmin/foodgram-api/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Users UserStore
}

// Signup registers a new account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.Users.Create(c.Request.Context(), req)
	if err != nil {
		utils.LogAuthAction("signup", req.Email, false)
		respondError(c, err, map[error]string{
			services.ErrAlreadyExists: "A user with that email or username already exists",
		})
		return
	}

	utils.LogAuthAction("signup", user.Email, true)
	c.JSON(http.StatusCreated, user)
}

// Login exchanges credentials for an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrNotFound) {
		utils.LogAuthAction("login", req.Email, false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		respondError(c, err, nil)
		return
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	utils.LogAuthAction("login", user.Email, true)
	c.JSON(http.StatusOK, models.TokenResponse{AuthToken: token})
}
