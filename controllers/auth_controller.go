package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"store-backend/middleware"
	"store-backend/services"
)

// AuthController serves registration, login and profile endpoints.
type AuthController struct {
	auth *services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Email     string     `json:"email"`
	AvatarURL string     `json:"avatar_url"`
	BirthDate *time.Time `json:"birth_date"`
}

// Register creates a new user account with its profile.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid payload"})
		return
	}

	user, err := ac.auth.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and returns a bearer token.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid payload"})
		return
	}

	token, err := ac.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetProfile returns the authenticated user's profile.
func (ac *AuthController) GetProfile(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Message: "Unauthorized"})
		return
	}

	profile, err := ac.auth.GetProfile(c.Request.Context(), *userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile saves changes to the authenticated user's profile.
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Message: "Unauthorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "invalid payload"})
		return
	}

	profile, err := ac.auth.UpdateProfile(c.Request.Context(), *userID, req.Email, req.AvatarURL, req.BirthDate)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
