package http

import (
	"net/http"

	"feedshop-gateway/internal/entity"
	"feedshop-gateway/internal/usecase"

	"github.com/gin-gonic/gin"
)

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token   string          `json:"token"`
	Profile *entity.Profile `json:"profile"`
}

// Signup godoc
// @Summary      Create an account
// @Description  Register upstream and open an authenticated gateway session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Registration data"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, token, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.respondError(c, err, "Sign up failed")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{Token: token, Profile: sess.Profile})
}

// Login godoc
// @Summary      Log in
// @Description  Exchange credentials for a gateway session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, Profile: sess.Profile})
}

// GuestSession godoc
// @Summary      Open a guest session
// @Description  Issue an unauthenticated session for cart and checkout
// @Tags         auth
// @Produce      json
// @Success      201  {object}  AuthResponse
// @Router       /session [post]
func (h *Handler) GuestSession(c *gin.Context) {
	_, token, err := h.auth.GuestSession(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to open session")
		return
	}
	c.JSON(http.StatusCreated, AuthResponse{Token: token})
}

// Me godoc
// @Summary      Current profile
// @Description  Return the profile cached at login; null when the login-time fetch degraded
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.Profile
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	profile, err := h.auth.CurrentProfile(c.Request.Context(), sid)
	if err != nil {
		h.respondError(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Logout godoc
// @Summary      Log out
// @Description  Tear the session down; token and cached profile are gone
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.auth.Logout(c.Request.Context(), sid); err != nil {
		h.respondError(c, err, "Failed to log out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}
