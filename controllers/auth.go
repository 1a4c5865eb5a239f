package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sciencejournal/auth"
	"sciencejournal/middleware"
	"sciencejournal/services"
)

type AuthController struct {
	Auth   *services.AuthService
	Secret string
	Logger *zap.Logger
}

func NewAuthController(svc *services.AuthService, secret string, logger *zap.Logger) *AuthController {
	return &AuthController{Auth: svc, Secret: secret, Logger: logger}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	session, err := ac.Auth.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, ac.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (ac *AuthController) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	session, err := ac.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, ac.Logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.Auth.Me(c.Request.Context(), middleware.CurrentPrincipal(c).UserID)
	if err != nil {
		respondError(c, ac.Logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// AntiForgery gibt das Token aus, das ändernde Formularanfragen mitsenden müssen.
func (ac *AuthController) AntiForgery(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	c.JSON(http.StatusOK, gin.H{
		"header": "X-CSRF-Token",
		"token":  auth.AntiForgeryToken(ac.Secret, p.UserID),
	})
}
