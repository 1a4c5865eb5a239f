package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sciencejournal/middleware"
	"sciencejournal/services"
)

type ConferenceController struct {
	Conferences *services.ConferenceService
	Logger      *zap.Logger
}

func NewConferenceController(conferences *services.ConferenceService, logger *zap.Logger) *ConferenceController {
	return &ConferenceController{Conferences: conferences, Logger: logger}
}

func (cc *ConferenceController) List(c *gin.Context) {
	conferences, err := cc.Conferences.GetConferences(c.Request.Context())
	if err != nil {
		respondError(c, cc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, conferences)
}

func (cc *ConferenceController) Create(c *gin.Context) {
	var req struct {
		Name        string     `json:"name" binding:"required"`
		Location    string     `json:"location"`
		Description string     `json:"description"`
		StartsAt    *time.Time `json:"starts_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	conf, err := cc.Conferences.CreateConference(c.Request.Context(), middleware.CurrentPrincipal(c), services.ConferenceInput{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		respondError(c, cc.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, conf)
}
