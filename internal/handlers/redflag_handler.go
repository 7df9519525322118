package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegate/internal/models"
	"stagegate/internal/services"
)

type RedFlagHandler struct {
	Service  *services.RedFlagService
	Projects *services.ProjectService
}

func NewRedFlagHandler(service *services.RedFlagService, projects *services.ProjectService) *RedFlagHandler {
	return &RedFlagHandler{Service: service, Projects: projects}
}

type raiseFlagRequest struct {
	Severity    string `json:"severity"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (h *RedFlagHandler) Raise(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req raiseFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := getActor(c)
	flag := &models.RedFlag{
		ProjectID:   projectID,
		Severity:    models.RedFlagSeverity(req.Severity),
		Title:       req.Title,
		Description: req.Description,
	}
	created, err := h.Service.Raise(actor, flag)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RedFlagHandler) Resolve(c *gin.Context) {
	flagID, err := strconv.Atoi(c.Param("flag_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flag_id"})
		return
	}
	actor := getActor(c)
	flag, err := h.Service.Resolve(actor, flagID)
	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "red flag not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flag)
}

func (h *RedFlagHandler) ListByProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	project, err := h.Projects.GetByID(projectID)
	if err != nil || project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if !h.Projects.CanView(actor, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	flags, err := h.Service.ListByProject(projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flags)
}
