package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegate/internal/authz"
	"stagegate/internal/models"
	"stagegate/internal/services"
)

type UserHandler struct {
	Service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

type createUserRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	Email          string `json:"email" binding:"required"`
	Department     string `json:"department"`
	Password       string `json:"password" binding:"required"`
	RoleID         int    `json:"role_id"`
	TelegramChatID int64  `json:"telegram_chat_id"`
	NotifyTelegram *bool  `json:"notify_telegram"`
}

// Register is the public sign-up endpoint; accounts always start as
// researchers, an admin raises the role afterwards.
func (h *UserHandler) Register(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := &models.User{
		FullName:       req.FullName,
		Email:          req.Email,
		Department:     req.Department,
		RoleID:         authz.RoleResearcher,
		NotifyTelegram: true,
	}
	if err := h.Service.CreateUserWithPassword(user, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// CreateUser is the admin path and may set any role.
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor := getActor(c)
	if actor.RoleID != authz.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	roleID := req.RoleID
	if roleID == 0 {
		roleID = authz.RoleResearcher
	}
	notify := true
	if req.NotifyTelegram != nil {
		notify = *req.NotifyTelegram
	}
	user := &models.User{
		FullName:       req.FullName,
		Email:          req.Email,
		Department:     req.Department,
		RoleID:         roleID,
		TelegramChatID: req.TelegramChatID,
		NotifyTelegram: notify,
	}
	if err := h.Service.CreateUserWithPassword(user, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	user, err := h.Service.GetUserByID(id)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	if actor.UserID != id && actor.RoleID != authz.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	current, err := h.Service.GetUserByID(id)
	if err != nil || current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	var body models.User
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	body.ID = id
	// only admins change roles
	if actor.RoleID != authz.RoleAdmin {
		body.RoleID = current.RoleID
	}
	if body.RoleID == 0 {
		body.RoleID = current.RoleID
	}
	if err := h.Service.UpdateUser(&body); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	updated, _ := h.Service.GetUserByID(id)
	c.JSON(http.StatusOK, updated)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	if actor.RoleID != authz.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := h.Service.DeleteUser(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	limit, offset := pageParams(c)
	users, err := h.Service.ListUsers(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUserCount(c *gin.Context) {
	count, err := h.Service.GetUserCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *UserHandler) GetUserCountByRole(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("role_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role_id"})
		return
	}
	count, err := h.Service.GetUserCountByRole(roleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
