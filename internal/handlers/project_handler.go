package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegate/internal/authz"
	"stagegate/internal/models"
	"stagegate/internal/repositories"
	"stagegate/internal/services"
)

type ProjectHandler struct {
	Service  *services.ProjectService
	Notifier *services.NotificationService
	Activity *repositories.ActivityRepository
}

func NewProjectHandler(service *services.ProjectService, notifier *services.NotificationService, activity *repositories.ActivityRepository) *ProjectHandler {
	return &ProjectHandler{Service: service, Notifier: notifier, Activity: activity}
}

type createProjectRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	LeadID        int     `json:"lead_id"`
	BudgetPlanned float64 `json:"budget_planned"`
	Currency      string  `json:"currency"`
}

// @Summary      Create a project
// @Description  Registers a new research project at the concept stage
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        project  body      createProjectRequest  true  "Project data"
// @Success      201      {object}  models.Project
// @Failure      400      {object}  map[string]string
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := getActor(c)

	leadID := req.LeadID
	if leadID == 0 || !authz.IsElevated(actor.RoleID) {
		leadID = actor.UserID
	}
	project := &models.Project{
		Title:         req.Title,
		Description:   req.Description,
		LeadID:        leadID,
		BudgetPlanned: req.BudgetPlanned,
		Currency:      req.Currency,
	}
	if err := h.Service.Create(project); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.Notifier.LogActivity(project.ID, actor.UserID, "project_created", project.Title)
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	project, err := h.Service.GetByID(id)
	if err != nil || project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if !h.Service.CanView(actor, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	current, err := h.Service.GetByID(id)
	if err != nil || current == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if !h.Service.CanManage(actor, current) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var body createProjectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	current.Title = body.Title
	current.Description = body.Description
	current.BudgetPlanned = body.BudgetPlanned
	if body.Currency != "" {
		current.Currency = body.Currency
	}
	if body.LeadID != 0 && authz.IsElevated(actor.RoleID) {
		current.LeadID = body.LeadID
	}

	if err := h.Service.Update(current); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	updated, _ := h.Service.GetByID(id)
	c.JSON(http.StatusOK, updated)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	project, err := h.Service.GetByID(id)
	if err != nil || project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if !authz.IsElevated(actor.RoleID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := h.Service.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)
	actor := getActor(c)

	var projects []*models.Project
	var err error
	if authz.IsElevated(actor.RoleID) || authz.IsReadOnly(actor.RoleID) || authz.CanGatekeep(actor.RoleID) {
		projects, err = h.Service.ListPaginated(limit, offset)
	} else {
		projects, err = h.Service.ListMy(actor.UserID, limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve projects"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

type overrideStatusRequest struct {
	To string `json:"to" binding:"required"`
}

// OverrideStatus is the explicit admin action outside the gate workflow.
func (h *ProjectHandler) OverrideStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req overrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := getActor(c)
	project, err := h.Service.OverrideStatus(actor, id, req.To)
	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "project not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	h.Notifier.LogActivity(project.ID, actor.UserID, "status_overridden", req.To)
	c.JSON(http.StatusOK, project)
}

// --- team membership ---

type addMemberRequest struct {
	UserID int    `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	project, err := h.Service.GetByID(id)
	if err != nil || project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if !h.Service.CanManage(actor, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m := &models.ProjectMember{ProjectID: id, UserID: req.UserID, Role: req.Role}
	if err := h.Service.AddMember(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.Notifier.LogActivity(id, actor.UserID, "member_added", strconv.Itoa(req.UserID))
	c.JSON(http.StatusCreated, m)
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	actor := getActor(c)
	project, err := h.Service.GetByID(id)
	if err != nil || project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if !h.Service.CanManage(actor, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if err := h.Service.RemoveMember(id, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) ListMembers(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	project, err := h.Service.GetByID(id)
	if err != nil || project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if !h.Service.CanView(actor, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	members, err := h.Service.ListMembers(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, members)
}

// ListActivity exposes the append-only project log.
func (h *ProjectHandler) ListActivity(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	project, err := h.Service.GetByID(id)
	if err != nil || project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	if !h.Service.CanView(actor, project) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	limit, offset := pageParams(c)
	entries, err := h.Activity.ListByProject(id, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}
