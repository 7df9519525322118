package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegate/internal/gate"
	"stagegate/internal/services"
)

type ReviewHandler struct {
	Service  *services.ReviewService
	Notifier *services.NotificationService
}

func NewReviewHandler(service *services.ReviewService, notifier *services.NotificationService) *ReviewHandler {
	return &ReviewHandler{Service: service, Notifier: notifier}
}

type assignReviewRequest struct {
	ReviewerID int `json:"reviewer_id" binding:"required"`
}

// Assign creates the review row for a reviewer at the project's current
// stage and notifies them.
func (h *ReviewHandler) Assign(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req assignReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := getActor(c)
	review, project, err := h.Service.Assign(actor, projectID, req.ReviewerID)
	if err != nil {
		c.JSON(reviewErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.Notifier.NotifyAssignment(project, req.ReviewerID, review.Stage)
	c.JSON(http.StatusCreated, review)
}

// Start opens (or returns) the caller's own review for the current stage.
func (h *ReviewHandler) Start(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	actor := getActor(c)
	review, err := h.Service.Start(actor, projectID)
	if err != nil {
		c.JSON(reviewErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) SaveDraft(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := getActor(c)
	review, err := h.Service.SaveDraft(actor, reviewID, input)
	if err != nil {
		c.JSON(reviewErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, review)
}

// Complete submits the evaluation; when this was the gate-moving completion
// the response carries the new project state and notifications go out.
func (h *ReviewHandler) Complete(c *gin.Context) {
	reviewID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Decision == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision is required"})
		return
	}
	actor := getActor(c)
	result, err := h.Service.Complete(c.Request.Context(), actor, reviewID, input)
	if err != nil {
		c.JSON(reviewErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.dispatch(actor.UserID, result)
	c.JSON(http.StatusOK, result)
}

type gateDecideRequest struct {
	FinalDecision string `json:"final_decision"`
}

// Decide forces the gate: aggregates completed reviews, with an optional
// gatekeeper final decision that substitutes for the computed value.
func (h *ReviewHandler) Decide(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req gateDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor := getActor(c)
	var override *string
	if req.FinalDecision != "" {
		override = &req.FinalDecision
	}
	result, err := h.Service.Decide(c.Request.Context(), actor, projectID, override)
	if err != nil {
		if errors.Is(err, gate.ErrNoCompletedReviews) {
			c.JSON(http.StatusConflict, gin.H{"error": "gate is indeterminate: no completed reviews"})
			return
		}
		c.JSON(reviewErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.dispatch(actor.UserID, result)
	c.JSON(http.StatusOK, result)
}

func (h *ReviewHandler) ListForProject(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	reviews, err := h.Service.ListForProject(projectID)
	if err != nil {
		c.JSON(reviewErrStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) ListMine(c *gin.Context) {
	limit, offset := pageParams(c)
	actor := getActor(c)
	reviews, err := h.Service.ListMine(actor, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// dispatch sends the post-commit side effects. A RECYCLE outcome leaves the
// project in place but still produces an effect, so the trigger is the
// effect list, not whether stage or status moved.
func (h *ReviewHandler) dispatch(actorID int, result *services.GateResult) {
	if result.Review != nil {
		h.Notifier.LogActivity(result.Project.ID, actorID, "review_completed", string(result.Review.State))
	}
	if len(result.Effects) == 0 {
		return
	}
	recipients := h.Service.GateRecipients(result.Project, result.Stage)
	h.Notifier.DispatchGateEffects(result.Project, actorID, result.Effects, recipients)
}

func reviewErrStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrProjectNotFound), errors.Is(err, services.ErrReviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotYourReview), errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrReviewFinalized):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
