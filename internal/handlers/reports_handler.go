package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stagegate/internal/models"
	"stagegate/internal/services"
)

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// @Summary      Portfolio summary
// @Description  Project counts by stage and status, open red flags and budget totals
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  services.PortfolioSummary
// @Router       /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	data, err := h.Service.GetSummary()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *ReportHandler) FilterProjects(c *gin.Context) {
	leadID, _ := strconv.Atoi(c.DefaultQuery("lead_id", "0"))
	limit, offset := pageParams(c)

	f := models.ProjectFilter{
		Status: c.Query("status"),
		Stage:  c.Query("stage"),
		LeadID: leadID,
		SortBy: c.DefaultQuery("sort_by", "created_at"),
		Order:  c.DefaultQuery("order", "desc"),
		Limit:  limit,
		Offset: offset,
	}
	projects, err := h.Service.FilterProjects(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, projects)
}

// PortfolioPDF renders the portfolio report and streams the file back.
func (h *ReportHandler) PortfolioPDF(c *gin.Context) {
	path, err := h.Service.GeneratePortfolioPDF()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.FileAttachment(path, "portfolio.pdf")
}
