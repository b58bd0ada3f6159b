package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nexapay/nexapay-backend/internal/app/service"
	apperrors "github.com/nexapay/nexapay-backend/internal/errors"
	"github.com/nexapay/nexapay-backend/internal/middleware"
)

type ReportController struct {
	reportService service.ReportService
}

func NewReportController(reportService service.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// DownloadComplianceReport streams the compliance export workbook.
// GET /api/v1/admin/kyc/report
func (ctrl *ReportController) DownloadComplianceReport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	content, filename, err := ctrl.reportService.BuildComplianceReport()
	if err != nil {
		log.Error("Failed to build compliance report", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "compliance report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}
