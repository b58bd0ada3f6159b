package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/nexapay/nexapay-backend/internal/app/repository"
	"github.com/nexapay/nexapay-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ReportService builds the compliance export: every verification record with
// its audit trail, as an XLSX workbook.
type ReportService interface {
	BuildComplianceReport() ([]byte, string, error)
}

type reportService struct {
	verificationRepo repository.VerificationRepository
	auditRepo        repository.AuditRepository
}

func NewReportService(verificationRepo repository.VerificationRepository, auditRepo repository.AuditRepository) ReportService {
	return &reportService{
		verificationRepo: verificationRepo,
		auditRepo:        auditRepo,
	}
}

var recordHeaders = []string{
	"Record ID", "User ID", "Email", "Requirement", "Provider", "Applicant ID",
	"Status", "Attempts", "Type", "Reject Labels", "Error", "Submitted At", "Reviewed At",
}

var auditHeaders = []string{
	"Record ID", "Old Status", "New Status", "Comment", "At",
}

// BuildComplianceReport returns the workbook bytes and a dated filename.
func (s *reportService) BuildComplianceReport() ([]byte, string, error) {
	records, err := s.verificationRepo.ListAll()
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const recordSheet = "Verifications"
	const auditSheet = "Audit Trail"

	f.SetSheetName("Sheet1", recordSheet)
	if _, err := f.NewSheet(auditSheet); err != nil {
		return nil, "", fmt.Errorf("failed to create audit sheet: %w", err)
	}

	for col, header := range recordHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(recordSheet, cell, header)
	}
	for col, header := range auditHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(auditSheet, cell, header)
	}

	auditRow := 2
	for i, record := range records {
		email := ""
		if record.User != nil {
			email = record.User.Email
		}
		requirement := ""
		if record.TierRequirement != nil {
			requirement = record.TierRequirement.Name
		}

		values := []interface{}{
			record.ID, record.UserID, email, requirement, record.Provider,
			record.ApplicantID, string(record.Status), record.Attempts,
			record.VerificationType, strings.Join(record.RejectLabels, ", "),
			record.ErrorMessage, formatTime(record.SubmittedAt), formatTime(record.ReviewedAt),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(recordSheet, cell, value)
		}

		entries, err := s.auditRepo.FindByRecordID(record.ID)
		if err != nil {
			return nil, "", err
		}
		for _, entry := range entries {
			values := []interface{}{
				entry.VerificationRecordID, string(entry.OldStatus), string(entry.NewStatus),
				entry.Comment, entry.CreatedAt.Format(time.RFC3339),
			}
			for col, value := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, auditRow)
				f.SetCellValue(auditSheet, cell, value)
			}
			auditRow++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("failed to write report workbook: %w", err)
	}

	filename := fmt.Sprintf("kyc-compliance-report-%s.xlsx", time.Now().Format("2006-01-02"))
	logger.Info("Built compliance report", map[string]interface{}{
		"records":  len(records),
		"filename": filename,
	})
	return buf.Bytes(), filename, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
