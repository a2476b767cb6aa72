package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/siteoptic/audit-api/internal/models"
)

type createReportRequest struct {
	ReportType       string         `json:"reportType"`
	ReportPeriod     models.Period  `json:"reportPeriod"`
	ComparisonPeriod *models.Period `json:"comparisonPeriod"`
}

func validPeriod(p models.Period) bool {
	start, err := time.Parse("2006-01-02", p.StartDate)
	if err != nil {
		return false
	}
	end, err := time.Parse("2006-01-02", p.EndDate)
	if err != nil {
		return false
	}
	return !end.Before(start)
}

// reportJob is the message enqueued for the report generation worker.
type reportJob struct {
	ReportID    string `json:"reportId"`
	SiteID      string `json:"siteId"`
	ReportType  string `json:"reportType"`
	StoragePath string `json:"storagePath"`
}

func (h *Handler) createReport(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}

	var req createReportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ReportType == "" {
		badRequest(w, "reportType is required")
		return
	}
	if !validPeriod(req.ReportPeriod) {
		badRequest(w, "reportPeriod must be a valid date range")
		return
	}
	if req.ComparisonPeriod != nil && !validPeriod(*req.ComparisonPeriod) {
		badRequest(w, "comparisonPeriod must be a valid date range")
		return
	}

	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}

	comparison := models.Period{}
	if req.ComparisonPeriod != nil {
		comparison = *req.ComparisonPeriod
	}

	// Duplicate-window invariant: no two live reports for a site may
	// share reportType, reportPeriod and comparisonPeriod.
	existing, err := h.collections.Reports.AllBySiteID(r.Context(), site.ID)
	if err != nil {
		internalError(w, err)
		return
	}
	for _, report := range existing {
		if report.ReportType == req.ReportType &&
			report.ReportPeriodStart == req.ReportPeriod.StartDate &&
			report.ReportPeriodEnd == req.ReportPeriod.EndDate &&
			report.ComparisonPeriodStart == comparison.StartDate &&
			report.ComparisonPeriodEnd == comparison.EndDate {
			badRequest(w, "A report with the same type and periods already exists")
			return
		}
	}

	now := time.Now().UTC()
	report := &models.Report{
		ID:                    uuid.NewString(),
		SiteID:                site.ID,
		ReportType:            req.ReportType,
		ReportPeriodStart:     req.ReportPeriod.StartDate,
		ReportPeriodEnd:       req.ReportPeriod.EndDate,
		ComparisonPeriodStart: comparison.StartDate,
		ComparisonPeriodEnd:   comparison.EndDate,
		Status:                models.ReportStatusProcessing,
		UpdatedBy:             profileFrom(r).UserID,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	report.StoragePath = fmt.Sprintf("reports/%s/%s.json", site.ID, report.ID)

	if err := h.collections.Reports.Create(r.Context(), report); err != nil {
		internalError(w, err)
		return
	}

	job := reportJob{
		ReportID:    report.ID,
		SiteID:      site.ID,
		ReportType:  report.ReportType,
		StoragePath: report.StoragePath,
	}
	if err := h.queue.SendMessage(r.Context(), h.config.ReportQueueURL, job); err != nil {
		// The row is useless without its generation job.
		if removeErr := h.collections.Reports.Remove(r.Context(), report.ID); removeErr != nil {
			logrus.Errorf("Failed to roll back report %s: %v", report.ID, removeErr)
		}
		internalError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, reportView(report))
}

// reportView shapes a report row for HTTP responses.
type reportDTO struct {
	*models.Report
	ReportPeriod     models.Period `json:"reportPeriod"`
	ComparisonPeriod models.Period `json:"comparisonPeriod"`
}

func reportView(report *models.Report) reportDTO {
	return reportDTO{
		Report:           report,
		ReportPeriod:     report.ReportPeriod(),
		ComparisonPeriod: report.ComparisonPeriod(),
	}
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}

	reports, err := h.collections.Reports.AllBySiteID(r.Context(), site.ID)
	if err != nil {
		internalError(w, err)
		return
	}

	views := make([]reportDTO, 0, len(reports))
	for i := range reports {
		views = append(views, reportView(&reports[i]))
	}
	respondJSON(w, http.StatusOK, views)
}

// requireReport loads a report and enforces site containment.
func (h *Handler) requireReport(w http.ResponseWriter, r *http.Request, site *models.Site) *models.Report {
	reportID, ok := pathUUID(w, r, "reportId")
	if !ok {
		return nil
	}

	report, err := h.collections.Reports.FindByID(r.Context(), reportID)
	if err != nil {
		internalError(w, err)
		return nil
	}
	if report == nil || report.SiteID != site.ID {
		notFound(w, "Report not found")
		return nil
	}
	return report
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}
	report := h.requireReport(w, r, site)
	if report == nil {
		return
	}
	respondJSON(w, http.StatusOK, reportView(report))
}

func (h *Handler) getReportContent(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}
	report := h.requireReport(w, r, site)
	if report == nil {
		return
	}

	if report.Status != models.ReportStatusSuccess {
		notFound(w, "Report content is not available")
		return
	}

	content, err := h.storage.Retrieve(r.Context(), report.StoragePath)
	if err != nil {
		internalError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

func (h *Handler) deleteReport(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathUUID(w, r, "siteId")
	if !ok {
		return
	}
	site := h.requireSite(w, r, siteID)
	if site == nil {
		return
	}
	report := h.requireReport(w, r, site)
	if report == nil {
		return
	}

	if err := h.collections.Reports.Remove(r.Context(), report.ID); err != nil {
		internalError(w, err)
		return
	}

	// The stored object is cleanup, not correctness.
	if report.StoragePath != "" {
		if err := h.storage.Delete(r.Context(), report.StoragePath); err != nil {
			logrus.Warnf("Failed to delete report object %s: %v", report.StoragePath, err)
		}
	}

	respondJSON(w, http.StatusNoContent, nil)
}
