package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"
	"p9e.in/slf/config"
	"p9e.in/slf/middleware"
	"p9e.in/slf/models"
	"p9e.in/slf/pkg/workflow"
)

// ExportHandler produces Excel and CSV extracts of certification data.
type ExportHandler struct{}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// ExportProjectRegister exports the projects visible to the principal as
// an Excel workbook.
// GET /api/v1/exports/projects
func (h *ExportHandler) ExportProjectRegister(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	role, _ := workflow.CanonicalRole(user.Role)
	var projects []models.Project
	if err := config.DB.Model(&models.Project{}).
		Scopes(workflow.ProjectScope(role, user.ID, user.ClientID)).
		Preload("Client").
		Order("projects.code ASC").
		Find(&projects).Error; err != nil {
		http.Error(w, "failed to fetch projects", http.StatusInternalServerError)
		return
	}

	headers := []string{"Code", "Name", "Client", "Function", "Address", "IMB Number", "Floors", "Status", "Phase", "Created"}
	rows := make([][]interface{}, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		clientName := ""
		if p.Client != nil {
			clientName = p.Client.Name
		}
		rows = append(rows, []interface{}{
			p.Code, p.Name, clientName, p.BuildingFunction, p.Address, p.IMBNumber,
			p.FloorCount, p.Status, workflow.ProjectPhase(p.Status),
			p.CreatedAt.Format("2006-01-02"),
		})
	}

	h.writeWorkbook(w, "Project Register", headers, rows)
}

// ExportProjectInspections exports one project's inspection history.
// GET /api/v1/exports/projects/{id}/inspections
func (h *ExportHandler) ExportProjectInspections(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := workflow.CanonicalRole(user.Role)

	projectID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var project models.Project
	if err := config.DB.
		Scopes(workflow.ProjectScope(role, user.ID, user.ClientID)).
		First(&project, "projects.id = ?", projectID).Error; err != nil {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}

	var inspections []models.Inspection
	if err := config.DB.
		Preload("Inspector").
		Where("project_id = ?", projectID).
		Order("scheduled_start ASC").
		Find(&inspections).Error; err != nil {
		http.Error(w, "failed to fetch inspections", http.StatusInternalServerError)
		return
	}

	headers := []string{"Scheduled Start", "Scheduled End", "Inspector", "Status", "Started", "Completed", "Summary"}
	rows := make([][]interface{}, 0, len(inspections))
	for i := range inspections {
		ins := &inspections[i]
		inspector := ""
		if ins.Inspector != nil {
			inspector = ins.Inspector.Name
		}
		started, completed := "", ""
		if ins.StartedAt != nil {
			started = ins.StartedAt.Format("2006-01-02 15:04")
		}
		if ins.CompletedAt != nil {
			completed = ins.CompletedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []interface{}{
			ins.ScheduledStart.Format("2006-01-02 15:04"),
			ins.ScheduledEnd.Format("2006-01-02 15:04"),
			inspector, string(ins.Status), started, completed, ins.Summary,
		})
	}

	h.writeWorkbook(w, fmt.Sprintf("%s Inspections", project.Code), headers, rows)
}

// ExportApprovalAuditCSV streams the approval audit log of a report as
// CSV.
// GET /api/v1/exports/reports/{id}/audit
func (h *ExportHandler) ExportApprovalAuditCSV(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user.ID == uuid.Nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := workflow.CanonicalRole(user.Role)

	reportID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	var report models.Report
	if err := config.DB.
		Scopes(workflow.ReportScope(role, user.ID, user.ClientID)).
		First(&report, "reports.id = ?", reportID).Error; err != nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}

	var approvals []models.Approval
	if err := config.DB.
		Preload("Approver").
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&approvals).Error; err != nil {
		http.Error(w, "failed to fetch approvals", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("approval_audit_%s_%s.csv", sanitizeFilename(report.Title), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"Timestamp", "Role", "Action", "Approver", "Comment"})
	for _, a := range approvals {
		approver := a.ApproverID.String()
		if a.Approver != nil {
			approver = a.Approver.Name
		}
		cw.Write([]string{
			a.CreatedAt.Format(time.RFC3339), a.Role, a.Action, approver, a.Comment,
		})
	}
}

// writeWorkbook builds a styled single-sheet workbook and streams it as
// an attachment.
func (h *ExportHandler) writeWorkbook(w http.ResponseWriter, title string, headers []string, rows [][]interface{}) {
	f := excelize.NewFile()
	sheetName := "Report"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "failed to generate workbook", http.StatusInternalServerError)
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	f.SetCellValue(sheetName, "A1", title)
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)

	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 4)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+5)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for col := range headers {
		name, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(sheetName, name, name, 20)
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "failed to write workbook", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", sanitizeFilename(title), time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))

	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}

func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
	)
	return replacer.Replace(filename)
}
