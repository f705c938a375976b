// internal/app/features/staff/import.go
package staff

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	userstore "github.com/campusworks/researchdesk/internal/app/store/users"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// maxImportSize caps the uploaded workbook at 10 MB.
const maxImportSize = 10 << 20

// Column headers recognized in the first row, case-insensitive.
var importColumns = map[string]string{
	"mid":         "mid",
	"staff id":    "mid",
	"full name":   "full_name",
	"name":        "full_name",
	"email":       "email",
	"designation": "designation",
	"institute":   "institute",
	"department":  "department",
	"phone":       "phone",
}

type rowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// HandleImport ingests the university staff master list from an XLSX
// workbook. Rows are keyed by MID: new MIDs create directory records,
// existing ones are refreshed. The response reports per-row outcomes.
// POST /api/staff/import (multipart, field "file").
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	_, name, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		msg := "an xlsx file is required in the \"file\" field"
		if strings.Contains(err.Error(), "request body too large") {
			msg = "file is too large, the limit is 10 MB"
		}
		httpjson.BadRequest(w, msg)
		return
	}
	defer file.Close()

	wb, err := excelize.OpenReader(file)
	if err != nil {
		httpjson.BadRequest(w, "file could not be read as an xlsx workbook")
		return
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		httpjson.BadRequest(w, "workbook has no sheets")
		return
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		httpjson.BadRequest(w, "sheet could not be read")
		return
	}
	if len(rows) < 2 {
		httpjson.BadRequest(w, "sheet has a header row but no data")
		return
	}

	// Map header cells to known fields.
	fields := make(map[int]string)
	for i, cell := range rows[0] {
		if f, ok := importColumns[strings.ToLower(strings.TrimSpace(cell))]; ok {
			fields[i] = f
		}
	}
	if !hasField(fields, "mid") || !hasField(fields, "full_name") || !hasField(fields, "email") {
		httpjson.BadRequest(w, "header row must include MID, Full Name, and Email columns")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	var (
		created int
		updated int
		errs    []rowError
	)
	for i, cells := range rows[1:] {
		rowNum := i + 2 // 1-based, after the header

		row := userstore.StaffRow{}
		for col, field := range fields {
			if col >= len(cells) {
				continue
			}
			v := strings.TrimSpace(cells[col])
			switch field {
			case "mid":
				row.MID = v
			case "full_name":
				row.FullName = v
			case "email":
				row.Email = v
			case "designation":
				row.Designation = v
			case "institute":
				row.Institute = v
			case "department":
				row.Department = v
			case "phone":
				row.Phone = v
			}
		}

		if row.MID == "" || row.FullName == "" || row.Email == "" {
			errs = append(errs, rowError{Row: rowNum, Reason: "MID, Full Name, and Email are required"})
			continue
		}

		isNew, err := h.Users.UpsertStaff(ctx, row)
		if err != nil {
			reason := "could not write record"
			if err == userstore.ErrDuplicateEmail {
				reason = fmt.Sprintf("email %s already belongs to another staff record", row.Email)
			} else {
				h.Log.Error("staff upsert failed", zap.Int("row", rowNum), zap.Error(err))
			}
			errs = append(errs, rowError{Row: rowNum, Reason: reason})
			continue
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}

	h.AuditLog.Event(ctx, "staff.import", "staff list imported", &userID, name,
		map[string]string{
			"created": fmt.Sprint(created),
			"updated": fmt.Sprint(updated),
			"errors":  fmt.Sprint(len(errs)),
		})

	httpjson.OK(w, httpjson.Envelope{
		"created": created,
		"updated": updated,
		"errors":  errs,
	})
}

func hasField(fields map[int]string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
