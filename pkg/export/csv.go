package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"leadflow_backend/internal/model"
)

var leadHeader = []string{
	"first_name", "last_name", "phone", "email", "company", "job_title",
	"source", "status", "priority", "score", "assigned_agent_id",
	"campaign_id", "created_at", "last_contacted_at",
}

// LeadsCSV renders leads as UTF-8 CSV. Quoting follows RFC 4180:
// fields containing delimiters or quotes are wrapped and embedded
// quotes doubled.
func LeadsCSV(leads []model.Lead) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(leadHeader); err != nil {
		return nil, err
	}

	for _, l := range leads {
		row := []string{
			l.FirstName,
			l.LastName,
			l.Phone,
			l.Email,
			l.Company,
			l.JobTitle,
			l.Source,
			l.Status,
			fmt.Sprintf("%d", l.Priority),
			fmt.Sprintf("%d", l.Score),
			uintPtrString(l.AssignedAgentID),
			uintPtrString(l.CampaignID),
			l.CreatedAt.Format(time.RFC3339),
			timePtrString(l.LastContactedAt),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// ReportJSON renders a persisted report as an indented JSON document.
func ReportJSON(report *model.Report) ([]byte, error) {
	doc := map[string]interface{}{
		"name":         report.Name,
		"type":         report.Type,
		"period_start": report.PeriodStart.Format("2006-01-02"),
		"period_end":   report.PeriodEnd.Format("2006-01-02"),
		"generated_at": report.CreatedAt.Format(time.RFC3339),
		"data":         json.RawMessage(report.Data),
	}
	return json.MarshalIndent(doc, "", "  ")
}

func uintPtrString(v *uint) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%d", *v)
}

func timePtrString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
