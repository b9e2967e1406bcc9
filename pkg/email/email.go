// pkg/email/email.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type AssignmentNotificationData struct {
	AgentName string
	Count     int
	LeadName  string
	Company   string
	Phone     string
	Campaign  string
	Priority  int
}

type ImportSummaryData struct {
	Imported int
	Total    int
	Errors   []string
	Campaign string
	Date     time.Time
}

type WeeklyReportData struct {
	OrganizationName string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	TotalLeads       int
	ClosedWonLeads   int
	TotalCalls       int
	ConversionRate   float64
	Revenue          float64
}

func NewEmailService(apiKey string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      "LeadFlow <noreply@leadflow.app>",
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("Resend API response: Status: %d, Body: %s", resp.StatusCode, string(respBody))
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	return nil
}

// SendAssignmentNotification tells an agent a lead landed on their desk.
func (s *EmailService) SendAssignmentNotification(agentEmail string, data AssignmentNotificationData) error {
	return s.sendTemplateEmail(agentEmail, "A New Lead Has Been Assigned to You 📋", "assignment_notification.html", data)
}

// SendImportSummary reports an import run to whoever started it.
func (s *EmailService) SendImportSummary(email string, data ImportSummaryData) error {
	subject := fmt.Sprintf("Lead Import Finished: %d of %d imported", data.Imported, data.Total)
	return s.sendTemplateEmail(email, subject, "import_summary.html", data)
}

// SendWeeklyReport mails the weekly snapshot digest to an owner.
func (s *EmailService) SendWeeklyReport(email string, data WeeklyReportData) error {
	subject := fmt.Sprintf("Weekly Report for %s 📊", data.OrganizationName)
	return s.sendTemplateEmail(email, subject, "weekly_report.html", data)
}
