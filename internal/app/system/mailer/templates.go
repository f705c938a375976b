// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ReminderData holds data for reminder email templates.
type ReminderData struct {
	SiteName      string
	RecipientName string
	Subject       string
	Heading       string
	Lines         []string // paragraphs of the reminder body
	ActionLabel   string
	ActionURL     string
}

// BuildReminderEmail creates a reminder email with both HTML and text
// bodies. The caller sets To.
func BuildReminderEmail(data ReminderData) Email {
	return Email{
		Subject:  data.Subject,
		TextBody: buildReminderText(data),
		HTMLBody: buildReminderHTML(data),
	}
}

// PresentationReminderData fills the EMR presentation reminder.
func PresentationReminderData(siteName, recipientName, callTitle, meetingDay, baseURL string) ReminderData {
	return ReminderData{
		SiteName:      siteName,
		RecipientName: recipientName,
		Subject:       fmt.Sprintf("Reminder: presentation due for %s", callTitle),
		Heading:       "Presentation upload pending",
		Lines: []string{
			fmt.Sprintf("Your evaluation meeting for the funding call \"%s\" is scheduled on %s.", callTitle, meetingDay),
			"Our records show you have not uploaded your presentation yet. Please upload it before the meeting.",
		},
		ActionLabel: "Upload presentation",
		ActionURL:   baseURL + "/emr/interests",
	}
}

// EvaluationReminderData fills the project evaluation reminder.
func EvaluationReminderData(siteName, recipientName, projectTitle, meetingDay, baseURL string) ReminderData {
	return ReminderData{
		SiteName:      siteName,
		RecipientName: recipientName,
		Subject:       fmt.Sprintf("Reminder: evaluation meeting for %s", projectTitle),
		Heading:       "Evaluation due",
		Lines: []string{
			fmt.Sprintf("The evaluation meeting for the project \"%s\" is scheduled on %s.", projectTitle, meetingDay),
			"You have not yet submitted your evaluation for this project.",
		},
		ActionLabel: "Open project",
		ActionURL:   baseURL + "/projects",
	}
}

// PendingClaimReminderData fills the stale-incentive-claim nudge for admins.
func PendingClaimReminderData(siteName, recipientName, claimantName, claimType string, daysPending int, baseURL string) ReminderData {
	return ReminderData{
		SiteName:      siteName,
		RecipientName: recipientName,
		Subject:       fmt.Sprintf("Incentive claim pending for %d days", daysPending),
		Heading:       "Claim awaiting decision",
		Lines: []string{
			fmt.Sprintf("The %s claim submitted by %s has been pending for %d days.", claimType, claimantName, daysPending),
			"Please review and record a decision.",
		},
		ActionLabel: "Review claims",
		ActionURL:   baseURL + "/incentives/claims",
	}
}

func buildReminderText(data ReminderData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Dear %s,\n\n", data.RecipientName))
	for _, line := range data.Lines {
		buf.WriteString(line + "\n\n")
	}
	if data.ActionURL != "" {
		buf.WriteString(data.ActionLabel + ": " + data.ActionURL + "\n\n")
	}
	buf.WriteString(fmt.Sprintf("— %s\n", data.SiteName))
	return buf.String()
}

func buildReminderHTML(data ReminderData) string {
	tmpl := template.Must(template.New("reminder").Parse(reminderHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const reminderHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Heading}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #1d4ed8;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px; font-size: 18px; color: #111827;">{{.Heading}}</h2>
              <p style="margin: 0 0 16px; font-size: 15px; color: #374151;">Dear {{.RecipientName}},</p>
              {{range .Lines}}
              <p style="margin: 0 0 16px; font-size: 15px; color: #374151; line-height: 1.5;">{{.}}</p>
              {{end}}
              {{if .ActionURL}}
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center" style="padding-top: 8px;">
                    <a href="{{.ActionURL}}" style="display: inline-block; padding: 12px 28px; background-color: #1d4ed8; color: #ffffff; text-decoration: none; font-size: 15px; font-weight: 500; border-radius: 6px;">
                      {{.ActionLabel}}
                    </a>
                  </td>
                </tr>
              </table>
              {{end}}
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                This is an automated reminder from {{.SiteName}}.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
