// internal/app/features/cron/reminders.go
package cron

import (
	"context"
	"net/http"
	"time"

	notificationstore "github.com/campusworks/researchdesk/internal/app/store/notifications"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/app/system/httpjson"
	"github.com/campusworks/researchdesk/internal/app/system/mailer"
	"github.com/campusworks/researchdesk/internal/app/system/timeouts"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Reminder kinds double as idempotency-marker keys and metric labels.
const (
	kindEmrPresentation   = "emr_presentation"
	kindEvaluation        = "evaluation"
	kindIncentiveFollowup = "incentive_followup"
)

const meetingDayFormat = "Monday, 02 January 2006"

// outcome records what happened for one (recipient, record) pair in a run.
type outcome struct {
	Recipient string `json:"recipient"`
	Record    string `json:"record"`
	Status    string `json:"status"` // sent | failed | skipped
	Error     string `json:"error,omitempty"`
}

// tally accumulates per-recipient outcomes for one job run.
type tally struct {
	kind     string
	outcomes []outcome
	sent     int
	failed   int
	skipped  int
}

// HandleEmrPresentations reminds faculty whose presentation meeting is
// tomorrow or the day after and who have not uploaded a presentation.
// GET /api/cron/emr-presentations.
func (h *Handler) HandleEmrPresentations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	t := &tally{kind: kindEmrPresentation}
	now := time.Now()

	for _, day := range []time.Time{now.AddDate(0, 0, 1), now.AddDate(0, 0, 2)} {
		interests, err := h.Interests.MeetingsOnDay(ctx, day)
		if err != nil {
			h.Log.Error("presentation reminder query failed", zap.Error(err))
			httpjson.ServerError(w, "could not load scheduled meetings")
			return
		}

		for i := range interests {
			in := &interests[i]
			if in.HasPresentation() || in.Status == models.InterestWithdrawn {
				continue
			}

			callTitle := "the funding call"
			if call, err := h.Calls.GetByID(ctx, in.CallID); err == nil {
				callTitle = call.Title
			}

			data := mailer.PresentationReminderData(
				h.SiteName, in.UserName, callTitle, day.Format(meetingDayFormat), h.BaseURL)
			h.deliver(ctx, t, in.ID, day, in.UserEmail, mailer.BuildReminderEmail(data))
		}
	}

	h.respond(w, t)
}

// HandleEvaluations reminds evaluators whose meeting is tomorrow and who
// have not submitted their evaluation. GET /api/cron/evaluations.
func (h *Handler) HandleEvaluations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	t := &tally{kind: kindEvaluation}
	tomorrow := time.Now().AddDate(0, 0, 1)

	projects, err := h.Projects.MeetingsOnDay(ctx, tomorrow)
	if err != nil {
		h.Log.Error("evaluation reminder query failed", zap.Error(err))
		httpjson.ServerError(w, "could not load scheduled meetings")
		return
	}

	for i := range projects {
		p := &projects[i]
		for _, evaluatorID := range p.EvaluatorIDs {
			if _, done := p.EvaluationBy(evaluatorID); done {
				continue
			}

			u, err := h.Users.GetByID(ctx, evaluatorID)
			if err != nil {
				t.record(outcome{
					Recipient: evaluatorID.Hex(),
					Record:    p.ID.Hex(),
					Status:    "failed",
					Error:     "evaluator account not found",
				})
				h.Metrics.RemindersFailed.WithLabelValues(t.kind).Inc()
				continue
			}

			data := mailer.EvaluationReminderData(
				h.SiteName, u.FullName, p.Title, tomorrow.Format(meetingDayFormat), h.BaseURL)
			h.deliver(ctx, t, p.ID, tomorrow, u.Email, mailer.BuildReminderEmail(data))
		}
	}

	h.respond(w, t)
}

// HandleIncentiveFollowups nudges reviewers about claims still pending five
// or seven days after submission. GET /api/cron/incentive-followups.
func (h *Handler) HandleIncentiveFollowups(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	t := &tally{kind: kindIncentiveFollowup}
	now := time.Now()

	claims, err := h.Claims.PendingOlderThan(ctx, now.AddDate(0, 0, -5))
	if err != nil {
		h.Log.Error("follow-up reminder query failed", zap.Error(err))
		httpjson.ServerError(w, "could not load pending claims")
		return
	}

	var reviewers []models.User
	for _, role := range []string{authz.RoleNameCRO, authz.RoleNameAdmin} {
		users, err := h.Users.ListByRole(ctx, role)
		if err != nil {
			h.Log.Error("follow-up reminder query failed", zap.Error(err))
			httpjson.ServerError(w, "could not load reviewers")
			return
		}
		reviewers = append(reviewers, users...)
	}

	for i := range claims {
		c := &claims[i]
		daysPending := int(now.Sub(c.SubmittedAt).Hours() / 24)
		if daysPending != 5 && daysPending != 7 {
			continue
		}

		for _, rev := range reviewers {
			data := mailer.PendingClaimReminderData(
				h.SiteName, rev.FullName, c.UserName, c.ClaimType, daysPending, h.BaseURL)
			h.deliver(ctx, t, c.ID, now, rev.Email, mailer.BuildReminderEmail(data))
		}
	}

	h.respond(w, t)
}

// deliver claims the idempotency marker for (kind, record, day, recipient),
// sends the email, and releases the marker if the send fails so the next run
// retries. Already-claimed markers count as skipped.
func (h *Handler) deliver(ctx context.Context, t *tally, recordID primitive.ObjectID, targetDay time.Time, recipient string, e mailer.Email) {
	switch err := h.Notices.MarkReminder(ctx, t.kind, recordID, targetDay, recipient); {
	case err == notificationstore.ErrReminderAlreadySent:
		t.record(outcome{Recipient: recipient, Record: recordID.Hex(), Status: "skipped"})
		h.Metrics.RemindersSkipped.WithLabelValues(t.kind).Inc()
		return
	case err != nil:
		t.record(outcome{Recipient: recipient, Record: recordID.Hex(), Status: "failed", Error: err.Error()})
		h.Metrics.RemindersFailed.WithLabelValues(t.kind).Inc()
		return
	}

	e.To = recipient
	if err := h.Mail.Send(e); err != nil {
		h.Log.Warn("reminder send failed",
			zap.String("kind", t.kind), zap.String("to", recipient), zap.Error(err))
		if uerr := h.Notices.UnmarkReminder(ctx, t.kind, recordID, targetDay, recipient); uerr != nil {
			h.Log.Error("could not release reminder marker",
				zap.String("kind", t.kind), zap.String("to", recipient), zap.Error(uerr))
		}
		t.record(outcome{Recipient: recipient, Record: recordID.Hex(), Status: "failed", Error: err.Error()})
		h.Metrics.RemindersFailed.WithLabelValues(t.kind).Inc()
		return
	}

	t.record(outcome{Recipient: recipient, Record: recordID.Hex(), Status: "sent"})
	h.Metrics.RemindersSent.WithLabelValues(t.kind).Inc()
}

func (t *tally) record(o outcome) {
	t.outcomes = append(t.outcomes, o)
	switch o.Status {
	case "sent":
		t.sent++
	case "failed":
		t.failed++
	case "skipped":
		t.skipped++
	}
}

func (h *Handler) respond(w http.ResponseWriter, t *tally) {
	h.Log.Info("reminder job finished",
		zap.String("kind", t.kind),
		zap.Int("sent", t.sent), zap.Int("failed", t.failed), zap.Int("skipped", t.skipped))

	outcomes := t.outcomes
	if outcomes == nil {
		outcomes = []outcome{}
	}
	httpjson.OK(w, httpjson.Envelope{
		"sent":     t.sent,
		"failed":   t.failed,
		"skipped":  t.skipped,
		"outcomes": outcomes,
	})
}
