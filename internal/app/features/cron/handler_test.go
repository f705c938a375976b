// internal/app/features/cron/handler_test.go
package cron

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusworks/researchdesk/internal/app/system/mailer"
	"github.com/campusworks/researchdesk/internal/app/system/metrics"
	"github.com/campusworks/researchdesk/internal/domain/models"
	"github.com/campusworks/researchdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// fakeSender records outgoing email and can be told to fail for an address.
type fakeSender struct {
	sent    []mailer.Email
	failFor string
}

func (f *fakeSender) Send(e mailer.Email) error {
	if f.failFor != "" && e.To == f.failFor {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, e)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeSender, *testutil.Fixtures) {
	t.Helper()
	client, db := testutil.SetupTestClient(t)
	sender := &fakeSender{}
	cfg := Config{Secret: "s3cret", SiteName: "ResearchDesk", BaseURL: "https://rd.test.edu"}
	h := NewHandler(client, db, cfg, sender, metrics.New(), zap.NewNop())
	return h, sender, testutil.NewFixtures(t, db)
}

func runJob(h *Handler, job http.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	job(rec, req)
	return rec
}

type jobResult struct {
	Success bool `json:"success"`
	Sent    int  `json:"sent"`
	Failed  int  `json:"failed"`
	Skipped int  `json:"skipped"`
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) jobResult {
	t.Helper()
	var res jobResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode job result: %v (%s)", err, rec.Body.String())
	}
	return res
}

func TestRequireSecret(t *testing.T) {
	h, _, _ := newTestHandler(t)
	router := Routes(h)

	req := httptest.NewRequest(http.MethodGet, "/evaluations", nil)
	req.Header.Set("X-Cron-Secret", "wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("wrong secret: status = %d, want 403", rec.Code)
	}

	h.Secret = ""
	req = httptest.NewRequest(http.MethodGet, "/evaluations", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("no secret configured: status = %d, want 503", rec.Code)
	}
}

func TestPresentationRemindersSkipUploadedAndRepeat(t *testing.T) {
	h, sender, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	call := fx.CreateFundingCall(ctx, "DST Core Grant", time.Now().Add(-24*time.Hour))
	lagging := fx.CreateUser(ctx, "Asha Rao", "asha@test.edu", "faculty")
	ready := fx.CreateUser(ctx, "Vikram Nair", "vikram@test.edu", "faculty")

	tomorrow := time.Now().AddDate(0, 0, 1)
	for _, u := range []models.User{lagging, ready} {
		in, err := h.Interests.Register(ctx, models.EmrInterest{
			CallID:    call.ID,
			UserID:    u.ID,
			UserName:  u.FullName,
			UserEmail: u.Email,
		})
		if err != nil {
			t.Fatalf("register interest: %v", err)
		}
		if err := h.Interests.ScheduleMeeting(ctx, in.ID, models.MeetingSlot{Date: tomorrow, Time: "10:00"}); err != nil {
			t.Fatalf("schedule meeting: %v", err)
		}
		if u.ID == ready.ID {
			if err := h.Interests.SetPresentation(ctx, in.ID, "presentations/2026/08/deck.pdf"); err != nil {
				t.Fatalf("set presentation: %v", err)
			}
		}
	}

	rec := runJob(h, h.HandleEmrPresentations, "/api/cron/emr-presentations")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	if res.Sent != 1 || res.Failed != 0 || res.Skipped != 0 {
		t.Fatalf("first run = %+v, want 1 sent", res)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "asha@test.edu" {
		t.Fatalf("sent to %v, want asha@test.edu only", sender.sent)
	}

	// Rerunning the same window must not email again.
	rec = runJob(h, h.HandleEmrPresentations, "/api/cron/emr-presentations")
	res = decodeResult(t, rec)
	if res.Sent != 0 || res.Skipped != 1 {
		t.Fatalf("second run = %+v, want 1 skipped", res)
	}
}

func TestEvaluationRemindersTargetUnsubmittedEvaluators(t *testing.T) {
	h, sender, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pi := fx.CreateUser(ctx, "Meera Iyer", "meera@test.edu", "faculty")
	done := fx.CreateUser(ctx, "Ravi Menon", "ravi@test.edu", "evaluator")
	pending := fx.CreateUser(ctx, "Divya Pillai", "divya@test.edu", "evaluator")

	p := fx.CreateProject(ctx, "Soil Sensor Network", pi, models.ProjectUnderReview)
	tomorrow := time.Now().AddDate(0, 0, 1)
	_, err := fx.DB().Collection("projects").UpdateOne(ctx,
		bson.M{"_id": p.ID},
		bson.M{"$set": bson.M{
			"evaluator_ids": []interface{}{done.ID, pending.ID},
			"evaluations": []interface{}{models.Evaluation{
				EvaluatorID: done.ID,
				Recommended: true,
				SubmittedAt: time.Now(),
			}},
			"meeting": models.MeetingSlot{Date: tomorrow, Time: "14:00", Venue: "Senate Hall"},
		}})
	if err != nil {
		t.Fatalf("arrange project: %v", err)
	}

	rec := runJob(h, h.HandleEvaluations, "/api/cron/evaluations")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	if res.Sent != 1 {
		t.Fatalf("result = %+v, want 1 sent", res)
	}
	if sender.sent[0].To != "divya@test.edu" {
		t.Fatalf("sent to %q, want divya@test.edu", sender.sent[0].To)
	}
}

func TestIncentiveFollowupsNudgeReviewersAtFiveDays(t *testing.T) {
	h, sender, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateUser(ctx, "Chief Research Officer", "cro@test.edu", "cro")
	fx.CreateUser(ctx, "Portal Admin", "admin@test.edu", "admin")
	claimant := fx.CreateUser(ctx, "Asha Rao", "asha@test.edu", "faculty")

	stale, err := h.Claims.Create(ctx, models.IncentiveClaim{
		UserID:    claimant.ID,
		UserName:  claimant.FullName,
		UserEmail: claimant.Email,
		ClaimType: models.ClaimResearchPaper,
		Quartile:  "Q2",
	})
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	// Age the claim to five days and plant a six-day one that must not fire.
	aged, err := h.Claims.Create(ctx, models.IncentiveClaim{
		UserID:    claimant.ID,
		UserName:  claimant.FullName,
		UserEmail: claimant.Email,
		ClaimType: models.ClaimBook,
	})
	if err != nil {
		t.Fatalf("create claim: %v", err)
	}
	backdate := func(id interface{}, days int) {
		_, err := fx.DB().Collection("incentiveClaims").UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{"submitted_at": time.Now().AddDate(0, 0, -days).Add(-time.Hour)}})
		if err != nil {
			t.Fatalf("backdate claim: %v", err)
		}
	}
	backdate(stale.ID, 5)
	backdate(aged.ID, 6)

	rec := runJob(h, h.HandleIncentiveFollowups, "/api/cron/incentive-followups")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	res := decodeResult(t, rec)
	if res.Sent != 2 {
		t.Fatalf("result = %+v, want 2 sent (one per reviewer)", res)
	}
	recipients := map[string]bool{}
	for _, e := range sender.sent {
		recipients[e.To] = true
	}
	if !recipients["cro@test.edu"] || !recipients["admin@test.edu"] {
		t.Fatalf("recipients = %v", recipients)
	}
}

func TestDeliverReleasesMarkerOnSendFailure(t *testing.T) {
	h, sender, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	call := fx.CreateFundingCall(ctx, "SERB Startup Grant", time.Now().Add(-24*time.Hour))
	u := fx.CreateUser(ctx, "Asha Rao", "asha@test.edu", "faculty")
	in, err := h.Interests.Register(ctx, models.EmrInterest{
		CallID:    call.ID,
		UserID:    u.ID,
		UserName:  u.FullName,
		UserEmail: u.Email,
	})
	if err != nil {
		t.Fatalf("register interest: %v", err)
	}
	tomorrow := time.Now().AddDate(0, 0, 1)
	if err := h.Interests.ScheduleMeeting(ctx, in.ID, models.MeetingSlot{Date: tomorrow}); err != nil {
		t.Fatalf("schedule meeting: %v", err)
	}

	sender.failFor = "asha@test.edu"
	res := decodeResult(t, runJob(h, h.HandleEmrPresentations, "/api/cron/emr-presentations"))
	if res.Failed != 1 || res.Sent != 0 {
		t.Fatalf("failing run = %+v, want 1 failed", res)
	}

	// The marker must have been released so the next run retries.
	sender.failFor = ""
	res = decodeResult(t, runJob(h, h.HandleEmrPresentations, "/api/cron/emr-presentations"))
	if res.Sent != 1 || res.Skipped != 0 {
		t.Fatalf("retry run = %+v, want 1 sent", res)
	}
}
