package projectpolicy_test

import (
	"testing"

	"github.com/campusworks/researchdesk/internal/app/policy/projectpolicy"
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/domain/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.ProjectDraft, models.ProjectSubmitted, true},
		{models.ProjectSubmitted, models.ProjectUnderReview, true},
		{models.ProjectUnderReview, models.ProjectRevisionNeeded, true},
		{models.ProjectUnderReview, models.ProjectRecommended, true},
		{models.ProjectUnderReview, models.ProjectNotRecommended, true},
		{models.ProjectRevisionNeeded, models.ProjectSubmitted, true},
		{models.ProjectRecommended, models.ProjectInProgress, true},
		{models.ProjectInProgress, models.ProjectCompleted, true},

		{models.ProjectDraft, models.ProjectRecommended, false},
		{models.ProjectSubmitted, models.ProjectCompleted, false},
		{models.ProjectCompleted, models.ProjectInProgress, false},
		{models.ProjectNotRecommended, models.ProjectSubmitted, false},
		{models.ProjectDraft, models.ProjectDraft, false},
		{"Bogus", models.ProjectSubmitted, false},
	}
	for _, c := range cases {
		if got := projectpolicy.CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{
		models.ProjectDraft, models.ProjectSubmitted, models.ProjectUnderReview,
		models.ProjectRevisionNeeded, models.ProjectRecommended,
		models.ProjectNotRecommended, models.ProjectInProgress, models.ProjectCompleted,
	} {
		if !projectpolicy.ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	if projectpolicy.ValidStatus("Archived") {
		t.Error("ValidStatus(\"Archived\") = true")
	}
}

func TestCanActorTransition(t *testing.T) {
	cases := []struct {
		name     string
		role     authz.Role
		isOwner  bool
		from, to string
		want     bool
	}{
		{"owner submits draft", authz.RoleFaculty, true, models.ProjectDraft, models.ProjectSubmitted, true},
		{"owner resubmits after revision", authz.RoleFaculty, true, models.ProjectRevisionNeeded, models.ProjectSubmitted, true},
		{"owner cannot recommend", authz.RoleFaculty, true, models.ProjectUnderReview, models.ProjectRecommended, false},
		{"non-owner faculty cannot submit", authz.RoleFaculty, false, models.ProjectDraft, models.ProjectSubmitted, false},
		{"cro moves to review", authz.RoleCRO, false, models.ProjectSubmitted, models.ProjectUnderReview, true},
		{"admin recommends", authz.RoleAdmin, false, models.ProjectUnderReview, models.ProjectRecommended, true},
		{"admin cannot skip lifecycle", authz.RoleAdmin, false, models.ProjectDraft, models.ProjectCompleted, false},
		{"evaluator cannot change status", authz.RoleEvaluator, false, models.ProjectSubmitted, models.ProjectUnderReview, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := projectpolicy.CanActorTransition(c.role, c.isOwner, c.from, c.to)
			if got != c.want {
				t.Errorf("CanActorTransition(%v, %v, %q, %q) = %v, want %v",
					c.role, c.isOwner, c.from, c.to, got, c.want)
			}
		})
	}
}

func TestCanEdit(t *testing.T) {
	if !projectpolicy.CanEdit(authz.RoleFaculty, true, models.ProjectDraft) {
		t.Error("owner should edit a draft")
	}
	if !projectpolicy.CanEdit(authz.RoleFaculty, true, models.ProjectRevisionNeeded) {
		t.Error("owner should edit during revision")
	}
	if projectpolicy.CanEdit(authz.RoleFaculty, true, models.ProjectSubmitted) {
		t.Error("owner must not edit after submission")
	}
	if projectpolicy.CanEdit(authz.RoleFaculty, false, models.ProjectDraft) {
		t.Error("non-owner faculty must not edit")
	}
	if !projectpolicy.CanEdit(authz.RoleAdmin, false, models.ProjectCompleted) {
		t.Error("admin should always edit")
	}
}

func TestCanDelete(t *testing.T) {
	if !projectpolicy.CanDelete(authz.RoleAdmin, models.ProjectDraft) {
		t.Error("admin should delete a draft")
	}
	if projectpolicy.CanDelete(authz.RoleAdmin, models.ProjectInProgress) {
		t.Error("in-progress projects must not be deleted")
	}
	if projectpolicy.CanDelete(authz.RoleFaculty, models.ProjectDraft) {
		t.Error("faculty must not delete")
	}
}
