// Package projectpolicy enforces the project status lifecycle. Handlers
// never write a status directly; they ask this package whether the move is
// legal for the caller.
//
// Lifecycle:
//
//	Draft → Submitted → Under Review → { Revision Needed | Recommended | Not Recommended }
//	Revision Needed → Submitted
//	Recommended → In Progress → Completed
//
// Faculty may only move their own project out of Draft or Revision Needed;
// review-side transitions belong to CRO and admin roles.
package projectpolicy

import (
	"github.com/campusworks/researchdesk/internal/app/system/authz"
	"github.com/campusworks/researchdesk/internal/domain/models"
)

var transitions = map[string][]string{
	models.ProjectDraft:          {models.ProjectSubmitted},
	models.ProjectSubmitted:      {models.ProjectUnderReview},
	models.ProjectUnderReview:    {models.ProjectRevisionNeeded, models.ProjectRecommended, models.ProjectNotRecommended},
	models.ProjectRevisionNeeded: {models.ProjectSubmitted},
	models.ProjectRecommended:    {models.ProjectInProgress},
	models.ProjectNotRecommended: nil,
	models.ProjectInProgress:     {models.ProjectCompleted},
	models.ProjectCompleted:      nil,
}

// Statuses a faculty owner may move their own project into.
var ownerTargets = map[string]bool{
	models.ProjectSubmitted: true,
}

// CanTransition reports whether from → to is a legal lifecycle move,
// ignoring who is asking.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedNext returns the statuses reachable from the given one. The result
// is a copy; callers may mutate it.
func AllowedNext(from string) []string {
	next := transitions[from]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// ValidStatus reports whether s is a known project status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanActorTransition reports whether the caller may perform from → to.
// Admins and CRO may perform any legal transition; a project owner may only
// submit (from Draft or Revision Needed).
func CanActorTransition(role authz.Role, isOwner bool, from, to string) bool {
	if !CanTransition(from, to) {
		return false
	}
	switch role {
	case authz.RoleAdmin, authz.RoleSuperAdmin, authz.RoleCRO:
		return true
	case authz.RoleFaculty:
		return isOwner && ownerTargets[to]
	}
	return false
}

// CanEdit reports whether the caller may edit a project's proposal fields.
// Owners may edit while the project is in Draft or Revision Needed; admins
// may always edit.
func CanEdit(role authz.Role, isOwner bool, status string) bool {
	if role == authz.RoleAdmin || role == authz.RoleSuperAdmin {
		return true
	}
	if !isOwner {
		return false
	}
	return status == models.ProjectDraft || status == models.ProjectRevisionNeeded
}

// CanDelete reports whether the caller may delete a project. Only admins
// may delete, and only before work has started.
func CanDelete(role authz.Role, status string) bool {
	if role != authz.RoleAdmin && role != authz.RoleSuperAdmin {
		return false
	}
	return status != models.ProjectInProgress && status != models.ProjectCompleted
}
