// Package auth carries the authenticated caller through every operation and
// issues/parses the bearer tokens that identify it.
package auth

import (
	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/member"
)

// Actor is the authenticated caller. It is passed explicitly into usecases.
type Actor struct {
	MemberID string
	GroupID  string
	Role     member.Role
}

func (a Actor) IsAdmin() bool { return a.Role == member.RoleAdmin }

// RequireAdmin fails with a ForbiddenError unless the actor is a group admin.
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin() {
		return &apperr.ForbiddenError{Reason: "admin role required"}
	}
	return nil
}

// RequireSelf allows members to act only on their own records.
func (a Actor) RequireSelf(memberID string) error {
	if a.MemberID != memberID {
		return &apperr.ForbiddenError{Reason: "not your record"}
	}
	return nil
}

// RequireSelfOrAdmin lets admins act for anyone; members only for themselves.
func (a Actor) RequireSelfOrAdmin(memberID string) error {
	if a.IsAdmin() {
		return nil
	}
	return a.RequireSelf(memberID)
}

// RequireGroup keeps every read and write inside the actor's own group.
func (a Actor) RequireGroup(groupID string) error {
	if a.GroupID != groupID {
		return &apperr.ForbiddenError{Reason: "resource belongs to another group"}
	}
	return nil
}
