// Package rbac centralizes role semantics for the retrieval path: the known
// organizational roles, the "general" visibility sentinel, and the privileged
// role that bypasses filtering. All role-based filter construction goes
// through Filter so the authorization boundary lives in one place.
package rbac

import "github.com/qdrant/go-client/qdrant"

// Roles recognized by the corpus layout and the prompt guidance table.
const (
	RoleEngineering = "engineering"
	RoleMarketing   = "marketing"
	RoleFinance     = "finance"
	RoleHR          = "hr"
	RoleCLevel      = "c-level"

	// RoleGeneral tags documents visible to every role. It is a visibility
	// sentinel, not an organizational role a requester holds.
	RoleGeneral = "general"
)

// PayloadKey is the payload field carrying a chunk's role tag.
const PayloadKey = "role"

var knownRoles = map[string]bool{
	RoleEngineering: true,
	RoleMarketing:   true,
	RoleFinance:     true,
	RoleHR:          true,
	RoleCLevel:      true,
	RoleGeneral:     true,
}

// Known reports whether role is one of the recognized role tags.
func Known(role string) bool {
	return knownRoles[role]
}

// Privileged reports whether role sees the full corpus with no filter.
func Privileged(role string) bool {
	return role == RoleCLevel
}

// Filter builds the metadata filter enforcing role visibility:
//
//   - the privileged role gets no filter (full corpus);
//   - a known role gets role OR general;
//   - an unrecognized role gets general only, failing safe toward least
//     privilege rather than erroring.
func Filter(role string) *qdrant.Filter {
	if Privileged(role) {
		return nil
	}
	should := []*qdrant.Condition{
		qdrant.NewMatch(PayloadKey, RoleGeneral),
	}
	if Known(role) && role != RoleGeneral {
		should = append([]*qdrant.Condition{qdrant.NewMatch(PayloadKey, role)}, should...)
	}
	return &qdrant.Filter{Should: should}
}
