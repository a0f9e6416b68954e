// Package membership decides who may take part in a split. It works on
// membership and friendship sets that the caller has already loaded and
// performs no I/O.
package membership

import (
	"strings"

	"github.com/fkhayef/splitledger/internal/apperr"
)

// Identified is any roster entry that resolves to a user identity: a bare
// id, a group member record or a loaded user.
type Identified interface {
	Identity() string
}

// ID is a bare user identity.
type ID string

// Identity implements Identified.
func (id ID) Identity() string { return string(id) }

// IDs wraps plain identities so they can build a Roster.
func IDs(ids []string) []ID {
	out := make([]ID, len(ids))
	for i, id := range ids {
		out[i] = ID(id)
	}
	return out
}

func memberIdentityOf(entry Identified) string {
	if entry == nil {
		return ""
	}
	return strings.TrimSpace(entry.Identity())
}

// Roster is a set of identities.
type Roster struct {
	ids map[string]struct{}
}

// NewRoster builds a roster from any kind of entry.
func NewRoster[T Identified](entries []T) *Roster {
	r := &Roster{ids: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		if id := memberIdentityOf(e); id != "" {
			r.ids[id] = struct{}{}
		}
	}
	return r
}

// Contains reports whether identity is in the roster. A nil roster is empty.
func (r *Roster) Contains(identity string) bool {
	if r == nil {
		return false
	}
	_, ok := r.ids[strings.TrimSpace(identity)]
	return ok
}

// Len returns the number of distinct identities.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}

// AuthorizeSplit checks that actor may record an expense paid by payer and
// split among participants. With a group roster every party must be a member.
// Without one, the payer must be the actor or a friend, and each participant
// must be the actor, the payer or a friend of the actor.
func AuthorizeSplit(actor, payer string, participants []string, group, friends *Roster) error {
	if group != nil {
		if !group.Contains(actor) {
			return &apperr.AuthError{Code: apperr.NotMember}
		}
		if !group.Contains(payer) {
			return &apperr.AuthError{Code: apperr.PayerNotMember, Identity: payer}
		}
		for _, p := range participants {
			if !group.Contains(p) {
				return &apperr.AuthError{Code: apperr.ParticipantsNotMembers, Identity: p}
			}
		}
		return nil
	}

	if payer != actor && !friends.Contains(payer) {
		return &apperr.AuthError{Code: apperr.PayerNotFriend, Identity: payer}
	}
	for _, p := range participants {
		if p == actor || p == payer || friends.Contains(p) {
			continue
		}
		return &apperr.AuthError{Code: apperr.ParticipantNotEligible, Identity: p}
	}
	return nil
}
