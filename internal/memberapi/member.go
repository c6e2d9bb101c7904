package memberapi

import (
	"strings"

	"github.com/google/uuid"
)

// Member is one roster entry. Members are immutable once added: updates
// replace the entry with a new value.
type Member struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Active     bool      `json:"active"`
}

// maxNameLength bounds member names in bodies and paths.
const maxNameLength = 64

// MemberRequest is the body of create and update requests.
type MemberRequest struct {
	Name       string `json:"name" validate:"required,max=64"`
	Department string `json:"department" validate:"max=64"`
	Active     *bool  `json:"active"`
}

func (r MemberRequest) normalize() MemberRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Department = strings.TrimSpace(r.Department)
	return r
}

func (r MemberRequest) active(fallback bool) bool {
	if r.Active == nil {
		return fallback
	}
	return *r.Active
}

func byName(a, b *Member) int {
	if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

func department(m *Member) string { return m.Department }
