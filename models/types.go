package models

import "time"

// Election phases
type Phase string

const (
	PhaseScheduled Phase = "scheduled"
	PhaseActive    Phase = "active"
	PhaseEnded     Phase = "ended"
)

// Access tiers, ordered so that a higher tier satisfies every lower check.
type Tier int

const (
	TierNone Tier = iota
	TierVoter
	TierStaff
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierVoter:
		return RoleVoter
	case TierStaff:
		return RoleStaff
	case TierAdmin:
		return RoleAdmin
	default:
		return "none"
	}
}

// Session and principal roles as stored in the database
const (
	RoleVoter = "voter"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// TierFromRole maps a stored role back to its tier.
func TierFromRole(role string) Tier {
	switch role {
	case RoleVoter:
		return TierVoter
	case RoleStaff:
		return TierStaff
	case RoleAdmin:
		return TierAdmin
	default:
		return TierNone
	}
}

// Candidate levels
var Levels = []int{100, 200, 300, 400, 500}

func ValidLevel(level int) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Domain types

type Election struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Started   bool      `json:"-"` // cached hint, never authoritative
	Ended     bool      `json:"-"` // cached hint, never authoritative
	CreatedAt time.Time `json:"created_at"`
}

type Position struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	ElectionID string      `json:"election_id"`
	Candidates []Candidate `json:"candidates"`
}

type Candidate struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Level      int     `json:"level"`
	VoteCount  int     `json:"vote_count"`
	PositionID *string `json:"position_id,omitempty"`
	ElectionID string  `json:"election_id"`
}

type Voter struct {
	ID               string    `json:"id"`
	ExternalUsername string    `json:"username"`
	HasVoted         bool      `json:"has_voted"`
	CreatedAt        time.Time `json:"created_at"`
}

type AccessPrincipal struct {
	Role     string `json:"role"`
	CodeHash string `json:"-"`
}

type Session struct {
	ID        string
	Role      string
	VoterID   *string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Response types

// ViewOf strips tallies from p. IDs are kept only when withIDs is set.
func ViewOf(p Position, withIDs bool) PositionView {
	v := PositionView{Name: p.Name, Candidates: make([]CandidateView, 0, len(p.Candidates))}
	if withIDs {
		v.ID = p.ID
	}
	for _, c := range p.Candidates {
		v.Candidates = append(v.Candidates, CandidateViewOf(c, withIDs))
	}
	return v
}

func CandidateViewOf(c Candidate, withID bool) CandidateView {
	v := CandidateView{Name: c.Name, Level: c.Level}
	if withID {
		v.ID = c.ID
	}
	return v
}

type ElectionStatusResponse struct {
	Election *Election `json:"election,omitempty"`
	Phase    Phase     `json:"phase,omitempty"`
	Opens    string    `json:"opens,omitempty"`
	Closes   string    `json:"closes,omitempty"`
	Flash    *Flash    `json:"flash,omitempty"`
}

type BallotResponse struct {
	Election  *Election      `json:"election"`
	Positions []PositionView `json:"positions"`
}

// PositionView is a position without tallies. Ballot form keys are Name.
type PositionView struct {
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name"`
	Candidates []CandidateView `json:"candidates"`
}

type CandidateView struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

type ListResponse struct {
	Election   *Election       `json:"election,omitempty"`
	Positions  []PositionView  `json:"positions"`
	Unassigned []CandidateView `json:"unassigned,omitempty"`
	Flash      *Flash          `json:"flash,omitempty"`
}

type ResultPageResponse struct {
	Page        int       `json:"page"`
	NumPages    int       `json:"num_pages"`
	HasNext     bool      `json:"has_next"`
	HasPrevious bool      `json:"has_previous"`
	Position    *Position `json:"position,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Flash   *Flash `json:"flash,omitempty"`
}

// FormResponse describes a form endpoint for the rendering layer.
type FormResponse struct {
	Action string                  `json:"action"`
	Fields []string                `json:"fields"`
	Next   string                  `json:"next,omitempty"`
	Status *ElectionStatusResponse `json:"status,omitempty"`
	Flash  *Flash                  `json:"flash,omitempty"`
}

// Flash levels
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashError   = "error"
)

type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}
