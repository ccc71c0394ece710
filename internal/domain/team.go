package domain

import "time"

const (
	// MaxTeamMembers includes the leader
	MaxTeamMembers = 4
	// MaxInvitedMembers is the number of identifiers a leader may supply
	MaxInvitedMembers = MaxTeamMembers - 1
)

// Team is formed once by its leader and embedded in the leader's record
type Team struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Members     []TeamMember `json:"members"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// TeamMember is one seat of a team; exactly one member leads
type TeamMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsLeader bool   `json:"isLeader"`
}

// Leader returns the leading member, or nil for a malformed team
func (t *Team) Leader() *TeamMember {
	for i := range t.Members {
		if t.Members[i].IsLeader {
			return &t.Members[i]
		}
	}
	return nil
}

// TeamRequest is the create-team form
type TeamRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}
