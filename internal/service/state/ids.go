package state

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

func newParticipantID() string {
	return fmt.Sprintf("LOC-%04d", rand.Intn(10000))
}

func newTeamID() string {
	return "team-" + uuid.NewString()
}

func newMemberID() string {
	return "member-" + uuid.NewString()
}

var placeholderRoles = []string{"UI/UX Designer", "Backend Developer", "Mobile Developer"}

const leaderRole = "Web Developer"
