package domain

import "time"

// EventSchedule is the hackathon's configured time window
type EventSchedule struct {
	Name     string
	StartsAt time.Time
	EndsAt   time.Time
}

// EventInfo is the landing page countdown view of the schedule
type EventInfo struct {
	Name              string    `json:"name"`
	StartsAt          time.Time `json:"startsAt"`
	EndsAt            time.Time `json:"endsAt"`
	SecondsUntilStart int64     `json:"secondsUntilStart"`
	Started           bool      `json:"started"`
	Ended             bool      `json:"ended"`
}

// Info projects the schedule at the given instant
func (s EventSchedule) Info(now time.Time) EventInfo {
	info := EventInfo{
		Name:     s.Name,
		StartsAt: s.StartsAt,
		EndsAt:   s.EndsAt,
		Started:  !now.Before(s.StartsAt),
		Ended:    !now.Before(s.EndsAt),
	}
	if !info.Started {
		info.SecondsUntilStart = int64(s.StartsAt.Sub(now) / time.Second)
	}
	return info
}

// CertificateKind names a certificate template
type CertificateKind string

const (
	CertificateParticipation CertificateKind = "participation"
	CertificateTeam          CertificateKind = "team"
)

// Certificate describes a downloadable certificate; rendering happens elsewhere
type Certificate struct {
	Kind         CertificateKind `json:"kind"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Available    bool            `json:"available"`
	RequiresTeam bool            `json:"requiresTeam"`
}

// CertificatesFor lists the certificates of a user. They unlock once the
// event has ended and the fee is paid; the team certificate also needs a team.
func CertificatesFor(user *UserRecord, schedule EventSchedule, now time.Time) []Certificate {
	if user == nil {
		return []Certificate{}
	}
	eligible := user.Payment.IsPaid() && !now.Before(schedule.EndsAt)

	return []Certificate{
		{
			Kind:        CertificateParticipation,
			Title:       "Certificate of Participation",
			Description: "Awarded to " + user.FullName() + " for taking part in " + schedule.Name,
			Available:   eligible,
		},
		{
			Kind:         CertificateTeam,
			Title:        "Team Certificate",
			Description:  "Awarded to every member of a team that submitted a project",
			Available:    eligible && user.HasTeam(),
			RequiresTeam: true,
		},
	}
}

// Resource is a dashboard link
type Resource struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// DefaultResources is the static dashboard resource catalog
func DefaultResources() []Resource {
	return []Resource{
		{Category: "Getting Started", Title: "Participant Handbook", Description: "Rules, judging criteria and the event timeline", URL: "/resources/handbook"},
		{Category: "Getting Started", Title: "Team Formation Guide", Description: "How to form a team of up to four members", URL: "/resources/teams"},
		{Category: "Development", Title: "Starter Templates", Description: "Boilerplate projects for web and mobile", URL: "/resources/templates"},
		{Category: "Development", Title: "API Credits", Description: "Sponsor API keys and cloud credits", URL: "/resources/credits"},
		{Category: "Presentation", Title: "Pitch Deck Template", Description: "Slides for the final demo", URL: "/resources/pitch"},
	}
}
