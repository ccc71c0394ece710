package domain

import "time"

// NotificationVariant selects how a toast is presented
type NotificationVariant string

const (
	VariantDefault     NotificationVariant = "default"
	VariantDestructive NotificationVariant = "destructive"
)

// Notification is a short user-visible status message
type Notification struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Variant     NotificationVariant `json:"variant"`
}

// ContactMessage is the landing page contact form
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message"`
}

// ParticipantStats feeds the admin dashboard
type ParticipantStats struct {
	Participants int       `json:"participants"`
	Admins       int       `json:"admins"`
	Teams        int       `json:"teams"`
	Paid         int       `json:"paid"`
	Unpaid       int       `json:"unpaid"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// ParticipantSummary is one row of the admin participant listing
type ParticipantSummary struct {
	ParticipantID string        `json:"participantId"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Role          Role          `json:"role"`
	TeamName      string        `json:"teamName,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
