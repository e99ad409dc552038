// Package model holds the persisted entities of the booking platform.
package model

// Appointment statuses. Confirmed is the only status ever written on create;
// Cancelled and Completed are terminal.
const (
	StatusConfirmed = "Confirmed"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

type Appointment struct {
	ApptID             string
	ClientID           string
	ServiceID          string
	BusinessID         string
	Date               string // YYYY-MM-DD, derived from the submitted timestamp
	Time               string // HH:MM:SS, derived alongside Date
	Notes              string
	Status             string
	CancellationReason string
}

// ClientProfile is the just-in-time provisioned row an appointment's clientid
// references. Keyed by the principal's provider id.
type ClientProfile struct {
	ClientID string
	Email    string
	Name     string
}

type Business struct {
	ID      string
	OwnerID string
	Name    string
	Email   string
}

type Service struct {
	ID    string
	Name  string
	Price float64
}

// ClientAppointment is an appointment enriched for the client's own listing.
type ClientAppointment struct {
	Appointment
	ServiceName  string
	ServicePrice float64
	BusinessName string
}

// UpcomingAppointment is a dashboard row enriched with display names.
type UpcomingAppointment struct {
	ApptID      string
	Date        string
	Time        string
	Status      string
	ClientName  string
	ServiceName string
}

type Notification struct {
	ID        string
	ClientID  string
	Message   string
	CreatedAt string
	Read      bool
}
