package models

import "time"

// Booking status values
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking is a student's appointment request with a counsellor.
type Booking struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	CounsellorID    string    `json:"counsellor_id"`
	AppointmentDate string    `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	IssueType       string    `json:"issue_type"`
	Message         *string   `json:"message,omitempty"`
	Status          string    `json:"status"`
	SessionLink     string    `json:"session_link,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
