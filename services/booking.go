package services

import (
	"context"
	"strings"

	"counsellor-matching/errors"
	"counsellor-matching/logger"
	"counsellor-matching/models"
	"counsellor-matching/utils"
)

// BookingStore persists bookings.
type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id, status, sessionLink string) error
}

// CounsellorLookup resolves counsellors by id.
type CounsellorLookup interface {
	GetByID(ctx context.Context, id string) (*models.Counsellor, error)
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	StudentID       string  `json:"student_id"`
	CounsellorID    string  `json:"counsellor_id"`
	AppointmentDate string  `json:"appointment_date"`
	AppointmentTime string  `json:"appointment_time"`
	IssueType       string  `json:"issue_type"`
	Message         *string `json:"message,omitempty"`
}

// BookingView is a booking with the counsellor's display name.
type BookingView struct {
	models.Booking
	CounsellorName string `json:"counsellor_name"`
}

type BookingService struct {
	bookings    BookingStore
	counsellors CounsellorLookup
	links       *SessionLinkGenerator
	publisher   EventPublisher
	topic       string
}

func NewBookingService(bookings BookingStore, counsellors CounsellorLookup, links *SessionLinkGenerator, publisher EventPublisher, topic string) *BookingService {
	return &BookingService{
		bookings:    bookings,
		counsellors: counsellors,
		links:       links,
		publisher:   publisher,
		topic:       topic,
	}
}

func (req *CreateBookingRequest) Validate() error {
	if err := utils.ValidateUUID("student_id", req.StudentID); err != nil {
		return errors.E(errors.Invalid, err.Error())
	}
	if err := utils.ValidateUUID("counsellor_id", req.CounsellorID); err != nil {
		return errors.E(errors.Invalid, err.Error())
	}
	if _, err := utils.ParseDate("appointment_date", req.AppointmentDate); err != nil {
		return errors.E(errors.Invalid, err.Error())
	}
	if strings.TrimSpace(req.AppointmentTime) == "" {
		return errors.E(errors.Invalid, "appointment_time is required")
	}
	if err := utils.ValidateMaxLength("issue_type", req.IssueType, utils.MaxAnswerLength); err != nil {
		return errors.E(errors.Invalid, err.Error())
	}
	if req.Message != nil {
		if err := utils.ValidateMaxLength("message", *req.Message, utils.MaxFreeTextLength); err != nil {
			return errors.E(errors.Invalid, err.Error())
		}
	}
	return nil
}

// Create books a counsellor who is not explicitly unavailable.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	const op errors.Op = "services.BookingService.Create"

	if err := req.Validate(); err != nil {
		return nil, errors.E(op, err)
	}

	counsellor, err := s.counsellors.GetByID(ctx, req.CounsellorID)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if counsellor.IsAvailable != nil && !*counsellor.IsAvailable {
		return nil, errors.E(op, errors.Conflict, "counsellor is not accepting bookings")
	}

	b := &models.Booking{
		StudentID:       req.StudentID,
		CounsellorID:    req.CounsellorID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: strings.TrimSpace(req.AppointmentTime),
		IssueType:       strings.TrimSpace(req.IssueType),
		Message:         req.Message,
		Status:          models.BookingPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, errors.E(op, err)
	}

	logger.Info("Booking %s created: student=%s counsellor=%s on %s %s",
		b.ID, b.StudentID, b.CounsellorID, b.AppointmentDate, b.AppointmentTime)
	return b, nil
}

// ListForStudent returns the student's bookings with counsellor names.
func (s *BookingService) ListForStudent(ctx context.Context, studentID string) ([]BookingView, error) {
	const op errors.Op = "services.BookingService.ListForStudent"

	if err := utils.ValidateUUID("student_id", studentID); err != nil {
		return nil, errors.E(op, errors.Invalid, err.Error())
	}

	bookings, err := s.bookings.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, errors.E(op, err)
	}

	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.CounsellorID)
	}
	names, err := s.counsellors.NamesByIDs(ctx, ids)
	if err != nil {
		// Names are decoration; list without them.
		logger.Warn("Could not resolve counsellor names for student %s: %v", studentID, err)
		names = map[string]string{}
	}

	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		name, ok := names[b.CounsellorID]
		if !ok {
			name = models.DisplayName("", "")
		}
		views = append(views, BookingView{Booking: b, CounsellorName: name})
	}
	return views, nil
}

// Confirm marks a pending booking confirmed, attaches a session link and
// announces it so the student is mailed.
func (s *BookingService) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	const op errors.Op = "services.BookingService.Confirm"

	if err := utils.ValidateUUID("booking_id", bookingID); err != nil {
		return nil, errors.E(op, errors.Invalid, err.Error())
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.E(op, err)
	}
	if b.Status != models.BookingPending {
		return nil, errors.E(op, errors.Conflict, "booking is already "+b.Status)
	}

	link := s.links.Generate()
	if err := s.bookings.UpdateStatus(ctx, b.ID, models.BookingConfirmed, link); err != nil {
		return nil, errors.E(op, err)
	}
	b.Status = models.BookingConfirmed
	b.SessionLink = link

	name := models.DisplayName("", "")
	if c, err := s.counsellors.GetByID(ctx, b.CounsellorID); err == nil {
		name = c.Name
	}

	publishAsync(s.publisher, s.topic, "booking-"+b.ID, NewBookingConfirmedEvent(b, name))
	logger.Info("Booking %s confirmed with session link %s", b.ID, link)
	return b, nil
}
