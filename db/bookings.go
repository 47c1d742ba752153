package db

import (
	"context"
	"database/sql"

	"counsellor-matching/errors"
	"counsellor-matching/models"

	"github.com/google/uuid"
)

// BookingRepository stores bookings and their fee payments.
type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, student_id, counsellor_id, to_char(appointment_date, 'YYYY-MM-DD'),
	appointment_time, issue_type, message, status, session_link, created_at, updated_at`

// Create inserts b with a new id and pending status.
func (r *BookingRepository) Create(ctx context.Context, b *models.Booking) error {
	const op errors.Op = "db.BookingRepository.Create"

	b.ID = uuid.NewString()
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO bookings (id, student_id, counsellor_id, appointment_date, appointment_time, issue_type, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		b.ID, b.StudentID, b.CounsellorID, b.AppointmentDate, b.AppointmentTime,
		b.IssueType, nullStringPtr(b.Message), b.Status).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return errors.E(op, errors.Internal, "could not create booking", err)
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	const op errors.Op = "db.BookingRepository.GetByID"

	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, errors.E(op, errors.NotFound, "booking not found")
	}
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	return b, nil
}

// ListByStudent returns the student's bookings, newest appointment first.
func (r *BookingRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Booking, error) {
	const op errors.Op = "db.BookingRepository.ListByStudent"

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE student_id = $1
		ORDER BY appointment_date DESC, appointment_time DESC`, studentID)
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, errors.E(op, errors.Internal, err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// UpdateStatus sets the status and, when non-empty, the session link.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id, status, sessionLink string) error {
	const op errors.Op = "db.BookingRepository.UpdateStatus"

	result, err := r.db.ExecContext(ctx, `
		UPDATE bookings
		SET status = $2, session_link = COALESCE($3, session_link), updated_at = NOW()
		WHERE id = $1`, id, status, nullString(sessionLink))
	if err != nil {
		return errors.E(op, errors.Internal, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.E(op, errors.NotFound, "booking not found")
	}
	return nil
}

// CreatePayment records a created order for a booking.
func (r *BookingRepository) CreatePayment(ctx context.Context, p *models.BookingPayment) error {
	const op errors.Op = "db.BookingRepository.CreatePayment"

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO booking_payments (booking_id, amount, status, order_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		p.BookingID, p.Amount, p.Status, p.OrderID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return errors.E(op, errors.Internal, "could not store payment", err)
	}
	return nil
}

func (r *BookingRepository) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.BookingPayment, error) {
	const op errors.Op = "db.BookingRepository.GetPaymentByOrderID"

	var (
		p                    models.BookingPayment
		paymentID, signature sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, booking_id, amount, status, order_id, payment_id, razorpay_sign, created_at
		FROM booking_payments
		WHERE order_id = $1`, orderID).
		Scan(&p.ID, &p.BookingID, &p.Amount, &p.Status, &p.OrderID, &paymentID, &signature, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.E(op, errors.NotFound, "payment not found")
	}
	if err != nil {
		return nil, errors.E(op, errors.Internal, err)
	}
	p.PaymentID = paymentID.String
	p.RazorpaySign = signature.String
	return &p, nil
}

// MarkPaymentPaid stores the gateway payment id and signature.
func (r *BookingRepository) MarkPaymentPaid(ctx context.Context, orderID, paymentID, signature string) error {
	const op errors.Op = "db.BookingRepository.MarkPaymentPaid"

	_, err := r.db.ExecContext(ctx, `
		UPDATE booking_payments
		SET status = $2, payment_id = $3, razorpay_sign = $4
		WHERE order_id = $1`, orderID, models.PaymentPaid, paymentID, signature)
	if err != nil {
		return errors.E(op, errors.Internal, err)
	}
	return nil
}

func scanBooking(s rowScanner) (*models.Booking, error) {
	var (
		b           models.Booking
		message     sql.NullString
		sessionLink sql.NullString
	)
	err := s.Scan(&b.ID, &b.StudentID, &b.CounsellorID, &b.AppointmentDate, &b.AppointmentTime,
		&b.IssueType, &message, &b.Status, &sessionLink, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Message = stringPtr(message)
	b.SessionLink = sessionLink.String
	return &b, nil
}
