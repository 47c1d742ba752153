package services

import (
	"context"
	"sync"

	"counsellor-matching/errors"
	"counsellor-matching/models"
)

type fakeRanker struct {
	name   string
	ranked []models.RankedCounsellor
	err    error

	mu          sync.Mutex
	calls       int
	lastStudent string
	lastAnswers models.QuestionnaireAnswers
}

func (f *fakeRanker) Name() string { return f.name }

func (f *fakeRanker) Rank(_ context.Context, studentID string) ([]models.RankedCounsellor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastStudent = studentID
	return f.ranked, f.err
}

func (f *fakeRanker) RankAnswers(_ context.Context, answers models.QuestionnaireAnswers) ([]models.RankedCounsellor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastAnswers = answers
	return f.ranked, f.err
}

func ranked(ids ...string) []models.RankedCounsellor {
	out := make([]models.RankedCounsellor, 0, len(ids))
	for i, id := range ids {
		out = append(out, models.RankedCounsellor{
			ID:             id,
			Name:           "Dr. " + id,
			Specialization: "Anxiety",
			RankingScore:   float64(len(ids) - i),
			Fees:           400,
		})
	}
	return out
}

type fakeQuestionnaireStore struct {
	inserted []*models.QuestionnaireResponse
	err      error
}

func (f *fakeQuestionnaireStore) Insert(_ context.Context, resp *models.QuestionnaireResponse) error {
	if f.err != nil {
		return f.err
	}
	resp.ID = "resp-1"
	f.inserted = append(f.inserted, resp)
	return nil
}

type fakeBookingStore struct {
	bookings map[string]*models.Booking
	nextID   string
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: map[string]*models.Booking{}, nextID: "7d4f1a52-2c1e-4b53-9a43-0d1f2b9c6e10"}
}

func (f *fakeBookingStore) Create(_ context.Context, b *models.Booking) error {
	b.ID = f.nextID
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, errors.E(errors.NotFound, "booking not found")
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingStore) ListByStudent(_ context.Context, studentID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.StudentID == studentID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, id, status, sessionLink string) error {
	b, ok := f.bookings[id]
	if !ok {
		return errors.E(errors.NotFound, "booking not found")
	}
	b.Status = status
	if sessionLink != "" {
		b.SessionLink = sessionLink
	}
	return nil
}

type fakeCounsellors struct {
	byID     map[string]*models.Counsellor
	namesErr error
}

func (f *fakeCounsellors) GetByID(_ context.Context, id string) (*models.Counsellor, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, errors.E(errors.NotFound, "counsellor not found")
	}
	return c, nil
}

func (f *fakeCounsellors) NamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	if f.namesErr != nil {
		return nil, f.namesErr
	}
	names := map[string]string{}
	for _, id := range ids {
		if c, ok := f.byID[id]; ok {
			names[id] = c.Name
		}
	}
	return names, nil
}

type fakePaymentStore struct {
	byOrder map[string]*models.BookingPayment
	marked  int
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{byOrder: map[string]*models.BookingPayment{}}
}

func (f *fakePaymentStore) CreatePayment(_ context.Context, p *models.BookingPayment) error {
	p.ID = len(f.byOrder) + 1
	cp := *p
	f.byOrder[p.OrderID] = &cp
	return nil
}

func (f *fakePaymentStore) GetPaymentByOrderID(_ context.Context, orderID string) (*models.BookingPayment, error) {
	p, ok := f.byOrder[orderID]
	if !ok {
		return nil, errors.E(errors.NotFound, "payment not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) MarkPaymentPaid(_ context.Context, orderID, paymentID, signature string) error {
	p, ok := f.byOrder[orderID]
	if !ok {
		return errors.E(errors.NotFound, "payment not found")
	}
	f.marked++
	p.Status = models.PaymentPaid
	p.PaymentID = paymentID
	p.RazorpaySign = signature
	return nil
}

type fakeOrders struct {
	amount   int
	currency string
	receipt  string
	err      error
}

func (f *fakeOrders) CreateOrder(amountPaise int, currency, receipt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.amount, f.currency, f.receipt = amountPaise, currency, receipt
	return "order_test123", nil
}

type published struct {
	topic, key string
	value      interface{}
}

// recordingPublisher captures events; publishAsync delivers from a goroutine.
type recordingPublisher struct {
	ch  chan published
	err error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{ch: make(chan published, 10)}
}

func (p *recordingPublisher) Publish(topic, key string, value interface{}) error {
	p.ch <- published{topic: topic, key: key, value: value}
	return p.err
}

type sentMail struct {
	to, subject, body string
	attachments       []string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string, attachments ...string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body, attachments: attachments})
	return nil
}

type fakeProfiles map[string]*models.Profile

func (f fakeProfiles) GetByID(_ context.Context, id string) (*models.Profile, error) {
	p, ok := f[id]
	if !ok {
		return nil, errors.E(errors.NotFound, "profile not found")
	}
	return p, nil
}
