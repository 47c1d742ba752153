package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"counsellor-matching/errors"
	"counsellor-matching/models"
	"counsellor-matching/services/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCounsellorID = "9f8e2d3c-6b1a-4f5e-8d7c-1a2b3c4d5e6f"

func boolPtr(b bool) *bool { return &b }

func newBookingFixture(available *bool) (*BookingService, *fakeBookingStore, *recordingPublisher) {
	store := newFakeBookingStore()
	counsellors := &fakeCounsellors{byID: map[string]*models.Counsellor{
		testCounsellorID: {ID: testCounsellorID, Name: "Dr. Rao", Fees: 500, IsAvailable: available},
	}}
	pub := newRecordingPublisher()
	svc := NewBookingService(store, counsellors, NewSessionLinkGenerator("https://meet.example.com/"), pub, "bookings")
	return svc, store, pub
}

func validBookingRequest() CreateBookingRequest {
	return CreateBookingRequest{
		StudentID:       testStudentID,
		CounsellorID:    testCounsellorID,
		AppointmentDate: "2026-11-02",
		AppointmentTime: " 10:00-10:45 ",
		IssueType:       "Anxiety",
	}
}

func TestCreateBookingRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateBookingRequest)
		wantErr string
	}{
		{"valid", func(*CreateBookingRequest) {}, ""},
		{"bad counsellor", func(r *CreateBookingRequest) { r.CounsellorID = "x" }, "counsellor_id must be a valid UUID"},
		{"bad date", func(r *CreateBookingRequest) { r.AppointmentDate = "02/11/2026" }, "YYYY-MM-DD"},
		{"no time", func(r *CreateBookingRequest) { r.AppointmentTime = "  " }, "appointment_time is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBookingRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCreateBookingIsPending(t *testing.T) {
	svc, store, _ := newBookingFixture(nil)

	b, err := svc.Create(context.Background(), validBookingRequest())
	require.NoError(t, err)

	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, "10:00-10:45", b.AppointmentTime)
	assert.Contains(t, store.bookings, b.ID)
}

func TestCreateBookingRejectsUnavailableCounsellor(t *testing.T) {
	svc, store, _ := newBookingFixture(boolPtr(false))

	_, err := svc.Create(context.Background(), validBookingRequest())
	assert.True(t, errors.IsKind(err, errors.Conflict))
	assert.Empty(t, store.bookings)
}

func TestCreateBookingUnknownCounsellor(t *testing.T) {
	svc, _, _ := newBookingFixture(nil)
	req := validBookingRequest()
	req.CounsellorID = "00000000-0000-4000-8000-000000000000"

	_, err := svc.Create(context.Background(), req)
	assert.True(t, errors.IsKind(err, errors.NotFound))
}

func TestListForStudentAddsCounsellorNames(t *testing.T) {
	svc, _, _ := newBookingFixture(boolPtr(true))
	_, err := svc.Create(context.Background(), validBookingRequest())
	require.NoError(t, err)

	views, err := svc.ListForStudent(context.Background(), testStudentID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Dr. Rao", views[0].CounsellorName)
}

func TestListForStudentToleratesNameLookupFailure(t *testing.T) {
	store := newFakeBookingStore()
	counsellors := &fakeCounsellors{namesErr: errors.E(errors.Internal, "db down")}
	svc := NewBookingService(store, counsellors, NewSessionLinkGenerator("https://meet.example.com"), nil, "bookings")
	require.NoError(t, store.Create(context.Background(), &models.Booking{StudentID: testStudentID, CounsellorID: testCounsellorID}))

	views, err := svc.ListForStudent(context.Background(), testStudentID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Counsellor", views[0].CounsellorName)
}

func TestConfirmBookingIssuesLinkAndPublishes(t *testing.T) {
	svc, store, pub := newBookingFixture(nil)
	b, err := svc.Create(context.Background(), validBookingRequest())
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), b.ID)
	require.NoError(t, err)

	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	assert.Regexp(t, regexp.MustCompile(`^https://meet\.example\.com/[a-z]{3}-[a-z]{4}-[a-z]{3}$`), confirmed.SessionLink)
	assert.Equal(t, confirmed.SessionLink, store.bookings[b.ID].SessionLink)

	select {
	case p := <-pub.ch:
		assert.Equal(t, "bookings", p.topic)
		evt, ok := p.value.(BookingConfirmedEvent)
		require.True(t, ok)
		assert.Equal(t, kafka.EventBookingConfirmed, evt.Event)
		assert.Equal(t, "Dr. Rao", evt.CounsellorName)
		assert.Equal(t, confirmed.SessionLink, evt.SessionLink)
	case <-time.After(time.Second):
		t.Fatal("booking.confirmed was not published")
	}

	_, err = svc.Confirm(context.Background(), b.ID)
	assert.True(t, errors.IsKind(err, errors.Conflict), "confirming twice")
}

func TestConfirmBookingValidatesID(t *testing.T) {
	svc, _, _ := newBookingFixture(nil)

	_, err := svc.Confirm(context.Background(), "bad")
	assert.True(t, errors.IsKind(err, errors.Invalid))

	_, err = svc.Confirm(context.Background(), "00000000-0000-4000-8000-000000000000")
	assert.True(t, errors.IsKind(err, errors.NotFound))
}
