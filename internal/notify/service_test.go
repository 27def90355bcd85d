package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	notifications map[int64]*Notification
	nextID        int64
	createErr     error
}

func newMemStore() *memStore {
	return &memStore{notifications: make(map[int64]*Notification)}
}

func (m *memStore) Create(_ context.Context, n *Notification) (*Notification, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	cp := *n
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	m.notifications[cp.ID] = &cp
	return &cp, nil
}

func (m *memStore) ListByRecipient(_ context.Context, recipientID, recipientType string) ([]*Notification, error) {
	var out []*Notification
	for _, n := range m.notifications {
		if n.RecipientID == recipientID && n.RecipientType == recipientType {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, ErrNotFound
	}
	return n, nil
}

func (m *memStore) MarkRead(_ context.Context, id int64) error {
	n, ok := m.notifications[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	n.Read = true
	n.ReadAt = &now
	return nil
}

type capturingSender struct {
	sent []EmailMessage
	err  error
}

func (c *capturingSender) Send(_ context.Context, msg EmailMessage) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func testEvent() AppointmentEvent {
	return AppointmentEvent{
		AppointmentID: 9,
		PatientID:     42,
		PatientName:   "Jane Doe",
		PatientEmail:  "jane@example.com",
		DoctorID:      "DOC-1A2B3C4D",
		DoctorName:    "Gregory House",
		DoctorEmail:   "house@example.com",
		Date:          "2025-06-02",
		Time:          "10:00",
	}
}

func TestAppointmentBookedNotifiesDoctor(t *testing.T) {
	store := newMemStore()
	sender := &capturingSender{}
	svc := NewService(store, sender, nil)

	svc.AppointmentBooked(context.Background(), testEvent())

	rows, err := store.ListByRecipient(context.Background(), "DOC-1A2B3C4D", RecipientDoctor)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "APPOINTMENT_BOOKED", rows[0].Type)
	assert.Contains(t, rows[0].Message, "Jane Doe")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "house@example.com", sender.sent[0].To)
}

func TestCancellationNotifiesCounterparty(t *testing.T) {
	store := newMemStore()
	sender := &capturingSender{}
	svc := NewService(store, sender, nil)
	ctx := context.Background()

	svc.AppointmentCancelled(ctx, testEvent(), true)
	doctorRows, err := store.ListByRecipient(ctx, "DOC-1A2B3C4D", RecipientDoctor)
	require.NoError(t, err)
	assert.Len(t, doctorRows, 1)

	svc.AppointmentCancelled(ctx, testEvent(), false)
	patientRows, err := store.ListByRecipient(ctx, "42", RecipientPatient)
	require.NoError(t, err)
	assert.Len(t, patientRows, 1)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "house@example.com", sender.sent[0].To)
	assert.Equal(t, "jane@example.com", sender.sent[1].To)
}

func TestAppointmentCompletedNotifiesPatient(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil)

	svc.AppointmentCompleted(context.Background(), testEvent())

	rows, err := store.ListByRecipient(context.Background(), "42", RecipientPatient)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "APPOINTMENT_COMPLETED", rows[0].Type)
	assert.Contains(t, rows[0].Message, "Gregory House")
}

func TestDeliveryFailuresAreSwallowed(t *testing.T) {
	store := newMemStore()
	store.createErr = errors.New("db down")
	sender := &capturingSender{err: errors.New("smtp down")}
	svc := NewService(store, sender, nil)

	assert.NotPanics(t, func() {
		svc.AppointmentBooked(context.Background(), testEvent())
	})
}

func TestNilSenderSkipsEmail(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil)

	svc.AppointmentBooked(context.Background(), testEvent())
	rows, err := store.ListByRecipient(context.Background(), "DOC-1A2B3C4D", RecipientDoctor)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
