package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/buyme/internal/catalog"
)

type recorder struct {
	mu      sync.Mutex
	intents []Intent
	err     error
}

func (r *recorder) Process(_ context.Context, in Intent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.intents = append(r.intents, in)
	return nil
}

func tee() catalog.Product {
	return catalog.Product{ID: "p1", Name: "Tee", Price: decimal.RequireFromString("49.99")}
}

func TestModal_SubmitWithoutSize(t *testing.T) {
	var m Modal
	gw := &recorder{}
	m.Open(tee())
	require.NoError(t, m.SetQuantity(3))

	_, err := m.Submit(context.Background(), gw)
	require.ErrorIs(t, err, ErrSizeRequired)
	require.Equal(t, Open, m.State())
	require.Equal(t, 3, m.Quantity())
	require.Empty(t, gw.intents)
}

func TestModal_SubmitRecordsOneIntent(t *testing.T) {
	var m Modal
	gw := &recorder{}
	m.Open(tee())
	require.NoError(t, m.SelectSize(SizeM))
	require.NoError(t, m.SetQuantity(2))

	rc, err := m.Submit(context.Background(), gw)
	require.NoError(t, err)
	require.Equal(t, Closed, m.State())
	require.Len(t, gw.intents, 1)

	in := gw.intents[0]
	require.Equal(t, "p1", in.ProductID)
	require.Equal(t, SizeM, in.Size)
	require.Equal(t, 2, in.Quantity)
	require.True(t, in.Total.Equal(decimal.RequireFromString("99.98")))
	require.Equal(t, "Payment processed for Tee (Size: M, Quantity: 2)", rc.Message)
}

func TestModal_OpenResets(t *testing.T) {
	var m Modal
	m.Open(tee())
	require.NoError(t, m.SelectSize(SizeL))
	require.NoError(t, m.SetQuantity(4))

	m.Open(tee())
	require.Equal(t, Size(""), m.Size())
	require.Equal(t, 1, m.Quantity())
}

func TestModal_QuantityBelowOneIgnored(t *testing.T) {
	var m Modal
	m.Open(tee())
	require.NoError(t, m.SetQuantity(0))
	require.NoError(t, m.SetQuantity(-5))
	require.Equal(t, 1, m.Quantity())
}

func TestModal_ClosedRejectsActions(t *testing.T) {
	var m Modal
	require.ErrorIs(t, m.SelectSize(SizeS), ErrNotOpen)
	require.ErrorIs(t, m.SetQuantity(2), ErrNotOpen)
	_, err := m.Submit(context.Background(), &recorder{})
	require.ErrorIs(t, err, ErrNotOpen)
}

func TestModal_CancelDiscards(t *testing.T) {
	var m Modal
	m.Open(tee())
	require.NoError(t, m.SelectSize(SizeXL))
	m.Cancel()
	require.Equal(t, Closed, m.State())
	require.Equal(t, Size(""), m.Size())
}

func TestModal_GatewayFailureKeepsOpen(t *testing.T) {
	var m Modal
	m.Open(tee())
	require.NoError(t, m.SelectSize(SizeS))

	_, err := m.Submit(context.Background(), &recorder{err: errors.New("down")})
	require.Error(t, err)
	require.Equal(t, Open, m.State())
}

func TestParseSize(t *testing.T) {
	s, err := ParseSize("xxl")
	require.NoError(t, err)
	require.Equal(t, SizeXXL, s)

	_, err = ParseSize("XXXL")
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestSessions_Lifecycle(t *testing.T) {
	s := NewSessions(time.Minute)
	gw := &recorder{}
	id := s.Open(tee())
	require.Equal(t, 1, s.Len())

	err := s.Do(id, func(m *Modal) error {
		_, err := m.Submit(context.Background(), gw)
		return err
	})
	require.ErrorIs(t, err, ErrSizeRequired)
	require.Equal(t, 1, s.Len())

	require.NoError(t, s.Do(id, func(m *Modal) error { return m.SelectSize(SizeM) }))
	require.NoError(t, s.Do(id, func(m *Modal) error {
		_, err := m.Submit(context.Background(), gw)
		return err
	}))
	require.Equal(t, 0, s.Len())
	require.ErrorIs(t, s.Do(id, func(*Modal) error { return nil }), ErrSessionNotFound)
	require.Len(t, gw.intents, 1)
}

func TestSessions_Cancel(t *testing.T) {
	s := NewSessions(time.Minute)
	id := s.Open(tee())
	require.NoError(t, s.Cancel(id))
	require.Equal(t, 0, s.Len())
	require.ErrorIs(t, s.Cancel(id), ErrSessionNotFound)
}

func TestSessions_Sweep(t *testing.T) {
	s := NewSessions(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	old := s.Open(tee())
	now = now.Add(45 * time.Second)
	fresh := s.Open(tee())
	now = now.Add(30 * time.Second)

	require.Equal(t, 1, s.Sweep())
	require.ErrorIs(t, s.Do(old, func(*Modal) error { return nil }), ErrSessionNotFound)
	require.NoError(t, s.Do(fresh, func(*Modal) error { return nil }))
}

func TestSessions_DoAfterConcurrentRemoval(t *testing.T) {
	s := NewSessions(time.Minute)
	id := s.Open(tee())

	s.mu.Lock()
	sess := s.items[id]
	s.mu.Unlock()

	sess.mu.Lock()
	called := false
	done := make(chan error, 1)
	go func() {
		done <- s.Do(id, func(*Modal) error {
			called = true
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	sess.mu.Unlock()

	require.ErrorIs(t, <-done, ErrSessionNotFound)
	require.False(t, called)
}
