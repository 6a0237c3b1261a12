package booking

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func seedProperty(t *testing.T, s *MemStore) Property {
	t.Helper()
	ctx := context.Background()
	a, err := s.CreateAgency(ctx, Agency{OwnerUserID: "owner-1", Name: "Seaside Stays", Email: "hello@seaside.test", Phone: "+15550100"})
	require.NoError(t, err)
	p, err := s.CreateProperty(ctx, Property{
		AgencyID:         a.ID,
		Title:            "Beach House",
		Address:          "1 Shore Rd",
		NightlyRateCents: 100_00,
		Available:        true,
	})
	require.NoError(t, err)
	return p
}

func candidate(p Property, userID string, iv Interval) Reservation {
	return Reservation{
		PropertyID:    p.ID,
		AgencyID:      p.AgencyID,
		UserID:        userID,
		Guests:        2,
		Interval:      iv,
		TotalCents:    TotalCents(p.NightlyRateCents, iv),
		PaymentMethod: DefaultPaymentMethod,
	}
}

func TestTryCommitAssignsIdentity(t *testing.T) {
	s := NewMemStore()
	p := seedProperty(t, s)
	ctx := context.Background()

	r, err := s.TryCommit(ctx, candidate(p, "u1", mustInterval(t, "2024-06-01", "2024-06-05")))
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, StatusConfirmed, r.Status)
	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, p.AgencyID, r.AgencyID)
}

func TestTryCommitSameDayTurnover(t *testing.T) {
	s := NewMemStore()
	p := seedProperty(t, s)
	ctx := context.Background()

	_, err := s.TryCommit(ctx, candidate(p, "u1", mustInterval(t, "2024-06-01", "2024-06-05")))
	require.NoError(t, err)
	_, err = s.TryCommit(ctx, candidate(p, "u2", mustInterval(t, "2024-06-05", "2024-06-10")))
	require.NoError(t, err, "back-to-back stays must not conflict")
}

func TestTryCommitOverlapRejected(t *testing.T) {
	s := NewMemStore()
	p := seedProperty(t, s)
	ctx := context.Background()

	first := mustInterval(t, "2024-06-01", "2024-06-05")
	_, err := s.TryCommit(ctx, candidate(p, "u1", first))
	require.NoError(t, err)

	_, err = s.TryCommit(ctx, candidate(p, "u2", mustInterval(t, "2024-06-03", "2024-06-08")))
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, p.ID, cerr.PropertyID)
	require.Len(t, cerr.Blocking, 1)
	assert.Equal(t, first, cerr.Blocking[0])
}

func TestTryCommitUnknownProperty(t *testing.T) {
	s := NewMemStore()
	_, err := s.TryCommit(context.Background(), Reservation{
		PropertyID: "missing",
		UserID:     "u1",
		Interval:   mustInterval(t, "2024-06-01", "2024-06-05"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTryCommitExpiredDeadline(t *testing.T) {
	s := NewMemStore()
	p := seedProperty(t, s)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := s.TryCommit(ctx, candidate(p, "u1", mustInterval(t, "2024-06-01", "2024-06-05")))
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrStoreUnavailable)
}

// N concurrent callers race for pairwise-overlapping intervals: exactly one
// commits, the rest get a conflict.
func TestTryCommitMutualExclusionSameInterval(t *testing.T) {
	s := NewMemStore()
	p := seedProperty(t, s)
	iv := mustInterval(t, "2024-06-01", "2024-06-05")

	const n = 32
	var mu sync.Mutex
	var committed, conflicted int

	var g errgroup.Group
	for i := 0; i < n; i++ {
		u := fmt.Sprintf("user-%d", i)
		g.Go(func() error {
			_, err := s.TryCommit(context.Background(), candidate(p, u, iv))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				committed++
			default:
				var cerr *ConflictError
				if !assert.ErrorAs(t, err, &cerr) {
					return err
				}
				conflicted++
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, committed)
	assert.Equal(t, n-1, conflicted)
}

// Property-style check: fire random interval arrangements concurrently and
// assert the post-condition, whatever the winners were.
func TestTryCommitMutualExclusionRandomIntervals(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 10; round++ {
		s := NewMemStore()
		p := seedProperty(t, s)
		base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

		const n = 24
		candidates := make([]Interval, n)
		for i := range candidates {
			start := rng.Intn(28)
			nights := 1 + rng.Intn(7)
			iv, err := NewInterval(base.AddDate(0, 0, start), base.AddDate(0, 0, start+nights))
			require.NoError(t, err)
			candidates[i] = iv
		}

		var g errgroup.Group
		for i, iv := range candidates {
			u := fmt.Sprintf("user-%d", i)
			iv := iv
			g.Go(func() error {
				_, err := s.TryCommit(context.Background(), candidate(p, u, iv))
				var cerr *ConflictError
				if err != nil && !assert.ErrorAs(t, err, &cerr) {
					return err
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		committed, err := s.ConfirmedIntervals(context.Background(), p.ID)
		require.NoError(t, err)
		require.NotEmpty(t, committed)
		for i := 0; i < len(committed); i++ {
			for j := i + 1; j < len(committed); j++ {
				assert.False(t, committed[i].Overlaps(committed[j]),
					"round %d: confirmed reservations %s and %s overlap", round, committed[i], committed[j])
			}
		}
	}
}

func TestConfirmedIntervalsIsPureRead(t *testing.T) {
	s := NewMemStore()
	p := seedProperty(t, s)
	ctx := context.Background()

	_, err := s.TryCommit(ctx, candidate(p, "u1", mustInterval(t, "2024-06-01", "2024-06-05")))
	require.NoError(t, err)

	first, err := s.ConfirmedIntervals(ctx, p.ID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.ConfirmedIntervals(ctx, p.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, first, again)
	}
}

func TestMarkPaid(t *testing.T) {
	s := NewMemStore()
	p := seedProperty(t, s)
	ctx := context.Background()

	r, err := s.TryCommit(ctx, candidate(p, "u1", mustInterval(t, "2024-06-01", "2024-06-05")))
	require.NoError(t, err)
	assert.False(t, r.IsPaid)

	paid, err := s.MarkPaid(ctx, r.ID, "card")
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, "card", paid.PaymentMethod)

	_, err = s.MarkPaid(ctx, "missing", "card")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleAvailability(t *testing.T) {
	s := NewMemStore()
	p := seedProperty(t, s)
	ctx := context.Background()

	available, err := s.ToggleAvailability(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, available)

	available, err = s.ToggleAvailability(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, available)

	_, err = s.ToggleAvailability(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListReservationsNewestFirst(t *testing.T) {
	s := NewMemStore()
	p := seedProperty(t, s)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		in := fmt.Sprintf("2024-06-%02d", 1+i*5)
		out := fmt.Sprintf("2024-06-%02d", 3+i*5)
		r, err := s.TryCommit(ctx, candidate(p, "u1", mustInterval(t, in, out)))
		require.NoError(t, err)
		ids = append(ids, r.ID)
		time.Sleep(time.Millisecond) // distinct creation timestamps
	}

	got, err := s.ListUserReservations(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ids[2], got[0].ID)
	assert.Equal(t, ids[0], got[2].ID)

	byAgency, err := s.ListAgencyReservations(ctx, p.AgencyID)
	require.NoError(t, err)
	assert.Len(t, byAgency, 3)
}
