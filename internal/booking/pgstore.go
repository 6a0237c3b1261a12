package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the durable Store. Writers for one property serialize on the
// property row via SELECT ... FOR UPDATE, so the overlap re-check inside the
// transaction sees every previously committed reservation.
type PGStore struct{ DB *pgxpool.Pool }

var _ Store = (*PGStore)(nil)

func (s *PGStore) CreateAgency(ctx context.Context, a Agency) (Agency, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now().UTC()
	_, err := s.DB.Exec(ctx, `
		INSERT INTO agencies(id, owner_user_id, name, email, phone, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		a.ID, a.OwnerUserID, a.Name, a.Email, a.Phone, a.CreatedAt)
	if err != nil {
		return Agency{}, storeErr(ctx, err)
	}
	return a, nil
}

func (s *PGStore) GetAgency(ctx context.Context, id string) (Agency, error) {
	var a Agency
	err := s.DB.QueryRow(ctx, `
		SELECT id, owner_user_id, name, email, phone, created_at
		FROM agencies WHERE id=$1`, id).
		Scan(&a.ID, &a.OwnerUserID, &a.Name, &a.Email, &a.Phone, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agency{}, fmt.Errorf("agency %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Agency{}, storeErr(ctx, err)
	}
	return a, nil
}

func (s *PGStore) AgencyByOwner(ctx context.Context, ownerUserID string) (Agency, error) {
	var a Agency
	err := s.DB.QueryRow(ctx, `
		SELECT id, owner_user_id, name, email, phone, created_at
		FROM agencies WHERE owner_user_id=$1`, ownerUserID).
		Scan(&a.ID, &a.OwnerUserID, &a.Name, &a.Email, &a.Phone, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Agency{}, fmt.Errorf("agency for user %s: %w", ownerUserID, ErrNotFound)
	}
	if err != nil {
		return Agency{}, storeErr(ctx, err)
	}
	return a, nil
}

func (s *PGStore) CreateProperty(ctx context.Context, p Property) (Property, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	_, err := s.DB.Exec(ctx, `
		INSERT INTO properties(id, agency_id, title, address, image_url, nightly_rate_cents, available, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.AgencyID, p.Title, p.Address, p.ImageURL, p.NightlyRateCents, p.Available, p.CreatedAt)
	if err != nil {
		return Property{}, storeErr(ctx, err)
	}
	return p, nil
}

func (s *PGStore) GetProperty(ctx context.Context, id string) (Property, error) {
	var p Property
	err := s.DB.QueryRow(ctx, `
		SELECT id, agency_id, title, address, image_url, nightly_rate_cents, available, created_at
		FROM properties WHERE id=$1`, id).
		Scan(&p.ID, &p.AgencyID, &p.Title, &p.Address, &p.ImageURL, &p.NightlyRateCents, &p.Available, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, fmt.Errorf("property %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Property{}, storeErr(ctx, err)
	}
	return p, nil
}

func (s *PGStore) ListAvailableProperties(ctx context.Context) ([]Property, error) {
	return s.listProperties(ctx, `WHERE available ORDER BY created_at DESC`)
}

func (s *PGStore) ListAgencyProperties(ctx context.Context, agencyID string) ([]Property, error) {
	return s.listProperties(ctx, `WHERE agency_id=$1 ORDER BY created_at DESC`, agencyID)
}

func (s *PGStore) listProperties(ctx context.Context, tail string, args ...any) ([]Property, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT id, agency_id, title, address, image_url, nightly_rate_cents, available, created_at
		FROM properties `+tail, args...)
	if err != nil {
		return nil, storeErr(ctx, err)
	}
	defer rows.Close()

	var out []Property
	for rows.Next() {
		var p Property
		if err := rows.Scan(&p.ID, &p.AgencyID, &p.Title, &p.Address, &p.ImageURL, &p.NightlyRateCents, &p.Available, &p.CreatedAt); err != nil {
			return nil, storeErr(ctx, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PGStore) ToggleAvailability(ctx context.Context, propertyID string) (bool, error) {
	var available bool
	err := s.DB.QueryRow(ctx, `
		UPDATE properties SET available = NOT available WHERE id=$1
		RETURNING available`, propertyID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("property %s: %w", propertyID, ErrNotFound)
	}
	if err != nil {
		return false, storeErr(ctx, err)
	}
	return available, nil
}

func (s *PGStore) ConfirmedIntervals(ctx context.Context, propertyID string) ([]Interval, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT check_in, check_out FROM reservations
		WHERE property_id=$1 AND status=$2`, propertyID, string(StatusConfirmed))
	if err != nil {
		return nil, storeErr(ctx, err)
	}
	defer rows.Close()

	var out []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.CheckIn, &iv.CheckOut); err != nil {
			return nil, storeErr(ctx, err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// TryCommit: lock the property row (FOR UPDATE) -> re-check overlap among
// confirmed reservations -> insert. A conflict rolls back via the deferred
// Rollback and nothing is committed.
func (s *PGStore) TryCommit(ctx context.Context, candidate Reservation) (Reservation, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Reservation{}, storeErr(ctx, err)
	}
	defer tx.Rollback(ctx)

	// Serialization point: one writer per property at a time.
	var exists bool
	err = tx.QueryRow(ctx, `SELECT true FROM properties WHERE id=$1 FOR UPDATE`, candidate.PropertyID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, fmt.Errorf("property %s: %w", candidate.PropertyID, ErrNotFound)
	}
	if err != nil {
		return Reservation{}, storeErr(ctx, err)
	}

	// Authoritative overlap check, evaluated at commit time. The half-open
	// bounds make back-to-back stays non-conflicting.
	rows, err := tx.Query(ctx, `
		SELECT check_in, check_out FROM reservations
		WHERE property_id=$1 AND status=$2 AND check_in < $4 AND check_out > $3`,
		candidate.PropertyID, string(StatusConfirmed), candidate.Interval.CheckIn, candidate.Interval.CheckOut)
	if err != nil {
		return Reservation{}, storeErr(ctx, err)
	}
	var blocking []Interval
	for rows.Next() {
		var iv Interval
		if err := rows.Scan(&iv.CheckIn, &iv.CheckOut); err != nil {
			rows.Close()
			return Reservation{}, storeErr(ctx, err)
		}
		blocking = append(blocking, iv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Reservation{}, storeErr(ctx, err)
	}
	if len(blocking) > 0 {
		return Reservation{}, &ConflictError{PropertyID: candidate.PropertyID, Blocking: blocking}
	}

	candidate.ID = uuid.NewString()
	candidate.Status = StatusConfirmed
	candidate.CreatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
		INSERT INTO reservations(id, property_id, agency_id, user_id, guests,
			check_in, check_out, total_cents, status, is_paid, payment_method, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		candidate.ID, candidate.PropertyID, candidate.AgencyID, candidate.UserID, candidate.Guests,
		candidate.Interval.CheckIn, candidate.Interval.CheckOut, candidate.TotalCents,
		string(candidate.Status), candidate.IsPaid, candidate.PaymentMethod, candidate.CreatedAt)
	if err != nil {
		return Reservation{}, storeErr(ctx, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Reservation{}, storeErr(ctx, err)
	}
	return candidate, nil
}

func (s *PGStore) GetReservation(ctx context.Context, id string) (Reservation, error) {
	r, err := s.scanOne(s.DB.QueryRow(ctx, reservationSelect+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Reservation{}, fmt.Errorf("reservation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Reservation{}, storeErr(ctx, err)
	}
	return r, nil
}

func (s *PGStore) ListUserReservations(ctx context.Context, userID string) ([]Reservation, error) {
	return s.listReservations(ctx, `WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (s *PGStore) ListAgencyReservations(ctx context.Context, agencyID string) ([]Reservation, error) {
	return s.listReservations(ctx, `WHERE agency_id=$1 ORDER BY created_at DESC`, agencyID)
}

func (s *PGStore) MarkPaid(ctx context.Context, reservationID, method string) (Reservation, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE reservations SET is_paid=true, payment_method=$2 WHERE id=$1`,
		reservationID, method)
	if err != nil {
		return Reservation{}, storeErr(ctx, err)
	}
	if ct.RowsAffected() != 1 {
		return Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
	}
	return s.GetReservation(ctx, reservationID)
}

const reservationSelect = `
	SELECT id, property_id, agency_id, user_id, guests,
	       check_in, check_out, total_cents, status, is_paid, payment_method, created_at
	FROM reservations`

func (s *PGStore) scanOne(row pgx.Row) (Reservation, error) {
	var r Reservation
	var status string
	err := row.Scan(&r.ID, &r.PropertyID, &r.AgencyID, &r.UserID, &r.Guests,
		&r.Interval.CheckIn, &r.Interval.CheckOut, &r.TotalCents, &status,
		&r.IsPaid, &r.PaymentMethod, &r.CreatedAt)
	if err != nil {
		return Reservation{}, err
	}
	r.Status = Status(status)
	return r, nil
}

func (s *PGStore) listReservations(ctx context.Context, tail string, args ...any) ([]Reservation, error) {
	rows, err := s.DB.Query(ctx, reservationSelect+` `+tail, args...)
	if err != nil {
		return nil, storeErr(ctx, err)
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		r, err := s.scanOne(rows)
		if err != nil {
			return nil, storeErr(ctx, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// storeErr keeps the Timeout/StoreUnavailable distinction: an expired caller
// deadline means the outcome is unknown, anything else is infrastructure.
func storeErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
