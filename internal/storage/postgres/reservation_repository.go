package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dbogdan/libreria-api/internal/domain"
)

const reservationColumns = `id, user_id, book_external_id, rental_days, start_date,
expected_return_date, actual_return_date, daily_rate, total_fee, late_fee, status, created_at`

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ReservationRepository) Create(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, user_id, book_external_id, rental_days, start_date,
	expected_return_date, actual_return_date, daily_rate, total_fee, late_fee, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.exec(ctx, stmt,
		res.ID,
		res.UserID,
		res.BookExternalID,
		res.RentalDays,
		res.StartDate,
		res.ExpectedReturnDate,
		res.ActualReturnDate,
		res.DailyRate,
		res.TotalFee,
		res.LateFee,
		res.Status,
		res.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			if constraintName(err) == "reservations_book_external_id_fkey" {
				return domain.ErrBookNotFound
			}
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res domain.Reservation) error {
	const stmt = `
UPDATE reservations
SET actual_return_date = $2, total_fee = $3, late_fee = $4, status = $5
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, res.ID, res.ActualReturnDate, res.TotalFee, res.LateFee, res.Status)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.queryRow(ctx, query, id))
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return r.scanOne(r.queryRow(ctx, query, id))
}

func (r *ReservationRepository) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY created_at ASC`
	return r.list(ctx, query)
}

func (r *ReservationRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, userID)
}

func (r *ReservationRepository) FindByStatus(ctx context.Context, status domain.ReservationStatus) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE status = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, status)
}

// FindOverdue lists active reservations due strictly before asOf. Lateness is
// derived from the stored dates; the rows keep their active status.
func (r *ReservationRepository) FindOverdue(ctx context.Context, asOf time.Time) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + `
FROM reservations
WHERE status = 'active' AND expected_return_date < $1
ORDER BY expected_return_date ASC`
	return r.list(ctx, query, asOf)
}

func (r *ReservationRepository) CountActiveByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM reservations WHERE user_id = $1 AND status = 'active'`

	var count int
	if err := r.queryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active reservations: %w", err)
	}
	return count, nil
}

func (r *ReservationRepository) ExistsActiveForBook(ctx context.Context, bookExternalID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM reservations WHERE book_external_id = $1 AND status = 'active')`

	var exists bool
	if err := r.queryRow(ctx, query, bookExternalID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active reservation: %w", err)
	}
	return exists, nil
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate reservations: %w", rows.Err())
	}
	return reservations, nil
}

func (r *ReservationRepository) scanOne(row pgx.Row) (domain.Reservation, error) {
	res, err := scanReservation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return res, nil
}

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var res domain.Reservation
	var status string
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.BookExternalID,
		&res.RentalDays,
		&res.StartDate,
		&res.ExpectedReturnDate,
		&res.ActualReturnDate,
		&res.DailyRate,
		&res.TotalFee,
		&res.LateFee,
		&status,
		&res.CreatedAt,
	)
	if err != nil {
		return domain.Reservation{}, err
	}
	res.Status = domain.ReservationStatus(status)
	return res, nil
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
