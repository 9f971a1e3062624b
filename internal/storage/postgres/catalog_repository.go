package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dbogdan/libreria-api/internal/domain"
)

// CatalogRepository is the postgres-backed book catalog. Availability is a
// counter on the books row; ReserveCopy and ReleaseCopy adjust it with a
// single guarded UPDATE each.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) GetByExternalID(ctx context.Context, externalID int64) (domain.Book, error) {
	const query = `
SELECT external_id, title, author_names, price, stock_quantity, available_quantity
FROM books
WHERE external_id = $1`

	var b domain.Book
	err := r.queryRow(ctx, query, externalID).
		Scan(&b.ExternalID, &b.Title, &b.AuthorNames, &b.Price, &b.StockQuantity, &b.AvailableQuantity)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Book{}, domain.ErrBookNotFound
		}
		return domain.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// ReserveCopy takes one copy with a compare-and-decrement: the availability
// guard and the decrement are one statement, so concurrent reservations can
// never both take the last copy.
func (r *CatalogRepository) ReserveCopy(ctx context.Context, externalID int64) error {
	const stmt = `
UPDATE books
SET available_quantity = available_quantity - 1
WHERE external_id = $1 AND available_quantity > 0`

	tag, err := r.exec(ctx, stmt, externalID)
	if err != nil {
		return fmt.Errorf("reserve copy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoCopiesAvailable
	}
	return nil
}

func (r *CatalogRepository) ReleaseCopy(ctx context.Context, externalID int64) error {
	const stmt = `
UPDATE books
SET available_quantity = available_quantity + 1
WHERE external_id = $1 AND available_quantity < stock_quantity`

	tag, err := r.exec(ctx, stmt, externalID)
	if err != nil {
		return fmt.Errorf("release copy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Unknown book, or already at full stock: either way there is no
		// reserved copy to give back.
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *CatalogRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CatalogRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
