package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dbogdan/libreria-api/internal/domain"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateBook(ctx context.Context, book domain.Book) error {
	const stmt = `
INSERT INTO books (external_id, title, author_names, price, stock_quantity, available_quantity)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, stmt,
		book.ExternalID,
		book.Title,
		book.AuthorNames,
		book.Price,
		book.StockQuantity,
		book.AvailableQuantity,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBookExists
		}
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListBooks(ctx context.Context) ([]domain.Book, error) {
	const query = `
SELECT external_id, title, author_names, price, stock_quantity, available_quantity
FROM books
ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ExternalID, &b.Title, &b.AuthorNames, &b.Price, &b.StockQuantity, &b.AvailableQuantity); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate books: %w", rows.Err())
	}
	return books, nil
}

func (r *AdminRepository) CreateUser(ctx context.Context, user domain.User) error {
	const stmt = `INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, stmt, user.ID, user.Name, user.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT id, name, email FROM users ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate users: %w", rows.Err())
	}
	return users, nil
}
