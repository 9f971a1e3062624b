package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dbogdan/libreria-api/internal/domain"
)

type AdminRepository interface {
	CreateBook(ctx context.Context, book domain.Book) error
	ListBooks(ctx context.Context) ([]domain.Book, error)
	CreateUser(ctx context.Context, user domain.User) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// AdminService registers catalog books and directory users. The reservation
// engine only reads them.
type AdminService struct {
	repo AdminRepository
}

func NewAdminService(repo AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

type RegisterBookInput struct {
	ExternalID  int64
	Title       string
	AuthorNames []string
	Price       decimal.Decimal
	Stock       int
}

func (s *AdminService) RegisterBook(ctx context.Context, in RegisterBookInput) (domain.Book, error) {
	if in.ExternalID <= 0 {
		return domain.Book{}, domain.ErrInvalidExternalID
	}
	if in.Title == "" {
		return domain.Book{}, domain.ErrBookTitleRequired
	}
	if in.Price.IsNegative() {
		return domain.Book{}, domain.ErrInvalidPrice
	}
	if in.Stock <= 0 {
		return domain.Book{}, domain.ErrInvalidStock
	}

	book := domain.Book{
		ExternalID:        in.ExternalID,
		Title:             in.Title,
		AuthorNames:       in.AuthorNames,
		Price:             in.Price,
		StockQuantity:     in.Stock,
		AvailableQuantity: in.Stock,
	}

	if err := s.repo.CreateBook(ctx, book); err != nil {
		return domain.Book{}, err
	}
	return book, nil
}

func (s *AdminService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return s.repo.ListBooks(ctx)
}

type RegisterUserInput struct {
	Name  string
	Email string
}

func (s *AdminService) RegisterUser(ctx context.Context, in RegisterUserInput) (domain.User, error) {
	if in.Name == "" {
		return domain.User{}, domain.ErrUserNameRequired
	}
	if in.Email == "" {
		return domain.User{}, domain.ErrUserEmailRequired
	}

	user := domain.User{
		ID:    uuid.New(),
		Name:  in.Name,
		Email: in.Email,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}
