package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dbogdan/libreria-api/internal/app"
	"github.com/dbogdan/libreria-api/internal/domain"
)

// AdminBookService is the minimal interface needed for admin book endpoints.
type AdminBookService interface {
	RegisterBook(ctx context.Context, in app.RegisterBookInput) (domain.Book, error)
	ListBooks(ctx context.Context) ([]domain.Book, error)
}

// AdminUserService is the minimal interface needed for admin user endpoints.
type AdminUserService interface {
	RegisterUser(ctx context.Context, in app.RegisterUserInput) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// HandleAdminBooks returns an HTTP handler for book registration/listing.
func HandleAdminBooks(svc AdminBookService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			books, err := svc.ListBooks(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]bookResponse, 0, len(books))
			for _, book := range books {
				resp = append(resp, bookFromDomain(book))
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req registerBookRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			price, err := decimal.NewFromString(req.Price)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidPrice, domain.ErrInvalidPrice.Error())
				return
			}

			book, err := svc.RegisterBook(r.Context(), app.RegisterBookInput{
				ExternalID:  req.ExternalID,
				Title:       req.Title,
				AuthorNames: req.AuthorNames,
				Price:       price,
				Stock:       req.Stock,
			})
			if err != nil {
				switch err {
				case domain.ErrInvalidExternalID:
					writeError(w, http.StatusBadRequest, codeInvalidExternalID, err.Error())
				case domain.ErrBookTitleRequired:
					writeError(w, http.StatusBadRequest, codeBookTitleRequired, err.Error())
				case domain.ErrInvalidPrice:
					writeError(w, http.StatusBadRequest, codeInvalidPrice, err.Error())
				case domain.ErrInvalidStock:
					writeError(w, http.StatusBadRequest, codeInvalidStock, err.Error())
				case domain.ErrBookExists:
					writeError(w, http.StatusConflict, codeBookExists, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			writeJSON(w, http.StatusCreated, bookFromDomain(book))
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAdminUsers returns an HTTP handler for user registration/listing.
func HandleAdminUsers(svc AdminUserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			users, err := svc.ListUsers(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				return
			}
			resp := make([]userResponse, 0, len(users))
			for _, user := range users {
				resp = append(resp, userResponse{
					ID:    user.ID.String(),
					Name:  user.Name,
					Email: user.Email,
				})
			}
			writeJSON(w, http.StatusOK, resp)
		case http.MethodPost:
			var req registerUserRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			user, err := svc.RegisterUser(r.Context(), app.RegisterUserInput{
				Name:  req.Name,
				Email: req.Email,
			})
			if err != nil {
				switch err {
				case domain.ErrUserNameRequired:
					writeError(w, http.StatusBadRequest, codeUserNameRequired, err.Error())
				case domain.ErrUserEmailRequired:
					writeError(w, http.StatusBadRequest, codeUserEmailRequired, err.Error())
				case domain.ErrUserExists:
					writeError(w, http.StatusConflict, codeUserExists, err.Error())
				default:
					writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
				}
				return
			}

			writeJSON(w, http.StatusCreated, userResponse{
				ID:    user.ID.String(),
				Name:  user.Name,
				Email: user.Email,
			})
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

type registerBookRequest struct {
	ExternalID  int64    `json:"external_id"`
	Title       string   `json:"title"`
	AuthorNames []string `json:"author_names"`
	Price       string   `json:"price"`
	Stock       int      `json:"stock"`
}

type bookResponse struct {
	ExternalID        int64    `json:"external_id"`
	Title             string   `json:"title"`
	AuthorNames       []string `json:"author_names"`
	Price             string   `json:"price"`
	StockQuantity     int      `json:"stock_quantity"`
	AvailableQuantity int      `json:"available_quantity"`
}

func bookFromDomain(book domain.Book) bookResponse {
	return bookResponse{
		ExternalID:        book.ExternalID,
		Title:             book.Title,
		AuthorNames:       book.AuthorNames,
		Price:             book.Price.StringFixed(2),
		StockQuantity:     book.StockQuantity,
		AvailableQuantity: book.AvailableQuantity,
	}
}

type registerUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
