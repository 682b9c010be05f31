package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/TayyabaHussain58/InventoryApp/internal/auth"
)

// Service implements the account and stock rules on top of a Store.
type Service struct {
	store  *Store
	hasher *auth.PasswordHasher
}

func NewService(store *Store, hasher *auth.PasswordHasher) *Service {
	return &Service{store: store, hasher: hasher}
}

func (s *Service) Store() *Store { return s.store }

// SignupInput carries the signup form. ConfirmPassword is checked only when
// non-empty, so API clients may omit it.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// Signup registers a user. Checks run in the order the signup page reports
// them: password confirmation, required fields, then email uniqueness.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return nil, ErrPasswordMismatch
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return s.store.CreateUser(ctx, in.Email, in.Name, hash)
}

// Authenticate returns the user owning email when password matches.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.VerifyPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureUser creates the account unless the email is already registered.
// It reports whether a user was created.
func (s *Service) EnsureUser(ctx context.Context, name, email, password string) (bool, error) {
	_, err := s.Signup(ctx, SignupInput{Name: name, Email: email, Password: password})
	if errors.Is(err, ErrDuplicateEmail) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) AddProduct(ctx context.Context, in ProductInput) (*Product, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.store.CreateProduct(ctx, in)
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.store.ListProducts(ctx)
}

// LowStock returns the products below LowStockThreshold.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	low := []Product{}
	for _, p := range products {
		if p.LowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}

// ProductsByCategory groups products by category.
func (s *Service) ProductsByCategory(ctx context.Context) (map[Category][]Product, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[Category][]Product)
	for _, p := range products {
		grouped[p.Category] = append(grouped[p.Category], p)
	}
	return grouped, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(products), nil
}

func (s *Service) UpdateStock(ctx context.Context, id string, quantity int) (*Product, error) {
	return s.store.UpdateStock(ctx, id, quantity)
}

func (s *Service) RecordMovement(ctx context.Context, productID string, kind TransactionType, quantity int) (*Transaction, error) {
	return s.store.RecordMovement(ctx, productID, kind, quantity)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

func (s *Service) Transactions(ctx context.Context) ([]Transaction, error) {
	return s.store.ListTransactions(ctx)
}

func (s *Service) User(ctx context.Context, id string) (*User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *Service) CreateProcess(ctx context.Context, userID string, in ProcessInput) (*TransactionProcess, error) {
	return s.store.CreateProcess(ctx, userID, in)
}

func (s *Service) Process(ctx context.Context, id string) (*TransactionProcess, error) {
	return s.store.GetProcess(ctx, id)
}

func (s *Service) Processes(ctx context.Context) ([]TransactionProcess, error) {
	return s.store.ListProcesses(ctx)
}

func (s *Service) UpdateProcess(ctx context.Context, id string, upd ProcessUpdate) (*TransactionProcess, error) {
	return s.store.UpdateProcess(ctx, id, upd)
}

func (s *Service) DeleteProcess(ctx context.Context, id string) error {
	return s.store.DeleteProcess(ctx, id)
}
