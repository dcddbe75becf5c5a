package customers

import (
	"context"
	"fmt"
	"strings"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// RepositoryPort abstracts customer persistence.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]Customer, int, error)
	Get(ctx context.Context, id int64) (Customer, error)
	InsertMany(ctx context.Context, rows []NewCustomer) (int64, error)
	Update(ctx context.Context, id int64, patch Patch) (Customer, error)
	Delete(ctx context.Context, id int64) error
}

// Service implements customer use-cases.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListResult is a page of customers.
type ListResult struct {
	Customers  []Row             `json:"customers"`
	Pagination shared.Pagination `json:"pagination"`
}

// List returns customers keyed for table display.
func (s *Service) List(ctx context.Context, search string, page shared.PageRequest) (ListResult, error) {
	customers, total, err := s.repo.List(ctx, ListFilter{
		Search: strings.TrimSpace(search),
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		return ListResult{}, err
	}
	rows := make([]Row, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, Row{Key: c.Key(), Customer: c})
	}
	perPage := page.Limit
	if perPage <= 0 {
		perPage = total
	}
	return ListResult{Customers: rows, Pagination: shared.NewPagination(page.Page, perPage, total)}, nil
}

// Get returns one customer.
func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	return s.repo.Get(ctx, id)
}

// CreateMany inserts customers with zero debt. Names already present, in the
// store or earlier in the same batch, are skipped.
func (s *Service) CreateMany(ctx context.Context, input []NewCustomer) (int64, error) {
	if len(input) == 0 {
		return 0, fmt.Errorf("%w: data must be a non-empty array", httpx.ErrValidation)
	}
	rows := make([]NewCustomer, 0, len(input))
	seen := make(map[string]struct{}, len(input))
	for i, c := range input {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return 0, fmt.Errorf("%w: data[%d].name is required", httpx.ErrValidation, i)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		rows = append(rows, NewCustomer{Name: name, Field: strings.TrimSpace(c.Field)})
	}
	return s.repo.InsertMany(ctx, rows)
}

// Update edits name and field. Debt cannot be changed here.
func (s *Service) Update(ctx context.Context, id int64, patch Patch) (Customer, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Customer{}, fmt.Errorf("%w: name must not be empty", httpx.ErrValidation)
		}
		patch.Name = &name
	}
	if patch.Field != nil {
		field := strings.TrimSpace(*patch.Field)
		patch.Field = &field
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes a customer.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
