package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stokkas/stokkas/internal/platform/httpx"
	"github.com/stokkas/stokkas/internal/shared"
)

// RepositoryPort abstracts persistence for the catalog service.
type RepositoryPort interface {
	ListItems(ctx context.Context, filter ListFilter) ([]Item, int, error)
	GetItem(ctx context.Context, id int64) (Item, error)
	InsertItems(ctx context.Context, items []NewItem) (int64, error)
	UpdateItem(ctx context.Context, id int64, input UpdateInput) (Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

// Service implements catalog use-cases.
type Service struct {
	repo RepositoryPort
	lang language.Tag
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, lang: language.Indonesian}
}

// DraftItem is one row of a bulk insert request before normalisation.
type DraftItem struct {
	Name  string
	Unit  string
	Price string
}

// ListItems returns a page of items.
func (s *Service) ListItems(ctx context.Context, filter ListFilter) (ListResult, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	items, total, err := s.repo.ListItems(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}
	perPage := filter.Page.Limit
	if perPage <= 0 {
		perPage = total
	}
	return ListResult{Items: items, Pagination: shared.NewPagination(filter.Page.Page, perPage, total)}, nil
}

// GetItem fetches one item.
func (s *Service) GetItem(ctx context.Context, id int64) (Item, error) {
	return s.repo.GetItem(ctx, id)
}

// AddItems title-cases names and units, parses prices and inserts the rows
// with zero stock. Names that already exist are skipped.
func (s *Service) AddItems(ctx context.Context, drafts []DraftItem) (int64, error) {
	if len(drafts) == 0 {
		return 0, fmt.Errorf("%w: data must be a non-empty array", httpx.ErrValidation)
	}
	items := make([]NewItem, 0, len(drafts))
	seen := make(map[string]struct{}, len(drafts))
	for i, d := range drafts {
		name := s.Capitalize(d.Name)
		if name == "" {
			return 0, fmt.Errorf("%w: data[%d].name is required", httpx.ErrValidation, i)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		items = append(items, NewItem{Name: name, Unit: s.Capitalize(d.Unit), Price: ParsePrice(d.Price)})
	}
	return s.repo.InsertItems(ctx, items)
}

// UpdateItem edits name, unit and price of an item.
func (s *Service) UpdateItem(ctx context.Context, id int64, name, unit string, price decimal.Decimal) (Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	if price.IsNegative() {
		return Item{}, fmt.Errorf("%w: harga must not be negative", httpx.ErrValidation)
	}
	return s.repo.UpdateItem(ctx, id, UpdateInput{Name: name, Unit: strings.TrimSpace(unit), Price: price})
}

// DeleteItem removes an item.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.repo.DeleteItem(ctx, id)
}

// Capitalize lower-cases str and upper-cases the first letter of every word.
// A Caser keeps state, so one is built per call.
func (s *Service) Capitalize(str string) string {
	return cases.Title(s.lang).String(strings.ToLower(strings.TrimSpace(str)))
}
