package proposal

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"bizflow/pkg/status"
)

// Proposal is a priced offer sent to a client for approval.
type Proposal struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Client      string          `json:"client"`
	Value       decimal.Decimal `json:"value"`
	CreatedDate string          `json:"created_date"`
	Status      status.Status   `json:"status"`
}

// Matches reports whether query appears in the title, client or id, ignoring case.
func (p Proposal) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Client), q) ||
		strings.Contains(strings.ToLower(p.ID), q)
}

// Repository reads proposals through database/sql.
type Repository struct {
	db *sql.DB
}

// NewRepository wires the database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns every proposal ordered by id.
func (r *Repository) List(ctx context.Context) ([]Proposal, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, title, client, value, created_date, status FROM proposals ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []Proposal
	for rows.Next() {
		var (
			p         Proposal
			statusRaw string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Client, &p.Value, &p.CreatedDate, &statusRaw); err != nil {
			return nil, err
		}
		p.Status = status.Status(statusRaw)
		proposals = append(proposals, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return proposals, nil
}

// Service is read only, so it queries the repository directly.
type Service struct {
	repo *Repository
}

// NewService wraps the repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List returns the proposals matching query, in id order.
func (s *Service) List(ctx context.Context, query string) ([]Proposal, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Proposal, 0, len(all))
	for _, p := range all {
		if p.Matches(query) {
			out = append(out, p)
		}
	}
	return out, nil
}
