package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository persists clients through database/sql.
type Repository struct {
	db *sql.DB
}

// NewRepository wires the database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts a client; the project is stored as a JSON column.
func (r *Repository) Save(ctx context.Context, c Client) error {
	project, err := json.Marshal(c.Project)
	if err != nil {
		return err
	}
	query := "INSERT INTO clients (id, company_name, contact_name, email, phone, project, onboarded_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	_, err = r.db.ExecContext(ctx, query, c.ID, c.CompanyName, c.ContactName, c.Email, c.Phone, string(project), c.OnboardedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// List returns every client ordered by company name.
func (r *Repository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, company_name, contact_name, email, phone, project, onboarded_at FROM clients ORDER BY company_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var (
			c           Client
			projectData string
			onboarded   string
		)
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.Email, &c.Phone, &projectData, &onboarded); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(projectData), &c.Project); err != nil {
			return nil, fmt.Errorf("decode project of %s: %w", c.ID, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, onboarded)
		if err != nil {
			return nil, fmt.Errorf("decode onboarded_at of %s: %w", c.ID, err)
		}
		c.OnboardedAt = ts
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return clients, nil
}
