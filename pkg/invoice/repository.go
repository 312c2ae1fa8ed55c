package invoice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bizflow/pkg/status"
)

// numberPrefix starts every generated invoice number.
const numberPrefix = "INV-"

// Repository persists invoices through database/sql so the service stays storage-agnostic.
type Repository struct {
	db *sql.DB
}

// NewRepository wires the database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectInvoice = "SELECT id, client, amount, issue_date, due_date, status, items, notes, created_at FROM invoices"

// Insert stores a new invoice; line items are kept as a JSON column.
func (r *Repository) Insert(ctx context.Context, inv Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return err
	}
	query := "INSERT INTO invoices (id, client, amount, issue_date, due_date, status, items, notes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err = r.db.ExecContext(ctx, query,
		inv.ID, inv.Client, inv.Amount.StringFixed(2), inv.IssueDate, inv.DueDate,
		string(inv.Status), string(items), inv.Notes, inv.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// List returns every invoice ordered by number.
func (r *Repository) List(ctx context.Context) ([]Invoice, error) {
	rows, err := r.db.QueryContext(ctx, selectInvoice+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invoices, nil
}

// Get loads a single invoice.
func (r *Repository) Get(ctx context.Context, id string) (Invoice, error) {
	row := r.db.QueryRowContext(ctx, selectInvoice+" WHERE id = ?", id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Invoice{}, ErrNotFound
	}
	return inv, err
}

// UpdateStatus moves an invoice to a new status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, s status.Status) error {
	result, err := r.db.ExecContext(ctx, "UPDATE invoices SET status = ? WHERE id = ?", string(s), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// NextNumber returns the number following the highest INV-nnn already stored.
func (r *Repository) NextNumber(ctx context.Context) (string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM invoices WHERE id LIKE ?", numberPrefix+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	highest := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, numberPrefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", numberPrefix, highest+1), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row scanner) (Invoice, error) {
	var (
		inv       Invoice
		statusRaw string
		itemsData string
		created   string
	)
	if err := row.Scan(&inv.ID, &inv.Client, &inv.Amount, &inv.IssueDate, &inv.DueDate, &statusRaw, &itemsData, &inv.Notes, &created); err != nil {
		return Invoice{}, err
	}
	inv.Status = status.Status(statusRaw)
	if itemsData != "" {
		if err := json.Unmarshal([]byte(itemsData), &inv.Items); err != nil {
			return Invoice{}, fmt.Errorf("decode items of %s: %w", inv.ID, err)
		}
	}
	if created != "" {
		ts, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return Invoice{}, fmt.Errorf("decode created_at of %s: %w", inv.ID, err)
		}
		inv.CreatedAt = ts
	}
	return inv, nil
}
