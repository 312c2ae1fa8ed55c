package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// seedTable describes the rows a table starts with on a fresh database.
type seedTable struct {
	table  string
	insert string
	rows   [][]any
}

// seedEpoch is the created/onboarded timestamp of the starter records.
var seedEpoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)

var seeds = []seedTable{
	{
		table:  "clients",
		insert: "INSERT INTO clients (id, company_name, contact_name, email, phone, project, onboarded_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rows: [][]any{
			{"acme", "Acme Corp", "John Doe", "john@acme.com", "+1 (555) 123-4567", `{"name":"Website Redesign"}`, seedEpoch},
			{"techstart", "TechStart Inc", "", "", "", `{"name":"Mobile App Development"}`, seedEpoch},
			{"global", "Global Solutions", "", "", "", `{"name":"Brand Identity Package"}`, seedEpoch},
		},
	},
	{
		table:  "invoices",
		insert: "INSERT INTO invoices (id, client, amount, issue_date, due_date, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rows: [][]any{
			{"INV-001", "Acme Corp", "2450.00", "2023-12-15", "2024-01-15", "paid", seedEpoch},
			{"INV-002", "TechStart Inc", "5200.00", "2023-12-20", "2024-01-20", "pending", seedEpoch},
			{"INV-003", "Global Solutions", "1800.00", "2023-12-10", "2024-01-10", "overdue", seedEpoch},
			{"INV-004", "Innovate LLC", "3650.00", "2023-12-25", "2024-01-25", "draft", seedEpoch},
			{"INV-005", "NextGen Corp", "4200.00", "2023-12-18", "2024-01-18", "paid", seedEpoch},
			{"INV-006", "Startup XYZ", "2900.00", "2023-12-22", "2024-01-22", "pending", seedEpoch},
		},
	},
	{
		table:  "proposals",
		insert: "INSERT INTO proposals (id, title, client, value, created_date, status) VALUES (?, ?, ?, ?, ?, ?)",
		rows: [][]any{
			{"PROP-001", "Website Redesign Project", "Acme Corp", "15000.00", "2024-01-10", "approved"},
			{"PROP-002", "Mobile App Development", "TechStart Inc", "45000.00", "2024-01-12", "pending"},
			{"PROP-003", "Brand Identity Package", "Global Solutions", "8500.00", "2024-01-08", "draft"},
			{"PROP-004", "E-commerce Platform", "Innovate LLC", "32000.00", "2024-01-05", "rejected"},
		},
	},
	{
		table:  "revenue",
		insert: "INSERT INTO revenue (position, month, revenue) VALUES (?, ?, ?)",
		rows: [][]any{
			{1, "Jan", "12400"},
			{2, "Feb", "14500"},
			{3, "Mar", "18200"},
			{4, "Apr", "21000"},
			{5, "May", "25400"},
			{6, "Jun", "32100"},
		},
	},
	{
		table:  "actions",
		insert: "INSERT INTO actions (type, client, action, time_label) VALUES (?, ?, ?, ?)",
		rows: [][]any{
			{"proposal", "New Client Co", "Review proposal", "2 hours ago"},
			{"invoice", "Acme Corp", "Send follow-up", "5 hours ago"},
			{"onboarding", "StartupXYZ", "Complete onboarding", "1 day ago"},
		},
	},
}

// Seed fills every empty table with the starter records in one transaction.
// Tables that already hold rows are left alone.
func Seed(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, seed := range seeds {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+seed.table).Scan(&count); err != nil {
			return fmt.Errorf("count %s: %w", seed.table, err)
		}
		if count > 0 {
			continue
		}
		for _, row := range seed.rows {
			if _, err := tx.ExecContext(ctx, seed.insert, row...); err != nil {
				return fmt.Errorf("seed %s: %w", seed.table, err)
			}
		}
	}
	return tx.Commit()
}

// OpenSeeded opens the database, ensures the schema and seeds empty tables.
func OpenSeeded(ctx context.Context, path string) (*sql.DB, error) {
	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if err := Seed(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
