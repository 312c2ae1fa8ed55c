package dashboard

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// RevenuePoint is one month of the revenue chart.
type RevenuePoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Action is an item of the pending actions panel.
type Action struct {
	Type   string `json:"type"`
	Client string `json:"client"`
	Action string `json:"action"`
	Time   string `json:"time"`
}

// Repository reads the chart series and the action feed.
type Repository struct {
	db *sql.DB
}

// NewRepository wires the database handle.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Revenue returns the monthly series in chart order.
func (r *Repository) Revenue(ctx context.Context) ([]RevenuePoint, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT month, revenue FROM revenue ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []RevenuePoint
	for rows.Next() {
		var p RevenuePoint
		if err := rows.Scan(&p.Month, &p.Revenue); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Actions returns the pending actions, oldest entry last.
func (r *Repository) Actions(ctx context.Context) ([]Action, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT type, client, action, time_label FROM actions ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.Type, &a.Client, &a.Action, &a.Time); err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
