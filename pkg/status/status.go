package status

import "strings"

// Status is the lifecycle marker shared by invoices and proposals.
type Status string

const (
	Draft    Status = "draft"
	Pending  Status = "pending"
	Paid     Status = "paid"
	Overdue  Status = "overdue"
	Approved Status = "approved"
	Rejected Status = "rejected"
)

var labels = map[Status]string{
	Draft:    "Draft",
	Pending:  "Pending",
	Paid:     "Paid",
	Overdue:  "Overdue",
	Approved: "Approved",
	Rejected: "Rejected",
}

// Label returns the badge text shown next to a document.
func (s Status) Label() string {
	if label, ok := labels[s]; ok {
		return label
	}
	return "Unknown"
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := labels[s]
	return ok
}

// Parse normalizes user input; ok is false for anything unknown.
func Parse(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}
