package client

import "time"

// Project summarizes the engagement agreed during onboarding.
type Project struct {
	Name     string `json:"name"`
	Scope    string `json:"scope,omitempty"`
	Budget   string `json:"budget,omitempty"`
	Timeline string `json:"timeline,omitempty"`
}

// Client is a company the business works for.
type Client struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	ContactName string    `json:"contact_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Project     Project   `json:"project"`
	OnboardedAt time.Time `json:"onboarded_at"`
}
