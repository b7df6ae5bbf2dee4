// Package company resolves company names and links founders to companies.
package company

import "time"

// DefaultRole is the role recorded when an import row carries no role hint.
const DefaultRole = "Founder"

// Company is a known company that founders can be linked to.
type Company struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Domain    string    `json:"domain,omitempty" db:"domain"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Link associates a founder with a company.
type Link struct {
	FounderID string `json:"founder_id" db:"founder_id"`
	CompanyID string `json:"company_id" db:"company_id"`
	Role      string `json:"role" db:"role"`
	IsPrimary bool   `json:"is_primary" db:"is_primary"`
}
