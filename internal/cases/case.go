// Package cases implements the case catalog for Custodian.
// Case records are owned by the upstream case-management system; this
// package provides read-only lookup and listing for export selection.
package cases

import (
	"time"

	"github.com/google/uuid"
)

// Case represents a legal matter that documents are collected under.
type Case struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CaseNumber string    `json:"case_number"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
