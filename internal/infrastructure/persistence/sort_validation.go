package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// orderClause builds a whitelisted ORDER BY clause
func orderClause(orderBy, orderDir string, allowedFields map[string]bool, defaultField string) string {
	return ValidateSortField(orderBy, allowedFields, defaultField) + " " + ValidateSortOrder(orderDir)
}

// PartySortFields contains allowed sort fields for parties
var PartySortFields = map[string]bool{
	"created_at":          true,
	"updated_at":          true,
	"name":                true,
	"balance":             true,
	"last_transaction_at": true,
}

// DocumentSortFields contains allowed sort fields for financial documents
var DocumentSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"amount":     true,
	"kind":       true,
	"status":     true,
}
