package persistence

import (
	"strings"
)

// Sort parameters come straight from query strings and end up interpolated
// into ORDER BY clauses, so both are checked against closed sets. Anything
// unrecognized silently falls back to the default.

// ValidateSortOrder normalizes the direction to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField accepts only whitelisted column names
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// StockRecordSortFields contains allowed sort fields for stock records
var StockRecordSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"product_id":        true,
	"variant_id":        true,
	"location_id":       true,
	"quantity_on_hand":  true,
	"quantity_reserved": true,
	"reorder_point":     true,
	"average_cost":      true,
	"last_movement_at":  true,
}

// MovementSortFields contains allowed sort fields for movement entries
var MovementSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"performed_at":   true,
	"movement_type":  true,
	"reference_type": true,
	"reference_id":   true,
}

// TransactionSortFields contains allowed sort fields for inventory transactions
var TransactionSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"transaction_number": true,
	"transaction_type":   true,
	"status":             true,
	"committed_at":       true,
}

// TransferSortFields contains allowed sort fields for stock transfers
var TransferSortFields = map[string]bool{
	"id":                      true,
	"created_at":              true,
	"updated_at":              true,
	"transfer_number":         true,
	"status":                  true,
	"source_location_id":      true,
	"destination_location_id": true,
	"shipped_at":              true,
	"received_at":             true,
}
