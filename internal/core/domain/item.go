package domain

import (
	"strconv"
	"time"
)

// Collection keys. Every logical table is one whole JSON array stored under
// one of these names in the backend.
const (
	CollectionItems    = "items"
	CollectionOutbound = "outbound"
	CollectionReturn   = "return"
	CollectionBorrow   = "borrow"
	CollectionOpLogs   = "operation_logs"
	CollectionBackups  = "backups"
)

// Item field names shared by the service, migration, and tests.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldCategory   = "category"
	FieldQuantity   = "quantity"
	FieldUnit       = "unit"
	FieldPrice      = "price"
	FieldDate       = "date"
	FieldOperator   = "operator"
	FieldTotalValue = "totalValue"
	FieldCreatedAt  = "createdAt"
	FieldUpdatedAt  = "updatedAt"
)

// Defaults applied on item creation when the caller omits the field.
const (
	DefaultUnit     = "unit"
	DefaultOperator = "system"
)

// LowStockThreshold marks items running out: quantity strictly below this
// shows up in the stats low-stock list.
const LowStockThreshold = 5

// ItemRequiredFields must be present on create. Quantity may be zero but not
// absent.
var ItemRequiredFields = []string{FieldName, FieldCategory, FieldQuantity}

// TotalValue is the derived field invariant: quantity times unit price at
// the moment of the last write.
func TotalValue(quantity int, price float64) float64 {
	return float64(quantity) * price
}

// TimeID renders the millisecond-timestamp id assigned to created records.
func TimeID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// CategoryStat aggregates one category for the stats report.
type CategoryStat struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// Stats is the aggregate view over the whole items collection.
type Stats struct {
	TotalItems int                     `json:"totalItems"`
	TotalValue float64                 `json:"totalValue"`
	Categories map[string]CategoryStat `json:"categories"`
	LowStock   []Record                `json:"lowStock"`
}

// NewOperationLog builds an append-only audit entry. The id is time-based
// like every other id in the system.
func NewOperationLog(operation, details, operator string, now time.Time) Record {
	if operator == "" {
		operator = DefaultOperator
	}
	return Record{
		FieldID:       TimeID(now),
		"timestamp":   now.Format(time.RFC3339),
		"operation":   operation,
		"details":     details,
		FieldOperator: operator,
	}
}
