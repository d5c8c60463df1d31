package services

import (
	"strings"
	"time"

	"github.com/nkozdemir/fakestore-backend/models"
)

// Accepted layouts for cart dates. Only the date component is retained.
var cartDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
}

// ParseCartDate parses an ISO-8601 date or date-time string and truncates it
// to date-only granularity.
func ParseCartDate(raw string) (time.Time, *ServiceError) {
	raw = strings.TrimSpace(raw)
	for _, layout := range cartDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, NewValidationError("Date must be an ISO-8601 date or date-time", map[string]interface{}{
		"date": raw,
	})
}

// ApplyCartPatch computes the line items resulting from applying a patch
// batch to a snapshot of the cart's current items. It is pure: it never
// touches persistence and leaves the input slice untouched.
//
// Phases run in a fixed order, add then update then remove, regardless of
// how the payload arranges them; within a phase operations apply in input
// order. The batch is atomic: the first invalid operation aborts the whole
// computation and nothing is returned for persisting.
//
// The second return value is the parsed new cart date, nil when the batch
// carries none.
func ApplyCartPatch(current []models.CartItem, batch *models.CartPatchRequest) ([]models.CartItem, *time.Time, *ServiceError) {
	var newDate *time.Time
	if batch.Date != "" {
		parsed, svcErr := ParseCartDate(batch.Date)
		if svcErr != nil {
			return nil, nil, svcErr
		}
		newDate = &parsed
	}

	quantities := make(map[int]int, len(current))
	order := make([]int, 0, len(current))
	for _, item := range current {
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] = item.Quantity
	}

	for _, op := range batch.Add {
		if svcErr := validateItemOp(op); svcErr != nil {
			return nil, nil, svcErr
		}
		if _, exists := quantities[op.ProductID]; !exists {
			order = append(order, op.ProductID)
		}
		quantities[op.ProductID] += op.Quantity
	}

	for _, op := range batch.Update {
		if svcErr := validateItemOp(op); svcErr != nil {
			return nil, nil, svcErr
		}
		if _, exists := quantities[op.ProductID]; !exists {
			order = append(order, op.ProductID)
		}
		quantities[op.ProductID] = op.Quantity
	}

	for _, productID := range batch.Remove {
		// Removing an absent product is a no-op, not an error.
		delete(quantities, productID)
	}

	items := make([]models.CartItem, 0, len(quantities))
	for _, productID := range order {
		quantity, exists := quantities[productID]
		if !exists {
			continue
		}
		items = append(items, models.CartItem{ProductID: productID, Quantity: quantity})
	}
	return items, newDate, nil
}

// BuildCartItems validates a full item list (cart create / replace) and
// collapses duplicate product ids by summing their quantities.
func BuildCartItems(inputs []models.CartItemInput) ([]models.CartItem, *ServiceError) {
	patch := &models.CartPatchRequest{Add: inputs}
	items, _, svcErr := ApplyCartPatch(nil, patch)
	return items, svcErr
}

func validateItemOp(op models.CartItemInput) *ServiceError {
	if op.ProductID <= 0 {
		return NewValidationError("Product id must be a positive integer", map[string]interface{}{
			"productId": op.ProductID,
			"quantity":  op.Quantity,
		})
	}
	if op.Quantity <= 0 {
		return NewValidationError("Quantity must be a positive integer", map[string]interface{}{
			"productId": op.ProductID,
			"quantity":  op.Quantity,
		})
	}
	return nil
}
