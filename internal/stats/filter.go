// Package stats derives views over the order collection: payment-tab
// partitioning, status and table filters, time-range bucketing and
// revenue statistics. Everything here is a pure function of its input.
package stats

import (
	"strings"

	"github.com/BrayanMorningstar237/waiter-sync/internal/orders"
)

// PaymentTab is the unpaid/paid grouping shown to restaurant staff.
type PaymentTab string

const (
	TabUnpaid PaymentTab = "unpaid"
	TabPaid   PaymentTab = "paid"
)

// StatusAll disables the status filter.
const StatusAll = "all"

// FilterSpec selects a subset of the order snapshot.
type FilterSpec struct {
	Tab        PaymentTab
	Status     string // StatusAll or one order status
	TableQuery string // case-insensitive substring of the table number
}

// InTab reports whether the order belongs to the given payment tab.
// Refunded orders belong to neither tab.
func InTab(o orders.Order, tab PaymentTab) bool {
	switch tab {
	case TabUnpaid:
		return o.PaymentStatus == orders.PaymentPending
	case TabPaid:
		return o.PaymentStatus == orders.PaymentPaid
	}
	return false
}

// Matches reports whether the order satisfies every clause of the spec.
func Matches(o orders.Order, spec FilterSpec) bool {
	if !InTab(o, spec.Tab) {
		return false
	}
	if spec.Status != "" && spec.Status != StatusAll && o.Status != spec.Status {
		return false
	}
	if q := strings.TrimSpace(spec.TableQuery); q != "" {
		// Orders without a table never match a non-empty query.
		if o.TableNumber == "" {
			return false
		}
		if !strings.Contains(strings.ToLower(o.TableNumber), strings.ToLower(q)) {
			return false
		}
	}
	return true
}

// Filter returns the orders matching the spec, preserving input order.
func Filter(in []orders.Order, spec FilterSpec) []orders.Order {
	out := make([]orders.Order, 0, len(in))
	for _, o := range in {
		if Matches(o, spec) {
			out = append(out, o)
		}
	}
	return out
}
