package stats

import (
	"testing"
	"time"

	"github.com/BrayanMorningstar237/waiter-sync/internal/orders"
)

func order(id, customer, payment string, total int64, items ...orders.OrderItem) orders.Order {
	return orders.Order{
		ID:            id,
		CustomerName:  customer,
		PaymentStatus: payment,
		Status:        orders.StatusPending,
		TotalAmount:   total,
		Items:         items,
	}
}

func TestPartitionExhaustive(t *testing.T) {
	set := []orders.Order{
		order("o1", "a", orders.PaymentPending, 100),
		order("o2", "b", orders.PaymentPaid, 200),
		order("o3", "c", orders.PaymentRefunded, 300),
		order("o4", "d", orders.PaymentPaid, 400),
	}
	unpaid := Filter(set, FilterSpec{Tab: TabUnpaid, Status: StatusAll})
	paid := Filter(set, FilterSpec{Tab: TabPaid, Status: StatusAll})

	for _, o := range set {
		inUnpaid := containsID(unpaid, o.ID)
		inPaid := containsID(paid, o.ID)
		switch o.PaymentStatus {
		case orders.PaymentPending:
			if !inUnpaid || inPaid {
				t.Errorf("%s: pending order must be exactly in the unpaid tab", o.ID)
			}
		case orders.PaymentPaid:
			if inUnpaid || !inPaid {
				t.Errorf("%s: paid order must be exactly in the paid tab", o.ID)
			}
		case orders.PaymentRefunded:
			// known gap: refunded orders appear in neither tab
			if inUnpaid || inPaid {
				t.Errorf("%s: refunded order must match neither tab", o.ID)
			}
		}
	}
}

func containsID(list []orders.Order, id string) bool {
	for _, o := range list {
		if o.ID == id {
			return true
		}
	}
	return false
}

func TestStatusAndTableFilters(t *testing.T) {
	set := []orders.Order{
		{ID: "o1", PaymentStatus: orders.PaymentPending, Status: orders.StatusPreparing, TableNumber: "Table 12"},
		{ID: "o2", PaymentStatus: orders.PaymentPending, Status: orders.StatusReady, TableNumber: "table 3"},
		{ID: "o3", PaymentStatus: orders.PaymentPending, Status: orders.StatusPreparing}, // no table
	}

	got := Filter(set, FilterSpec{Tab: TabUnpaid, Status: orders.StatusPreparing})
	if len(got) != 2 {
		t.Fatalf("status filter: expected 2, got %d", len(got))
	}

	got = Filter(set, FilterSpec{Tab: TabUnpaid, Status: StatusAll, TableQuery: "TABLE 1"})
	if len(got) != 1 || got[0].ID != "o1" {
		t.Fatalf("table query must match case-insensitively: %+v", got)
	}

	// orders without a table never match a non-empty query
	got = Filter(set, FilterSpec{Tab: TabUnpaid, Status: StatusAll, TableQuery: "3"})
	if len(got) != 1 || got[0].ID != "o2" {
		t.Fatalf("tableless order leaked into a table query: %+v", got)
	}
}

func TestComputeEmptySet(t *testing.T) {
	snap := Compute(nil)
	if snap.TotalRevenue != 0 || snap.OrderCount != 0 {
		t.Fatalf("empty set must yield zero totals: %+v", snap)
	}
	if snap.BestSeller != nil || snap.TopCustomer != nil || snap.MostExpensive != nil {
		t.Fatalf("empty set must yield absent winners, not placeholders: %+v", snap)
	}
}

func TestComputeAggregates(t *testing.T) {
	set := []orders.Order{
		order("o1", "Alice", orders.PaymentPaid, 5000,
			orders.OrderItem{Name: "Plov", Quantity: 2},
			orders.OrderItem{Name: "Tea", Quantity: 1}),
		order("o2", "Bob", orders.PaymentPaid, 9000,
			orders.OrderItem{Name: "Lagman", Quantity: 3}),
		order("o3", "Alice", orders.PaymentPaid, 6000,
			orders.OrderItem{Name: "Plov", Quantity: 2}),
		// unpaid orders contribute nothing
		order("o4", "Mallory", orders.PaymentPending, 90000,
			orders.OrderItem{Name: "Caviar", Quantity: 50}),
	}

	snap := Compute(set)
	if snap.TotalRevenue != 20000 || snap.OrderCount != 3 {
		t.Fatalf("unexpected totals: %+v", snap)
	}
	if snap.BestSeller == nil || snap.BestSeller.Name != "Plov" || snap.BestSeller.Quantity != 4 {
		t.Fatalf("best seller: %+v", snap.BestSeller)
	}
	if snap.TopCustomer == nil || snap.TopCustomer.Name != "Alice" || snap.TopCustomer.Total != 11000 {
		t.Fatalf("top customer: %+v", snap.TopCustomer)
	}
	if snap.MostExpensive == nil || snap.MostExpensive.ID != "o2" {
		t.Fatalf("most expensive: %+v", snap.MostExpensive)
	}
}

func TestComputeTieBreakFirstOccurrence(t *testing.T) {
	set := []orders.Order{
		order("o1", "Alice", orders.PaymentPaid, 3000, orders.OrderItem{Name: "Tea", Quantity: 2}),
		order("o2", "Bob", orders.PaymentPaid, 3000, orders.OrderItem{Name: "Coffee", Quantity: 2}),
	}
	snap := Compute(set)
	if snap.BestSeller.Name != "Tea" {
		t.Fatalf("item tie must resolve to first occurrence, got %s", snap.BestSeller.Name)
	}
	if snap.TopCustomer.Name != "Alice" {
		t.Fatalf("customer tie must resolve to first occurrence, got %s", snap.TopCustomer.Name)
	}
	if snap.MostExpensive.ID != "o1" {
		t.Fatalf("order tie must resolve to first occurrence, got %s", snap.MostExpensive.ID)
	}
}

func TestNamedRanges(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	set := []orders.Order{
		{ID: "t-8h", CreatedAt: now.Add(-8 * time.Hour)},
		{ID: "t-2h", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "t-10m", CreatedAt: now.Add(-10 * time.Minute)},
	}

	today, err := NamedRange(RangeToday, now)
	if err != nil {
		t.Fatalf("NamedRange: %v", err)
	}
	if got := FilterByRange(set, today); len(got) != 3 {
		t.Fatalf("today (boundary before all three) must include all, got %d", len(got))
	}

	sixHours, err := NamedRange(Range6Hours, now)
	if err != nil {
		t.Fatalf("NamedRange: %v", err)
	}
	got := FilterByRange(set, sixHours)
	if len(got) != 2 || containsID(got, "t-8h") {
		t.Fatalf("6hours must exclude only the 8h-old order, got %+v", got)
	}

	if _, err := NamedRange(RangeName("fortnight"), now); err == nil {
		t.Fatalf("unknown range must error")
	}
}

func TestCustomRangeEndInclusive(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	r := CustomRange(start, end)

	lastInstant := time.Date(2026, 3, 2, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	if !r.Contains(lastInstant) {
		t.Fatalf("end day must be inclusive through 23:59:59.999")
	}
	nextDay := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	if r.Contains(nextDay) {
		t.Fatalf("the day after the end date must be excluded")
	}
}
