package stats

import "github.com/BrayanMorningstar237/waiter-sync/internal/orders"

// ItemTally is a menu item's summed quantity across orders.
type ItemTally struct {
	Name     string
	Quantity int
}

// CustomerTally is a customer's cumulative spend.
type CustomerTally struct {
	Name  string
	Total int64
}

// Snapshot is a derived summary over a set of orders. Winner fields are
// nil when the paid subset is empty; they never hold a zero-value
// placeholder that could be mistaken for a real order.
type Snapshot struct {
	TotalRevenue  int64
	OrderCount    int
	BestSeller    *ItemTally
	TopCustomer   *CustomerTally
	MostExpensive *orders.Order
}

// Compute aggregates the paid subset of the given (typically
// time-filtered) orders. Ties are broken by first occurrence in input
// order: deterministic for a stable snapshot, but otherwise arbitrary.
func Compute(in []orders.Order) Snapshot {
	var snap Snapshot

	itemTotals := map[string]int{}
	var itemNames []string
	customerTotals := map[string]int64{}
	var customerNames []string

	for i := range in {
		o := in[i]
		if o.PaymentStatus != orders.PaymentPaid {
			continue
		}
		snap.OrderCount++
		snap.TotalRevenue += o.TotalAmount

		for _, it := range o.Items {
			if _, seen := itemTotals[it.Name]; !seen {
				itemNames = append(itemNames, it.Name)
			}
			itemTotals[it.Name] += it.Quantity
		}

		if _, seen := customerTotals[o.CustomerName]; !seen {
			customerNames = append(customerNames, o.CustomerName)
		}
		customerTotals[o.CustomerName] += o.TotalAmount

		if snap.MostExpensive == nil || o.TotalAmount > snap.MostExpensive.TotalAmount {
			c := o.Clone()
			snap.MostExpensive = &c
		}
	}

	// Winners walk the first-seen name lists, not the maps, so equal
	// totals resolve to the earliest occurrence.
	for _, name := range itemNames {
		if snap.BestSeller == nil || itemTotals[name] > snap.BestSeller.Quantity {
			snap.BestSeller = &ItemTally{Name: name, Quantity: itemTotals[name]}
		}
	}
	for _, name := range customerNames {
		if snap.TopCustomer == nil || customerTotals[name] > snap.TopCustomer.Total {
			snap.TopCustomer = &CustomerTally{Name: name, Total: customerTotals[name]}
		}
	}
	return snap
}
