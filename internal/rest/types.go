package rest

// PayloadItem is a single order line as submitted at checkout. Price is
// the client-computed unit price in minor units (takeaway surcharges
// already folded in).
type PayloadItem struct {
	MenuItemID   string `json:"menuItem" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Quantity     int    `json:"quantity" validate:"required,min=1"`
	Price        int64  `json:"price" validate:"required,gt=0"`
	IsTakeaway   bool   `json:"isTakeaway"`
	Instructions string `json:"instructions,omitempty"`
}

// OrderPayload is the body for POST /orders. The backend trusts the
// client-computed prices and total; validation only enforces that the
// total equals the sum of the line totals.
type OrderPayload struct {
	RestaurantID string        `json:"restaurant" validate:"required"`
	CustomerName string        `json:"customerName" validate:"required"`
	TableNumber  string        `json:"table,omitempty"`
	Items        []PayloadItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount  int64         `json:"totalAmount" validate:"required,gt=0"`
	OrderType    string        `json:"orderType" validate:"required,oneof=dine_in takeaway"`
}
