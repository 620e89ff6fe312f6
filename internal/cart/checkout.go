package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BrayanMorningstar237/waiter-sync/internal/orders"
	"github.com/BrayanMorningstar237/waiter-sync/internal/rest"
	"github.com/BrayanMorningstar237/waiter-sync/internal/validation"
)

var (
	// ErrEmptyCart rejects checkout with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrCustomerNameRequired rejects checkout without a customer name.
	ErrCustomerNameRequired = errors.New("customer name is required")
)

// submitter is the slice of the REST client checkout needs.
type submitter interface {
	Session() rest.Session
	CreateOrder(ctx context.Context, payload rest.OrderPayload) (orders.Order, error)
}

// BuildPayload assembles the order payload submitted at checkout. The
// per-line prices embedded here are the prices the backend charges; the
// order type is takeaway only when every line is takeaway.
func (c *Cart) BuildPayload(catalog Catalog, restaurantID, customerName, tableNumber string) (rest.OrderPayload, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return rest.OrderPayload{}, ErrCustomerNameRequired
	}
	if c.Empty() {
		return rest.OrderPayload{}, ErrEmptyCart
	}

	payload := rest.OrderPayload{
		RestaurantID: restaurantID,
		CustomerName: name,
		TableNumber:  tableNumber,
		OrderType:    orders.TypeTakeaway,
	}
	for _, id := range c.ids {
		line := c.lines[id]
		item, ok := catalog[id]
		if !ok {
			return rest.OrderPayload{}, fmt.Errorf("item %s is no longer on the menu", id)
		}
		unit := UnitPrice(item, line.IsTakeaway)
		payload.Items = append(payload.Items, rest.PayloadItem{
			MenuItemID:   item.ID,
			Name:         item.Name,
			Quantity:     line.Quantity,
			Price:        unit,
			IsTakeaway:   line.IsTakeaway,
			Instructions: line.Instructions,
		})
		payload.TotalAmount += unit * int64(line.Quantity)
		if !line.IsTakeaway {
			payload.OrderType = orders.TypeDineIn
		}
	}
	return payload, nil
}

// Checkout validates the assembled payload, submits it and clears the
// cart on success. Validation failures never reach the network.
func (c *Cart) Checkout(ctx context.Context, client submitter, catalog Catalog, customerName, tableNumber string) (orders.Order, error) {
	payload, err := c.BuildPayload(catalog, client.Session().RestaurantID, customerName, tableNumber)
	if err != nil {
		return orders.Order{}, err
	}
	if err := validation.New().Struct(payload); err != nil {
		return orders.Order{}, fmt.Errorf("invalid order: %w", err)
	}

	created, err := client.CreateOrder(ctx, payload)
	if err != nil {
		return orders.Order{}, err
	}
	c.Clear()
	return created, nil
}
