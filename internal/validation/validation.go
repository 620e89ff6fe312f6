package validation

import (
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/BrayanMorningstar237/waiter-sync/internal/rest"
)

// New returns a configured validator with custom struct-level validation
// registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for OrderPayload to ensure the
	// claimed TotalAmount matches the sum of (price * quantity) of items.
	v.RegisterStructValidation(orderPayloadStructValidation, rest.OrderPayload{})

	return v
}

// orderPayloadStructValidation verifies the aggregated total of items
// equals TotalAmount. Amounts are integral minor units, so the comparison
// is exact.
func orderPayloadStructValidation(sl validatorv10.StructLevel) {
	payload := sl.Current().Interface().(rest.OrderPayload)

	var sum int64
	for _, it := range payload.Items {
		sum += int64(it.Quantity) * it.Price
	}

	if sum != payload.TotalAmount {
		sl.ReportError(payload.TotalAmount, "totalAmount", "TotalAmount", "total_match_items",
			fmt.Sprintf("items sum %d != total %d", sum, payload.TotalAmount))
	}
}
