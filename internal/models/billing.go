package models

// BillingConfig describes the payment integration exposed to clients.
type BillingConfig struct {
	PublishableKey   *string `json:"publishableKey"`
	Enabled          bool    `json:"enabled"`
	PaymentLinkBasic *string `json:"paymentLinkBasic"`
	PaymentLinkPro   *string `json:"paymentLinkPro"`
}

// CheckoutResult is the outcome of a checkout request. URL is nil when no
// hosted payment page is available and the caller should use the privileged
// upgrade path instead.
type CheckoutResult struct {
	URL     *string `json:"url"`
	Message string  `json:"message,omitempty"`
}

// PlanPrice is the fixed one-time price of a plan, in the smallest currency unit.
type PlanPrice struct {
	Plan        Plan
	AmountCents int64
	Currency    string
}

var planPrices = map[Plan]PlanPrice{
	PlanPro: {Plan: PlanPro, AmountCents: 500, Currency: "usd"},
}

// PriceFor returns the price of plan and whether it requires payment at all.
func PriceFor(plan Plan) (PlanPrice, bool) {
	p, ok := planPrices[plan]
	if !ok || p.AmountCents <= 0 {
		return PlanPrice{}, false
	}
	return p, true
}
