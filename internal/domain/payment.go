package domain

// PaymentIntent is what the trusted payment boundary hands back for one
// checkout amount.
type PaymentIntent struct {
	ClientSecret  string `json:"client_secret"`
	TransactionID string `json:"transaction_id"`
	CustomerID    string `json:"customer_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
}

// PaymentResult is the outcome of confirming a payment intent.
type PaymentResult struct {
	Succeeded     bool   `json:"succeeded"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}
