package models

// Balance is the normalized snapshot a connector reports for one asset of one
// account. Quantity must already be human-readable: raw on-chain minor units
// have to be divided by 10^decimals before the record reaches the reconciler.
// The reconciler trusts Quantity as-is and never performs that division.
type Balance struct {
	Asset     string `json:"asset"`
	Quantity  string `json:"quantity"`
	Available string `json:"available"`
	Frozen    string `json:"frozen"`
	Decimals  *int   `json:"decimals,omitempty"`
}

// NormalizeRawUnits converts a raw integer minor-unit amount (e.g. wei,
// satoshi) into a human-readable quantity by shifting the decimal point left
// by the token's precision. Connector code calls this before building a
// Balance; it is never applied inside the reconciler.
func NormalizeRawUnits(raw string, decimals int) (Quantity, error) {
	q, err := ParseQuantity(raw)
	if err != nil {
		return Quantity{}, err
	}
	return q.Shift(int32(-decimals)), nil
}
