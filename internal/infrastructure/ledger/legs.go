package ledger

// TransferLeg is one signed movement of token units within a single
// atomic transfer transaction.
type TransferLeg struct {
	AccountID string
	Amount    int64 // negative = debit, positive = credit
}

// BuildTransferLegs returns the balanced debit/credit pair for a token
// transfer: equal and opposite magnitudes, so the transaction nets to
// zero before submission.
func BuildTransferLegs(from, to string, amount int64) []TransferLeg {
	return []TransferLeg{
		{AccountID: from, Amount: -amount},
		{AccountID: to, Amount: amount},
	}
}
