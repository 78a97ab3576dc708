package shared

// Direction defines the flow of money in a transaction
type Direction string

const (
	DirectionCredit Direction = "CR" // Inflow
	DirectionDebit  Direction = "DR" // Outflow
)

// Valid reports whether d is a known transaction direction
func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Signed converts a positive magnitude into the stored signed amount.
// Debits are stored negative so recomputing a balance never branches on type.
func (d Direction) Signed(amount int64) int64 {
	if d == DirectionDebit {
		return -amount
	}
	return amount
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)
