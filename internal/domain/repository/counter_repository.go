package repository

// CounterRepository is the port for the per-tenant document sequence counter.
//
// Next must be implemented as a single atomic compare-and-increment at the
// storage layer (one round trip), creating the counter at 1 when absent. Two
// concurrent callers for the same key must never receive the same value.
type CounterRepository interface {
	Next(shopID, documentType, periodKey string) (int64, error)
}
