package records

// Authorize is the single ownership gate for every read or mutation of a
// Record. A missing record and a foreign record are distinguished so the HTTP
// edge can answer 404 vs 401. No side effects.
func Authorize(rec *Record, requesterID string) error {
	if rec == nil {
		return ErrNotFound
	}
	if rec.OwnerID != requesterID {
		return ErrNotOwner
	}
	return nil
}
