package booking

// AttentionStatuses are the statuses counted by PendingCount.
func AttentionStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusAwaitingPayment}
}

// PendingCount returns how many bookings in the snapshot still await
// assignment or payment. It keeps no state between calls.
func PendingCount(bookings []*Booking) int {
	n := 0
	for _, b := range bookings {
		if b != nil && b.Status().RequiresAttention() {
			n++
		}
	}
	return n
}
