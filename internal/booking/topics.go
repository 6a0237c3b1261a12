package booking

const (
	TopicReservationConfirmed = "reservation.confirmed"
)

// Partition key = property_id, so events for one property stay ordered.
func PartitionKey(propertyID string) []byte { return []byte(propertyID) }
