package domain

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
)

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusConfirmed},
}

// CanTransitionTo reports whether an order in status from may move to to.
func CanTransitionTo(from, to OrderStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}
