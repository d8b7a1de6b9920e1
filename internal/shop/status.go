package shop

type CartStatus string

const (
	CartPending    CartStatus = "pending"
	CartCheckedOut CartStatus = "checked_out"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
)

var validCartNext = map[CartStatus]map[CartStatus]bool{
	CartPending:    {CartCheckedOut: true},
	CartCheckedOut: {},
}

var validOrderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:   {OrderCompleted: true},
	OrderCompleted: {},
}

func CanTransitionCart(from, to CartStatus) bool {
	return validCartNext[from][to]
}

func CanTransitionOrder(from, to OrderStatus) bool {
	return validOrderNext[from][to]
}
