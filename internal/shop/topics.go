package shop

const (
	TopicOrderPlaced    = "shop.order.placed"
	TopicOrderCompleted = "shop.order.completed"
	TopicStockRejected  = "shop.stock.rejected"
)

// Partition key = order_id, supaya semua event 1 order maintain urutan.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
