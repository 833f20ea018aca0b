package inventory

const (
	TopicStockLow = "inventory.stock.low"
)

// Partition key = product_id so alerts for one product keep their order.
func PartitionKey(productID string) []byte { return []byte(productID) }
