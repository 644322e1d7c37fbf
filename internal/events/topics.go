package events

// Topic constants for domain events emitted by the platform.
const (
	TopicOrderCreated    = "order.created"
	TopicOrderCanceled   = "order.canceled"
	TopicOrderExpired    = "order.expired"
	TopicVoucherApplied  = "voucher.applied"
	TopicVoucherRedeemed = "voucher.redeemed"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicOrderCanceled,
		TopicOrderExpired,
		TopicVoucherApplied,
		TopicVoucherRedeemed,
	}
}
