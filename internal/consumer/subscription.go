package consumer

// Subscription describes one topic/route pair this service serves. The
// broker pulls the descriptor list at startup to learn where to push
// deliveries.
type Subscription struct {
	PubSubName string            `json:"pubsubname"`
	Topic      string            `json:"topic"`
	Route      string            `json:"route"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NewSubscription builds a Subscription with the standard raw-payload
// metadata disabled, matching how deliveries are wrapped on the wire.
func NewSubscription(pubsubName, topic, route string) Subscription {
	return Subscription{
		PubSubName: pubsubName,
		Topic:      topic,
		Route:      route,
		Metadata: map[string]string{
			"rawPayload": "false",
		},
	}
}
