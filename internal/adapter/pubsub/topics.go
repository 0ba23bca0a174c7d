package pubsub

// Topics on the internal event bus. The service is both producer and
// consumer; the bus exists so delivery fan-out and presence relay share one
// path regardless of which entry point produced the event.
const (
	TopicMessageCreated  = "fanchat.message.created.v1"
	TopicPresenceUpdated = "fanchat.presence.updated.v1"
)
