package core

// Channel is an externally supplied live delivery path for one subscriber.
// Any reliable, ordered per-connection message channel qualifies; the engine
// only ever writes UTF-8 text payloads to it. A failed Send marks the channel
// dead and it will be pruned from its session's subscription set.
type Channel interface {
	Send(message []byte) error
}

// Broadcaster fans events out to the live channels subscribed to a session.
// Delivery failures on one channel must never block or fail delivery to
// others, and must never surface to the event author.
type Broadcaster interface {
	// Subscribe registers a channel for a session, tagged with the user it
	// delivers to so that user's own events can be excluded.
	Subscribe(sessionID, userID string, ch Channel)

	// Unsubscribe removes a previously registered channel. Unknown channels
	// are ignored.
	Unsubscribe(sessionID string, ch Channel)

	// Broadcast delivers the message to every channel subscribed to the
	// session except those tagged with excludeUser (pass "" to deliver to
	// all). Dead channels are pruned as a side effect.
	Broadcast(sessionID string, message []byte, excludeUser string)
}
