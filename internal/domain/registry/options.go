package registry

import "time"

// Option defines a functional configuration type for the Hub.
type Option func(*Hub)

// WithMailboxSize sets the buffer capacity of each user cell's mailbox.
func WithMailboxSize(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.config.mailboxSize = size
		}
	}
}

// WithSendTimeout bounds how long delivery waits on a saturated session
// buffer before shedding the event.
func WithSendTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.config.sendTimeout = d
		}
	}
}
