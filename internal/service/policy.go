package service

import "github.com/fanchat/messaging-service/internal/domain/model"

// Allowed is the role pairing policy: messaging is permitted only across
// roles. Pure predicate, applied identically by the realtime send path and
// the synchronous history path.
func Allowed(sender, receiver model.Role) bool {
	return sender != receiver
}
