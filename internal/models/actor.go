package models

// Actor is the identity entitlement decisions are evaluated against. An
// authenticated visitor carries the stable id issued by the identity
// provider; everyone else is a guest.
//
// Guest entitlements are never proof of purchase: a guest can only see
// content that is explicitly unlocked for everyone.
type Actor struct {
	ID      string `json:"id"`
	IsGuest bool   `json:"is_guest"`
}

// Guest returns the anonymous actor.
func Guest() Actor {
	return Actor{IsGuest: true}
}

// User returns an authenticated actor with the given stable id.
func User(id string) Actor {
	return Actor{ID: id}
}
