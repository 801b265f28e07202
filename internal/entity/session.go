package entity

import "time"

// Profile is the upstream's view of the authenticated user, cached on
// the session at login time.
type Profile struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Session ties a gateway session id to the upstream bearer token. A
// guest session (empty token) can browse products and hold a cart but
// cannot reach the feed.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Profile   *Profile  `json:"profile,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}
