package model

// Request is the engine's unit of work: the session under evaluation, the
// caller's login history, and the principal the attempt claims to be.
// UserID is an opaque identifier (syntactically an email); the engine does
// not authenticate it, only validates its shape.
type Request struct {
	CurrentSession Session
	LoginHistory   []LoginHistoryItem
	UserID         string
}
