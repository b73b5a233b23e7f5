// Package macroclient tracks the availability of the out-of-process macro
// helper. The status is a plain enumerated flag: transitions are driven
// entirely by the external process lifecycle, so the type carries no
// transition logic of its own.
package macroclient

// Status is the helper process availability flag.
type Status uint8

const (
	// StatusPending means the helper has not been started yet.
	StatusPending Status = iota
	// StatusStarting means the helper is launching but not yet serving.
	StatusStarting
	// StatusReady means the helper is serving requests.
	StatusReady
	// StatusCrashed means the helper failed to start repeatedly; no further
	// attempts will be made.
	StatusCrashed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusStarting:
		return "starting"
	case StatusReady:
		return "ready"
	case StatusCrashed:
		return "crashed"
	}
	return "unknown"
}

// IsPending reports whether the helper has not been started yet.
func (s Status) IsPending() bool {
	return s == StatusPending
}

// Usable reports whether requests may be sent to the helper.
func (s Status) Usable() bool {
	return s == StatusReady
}
