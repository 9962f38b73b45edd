package domain

// RoleMerchant is the only role allowed past the session gate.
const RoleMerchant = "merchant"

// Session is an immutable snapshot of the signed-in identity. A new snapshot
// replaces the previous one wholesale; it is never partially updated.
type Session struct {
	IdentityPresent bool   `json:"identity_present"`
	UserID          string `json:"user_id,omitempty"`
	Email           string `json:"email,omitempty"`
	EmailVerified   bool   `json:"email_verified"`
	Role            string `json:"role,omitempty"`
	Token           string `json:"-"`
}

// SignedOut is the snapshot emitted when no identity is present.
func SignedOut() Session {
	return Session{}
}

// IsMerchant reports whether the snapshot carries the merchant role claim.
func (s Session) IsMerchant() bool {
	return s.Role == RoleMerchant
}

// GateState is the session gate's current classification of the identity.
type GateState int

const (
	StateLoading GateState = iota
	StateUnauthenticated
	StateUnverified
	StateWrongRole
	StateAuthorized
)

func (s GateState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateUnverified:
		return "unverified"
	case StateWrongRole:
		return "wrong_role"
	case StateAuthorized:
		return "authorized"
	default:
		return "loading"
	}
}

// Classify maps a snapshot to the gate state it drives.
func Classify(s Session) GateState {
	switch {
	case !s.IdentityPresent:
		return StateUnauthenticated
	case !s.EmailVerified:
		return StateUnverified
	case !s.IsMerchant():
		return StateWrongRole
	default:
		return StateAuthorized
	}
}

// Decision is the gate's answer for the current snapshot and location.
// An empty Redirect means the current screen may render.
type Decision struct {
	State    GateState `json:"-"`
	Redirect string    `json:"redirect,omitempty"`
	// Loading is true while no snapshot has arrived yet; the shell renders a
	// non-blocking loading indicator instead of the screen.
	Loading bool `json:"loading"`
}

// Render reports whether the current screen may be shown.
func (d Decision) Render() bool {
	return !d.Loading && d.Redirect == "" && d.State == StateAuthorized
}
