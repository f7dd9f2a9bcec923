package battle

// Rejection is the machine-readable reason an intent was refused.
// The empty Rejection means the intent was accepted.
type Rejection string

const (
	RejectNone           Rejection = ""
	RejectUnauthorized   Rejection = "unauthorized"
	RejectOutOfRange     Rejection = "out_of_range"
	RejectNoLineOfSight  Rejection = "no_line_of_sight"
	RejectNoPath         Rejection = "no_path"
	RejectFriendlyTarget Rejection = "friendly_target"
	RejectNotFound       Rejection = "not_found"
)

// RejectionClass groups rejections by how a caller should treat them.
type RejectionClass int

const (
	ClassNone RejectionClass = iota
	// ClassUnauthorized covers wrong turn, wrong owner, spent action kinds
	// and finished games. Expected from stale or adversarial clients.
	ClassUnauthorized
	// ClassInfeasible covers range, line of sight and pathing failures.
	ClassInfeasible
	// ClassReferential covers references to units that no longer exist.
	ClassReferential
)

// String returns a human-readable name for the class.
func (c RejectionClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassUnauthorized:
		return "unauthorized"
	case ClassInfeasible:
		return "infeasible"
	case ClassReferential:
		return "referential"
	default:
		return "unknown"
	}
}

// Class maps the rejection onto its class.
func (r Rejection) Class() RejectionClass {
	switch r {
	case RejectNone:
		return ClassNone
	case RejectOutOfRange, RejectNoLineOfSight, RejectNoPath, RejectFriendlyTarget:
		return ClassInfeasible
	case RejectNotFound:
		return ClassReferential
	default:
		return ClassUnauthorized
	}
}

// String returns the code, or "accepted" for RejectNone.
func (r Rejection) String() string {
	if r == RejectNone {
		return "accepted"
	}
	return string(r)
}
