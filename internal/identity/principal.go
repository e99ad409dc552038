// Package identity is the gatekeeper between raw bearer credentials and the
// rest of the service. Verification is delegated to the external identity
// provider; nothing downstream ever sees a raw token or a raw provider role.
package identity

// Role is the closed set of roles the platform understands. Provider-supplied
// role strings are normalized here and never propagated further.
type Role string

const (
	RoleClient        Role = "client"
	RoleBusinessOwner Role = "business_owner"
)

// ParseRole maps the provider's role metadata onto the closed enum. Anything
// unrecognized (including empty) is a client.
func ParseRole(raw string) Role {
	if raw == string(RoleBusinessOwner) {
		return RoleBusinessOwner
	}
	return RoleClient
}

// Principal is the authenticated identity attached to a request. Immutable
// for the request's duration.
type Principal struct {
	ID    string
	Email string
	Name  string
	Role  Role
}
