package domain

// Principal is the normalized, request-scoped authorization record derived
// from persisted state. It is rebuilt from the database on every protected
// request; token contents are never authoritative beyond identity fields.
//
// Invariants:
//   - IsSuperAdmin implies OrganizationID == "" and Features is the full
//     static catalog.
//   - Otherwise OrganizationID is set iff the user administers an
//     organization, and Features is exactly that organization's feature set
//     (possibly empty).
type Principal struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	Role           string   `json:"role"`
	OrganizationID string   `json:"organization_id,omitempty"`
	Features       []string `json:"features"`
	IsSuperAdmin   bool     `json:"is_super_admin"`
}

// HasFeature checks membership in the principal's entitlement set
func (p *Principal) HasFeature(feature string) bool {
	for _, f := range p.Features {
		if f == feature {
			return true
		}
	}
	return false
}
