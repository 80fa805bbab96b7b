package valuation

import "sync"

// PolicyKind selects how target multiples are resolved for a security.
type PolicyKind string

const (
	// PolicyStandard derives multiples from sector baselines and the
	// structural discount analysis.
	PolicyStandard PolicyKind = "standard"
	// PolicyPeer anchors multiples to a named comparable company.
	PolicyPeer PolicyKind = "peer"
	// PolicyCustom uses analyst-supplied multiples directly.
	PolicyCustom PolicyKind = "custom"
)

// Policy is a per-security valuation override. The zero value is not
// meaningful; securities without a registered policy follow PolicyStandard.
type Policy struct {
	Code string     `json:"code"`
	Kind PolicyKind `json:"kind"`

	// Peer policy.
	PeerName string   `json:"peer_name,omitempty"`
	PeerPER  *float64 `json:"peer_per,omitempty"`
	PeerPBR  *float64 `json:"peer_pbr,omitempty"`

	// Custom policy.
	CustomPER *float64 `json:"custom_per,omitempty"`
	CustomPBR *float64 `json:"custom_pbr,omitempty"`

	// Caveats are carried verbatim into the valuation result.
	Caveats []string `json:"caveats,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

// OverrideRegistry holds valuation policies keyed by security code. Safe for
// concurrent use; the analysis batch reads while the HTTP surface writes.
type OverrideRegistry struct {
	mu       sync.RWMutex
	policies map[string]Policy
}

// NewOverrideRegistry creates an empty registry.
func NewOverrideRegistry() *OverrideRegistry {
	return &OverrideRegistry{policies: make(map[string]Policy)}
}

// Set registers or replaces the policy for a security.
func (r *OverrideRegistry) Set(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Code] = p
}

// Remove deletes the policy for a security, returning whether one existed.
// After removal the security follows the standard policy again.
func (r *OverrideRegistry) Remove(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.policies[code]
	delete(r.policies, code)
	return ok
}

// Get returns the policy for a security, if registered.
func (r *OverrideRegistry) Get(code string) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[code]
	return p, ok
}

// List returns all registered policies in unspecified order.
func (r *OverrideRegistry) List() []Policy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Policy, 0, len(r.policies))
	for _, p := range r.policies {
		out = append(out, p)
	}
	return out
}
