// Package domain defines the principal model consumed from the external
// access-control collaborator.
//
// Authentication and authorization decisions happen outside this service: the
// gateway resolves the caller and forwards the result as trusted headers. The
// core only consumes the resolved principal and the capabilities asserted for
// the request.
package domain

import (
	"slices"
	"strings"
)

// SystemActor is the actor recorded for operations the service performs on
// its own behalf (key rotation, chain verification, background work).
const SystemActor = "system"

// Capability defines an operation the external access-control layer has
// granted to the current request.
type Capability string

const (
	// CapabilityDetokenize allows recovering original plaintext from tokens.
	CapabilityDetokenize Capability = "detokenize"

	// CapabilityAuditRead allows reading and verifying the audit chain.
	CapabilityAuditRead Capability = "audit:read"
)

// Principal represents an authenticated actor as resolved by the gateway.
// Immutable for the duration of a request.
type Principal struct {
	ID           string
	Role         string
	Scope        string
	Capabilities []Capability
}

// Actor returns the identifier recorded in audit entries for this principal.
func (p *Principal) Actor() string {
	if p == nil || p.ID == "" {
		return SystemActor
	}
	return p.ID
}

// HasCapability reports whether the given capability was asserted for the request.
func (p *Principal) HasCapability(c Capability) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Capabilities, c)
}

// ParseCapabilities parses a comma-separated capability header value.
// Empty segments are skipped.
func ParseCapabilities(header string) []Capability {
	if header == "" {
		return nil
	}
	var caps []Capability
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		caps = append(caps, Capability(part))
	}
	return caps
}
