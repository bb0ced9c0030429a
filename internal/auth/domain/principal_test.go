package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalActor(t *testing.T) {
	t.Run("ReturnsID", func(t *testing.T) {
		p := &Principal{ID: "analyst-1", Role: "analyst", Scope: "org-1"}
		assert.Equal(t, "analyst-1", p.Actor())
	})

	t.Run("NilPrincipalIsSystem", func(t *testing.T) {
		var p *Principal
		assert.Equal(t, SystemActor, p.Actor())
	})

	t.Run("EmptyIDIsSystem", func(t *testing.T) {
		p := &Principal{}
		assert.Equal(t, SystemActor, p.Actor())
	})
}

func TestPrincipalHasCapability(t *testing.T) {
	p := &Principal{
		ID:           "admin-1",
		Capabilities: []Capability{CapabilityDetokenize},
	}

	assert.True(t, p.HasCapability(CapabilityDetokenize))
	assert.False(t, p.HasCapability(CapabilityAuditRead))

	var nilPrincipal *Principal
	assert.False(t, nilPrincipal.HasCapability(CapabilityDetokenize))
}

func TestParseCapabilities(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []Capability
	}{
		{name: "Empty", header: "", want: nil},
		{name: "Single", header: "detokenize", want: []Capability{CapabilityDetokenize}},
		{
			name:   "MultipleWithSpaces",
			header: "detokenize, audit:read",
			want:   []Capability{CapabilityDetokenize, CapabilityAuditRead},
		},
		{name: "SkipsEmptySegments", header: ",detokenize,,", want: []Capability{CapabilityDetokenize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCapabilities(tt.header))
		})
	}
}
