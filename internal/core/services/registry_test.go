package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
)

func registryIDs(reg *SourceRegistry) []domain.SourceID {
	sources := reg.EnabledSources()
	out := make([]domain.SourceID, len(sources))
	for i, src := range sources {
		out[i] = src.Info().ID
	}
	return out
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	reg := NewSourceRegistry()
	reg.Register(&fakeSource{info: domain.SourceInfo{ID: "builtin/commands"}})
	reg.Register(&fakeSource{info: domain.SourceInfo{ID: "github/repos"}})
	reg.Register(&fakeSource{info: domain.SourceInfo{ID: "web/suggest"}})

	assert.Equal(t, []domain.SourceID{"builtin/commands", "github/repos", "web/suggest"}, registryIDs(reg))

	// Re-registering keeps the original position.
	reg.Register(&fakeSource{info: domain.SourceInfo{ID: "github/repos", Label: "GitHub"}})
	assert.Equal(t, []domain.SourceID{"builtin/commands", "github/repos", "web/suggest"}, registryIDs(reg))
	src, ok := reg.Source("github/repos")
	require.True(t, ok)
	assert.Equal(t, "GitHub", src.Info().Label)
}

func TestRegistryEnableDisable(t *testing.T) {
	reg := NewSourceRegistry()
	reg.Register(&fakeSource{info: domain.SourceInfo{ID: "a"}})
	reg.Register(&fakeSource{info: domain.SourceInfo{ID: "b"}})

	reg.SetEnabled("a", false)
	assert.Equal(t, []domain.SourceID{"b"}, registryIDs(reg))
	assert.Len(t, reg.Sources(), 2)

	reg.SetEnabled("a", true)
	assert.Equal(t, []domain.SourceID{"a", "b"}, registryIDs(reg))

	// Unknown identities are ignored.
	reg.SetEnabled("nope", true)
	_, ok := reg.Source("nope")
	assert.False(t, ok)
}

func TestRegistryWebSource(t *testing.T) {
	reg := NewSourceRegistry()
	reg.Register(&fakeSource{info: domain.SourceInfo{ID: "web/suggest"}})

	_, ok := reg.WebSource()
	assert.False(t, ok)

	reg.SetWebSource("web/suggest")
	web, ok := reg.WebSource()
	require.True(t, ok)
	assert.Equal(t, domain.SourceID("web/suggest"), web.Info().ID)

	// A disabled web source is no web source at all.
	reg.SetEnabled("web/suggest", false)
	_, ok = reg.WebSource()
	assert.False(t, ok)
}

func TestRegistryTrust(t *testing.T) {
	reg := NewSourceRegistry()
	reg.Register(&fakeSource{info: domain.SourceInfo{ID: "builtin/commands"}})
	reg.Register(&fakeSource{info: domain.SourceInfo{ID: "github/repos"}})

	assert.True(t, reg.IsTrusted("builtin/commands"))
	assert.False(t, reg.IsTrusted("github/repos"))

	reg.SetTrusted("github/repos", true)
	assert.True(t, reg.IsTrusted("github/repos"))
}
