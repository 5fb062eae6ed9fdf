package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() Manifest {
	return Manifest{Components: []Entry{
		{Name: "gen1", Kind: KindGenerator, Run: RunCommand{Command: "./gen1"}},
		{Name: "algo-go", Kind: KindAlgorithm, Language: "go", Run: RunCommand{Command: "./algo-go"}},
		{Name: "algo-rust", Kind: KindAlgorithm, Language: "rust", Run: RunCommand{Command: "./algo-rust"}},
	}}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validManifest().Validate())
}

func TestValidateDuplicateName(t *testing.T) {
	m := validManifest()
	m.Components[1].Name = "gen1"
	assert.Error(t, m.Validate(), "expected error for duplicate name")
}

func TestValidateDuplicateLanguage(t *testing.T) {
	m := validManifest()
	m.Components[2].Language = "go"
	assert.Error(t, m.Validate(), "expected error for duplicate language")
}

func TestValidateGeneratorWithLanguage(t *testing.T) {
	m := validManifest()
	m.Components[0].Language = "go"
	assert.Error(t, m.Validate(), "expected error: generator must not declare a language")
}

func TestValidateAlgorithmMissingLanguage(t *testing.T) {
	m := validManifest()
	m.Components[1].Language = ""
	assert.Error(t, m.Validate(), "expected error: algorithm requires a language")
}

func TestValidateEmptyRunCommand(t *testing.T) {
	m := validManifest()
	m.Components[0].Run.Command = ""
	assert.Error(t, m.Validate(), "expected error for empty run command")
}

func TestByNameAndByLanguage(t *testing.T) {
	m := validManifest()
	_, ok := m.ByName("algo-go")
	assert.True(t, ok, "expected to find algo-go by name")

	_, ok = m.ByName("missing")
	assert.False(t, ok, "did not expect to find missing component")

	e, ok := m.ByLanguage("rust")
	require.True(t, ok)
	assert.Equal(t, "algo-rust", e.Name)
}
