package combat_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberfall/engine/internal/game/combat"
)

const riderYAML = `riders:
  - damage_type: fire
    status: burning
    chance: 25
    duration: 2
  - damage_type: fire
    status: shaken
    chance: 10
  - damage_type: cold
    status: chilled
    chance: 40
`

func writeRiders(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "riders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRiderTable(t *testing.T) {
	table, err := combat.LoadRiderTable(writeRiders(t, riderYAML))
	require.NoError(t, err)

	assert.Equal(t, 3, table.Len())
	fire := table.For("fire")
	require.Len(t, fire, 2)
	assert.Equal(t, "burning", fire[0].Status)
	assert.Equal(t, 25.0, fire[0].Chance)
	assert.Equal(t, 2, fire[0].Duration)
	assert.Equal(t, "shaken", fire[1].Status)
	assert.Empty(t, table.For("necrotic"))
}

func TestLoadRiderTableRejectsUnknownFields(t *testing.T) {
	bad := `riders:
  - damage_type: fire
    status: burning
    chance: 25
    chanse: 30
`
	_, err := combat.LoadRiderTable(writeRiders(t, bad))
	assert.Error(t, err)
}

func TestLoadRiderTableValidates(t *testing.T) {
	missing := `riders:
  - damage_type: fire
    chance: 25
`
	_, err := combat.LoadRiderTable(writeRiders(t, missing))
	assert.Error(t, err)

	badChance := `riders:
  - damage_type: fire
    status: burning
    chance: 140
`
	_, err = combat.LoadRiderTable(writeRiders(t, badChance))
	assert.Error(t, err)

	_, err = combat.LoadRiderTable(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestIsPhysical(t *testing.T) {
	for _, dt := range []string{"physical", "slashing", "piercing", "bludgeoning"} {
		assert.True(t, combat.IsPhysical(dt), dt)
	}
	for _, dt := range []string{"fire", "cold", "necrotic", "psychic", ""} {
		assert.False(t, combat.IsPhysical(dt), dt)
	}
}
