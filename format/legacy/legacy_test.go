package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKnownIDReturnsBareState(t *testing.T) {
	s := Resolve(1, 0, nil)
	assert.Equal(t, "minecraft:stone", s.Name())
	assert.Empty(t, s.Properties())
}

func TestResolveUnknownIDFallsBackToAir(t *testing.T) {
	s := Resolve(9999, 0, nil)
	assert.True(t, s.IsAir())
}

func TestResolveOverlayTakesPriorityOverBuiltinTable(t *testing.T) {
	s := Resolve(1, 0, map[int]string{1: "minecraft:granite"})
	assert.Equal(t, "minecraft:granite", s.Name())
}

func TestResolvePistonFacingAndExtended(t *testing.T) {
	s := Resolve(33, 0x8|2, nil) // extended bit set, facing north
	props := make(map[string]string)
	for _, p := range s.Properties() {
		props[p.Key] = p.Value
	}
	assert.Equal(t, "north", props["facing"])
	assert.Equal(t, "true", props["extended"])
}

func TestResolveLogAxis(t *testing.T) {
	s := Resolve(17, 4, nil) // bits 2-3 = 01 -> x axis
	props := make(map[string]string)
	for _, p := range s.Properties() {
		props[p.Key] = p.Value
	}
	assert.Equal(t, "x", props["axis"])
}

func TestResolveDoorUpperHalf(t *testing.T) {
	s := Resolve(64, 0x8|0x1, nil)
	props := make(map[string]string)
	for _, p := range s.Properties() {
		props[p.Key] = p.Value
	}
	assert.Equal(t, "upper", props["half"])
	assert.Equal(t, "right", props["hinge"])
}

func TestResolveSlabFamilyWithoutHalfLeavesBareID(t *testing.T) {
	// id 43 (double slab) deliberately has no per-data property decoding.
	s := Resolve(43, 5, nil)
	assert.Empty(t, s.Properties())
	assert.Equal(t, "minecraft:smooth_stone_slab", s.Name())
}

func TestGetLegacyTypeUnknown(t *testing.T) {
	_, ok := GetLegacyType(9999, 0)
	assert.False(t, ok)
}

func TestConvertLegacyDataRailShape(t *testing.T) {
	props, ok := ConvertLegacyDataToModernProperties(66, 2)
	assert.True(t, ok)
	assert.Equal(t, "ascending_east", props["shape"])
}
