// Package legacy converts pre-Flattening numeric block IDs (the
// Blocks/Data byte-array encoding MCEDIT-era schematics use) into modern
// namespaced block states. The numeric-ID-to-name table itself is an
// external resource - a generated dump of the legacy ID registry, which
// this package intentionally does not try to reproduce in full; only a
// representative set of common IDs is embedded so the conversion logic
// (the interesting, spec-relevant part) can be exercised end to end. The
// per-family nibble decoders below cover the families real MCEdit
// schematics exercise most: orientation, half, axis, and redstone wire
// power.
package legacy

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oriumgames/voxschem/block"
)

// idTable maps a bare legacy ID (no data) to its base modern type name.
// A representative subset; see the package doc for why this isn't
// exhaustive.
var idTable = map[int]string{
	1: "minecraft:stone", 2: "minecraft:grass_block", 3: "minecraft:dirt",
	4: "minecraft:cobblestone", 5: "minecraft:oak_planks", 7: "minecraft:bedrock",
	8: "minecraft:flowing_water", 9: "minecraft:water", 10: "minecraft:flowing_lava", 11: "minecraft:lava",
	12: "minecraft:sand", 13: "minecraft:gravel", 14: "minecraft:gold_ore", 15: "minecraft:iron_ore",
	17: "minecraft:oak_log", 18: "minecraft:oak_leaves", 20: "minecraft:glass",
	23: "minecraft:dispenser", 24: "minecraft:sandstone", 26: "minecraft:red_bed",
	29: "minecraft:sticky_piston", 33: "minecraft:piston", 35: "minecraft:white_wool",
	43: "minecraft:smooth_stone_slab", 44: "minecraft:stone_slab",
	50: "minecraft:torch", 53: "minecraft:oak_stairs", 54: "minecraft:chest",
	55: "minecraft:redstone_wire", 58: "minecraft:crafting_table", 61: "minecraft:furnace",
	62: "minecraft:lit_furnace", 63: "minecraft:sign", 64: "minecraft:oak_door",
	65: "minecraft:ladder", 66: "minecraft:rail", 68: "minecraft:wall_sign",
	69: "minecraft:lever", 75: "minecraft:redstone_torch", 76: "minecraft:lit_redstone_torch",
	77: "minecraft:stone_button", 85: "minecraft:oak_fence", 86: "minecraft:pumpkin",
	92: "minecraft:cake", 96: "minecraft:oak_trapdoor", 101: "minecraft:iron_bars",
	102: "minecraft:glass_pane", 103: "minecraft:melon", 106: "minecraft:vine",
	107: "minecraft:birch_trapdoor", 120: "minecraft:end_portal_frame", 130: "minecraft:ender_chest",
	139: "minecraft:cobblestone_wall", 143: "minecraft:wooden_button", 149: "minecraft:comparator",
	150: "minecraft:comparator", 154: "minecraft:hopper", 155: "minecraft:quartz_block",
	158: "minecraft:dropper", 160: "minecraft:stained_glass_pane", 162: "minecraft:acacia_log",
	176: "minecraft:standing_banner", 177: "minecraft:wall_banner", 183: "minecraft:spruce_fence_gate",
	188: "minecraft:spruce_fence", 193: "minecraft:spruce_door", 356: "minecraft:repeater",
}

// GetLegacyType resolves a legacy (id, data) pair to the base type name
// registered for it. The table is keyed by id alone: data is not
// consulted, so every data value of an id yields the same base name.
func GetLegacyType(id int, data byte) (string, bool) {
	if name, ok := idTable[id]; ok {
		return name, true
	}
	return "", false
}

const (
	axisX = "x"
	axisY = "y"
	axisZ = "z"
)

func facing4(nibble byte) string {
	switch nibble & 0x3 {
	case 0:
		return "south"
	case 1:
		return "west"
	case 2:
		return "north"
	default:
		return "east"
	}
}

func facing6(nibble byte) string {
	switch nibble & 0x7 {
	case 0:
		return "down"
	case 1:
		return "up"
	case 2:
		return "north"
	case 3:
		return "south"
	case 4:
		return "west"
	default:
		return "east"
	}
}

func logAxis(nibble byte) string {
	switch (nibble >> 2) & 0x3 {
	case 1:
		return axisX
	case 2:
		return axisZ
	default:
		return axisY
	}
}

// ConvertLegacyDataToModernProperties decodes the data nibble for the
// families whose modern block-state properties aren't implied by the id
// alone. It returns ok=false for any id it has no family-specific
// decoding for, letting the caller fall back to a bare (no-property)
// state.
func ConvertLegacyDataToModernProperties(id int, data byte) (map[string]string, bool) {
	switch id {
	case 29, 33: // sticky/regular piston: facing + extended
		return map[string]string{
			"facing":   facing6(data),
			"extended": boolStr(data&0x8 != 0),
		}, true

	case 8, 9, 10, 11: // flowing/still liquids: level
		return map[string]string{"level": itoa(int(data & 0xF))}, true

	case 23, 158: // dispenser/dropper: facing + triggered
		return map[string]string{
			"facing":    facing6(data & 0x7),
			"triggered": boolStr(false),
		}, true

	case 64, 71, 193, 194, 195, 196, 197: // doors
		if data&0x8 != 0 {
			return map[string]string{
				"half":  "upper",
				"hinge": hingeSide(data&0x1 != 0),
				"open":  boolStr(false),
			}, true
		}
		return map[string]string{
			"half":   "lower",
			"facing": facing4(data & 0x3),
			"open":   boolStr(data&0x4 != 0),
		}, true

	case 106: // vines: attachment faces
		return map[string]string{
			"south": boolStr(data&0x1 != 0),
			"west":  boolStr(data&0x2 != 0),
			"north": boolStr(data&0x4 != 0),
			"east":  boolStr(data&0x8 != 0),
		}, true

	case 86, 103: // pumpkin/melon: facing
		return map[string]string{"facing": facing4(data & 0x3)}, true

	case 43: // double slab: no half, just the material via data - left as bare id
		return nil, false

	case 44: // single slab: half
		half := "bottom"
		if data&0x8 != 0 {
			half = "top"
		}
		return map[string]string{"type": half}, true

	case 77, 143: // buttons: facing + powered
		return map[string]string{
			"facing":  facing6(data & 0x7),
			"powered": boolStr(data&0x8 != 0),
		}, true

	case 69: // lever: face + facing + powered
		face := "wall"
		switch data & 0x7 {
		case 0, 7:
			face = "ceiling"
		case 5, 6:
			face = "floor"
		}
		return map[string]string{
			"face":    face,
			"facing":  facing4(data & 0x3),
			"powered": boolStr(data&0x8 != 0),
		}, true

	case 26: // bed: facing + part
		part := "foot"
		if data&0x8 != 0 {
			part = "head"
		}
		return map[string]string{
			"facing": facing4(data & 0x3),
			"part":   part,
		}, true

	case 53, 67, 108, 109, 114, 128, 134, 135, 136, 156, 163, 164, 180: // stairs
		facing := facing4(data & 0x3)
		half := "bottom"
		if data&0x4 != 0 {
			half = "top"
		}
		return map[string]string{"facing": facing, "half": half}, true

	case 54, 61, 62, 65, 68, 130: // directional containers/ladder/furnace/wall sign
		return map[string]string{"facing": facing4(data & 0x3)}, true

	case 63: // standing sign: rotation
		return map[string]string{"rotation": itoa(int(data & 0xF))}, true

	case 176, 177: // banners
		return map[string]string{"rotation": itoa(int(data & 0xF))}, true

	case 66: // rail: shape decoded from the data value
		return map[string]string{"shape": railShape(data & 0xF)}, true

	case 120: // end portal frame: facing + eye
		return map[string]string{
			"facing": facing4(data & 0x3),
			"eye":    boolStr(data&0x4 != 0),
		}, true

	case 55: // redstone wire: power level only (connection shape is topology-derived elsewhere)
		return map[string]string{"power": itoa(int(data & 0xF))}, true

	case 356: // repeater: facing + delay
		return map[string]string{
			"facing": facing4(data & 0x3),
			"delay":  itoa(int(data>>2&0x3) + 1),
		}, true

	case 149, 150: // comparator: facing + mode
		mode := "compare"
		if data&0x4 != 0 {
			mode = "subtract"
		}
		return map[string]string{
			"facing": facing4(data & 0x3),
			"mode":   mode,
		}, true

	case 154: // hopper: facing + enabled
		return map[string]string{
			"facing":  facing6(data & 0x7),
			"enabled": boolStr(data&0x8 == 0),
		}, true

	case 101, 102, 160: // iron bars/glass pane/stained glass pane: connection faces
		return map[string]string{
			"north": boolStr(data&0x1 != 0),
			"south": boolStr(data&0x2 != 0),
			"east":  boolStr(data&0x4 != 0),
			"west":  boolStr(data&0x8 != 0),
		}, true

	case 92: // cake: bites
		return map[string]string{"bites": itoa(int(data & 0x7))}, true

	case 188, 189, 190, 191, 192: // fences
		return nil, false

	case 183, 184, 185, 186, 187: // fence gates
		return map[string]string{
			"facing": facing4(data & 0x3),
			"open":   boolStr(data&0x4 != 0),
		}, true

	case 50, 75, 76: // torches (standing or wall)
		if data == 5 {
			return map[string]string{"facing": "up"}, true
		}
		return map[string]string{"facing": facing4((data - 1) & 0x3)}, true

	case 17, 162: // logs: axis
		return map[string]string{"axis": logAxis(data)}, true

	case 96, 107: // trapdoors
		return map[string]string{
			"half": trapdoorHalf(data&0x8 != 0),
			"open": boolStr(data&0x4 != 0),
		}, true

	case 85, 139, 140, 141, 142: // fences/walls
		return nil, false

	default:
		return nil, false
	}
}

func hingeSide(right bool) string {
	if right {
		return "right"
	}
	return "left"
}

func trapdoorHalf(top bool) string {
	if top {
		return "top"
	}
	return "bottom"
}

func railShape(data byte) string {
	shapes := []string{
		"north_south", "east_west", "ascending_east", "ascending_west",
		"ascending_north", "ascending_south", "south_east", "south_west",
		"north_west", "north_east",
	}
	if int(data) < len(shapes) {
		return shapes[data]
	}
	return "north_south"
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func itoa(n int) string { return fmt.Sprintf("%d", n) }

// log is the diagnostic sink every unrecognised legacy block is
// reported through rather than silently dropped or hard-failed.
var log = logrus.WithField("component", "legacy")

// Resolve converts a (id, data) pair to a BlockState, preferring an
// overlay-supplied name (the MCEDIT BlockIds tag) over the built-in
// table, and warning - not erroring - on anything it can't place.
func Resolve(id int, data byte, overlay map[int]string) *block.BlockState {
	name, ok := overlay[id]
	if !ok {
		name, ok = GetLegacyType(id, data)
	}
	if !ok {
		log.WithFields(logrus.Fields{"id": id, "data": data}).
			Warn("unrecognized legacy block id, substituting air")
		return block.Air()
	}
	props, hasProps := ConvertLegacyDataToModernProperties(id, data)
	if !hasProps {
		return block.New(name, nil)
	}
	properties := make([]block.Property, 0, len(props))
	for k, v := range props {
		properties = append(properties, block.Property{Key: k, Value: v})
	}
	return block.New(name, properties)
}
