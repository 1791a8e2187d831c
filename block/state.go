// Package block holds the canonical block-state model: interned typed
// identifiers with ordered string properties, the textual diff algebra
// used to transmit state transitions compactly (see the VXL codec), and
// the geometric primitives (Position, Boundary, AxisOrder) that every
// store and codec in this module shares.
package block

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Property is a single ordered (key, value) pair attached to a BlockState.
// Properties keep insertion order for round-tripping, but equality and
// hashing treat them as a set.
type Property struct {
	Key   string
	Value string
}

// BlockState is the pair (name, ordered properties) identifying a block.
// Instances are immutable once built and are meant to be shared (held by
// pointer) across palettes, pages and stores rather than copied.
type BlockState struct {
	name       string
	properties []Property
	hash       uint64
}

const (
	airName     = "minecraft:air"
	caveAirName = "minecraft:cave_air"
	voidAirName = "minecraft:void_air"
)

var (
	nameCharset     = regexp.MustCompile(`^[a-z0-9_/:]+$`)
	propertyCharset = regexp.MustCompile(`^[A-Za-z0-9_+-]+$`)
	diffCharset     = regexp.MustCompile(`^[A-Za-z0-9_+\-=:,]*$`)
)

var (
	airOnce  sync.Once
	airState *BlockState
)

// Air returns the process-wide singleton air state, initialised lazily
// and safely on first access even under concurrent callers.
func Air() *BlockState {
	airOnce.Do(func() {
		airState = New(airName, nil)
	})
	return airState
}

// New builds a BlockState and precomputes its cached hash. Callers that
// already hold validated (name, properties) data - e.g. legacy
// conversion - should use this directly; callers parsing untrusted text
// should use Parse.
func New(name string, properties []Property) *BlockState {
	b := &BlockState{name: name, properties: properties}
	b.hash = b.computeHash()
	return b
}

func (b *BlockState) computeHash() uint64 {
	sorted := append([]Property(nil), b.properties...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	d := xxhash.New()
	_, _ = d.WriteString(b.name)
	for _, p := range sorted {
		_, _ = d.WriteString(p.Key)
		_, _ = d.Write([]byte{'='})
		_, _ = d.WriteString(p.Value)
		_, _ = d.Write([]byte{';'})
	}
	return d.Sum64()
}

// Name returns the namespaced type identifier, e.g. "minecraft:oak_stairs".
func (b *BlockState) Name() string { return b.name }

// Properties returns a copy of the ordered property list.
func (b *BlockState) Properties() []Property {
	return append([]Property(nil), b.properties...)
}

// Hash returns the cached structural hash used by palette lookups.
func (b *BlockState) Hash() uint64 { return b.hash }

// IsAir reports whether the state names one of the three air sentinels.
func (b *BlockState) IsAir() bool {
	switch b.name {
	case airName, caveAirName, voidAirName:
		return true
	default:
		return false
	}
}

func propertyMap(props []Property) map[string]string {
	m := make(map[string]string, len(props))
	for _, p := range props {
		m[p.Key] = p.Value
	}
	return m
}

// Equal implements full structural equality (name plus the property
// multiset), short-circuited by the cached hash.
func (b *BlockState) Equal(other *BlockState) bool {
	if b == other {
		return true
	}
	if b == nil || other == nil {
		return false
	}
	if b.hash != other.hash || b.name != other.name || len(b.properties) != len(other.properties) {
		return false
	}
	bm, om := propertyMap(b.properties), propertyMap(other.properties)
	for k, v := range bm {
		if ov, ok := om[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String formats the state with properties sorted lexicographically by
// key; ordering here only affects display, never equality.
func (b *BlockState) String() string {
	if len(b.properties) == 0 {
		return b.name
	}
	sorted := append([]Property(nil), b.properties...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = p.Key + "=" + p.Value
	}
	return b.name + "[" + strings.Join(parts, ",") + "]"
}

// Parse parses a block-state string of the form "namespace:type" or
// "namespace:type[key=value,...]". Only the "minecraft" namespace is
// accepted.
func Parse(s string) (*BlockState, error) {
	s = strings.TrimSpace(s)
	bracket := strings.IndexByte(s, '[')
	if bracket < 0 {
		if strings.ContainsRune(s, ']') {
			return nil, fmt.Errorf("block state %q: stray ']' without a matching '['", s)
		}
		if s == "" {
			return nil, fmt.Errorf("block state: empty input")
		}
		return validatedName(s, nil)
	}
	if strings.Count(s, ":") != 1 {
		return nil, fmt.Errorf("block state %q: expected exactly one ':'", s)
	}
	if !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("block state %q: missing closing ']'", s)
	}
	name := s[:bracket]
	body := s[bracket+1 : len(s)-1]

	var properties []Property
	if body != "" {
		for _, part := range strings.Split(body, ",") {
			key, value, ok := strings.Cut(part, "=")
			if !ok {
				return nil, fmt.Errorf("block state %q: malformed property %q", s, part)
			}
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			if key == "" || value == "" {
				return nil, fmt.Errorf("block state %q: empty key or value in %q", s, part)
			}
			if !propertyCharset.MatchString(key) || !propertyCharset.MatchString(value) {
				return nil, fmt.Errorf("block state %q: illegal character in property %q", s, part)
			}
			properties = append(properties, Property{Key: key, Value: value})
		}
	}
	return validatedName(name, properties)
}

func validatedName(name string, properties []Property) (*BlockState, error) {
	if !nameCharset.MatchString(name) {
		return nil, fmt.Errorf("block state: illegal character in name %q", name)
	}
	colon := strings.IndexByte(name, ':')
	if colon < 0 {
		return nil, fmt.Errorf("block state: name %q has no namespace", name)
	}
	if strings.Count(name, ":") != 1 {
		return nil, fmt.Errorf("block state: name %q must contain exactly one ':'", name)
	}
	namespace, typeName := name[:colon], name[colon+1:]
	if namespace != "minecraft" {
		return nil, fmt.Errorf("block state: unsupported namespace %q (only \"minecraft\" is accepted)", namespace)
	}
	if typeName == "" {
		return nil, fmt.Errorf("block state: empty type name in %q", name)
	}
	return New(name, properties), nil
}

// Difference computes the diff string such that
// other.Equal(self.Update(self.Difference(other))) holds. It is the
// wire encoding VXL palettes use to describe a new state as an edit of
// an already-known one.
func (b *BlockState) Difference(other *BlockState) string {
	var sb strings.Builder

	if b.name != other.name {
		selfNamespace, selfType, _ := strings.Cut(b.name, ":")
		otherNamespace, otherType, _ := strings.Cut(other.name, ":")
		if otherNamespace != selfNamespace {
			sb.WriteString(otherNamespace)
		}
		if otherNamespace != selfNamespace || otherType != selfType {
			sb.WriteByte(':')
		}
		if otherType != selfType {
			sb.WriteString(otherType)
		}
	}

	selfProps := propertyMap(b.properties)
	otherProps := propertyMap(other.properties)

	var adds []string
	for _, p := range other.properties {
		if v, ok := selfProps[p.Key]; !ok || v != p.Value {
			adds = append(adds, p.Key+"="+p.Value)
		}
	}
	if len(adds) > 0 {
		sb.WriteByte('+')
		sb.WriteString(strings.Join(adds, ","))
	}

	var removes []string
	for _, p := range b.properties {
		if _, ok := otherProps[p.Key]; !ok {
			removes = append(removes, p.Key)
		}
	}
	if len(removes) > 0 {
		sb.WriteByte('-')
		sb.WriteString(strings.Join(removes, ","))
	}

	return sb.String()
}

// Update applies a diff string (as produced by Difference) and returns
// the resulting state. An empty diff clones the receiver unchanged.
func (b *BlockState) Update(diff string) (*BlockState, error) {
	diff = strings.TrimSpace(diff)
	if diff == "" {
		return New(b.name, append([]Property(nil), b.properties...)), nil
	}
	if len(diff) > 4096 {
		return nil, fmt.Errorf("block state diff: exceeds 4096 characters")
	}
	if !diffCharset.MatchString(diff) {
		return nil, fmt.Errorf("block state diff %q: illegal character", diff)
	}

	splitAt := len(diff)
	for i, r := range diff {
		if r == '+' || r == '-' {
			splitAt = i
			break
		}
	}
	namePart, rest := diff[:splitAt], diff[splitAt:]

	name := b.name
	switch {
	case namePart == "":
		// name unchanged
	case strings.HasPrefix(namePart, ":"):
		oldNamespace, _, _ := strings.Cut(b.name, ":")
		name = oldNamespace + namePart
	case strings.HasSuffix(namePart, ":"):
		_, oldType, _ := strings.Cut(b.name, ":")
		name = namePart + oldType
	default:
		name = namePart
	}
	if len(name) > 64 {
		return nil, fmt.Errorf("block state diff: resulting name %q exceeds 64 characters", name)
	}

	var toAdd []Property
	toRemove := make(map[string]bool)

	for len(rest) > 0 {
		sign := rest[0]
		rest = rest[1:]
		end := len(rest)
		for i, r := range rest {
			if r == '+' || r == '-' {
				end = i
				break
			}
		}
		segment := rest[:end]
		rest = rest[end:]

		switch sign {
		case '+':
			for _, kv := range strings.Split(segment, ",") {
				if kv == "" {
					continue
				}
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return nil, fmt.Errorf("block state diff: malformed add %q", kv)
				}
				toAdd = append(toAdd, Property{Key: k, Value: v})
				if len(toAdd) > 256 {
					return nil, fmt.Errorf("block state diff: more than 256 added properties")
				}
			}
		case '-':
			for _, k := range strings.Split(segment, ",") {
				if k == "" {
					continue
				}
				toRemove[k] = true
				if len(toRemove) > 256 {
					return nil, fmt.Errorf("block state diff: more than 256 removed properties")
				}
			}
		}
	}

	addedKeys := make(map[string]bool, len(toAdd))
	for _, p := range toAdd {
		addedKeys[p.Key] = true
	}

	properties := make([]Property, 0, len(b.properties)+len(toAdd))
	for _, p := range b.properties {
		if toRemove[p.Key] || addedKeys[p.Key] {
			continue
		}
		properties = append(properties, p)
	}
	properties = append(properties, toAdd...)

	return New(name, properties), nil
}
