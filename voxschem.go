// Package voxschem is a library for reading and writing voxel
// schematic files across several Minecraft-ecosystem wire formats
// (MOJANG structure NBT, SPONGE v1-v3, MCEDIT legacy, the custom VXL
// delta-palette format, and the bonus Litematica and Axiom formats)
// into one shared in-memory block-store model.
//
// Every codec in this module operates on a raw byte stream; gzip
// framing - which every one of these wire formats conventionally wraps
// itself in - is treated as the caller's concern, not the codec's. Open
// and NewWriter operate on raw streams; OpenGzip and NewGzipWriter are thin
// convenience wrappers for callers who want the all-in-one behaviour
// most of these formats are normally consumed with.
package voxschem

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/oriumgames/nbt"

	"github.com/oriumgames/voxschem/block"
	"github.com/oriumgames/voxschem/format/axiom"
	"github.com/oriumgames/voxschem/format/litematica"
	"github.com/oriumgames/voxschem/format/mcedit"
	"github.com/oriumgames/voxschem/format/mojang"
	"github.com/oriumgames/voxschem/format/sponge"
	"github.com/oriumgames/voxschem/format/vxl"
	"github.com/oriumgames/voxschem/stream"
	"github.com/oriumgames/voxschem/stream/anyformat"
)

// Format identifiers accepted by OpenFormat/NewWriter.
const (
	FormatMojang     = "mojang"
	FormatSpongeV1   = "sponge_v1"
	FormatSpongeV2   = "sponge_v2"
	FormatSpongeV3   = "sponge_v3"
	FormatMCEdit     = "mcedit"
	FormatVXL        = "vxl"
	FormatLitematica = "litematica"
	FormatAxiom      = "axiom"

	// FormatAuto selects the racing any-format multiplexer instead of a
	// specific codec; OpenFormat(r, FormatAuto) behaves exactly like
	// Open(r).
	FormatAuto = "auto"
)

// vxlMagic is VXL's 48-bit signature, duplicated from format/vxl only
// for sniffing purposes (format/vxl keeps its own unexported copy).
const vxlMagic int64 = 0x56584C44524D

// axiomMagic duplicates format/axiom.Magic for sniffing purposes only.
const axiomMagic uint32 = 0x0AE5BB36

var readers = map[string]func(io.Reader) (*stream.StoreReader, error){
	FormatMojang:     mojang.Read,
	FormatSpongeV1:   func(r io.Reader) (*stream.StoreReader, error) { return sponge.Read(r, sponge.V1) },
	FormatSpongeV2:   func(r io.Reader) (*stream.StoreReader, error) { return sponge.Read(r, sponge.V2) },
	FormatSpongeV3:   func(r io.Reader) (*stream.StoreReader, error) { return sponge.Read(r, sponge.V3) },
	FormatMCEdit:     mcedit.Read,
	FormatVXL:        vxl.Read,
	FormatLitematica: litematica.Read,
	FormatAxiom:      axiom.Read,
}

// Formats returns a sorted list of the format identifiers OpenFormat
// understands, including the "auto" pseudo-format; NewWriter accepts
// only the writable subset.
func Formats() []string {
	ids := make([]string, 0, len(readers)+1)
	ids = append(ids, FormatAuto)
	for id := range readers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// autoConstructors adapts every known codec's reader into an
// anyformat.Constructor, so Open can race them over forks of one shared
// stream rather than sniffing a key out of a fully-buffered document.
func autoConstructors() []anyformat.Constructor {
	ctors := make([]anyformat.Constructor, 0, len(readers))
	for _, reader := range readers {
		reader := reader
		ctors = append(ctors, func(r io.Reader) (stream.Reader, error) {
			return reader(r)
		})
	}
	return ctors
}

// Open autodetects r's format by racing every known codec's reader over
// forks of a single shared stream (see stream/anyformat and
// stream/sharedstream) and decodes whichever one parses. Detection is
// by parse success alone, not by sniffing a signature ahead of time.
func Open(r io.Reader) (stream.Reader, error) {
	mux, err := anyformat.New(r, autoConstructors())
	if err != nil {
		return nil, fmt.Errorf("voxschem: open: %w", err)
	}
	return mux, nil
}

// OpenFormat decodes r as the named format. FormatAuto routes through
// Open instead of a specific codec.
func OpenFormat(r io.Reader, formatID string) (stream.Reader, error) {
	if formatID == FormatAuto {
		return Open(r)
	}
	reader, ok := readers[formatID]
	if !ok {
		return nil, fmt.Errorf("voxschem: unsupported format %q", formatID)
	}
	rd, err := reader(r)
	if err != nil {
		return nil, fmt.Errorf("voxschem: read %s: %w", formatID, err)
	}
	return rd, nil
}

// OpenGzip gunzips r before decoding it through Open, the convenience
// most of these formats are normally consumed with.
func OpenGzip(r io.Reader) (stream.Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("voxschem: gzip: %w", err)
	}
	defer gz.Close()
	return Open(gz)
}

// NewWriter constructs a stream.Writer for the named format, writing a
// raw (ungzipped) document to w.
func NewWriter(w io.Writer, formatID string) (stream.Writer, error) {
	switch formatID {
	case FormatMojang:
		return mojang.NewWriter(w), nil
	case FormatSpongeV2:
		return sponge.NewWriter(w, sponge.V2), nil
	case FormatSpongeV3:
		return sponge.NewWriter(w, sponge.V3), nil
	case FormatVXL:
		return vxl.NewWriter(w, block.Preferred()), nil
	case FormatLitematica:
		return litematica.NewWriter(w), nil
	case FormatAxiom:
		return axiom.NewWriter(w), nil
	case FormatSpongeV1, FormatMCEdit:
		return nil, fmt.Errorf("voxschem: writing %s is not supported (read-only legacy format)", formatID)
	default:
		return nil, fmt.Errorf("voxschem: unsupported format %q", formatID)
	}
}

// NewGzipWriter wraps w in a gzip.Writer and returns a Writer whose
// Complete also flushes and closes the gzip stream.
func NewGzipWriter(w io.Writer, formatID string) (stream.Writer, error) {
	gz := gzip.NewWriter(w)
	inner, err := NewWriter(gz, formatID)
	if err != nil {
		gz.Close()
		return nil, err
	}
	return &gzipWriter{inner: inner, gz: gz}, nil
}

// gzipWriter adapts a raw-stream Writer so its Complete step also
// closes the gzip framing wrapped around it.
type gzipWriter struct {
	inner stream.Writer
	gz    *gzip.Writer
}

func (g *gzipWriter) Write(blocks []block.Block) (int, error) {
	return g.inner.Write(blocks)
}

func (g *gzipWriter) Complete() error {
	if err := g.inner.Complete(); err != nil {
		return err
	}
	return g.gz.Close()
}

var _ stream.Writer = (*gzipWriter)(nil)

// Detect sniffs the format of a fully-buffered, ungzipped schematic
// document: VXL by its VarLong magic, NBT formats by the keys present
// at their root compound.
func Detect(data []byte) (string, error) {
	if len(data) < 4 {
		return "", fmt.Errorf("voxschem: insufficient data for format detection")
	}

	if v, _, ok := decodeVarLongPrefix(data); ok && v == vxlMagic {
		return FormatVXL, nil
	}

	if binary.BigEndian.Uint32(data[:4]) == axiomMagic {
		return FormatAxiom, nil
	}

	decoder := nbt.NewDecoderWithEncoding(bytes.NewReader(data), nbt.BigEndian)
	var root map[string]any
	if err := decoder.Decode(&root); err != nil {
		return "", fmt.Errorf("voxschem: decode nbt: %w", err)
	}

	if _, hasRegions := root["Regions"]; hasRegions {
		if _, hasDataVersion := root["MinecraftDataVersion"]; hasDataVersion {
			return FormatLitematica, nil
		}
	}
	if _, hasSize := root["size"]; hasSize {
		if _, hasPalette := root["palette"]; hasPalette {
			return FormatMojang, nil
		}
	}
	if version, ok := root["Version"].(int32); ok {
		switch version {
		case 1:
			return FormatSpongeV1, nil
		case 2:
			return FormatSpongeV2, nil
		case 3:
			return FormatSpongeV3, nil
		}
		return "", fmt.Errorf("voxschem: unknown sponge schematic version %d", version)
	}
	if _, hasBlocks := root["Blocks"]; hasBlocks {
		if _, hasData := root["Data"]; hasData {
			return FormatMCEdit, nil
		}
	}

	return "", fmt.Errorf("voxschem: unrecognized format")
}

// decodeVarLongPrefix decodes a VarLong from the front of data without
// consuming it, used only for sniffing.
func decodeVarLongPrefix(data []byte) (int64, int, bool) {
	var value int64
	var shift uint
	for i := 0; i < len(data) && i < 10; i++ {
		b := data[i]
		value |= int64(b&0x7F) << shift
		if b&0x80 == 0 {
			return value, i + 1, true
		}
		shift += 7
	}
	return 0, 0, false
}
