// Package codec encodes list snapshots as JSON or CBOR.
//
// A snapshot records the node capacity and the elements in order. Decoding
// builds a new list; when the supplied config leaves NodeCapacity at zero
// the snapshot's capacity is used.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/unrolled/internal/engine/unrolled"
)

// SnapshotVersion is written into every snapshot.
const SnapshotVersion = 1

// Format selects a snapshot encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatCBOR
)

var (
	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("unknown snapshot format")

	// ErrMalformed indicates a snapshot that cannot be decoded.
	ErrMalformed = errors.New("malformed snapshot")
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses "json" or "cbor", ignoring case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Encode writes l in format f.
func Encode[T any](f Format, l *unrolled.List[T]) ([]byte, error) {
	switch f {
	case FormatJSON:
		return EncodeJSON(l)
	case FormatCBOR:
		return EncodeCBOR(l)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

// Decode reads a list in format f.
func Decode[T any](f Format, cfg unrolled.Config[T], data []byte) (*unrolled.List[T], error) {
	switch f {
	case FormatJSON:
		return DecodeJSON(cfg, data)
	case FormatCBOR:
		return DecodeCBOR(cfg, data)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// build materializes a decoded snapshot, filling in the capacity.
func build[T any](cfg unrolled.Config[T], capacity int, values []T) (*unrolled.List[T], error) {
	if cfg.NodeCapacity == 0 {
		if err := unrolled.CheckCapacity(capacity); err != nil {
			return nil, malformed("nodeCapacity %d", capacity)
		}
		cfg.NodeCapacity = capacity
	}
	return unrolled.FromSlice(cfg, values)
}
