package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/dshills/unrolled/internal/engine/unrolled"
)

type cborSnapshot[T any] struct {
	Version      int `cbor:"1,keyasint"`
	NodeCapacity int `cbor:"2,keyasint"`
	Values       []T `cbor:"3,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// EncodeCBOR writes l as a deterministic CBOR map keyed by small integers.
func EncodeCBOR[T any](l *unrolled.List[T]) ([]byte, error) {
	data, err := encMode.Marshal(cborSnapshot[T]{
		Version:      SnapshotVersion,
		NodeCapacity: l.NodeCapacity(),
		Values:       l.Slice(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding cbor snapshot: %w", err)
	}
	return data, nil
}

// DecodeCBOR builds a list from a document written by EncodeCBOR.
func DecodeCBOR[T any](cfg unrolled.Config[T], data []byte) (*unrolled.List[T], error) {
	var snap cborSnapshot[T]
	if err := decMode.Unmarshal(data, &snap); err != nil {
		return nil, malformed("%v", err)
	}
	if snap.Version != SnapshotVersion {
		return nil, malformed("unsupported version %d", snap.Version)
	}
	return build(cfg, snap.NodeCapacity, snap.Values)
}
