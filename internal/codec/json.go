package codec

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/unrolled/internal/engine/unrolled"
)

// EncodeJSON writes l as
//
//	{"version":1,"nodeCapacity":10,"len":3,"values":[1,2,3]}
func EncodeJSON[T any](l *unrolled.List[T]) ([]byte, error) {
	values, err := json.Marshal(l.Slice())
	if err != nil {
		return nil, fmt.Errorf("encoding values: %w", err)
	}

	doc := []byte(`{}`)
	if doc, err = sjson.SetBytes(doc, "version", SnapshotVersion); err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, "nodeCapacity", l.NodeCapacity()); err != nil {
		return nil, err
	}
	if doc, err = sjson.SetBytes(doc, "len", l.Len()); err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(doc, "values", values)
}

// DecodeJSON builds a list from a document written by EncodeJSON.
func DecodeJSON[T any](cfg unrolled.Config[T], data []byte) (*unrolled.List[T], error) {
	if !gjson.ValidBytes(data) {
		return nil, malformed("invalid JSON")
	}

	doc := gjson.ParseBytes(data)
	if v := doc.Get("version"); !v.Exists() || v.Int() != SnapshotVersion {
		return nil, malformed("unsupported version %s", v.Raw)
	}
	vals := doc.Get("values")
	if !vals.IsArray() {
		return nil, malformed("values is not an array")
	}

	var (
		out     []T
		elemErr error
	)
	vals.ForEach(func(_, item gjson.Result) bool {
		var v T
		if err := json.Unmarshal([]byte(item.Raw), &v); err != nil {
			elemErr = malformed("element %d: %v", len(out), err)
			return false
		}
		out = append(out, v)
		return true
	})
	if elemErr != nil {
		return nil, elemErr
	}
	if n := doc.Get("len"); n.Exists() && int(n.Int()) != len(out) {
		return nil, malformed("len %d does not match %d values", n.Int(), len(out))
	}

	return build(cfg, int(doc.Get("nodeCapacity").Int()), out)
}
