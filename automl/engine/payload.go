package engine

import (
	"bytes"
	"encoding/gob"

	"github.com/YuminosukeSato/evalgo/pipeline"
	"github.com/YuminosukeSato/evalgo/pkg/errors"
	"github.com/YuminosukeSato/evalgo/tabular"
)

// Job payloads crossing the encoded boundary. Every field is exported, and
// every interface-typed value inside (components, splitters) is
// gob-registered by its owning package, so a payload decodes into fresh
// values with schemas and parameters intact.
type trainPayload struct {
	Pipeline *pipeline.Pipeline
	X        *tabular.Table
	Y        *tabular.Series
	Config   Config
}

type evaluatePayload struct {
	Pipeline *pipeline.Pipeline
	Config   Config
	X        *tabular.Table
	Y        *tabular.Series
}

type scorePayload struct {
	Pipeline   *pipeline.Pipeline
	X          *tabular.Table
	Y          *tabular.Series
	Objectives []string
	Config     Config
}

func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, errors.Wrap(err, "encoding job payload")
	}
	return buf.Bytes(), nil
}

func decodeValue(raw []byte, out any) error {
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(out); err != nil {
		return errors.Wrap(err, "decoding job payload")
	}
	return nil
}

// flattenError reduces an error to its message before it crosses the encoded
// boundary. Wrapped causes and stack traces do not serialize; the caller
// re-wraps the message with pipeline context on arrival.
func flattenError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(err.Error())
}
