package blueprint

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"

	"combc/internal/errors"
)

type document struct {
	Blueprint body `json:"blueprint"`
}

type body struct {
	Entities []Entity `json:"entities"`
}

// Envelope serializes entities into the exchange-string format every
// Factorio blueprint uses: a version byte followed by base64(zlib(json)).
func Envelope(entities []Entity) (string, error) {
	raw, err := json.Marshal(document{Blueprint: body{Entities: entities}})
	if err != nil {
		return "", errors.Wrap(err, errors.EmitInvalid, "", "failed to marshal blueprint json")
	}

	var compressed bytes.Buffer
	w := zlib.NewWriter(&compressed)
	if _, err := w.Write(raw); err != nil {
		return "", errors.Wrap(err, errors.EmitInvalid, "", "failed to compress blueprint")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, errors.EmitInvalid, "", "failed to close zlib writer")
	}

	return "0" + base64.StdEncoding.EncodeToString(compressed.Bytes()), nil
}
