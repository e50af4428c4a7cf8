package codec

import (
	"encoding/xml"
	"io"

	"github.com/napi-network/napi/netconf/common/codec/rfc6242"
)

// Decoder wraps the standard xml Codec (for XML decoding)
// and RFC6242-compliant Codec (for netconf message framing)
type Decoder struct {
	*xml.Decoder
	ncDecoder *rfc6242.Decoder
}

// Encoder wraps the standard xml Codec (for XML encoding)
// and RFC6242-compliant Codec (for netconf message framing)
type Encoder struct {
	ncEncoder *rfc6242.Encoder
}

// Encode writes msg as one framed message. No XML declaration is written.
func (e *Encoder) Encode(msg interface{}) error {
	b, err := Marshal(msg)
	if err != nil {
		return err
	}
	return e.ncEncoder.WriteMessage(b)
}

// WriteMessage writes an already marshalled message as one frame.
func (e *Encoder) WriteMessage(b []byte) error {
	return e.ncEncoder.WriteMessage(b)
}

// Marshal renders msg as it appears on the wire, without the delimiter.
func Marshal(msg interface{}) ([]byte, error) {
	return xml.Marshal(msg)
}

// NewDecoder delivers a new decoder.
func NewDecoder(t io.Reader) *Decoder {
	ncDecoder := rfc6242.NewDecoder(t)
	return &Decoder{Decoder: xml.NewDecoder(ncDecoder), ncDecoder: ncDecoder}
}

// NewEncoder delivers a new encoder.
func NewEncoder(t io.Writer) *Encoder {
	return &Encoder{ncEncoder: rfc6242.NewEncoder(t)}
}
