package framer

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Encoder writes frames to an output stream.
type Encoder interface {
	Encode(frame Frame) error
}

// Formats lists the names accepted by NewEncoder.
var Formats = []string{"raw", "hex", "json", "cbor"}

// NewEncoder returns an encoder for the named format:
//
//	raw   frame bytes as received
//	hex   one line per frame: sequence number and hex dump
//	json  one JSON object per line, data base64 encoded
//	cbor  a sequence of CBOR maps {seq, data}
func NewEncoder(format string, w io.Writer) (Encoder, error) {
	switch strings.ToLower(format) {
	case "raw":
		return rawEncoder{w: w}, nil
	case "hex":
		return hexEncoder{w: w}, nil
	case "json":
		return jsonEncoder{enc: jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)}, nil
	case "cbor":
		return cborEncoder{enc: cbor.NewEncoder(w)}, nil
	default:
		return nil, errors.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

type rawEncoder struct {
	w io.Writer
}

func (e rawEncoder) Encode(frame Frame) error {
	_, err := e.w.Write(frame.Data)
	return errors.Wrap(err, "write raw frame")
}

type hexEncoder struct {
	w io.Writer
}

func (e hexEncoder) Encode(frame Frame) error {
	_, err := fmt.Fprintf(e.w, "%d %s\n", frame.Seq, hex.EncodeToString(frame.Data))
	return errors.Wrap(err, "write hex frame")
}

type jsonEncoder struct {
	enc *jsoniter.Encoder
}

func (e jsonEncoder) Encode(frame Frame) error {
	return errors.Wrap(e.enc.Encode(frame), "encode json frame")
}

type cborEncoder struct {
	enc *cbor.Encoder
}

func (e cborEncoder) Encode(frame Frame) error {
	return errors.Wrap(e.enc.Encode(frame), "encode cbor frame")
}
