// Package state serializes navigation snapshots that the browser keeps
// between reconnects within one page load.
package state

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrInvalidData is returned for empty or corrupt serialized data.
var ErrInvalidData = errors.New("invalid serialized data")

const (
	markerPlain byte = 0
	markerGzip  byte = 1
)

// MsgPackSerializer uses MessagePack, gzip-compressing large payloads.
// The first byte of the output marks whether the rest is compressed.
type MsgPackSerializer struct {
	// UseCompression enables gzip compression for large payloads
	UseCompression bool
	// CompressionThreshold is the minimum size to trigger compression
	CompressionThreshold int
}

// NewMsgPackSerializer creates a new MsgPack serializer.
func NewMsgPackSerializer() *MsgPackSerializer {
	return &MsgPackSerializer{
		UseCompression:       true,
		CompressionThreshold: 1024,
	}
}

// Marshal serializes a value to bytes.
func (s *MsgPackSerializer) Marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("msgpack marshal: %w", err)
	}

	if s.UseCompression && len(data) >= s.CompressionThreshold {
		compressed, err := compress(data)
		if err == nil {
			return append([]byte{markerGzip}, compressed...), nil
		}
	}

	return append([]byte{markerPlain}, data...), nil
}

// Unmarshal deserializes bytes to a value.
func (s *MsgPackSerializer) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return ErrInvalidData
	}

	payload := data[1:]
	switch data[0] {
	case markerPlain:
	case markerGzip:
		decompressed, err := decompress(payload)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		payload = decompressed
	default:
		return fmt.Errorf("%w: unknown marker %d", ErrInvalidData, data[0])
	}

	if err := msgpack.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)

	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(io.LimitReader(gz, 1<<20))
}
