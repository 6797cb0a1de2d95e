package protocol

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// Common codec errors.
var (
	ErrInvalidMessage = errors.New("invalid message format")
	ErrUnknownCodec   = errors.New("unknown codec type")
)

// Codec handles message encoding/decoding.
type Codec interface {
	// Encode serializes a message to bytes.
	Encode(msg *Message) ([]byte, error)

	// Decode deserializes bytes to a message.
	Decode(data []byte) (*Message, error)

	// Name returns the codec name.
	Name() string

	// Binary reports whether frames must be sent as binary WebSocket
	// messages.
	Binary() bool
}

// JSONCodec encodes messages as JSON objects. It is what the embedded
// browser client speaks.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Encode encodes a message to JSON.
func (c *JSONCodec) Encode(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

// Decode decodes JSON to a message.
func (c *JSONCodec) Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Event == "" {
		return nil, fmt.Errorf("%w: missing event", ErrInvalidMessage)
	}
	return &msg, nil
}

// Name returns "json".
func (c *JSONCodec) Name() string {
	return "json"
}

// Binary returns false.
func (c *JSONCodec) Binary() bool {
	return false
}

// MsgPackCodec encodes messages as MessagePack.
type MsgPackCodec struct{}

// NewMsgPackCodec creates a new MsgPack codec.
func NewMsgPackCodec() *MsgPackCodec {
	return &MsgPackCodec{}
}

// Encode encodes a message to MsgPack.
func (c *MsgPackCodec) Encode(msg *Message) ([]byte, error) {
	return msgpack.Marshal(msg)
}

// Decode decodes MsgPack to a message.
func (c *MsgPackCodec) Decode(data []byte) (*Message, error) {
	var msg Message
	if err := msgpack.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.Event == "" {
		return nil, fmt.Errorf("%w: missing event", ErrInvalidMessage)
	}
	return &msg, nil
}

// Name returns "msgpack".
func (c *MsgPackCodec) Name() string {
	return "msgpack"
}

// Binary returns true.
func (c *MsgPackCodec) Binary() bool {
	return true
}

// CodecRegistry manages available codecs.
type CodecRegistry struct {
	codecs map[string]Codec
	mu     sync.RWMutex
}

// NewCodecRegistry creates a registry holding the json and msgpack codecs.
func NewCodecRegistry() *CodecRegistry {
	r := &CodecRegistry{
		codecs: make(map[string]Codec),
	}
	r.Register(NewJSONCodec())
	r.Register(NewMsgPackCodec())
	return r
}

// Register adds a codec to the registry.
func (r *CodecRegistry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[codec.Name()] = codec
}

// Get retrieves a codec by name.
func (r *CodecRegistry) Get(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[name]
	return c, ok
}

// Names returns the registered codec names, sorted.
func (r *CodecRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultCodecRegistry is the global codec registry.
var DefaultCodecRegistry = NewCodecRegistry()

// LookupCodec returns the named codec from the default registry.
// An empty name selects json.
func LookupCodec(name string) (Codec, error) {
	if name == "" {
		name = "json"
	}
	c, ok := DefaultCodecRegistry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
	return c, nil
}
