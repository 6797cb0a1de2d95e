package state

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/aderemi/folionav/pkg/nav"
)

// Snapshot errors.
var (
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrSnapshotExpired = errors.New("snapshot expired")
)

// snapshotVersion is bumped when Snapshot's encoding changes.
const snapshotVersion = 1

// Snapshot is the navigation state handed to the client in the join reply
// and sent back on reconnect.
type Snapshot struct {
	Version  int       `msgpack:"v"`
	State    nav.State `msgpack:"n"`
	IssuedAt int64     `msgpack:"t"` // Unix seconds
}

// SnapshotCodec turns snapshots into URL-safe tokens.
type SnapshotCodec struct {
	serializer *MsgPackSerializer
	maxAge     time.Duration
	now        func() time.Time
}

// SnapshotOption configures a SnapshotCodec.
type SnapshotOption func(*SnapshotCodec)

// WithMaxAge rejects snapshots older than d. Zero disables the check.
func WithMaxAge(d time.Duration) SnapshotOption {
	return func(c *SnapshotCodec) {
		c.maxAge = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) SnapshotOption {
	return func(c *SnapshotCodec) {
		c.now = now
	}
}

// NewSnapshotCodec creates a codec. Snapshots expire after an hour by
// default.
func NewSnapshotCodec(opts ...SnapshotOption) *SnapshotCodec {
	c := &SnapshotCodec{
		serializer: NewMsgPackSerializer(),
		maxAge:     time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode serializes s into a base64url token.
func (c *SnapshotCodec) Encode(s nav.State) (string, error) {
	data, err := c.serializer.Marshal(Snapshot{
		Version:  snapshotVersion,
		State:    s,
		IssuedAt: c.now().Unix(),
	})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a token produced by Encode.
func (c *SnapshotCodec) Decode(token string) (Snapshot, error) {
	var snap Snapshot
	if token == "" {
		return snap, fmt.Errorf("%w: empty token", ErrInvalidSnapshot)
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return snap, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := c.serializer.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if snap.Version != snapshotVersion {
		return snap, fmt.Errorf("%w: version %d", ErrInvalidSnapshot, snap.Version)
	}

	if c.maxAge > 0 {
		age := c.now().Sub(time.Unix(snap.IssuedAt, 0))
		if age > c.maxAge {
			return snap, ErrSnapshotExpired
		}
	}
	return snap, nil
}
