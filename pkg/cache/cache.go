package cache

import (
	"context"
	"time"
)

// DefaultTTL is the lifetime of cached artifacts.
const DefaultTTL = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// RenderKeyOpts are the output options that affect a rendered image.
type RenderKeyOpts struct {
	Output        string
	Width, Height int
	Progressive   bool
	Mode          string
	Histogram     bool
	Colours       [3]string
	Scale         float64
	Orbit         string
}

// DimensionKeyOpts are the options that affect a dimension estimate.
type DimensionKeyOpts struct {
	Width, Height int
	InitialSize   int
	Overlay       bool
	OverlaySize   int
	Colours       [3]string
}

// Keyer derives cache keys.
type Keyer interface {
	// RenderKey keys a PNG rendered from the parameters hashed into paramsHash.
	RenderKey(paramsHash string, opts RenderKeyOpts) string
	// DimensionKey keys a dimension estimate.
	DimensionKey(paramsHash string, opts DimensionKeyOpts) string
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) RenderKey(paramsHash string, opts RenderKeyOpts) string {
	return hashKey("render", paramsHash, opts)
}

func (DefaultKeyer) DimensionKey(paramsHash string, opts DimensionKeyOpts) string {
	return hashKey("dimension", paramsHash, opts)
}
