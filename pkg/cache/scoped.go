package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving separate
// namespaces to callers that share one backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses the
// default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) RenderKey(paramsHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(paramsHash, opts)
}

func (k *ScopedKeyer) DimensionKey(paramsHash string, opts DimensionKeyOpts) string {
	return k.prefix + k.inner.DimensionKey(paramsHash, opts)
}
