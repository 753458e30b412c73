package cache

// ScopedKeyer prefixes every derived key, giving callers separate cache
// namespaces (e.g. per server tenant) over one backend.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with a key prefix. A nil inner selects the
// default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(script, cfg []byte, format string) string {
	return k.prefix + k.inner.ArtifactKey(script, cfg, format)
}
