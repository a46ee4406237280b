package generate

import "log/slog"

// Credential is an opaque provider API key supplied at call time.
// It formats as a fixed placeholder so it cannot leak through %v, %s or slog.
type Credential string

const redacted = "[redacted]"

// String returns a placeholder, never the key.
func (c Credential) String() string {
	if c == "" {
		return ""
	}
	return redacted
}

// GoString returns a placeholder, never the key.
func (c Credential) GoString() string {
	return c.String()
}

// LogValue implements slog.LogValuer.
func (c Credential) LogValue() slog.Value {
	return slog.StringValue(c.String())
}

// Reveal returns the raw key for the transport.
func (c Credential) Reveal() string {
	return string(c)
}

// IsZero reports whether no credential was supplied.
func (c Credential) IsZero() bool {
	return c == ""
}
