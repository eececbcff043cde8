package modkit

import "net/http"

// Option sets one field of a Built
type Option func(*Built)

// WithName names the module in logs and the registry
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix is the path the module routes mount under
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends module middleware, applied in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts hands a module the ports it consumes; the importing module owns T
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }
