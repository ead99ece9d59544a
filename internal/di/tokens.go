package di

import (
	"fmt"
	"sync"
)

// Token is a typed service key. Modules declare tokens for the services
// they register so other modules resolve them without string literals or
// type assertions.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token with a unique name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

func (t Token[T]) String() string {
	return t.name
}

// lazy defers construction to first resolution and memoizes the result.
type lazy[T any] struct {
	once    sync.Once
	factory func(ServiceRegistry) T
	value   T
}

func (l *lazy[T]) resolve(sr ServiceRegistry) T {
	l.once.Do(func() {
		l.value = l.factory(sr)
	})
	return l.value
}

// RegisterToken registers a factory for a typed token. The factory runs once,
// on first resolution.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.Register(token.name, &lazy[T]{factory: factory})
}

// GetToken resolves a typed token, panicking if it was never registered.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	svc := sr.Get(token.name)
	if svc == nil {
		panic(fmt.Sprintf("di: token %q not registered", token.name))
	}

	if l, ok := svc.(*lazy[T]); ok {
		return l.resolve(sr)
	}

	v, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("di: token %q holds %T", token.name, svc))
	}
	return v
}
