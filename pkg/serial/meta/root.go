package meta

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/internal/logging"
	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
)

// Root is the entry point for reading a value whose type is only known from
// the stream: it peeks the leading name, resolves it in a registry,
// allocates an instance and populates it.
type Root struct {
	reg *Registry
}

// NewRoot returns a root accessor backed by reg, or by the process-wide
// registry when reg is nil.
func NewRoot(reg *Registry) *Root {
	if reg == nil {
		reg = Default()
	}
	return &Root{reg: reg}
}

// Registry returns the registry the accessor resolves names in.
func (r *Root) Registry() *Registry {
	return r.reg
}

// Deserialize reads the next object. On any failure, including a panic in
// user-supplied projections, the partially built instance is released and
// the result is (nil, nil, false); the cause is only logged.
func (r *Root) Deserialize(d Deserializer) (instance any, t Type, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			logging.Named("root").Debug("deserialize panicked", zap.Any("panic", p))
			instance, t, ok = nil, nil, false
		}
	}()
	instance, t, err := r.Resolve(d)
	if err != nil {
		logging.Named("root").Debug("deserialize failed", zap.Error(err))
		return nil, nil, false
	}
	return instance, t, true
}

// Resolve is Deserialize without the recovery boundary: it returns the cause
// of a failure instead of hiding it. The instance is still released on
// failure.
func (r *Root) Resolve(d Deserializer) (any, Type, error) {
	name, err := d.PeekObject()
	if err != nil {
		return nil, nil, err
	}
	t, found := r.reg.Lookup(name)
	if !found {
		return nil, nil, serrors.New(serrors.ErrUnknownType, "resolve", "no metadata registered for %q", name)
	}
	instance := t.New()
	if instance == nil {
		return nil, nil, fmt.Errorf("meta: %q allocated a nil instance", name)
	}
	defer func() {
		if p := recover(); p != nil {
			t.Release(instance)
			panic(p)
		}
	}()
	if err := t.Deserialize(instance, d); err != nil {
		t.Release(instance)
		return nil, nil, err
	}
	return instance, t, nil
}
