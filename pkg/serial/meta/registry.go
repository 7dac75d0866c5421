package meta

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/clockworklabs/SpacetimeDB/crates/serial-go/internal/logging"
	serrors "github.com/clockworklabs/SpacetimeDB/crates/serial-go/pkg/serial/errors"
)

// Registry maps canonical type names to composite metadata so that a stream
// carrying only a name can be turned back into an instance.
//
// Lookups are safe to run concurrently with registration. Call Freeze once
// initialization is over to make the set of types immutable.
type Registry struct {
	types  *xsync.MapOf[string, Type]
	frozen atomic.Bool
}

// NewRegistry returns an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{types: xsync.NewMapOf[string, Type]()}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds t to the process-wide registry under its canonical name.
func Register(t Named) error {
	return defaultRegistry.Register(t)
}

// Register adds t under its canonical name.
func (r *Registry) Register(t Named) error {
	if t == nil {
		return fmt.Errorf("meta: cannot register nil metadata")
	}
	return r.RegisterName(t.Name(), t)
}

// RegisterName adds t under an explicit name. Registering the same metadata
// twice is a no-op; registering different metadata under a taken name fails
// with ErrDuplicateType.
//
// When t is Named, name must be the name t writes, or instances could be
// looked up but never read back. Use NewNamedObject to register a type
// under a name of your choosing.
func (r *Registry) RegisterName(name string, t Type) error {
	if t == nil {
		return fmt.Errorf("meta: cannot register nil metadata for %q", name)
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	if n, ok := t.(Named); ok && n.Name() != name {
		return serrors.New(serrors.ErrStructuralMismatch, "register", "name %q differs from the written name %q", name, n.Name())
	}
	if r.frozen.Load() {
		return serrors.New(serrors.ErrRegistryFrozen, "register", "type %q", name)
	}
	actual, loaded := r.types.LoadOrStore(name, t)
	if loaded {
		if actual != t {
			return serrors.New(serrors.ErrDuplicateType, "register", "name %q is bound to %T", name, actual)
		}
		return nil
	}
	logging.Named("registry").Debug("registered type",
		zap.String("name", name),
		zap.String("meta", fmt.Sprintf("%T", t)))
	return nil
}

// MustRegister registers every type and panics on the first failure.
func (r *Registry) MustRegister(types ...Named) {
	for _, t := range types {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the metadata registered under name.
func (r *Registry) Lookup(name string) (Type, bool) {
	return r.types.Load(name)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.types.Size())
	r.types.Range(func(name string, _ Type) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)
	return names
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return r.types.Size()
}

// Freeze rejects every later registration with ErrRegistryFrozen.
func (r *Registry) Freeze() {
	if r.frozen.CompareAndSwap(false, true) {
		logging.Named("registry").Debug("registry frozen", zap.Int("types", r.Len()))
	}
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// ValidateName checks that name can travel through every wire format: it
// must be non-empty and free of the text format's delimiters.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("meta: empty type name")
	}
	if i := strings.IndexAny(name, "(){}, \t\r\n\""); i >= 0 {
		return fmt.Errorf("meta: type name %q contains delimiter %q", name, name[i])
	}
	return nil
}
