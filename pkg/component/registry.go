package component

import (
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/graft/internal/errors"
)

// Registry maps tags to descriptors.
type Registry struct {
	mu     sync.RWMutex
	byTag  map[string]*Descriptor
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTag: make(map[string]*Descriptor)}
}

// Register adds d. It fails with E020 when the tag is not a valid custom
// element name, the descriptor has no render function, the tag is already
// registered, or the registry is frozen.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Render == nil {
		return errors.New("E020").WithDetail("descriptor has no render function")
	}
	tag := strings.ToLower(d.Tag)
	if !ValidTag(tag) {
		return errors.New("E020").WithDetailf("invalid tag %q", d.Tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.New("E020").WithDetailf("registry is frozen, cannot add %q", tag)
	}
	if _, exists := r.byTag[tag]; exists {
		return errors.New("E020").WithDetailf("tag %q is already registered", tag)
	}
	d.Tag = tag
	r.byTag[tag] = d
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(d *Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor for tag.
func (r *Registry) Lookup(tag string) (*Descriptor, bool) {
	r.mu.RLock()
	d, ok := r.byTag[tag]
	r.mu.RUnlock()
	return d, ok
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	_, ok := r.Lookup(tag)
	return ok
}

// Tags returns the registered tags, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Len returns the number of registered components.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTag)
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// ValidTag reports whether tag is usable as a custom element name:
// lowercase ASCII letter first, at least one hyphen, and only letters,
// digits, hyphens, dots and underscores.
func ValidTag(tag string) bool {
	if tag == "" || tag[0] < 'a' || tag[0] > 'z' || !strings.Contains(tag, "-") {
		return false
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '.', c == '_':
		default:
			return false
		}
	}
	return true
}
