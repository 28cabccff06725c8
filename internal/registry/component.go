// Package registry holds the closed catalog of UI components that generated
// markup may reference.
//
// Every component kind is known at build time. A Descriptor carries the
// component's prop schema, the documented default for each prop and the
// templ renderer that turns resolved props into HTML. There is no runtime
// registration: the catalog is read-only for the life of the process.
package registry

import (
	"sort"

	"github.com/a-h/templ"
)

// Kind enumerates the component kinds in the catalog.
type Kind int

const (
	KindNavbar Kind = iota
	KindSidebar
	KindContainer
	KindGrid
	KindButton
	KindInput
	KindTable
	KindCard
	KindModal
	KindChart
)

var kindNames = [...]string{
	KindNavbar:    "Navbar",
	KindSidebar:   "Sidebar",
	KindContainer: "Container",
	KindGrid:      "Grid",
	KindButton:    "Button",
	KindInput:     "Input",
	KindTable:     "Table",
	KindCard:      "Card",
	KindModal:     "Modal",
	KindChart:     "Chart",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}

	return kindNames[k]
}

// RenderFunc builds the component for resolved props. children is nil when
// the element had no children.
type RenderFunc func(props Props, children templ.Component) templ.Component

// Descriptor describes one component kind
type Descriptor struct {
	Kind            Kind
	Name            string
	Description     string
	Props           []PropSpec
	AcceptsChildren bool

	render RenderFunc
}

// Prop returns the declared prop with the given name.
func (d *Descriptor) Prop(name string) (PropSpec, bool) {
	for _, p := range d.Props {
		if p.Name == name {
			return p, true
		}
	}

	return PropSpec{}, false
}

// Render returns the templ component for props. Children are dropped for
// kinds that do not accept them.
func (d *Descriptor) Render(props Props, children templ.Component) templ.Component {
	if !d.AcceptsChildren {
		children = nil
	}

	return d.render(props, children)
}

// ComponentRegistry is the closed name to descriptor mapping
type ComponentRegistry struct {
	components map[string]*Descriptor
	ordered    []*Descriptor
}

var defaultRegistry = newComponentRegistry(catalog())

// Default returns the process-wide catalog.
func Default() *ComponentRegistry {
	return defaultRegistry
}

func newComponentRegistry(descriptors []*Descriptor) *ComponentRegistry {
	r := &ComponentRegistry{
		components: make(map[string]*Descriptor, len(descriptors)),
		ordered:    descriptors,
	}
	for _, d := range descriptors {
		r.components[d.Name] = d
	}

	return r
}

// Override returns a copy of the registry in which the named component
// renders through fn. The receiver is left unchanged. Unknown names are
// ignored.
func (r *ComponentRegistry) Override(name string, fn RenderFunc) *ComponentRegistry {
	descriptors := make([]*Descriptor, len(r.ordered))
	for i, d := range r.ordered {
		if d.Name == name {
			copied := *d
			copied.render = fn
			d = &copied
		}
		descriptors[i] = d
	}

	return newComponentRegistry(descriptors)
}

// Get retrieves a component by its exact, case-sensitive tag name
func (r *ComponentRegistry) Get(name string) (*Descriptor, bool) {
	d, ok := r.components[name]
	return d, ok
}

// GetAll returns every descriptor in catalog order
func (r *ComponentRegistry) GetAll() []*Descriptor {
	out := make([]*Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns the sorted tag names.
func (r *ComponentRegistry) Names() []string {
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Count returns the number of components in the catalog
func (r *ComponentRegistry) Count() int {
	return len(r.components)
}
