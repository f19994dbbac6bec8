// Package steps holds the opaque build configuration units a template is
// made of: wrappers around the build, builders, and post-build publishers.
// Their execution is owned by the build runner; this package only knows how
// to register, list, copy and persist them.
package steps

import "sort"

type Capability string

const (
	CapabilityWrapper   Capability = "wrapper"
	CapabilityBuilder   Capability = "builder"
	CapabilityPublisher Capability = "publisher"
)

// Step is one configured unit. Kind must match a registered Descriptor.
type Step interface {
	Kind() string
}

type Descriptor struct {
	Kind        string      `json:"kind"`
	DisplayName string      `json:"display_name"`
	Capability  Capability  `json:"capability"`
	New         func() Step `json:"-"`
}

type Registry struct {
	byKind map[string]Descriptor
}

func NewRegistry(descriptors ...Descriptor) *Registry {
	r := &Registry{byKind: make(map[string]Descriptor, len(descriptors))}
	for _, d := range descriptors {
		r.byKind[d.Kind] = d
	}
	return r
}

func (r *Registry) Lookup(kind string) (Descriptor, bool) {
	d, ok := r.byKind[kind]
	return d, ok
}

// Descriptors lists the descriptors offering capability, sorted by kind.
func (r *Registry) Descriptors(capability Capability) []Descriptor {
	out := make([]Descriptor, 0)
	for _, d := range r.byKind {
		if d.Capability == capability {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Default is the registry of the built-in step kinds.
var Default = NewRegistry(
	Descriptor{
		Kind:        KindEnv,
		DisplayName: "Inject environment variables",
		Capability:  CapabilityWrapper,
		New:         func() Step { return &EnvWrapper{} },
	},
	Descriptor{
		Kind:        KindTimeout,
		DisplayName: "Abort the build if it's stuck",
		Capability:  CapabilityWrapper,
		New:         func() Step { return &TimeoutWrapper{} },
	},
	Descriptor{
		Kind:        KindShell,
		DisplayName: "Execute shell",
		Capability:  CapabilityBuilder,
		New:         func() Step { return &ShellBuilder{} },
	},
	Descriptor{
		Kind:        KindArtifacts,
		DisplayName: "Archive the artifacts",
		Capability:  CapabilityPublisher,
		New:         func() Step { return &ArtifactPublisher{} },
	},
	Descriptor{
		Kind:        KindNotify,
		DisplayName: "Notify recipients",
		Capability:  CapabilityPublisher,
		New:         func() Step { return &NotifyPublisher{} },
	},
)

// ToSet keeps one step per kind: the first occurrence fixes the position and
// the last occurrence supplies the value.
func ToSet(items []Step) []Step {
	index := make(map[string]int, len(items))
	out := make([]Step, 0, len(items))
	for _, s := range items {
		if i, ok := index[s.Kind()]; ok {
			out[i] = s
			continue
		}
		index[s.Kind()] = len(out)
		out = append(out, s)
	}
	return out
}
