package domain

import "go.trai.ch/zerr"

// RequirementKind classifies a requirement.
type RequirementKind string

const (
	// KindTool is a build-time tool executed on the build machine.
	KindTool RequirementKind = "tool"
	// KindLibrary is a library linked into the package.
	KindLibrary RequirementKind = "library"
	// KindTest is a library only needed to build the test package.
	KindTest RequirementKind = "test"
)

// Requirement is a pinned dependency of a recipe.
type Requirement struct {
	Ref  Reference
	Kind RequirementKind
}

// context separates build-machine tools from host libraries so the same
// name may appear once in each.
func (r Requirement) context() string {
	if r.Kind == KindTool {
		return "build"
	}
	return "host"
}

// DependencySet is an ordered, de-duplicated set of requirements.
type DependencySet struct {
	items []Requirement
	index map[string]int
}

// NewDependencySet creates an empty DependencySet.
func NewDependencySet() *DependencySet {
	return &DependencySet{index: make(map[string]int)}
}

// Add inserts a requirement. Adding an identical requirement twice is a no-op;
// requiring the same package at a different version fails.
func (d *DependencySet) Add(kind RequirementKind, ref Reference) error {
	req := Requirement{Ref: ref, Kind: kind}
	key := req.context() + ":" + ref.Name

	if i, ok := d.index[key]; ok {
		existing := d.items[i]
		if existing.Ref.Version != ref.Version {
			err := zerr.Wrap(ErrConflictingRequirement, "add requirement")
			err = zerr.With(err, "requested", ref.String())
			return zerr.With(err, "existing", existing.Ref.String())
		}
		return nil
	}

	d.index[key] = len(d.items)
	d.items = append(d.items, req)
	return nil
}

// AddAll inserts every reference with the given kind.
func (d *DependencySet) AddAll(kind RequirementKind, refs []Reference) error {
	for _, ref := range refs {
		if err := d.Add(kind, ref); err != nil {
			return err
		}
	}
	return nil
}

// All returns every requirement in insertion order.
func (d *DependencySet) All() []Requirement {
	out := make([]Requirement, len(d.items))
	copy(out, d.items)
	return out
}

// Tools returns the tool requirements in insertion order.
func (d *DependencySet) Tools() []Requirement {
	return d.filter(func(r Requirement) bool { return r.Kind == KindTool })
}

// Libraries returns library and test requirements in insertion order.
func (d *DependencySet) Libraries() []Requirement {
	return d.filter(func(r Requirement) bool { return r.Kind != KindTool })
}

// Len returns the number of requirements.
func (d *DependencySet) Len() int {
	return len(d.items)
}

func (d *DependencySet) filter(keep func(Requirement) bool) []Requirement {
	var out []Requirement
	for _, r := range d.items {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// References returns the references of the given requirements.
func References(reqs []Requirement) []Reference {
	out := make([]Reference, len(reqs))
	for i, r := range reqs {
		out[i] = r.Ref
	}
	return out
}
