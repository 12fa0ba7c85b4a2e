package criterion

import (
	"iter"
	"slices"
	"strconv"
)

// Kind tells the two node variants apart.
type Kind int

const (
	// KindField is a leaf, a filter, or a field selector with sub-fields.
	KindField Kind = iota
	// KindCollection groups children under a wire parameter name.
	KindCollection
)

func (k Kind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// Criterion is a node of a criterion tree. The empty name is reserved for
// anonymous wrappers, whose children are rendered in place of the wrapper.
type Criterion struct {
	name     string
	kind     Kind
	value    string
	hasValue bool
	children []*Criterion
}

// Field creates a field node. Without children it selects the whole field.
func Field(name string, children ...*Criterion) *Criterion {
	return &Criterion{name: name, kind: KindField, children: slices.Clone(children)}
}

// Filter creates a leaf carrying a scalar value, rendered as name=value.
func Filter(name, value string) *Criterion {
	return &Criterion{name: name, kind: KindField, value: value, hasValue: true}
}

// Flag is a boolean filter switched on.
func Flag(name string) *Criterion {
	return Filter(name, "true")
}

// Collection creates a grouping node.
func Collection(name string, children ...*Criterion) *Criterion {
	return &Criterion{name: name, kind: KindCollection, children: slices.Clone(children)}
}

func (c *Criterion) Name() string { return c.name }

func (c *Criterion) Kind() Kind { return c.kind }

// Value returns the scalar value of a filter and whether one was set.
func (c *Criterion) Value() (string, bool) { return c.value, c.hasValue }

// Len returns the number of direct children.
func (c *Criterion) Len() int { return len(c.children) }

// Children returns a copy of the direct children, in insertion order.
func (c *Criterion) Children() []*Criterion { return slices.Clone(c.children) }

// All iterates over the direct children in insertion order.
func (c *Criterion) All() iter.Seq[*Criterion] {
	return func(yield func(*Criterion) bool) {
		for _, child := range c.children {
			if !yield(child) {
				return
			}
		}
	}
}

// AddCriterion appends child. Children sharing a name are kept side by side.
func (c *Criterion) AddCriterion(child *Criterion) {
	c.children = append(c.children, child)
}

// GetCriterion returns the first direct child called name.
func (c *Criterion) GetCriterion(name string) (*Criterion, error) {
	i := c.indexOf(name)
	if i < 0 {
		return nil, c.notFound(name)
	}

	return c.children[i], nil
}

// DeleteCriterion removes the first direct child called name.
func (c *Criterion) DeleteCriterion(name string) error {
	i := c.indexOf(name)
	if i < 0 {
		return c.notFound(name)
	}

	c.children = slices.Delete(c.children, i, i+1)
	return nil
}

// RemoveCriterion removes child itself from the direct children, regardless of
// other children sharing its name.
func (c *Criterion) RemoveCriterion(child *Criterion) error {
	i := slices.Index(c.children, child)
	if i < 0 {
		name := ""
		if child != nil {
			name = child.name
		}
		return c.notFound(name)
	}

	c.children = slices.Delete(c.children, i, i+1)
	return nil
}

// Clone deep-copies the node and all of its descendants.
func (c *Criterion) Clone() *Criterion {
	clone := &Criterion{
		name:     c.name,
		kind:     c.kind,
		value:    c.value,
		hasValue: c.hasValue,
	}

	if len(c.children) > 0 {
		clone.children = make([]*Criterion, len(c.children))
		for i, child := range c.children {
			clone.children[i] = child.Clone()
		}
	}

	return clone
}

// Merge returns a new tree holding the union of c and other. Neither input is
// modified and the result shares no node with them.
//
// A field without children selects the whole field, so merging it with
// anything of the same name yields a field without children. Children present
// on both sides are merged recursively in place; children only present in other
// are appended. A value carried by other replaces the one of c.
func (c *Criterion) Merge(other *Criterion) (*Criterion, error) {
	if other == nil {
		return c.Clone(), nil
	}

	if c.name != other.name {
		return nil, &MergeError{Had: c.name, Got: other.name}
	}

	merged := c.Clone()
	merged.absorb(other)

	return merged, nil
}

func (c *Criterion) absorb(other *Criterion) {
	if other.hasValue {
		c.value, c.hasValue = other.value, true
	}

	if c.kind == KindField && (len(c.children) == 0 || len(other.children) == 0) {
		c.children = nil
		return
	}

	for _, theirs := range other.children {
		if i := c.indexOf(theirs.name); i >= 0 {
			c.children[i].absorb(theirs)
			continue
		}

		c.children = append(c.children, theirs.Clone())
	}
}

// Truthy coerces the node to a boolean. A node without a value, or with an
// empty or unparsable one, counts as set.
func (c *Criterion) Truthy() bool {
	if !c.hasValue || c.value == "" {
		return true
	}

	b, err := strconv.ParseBool(c.value)
	if err != nil {
		return true
	}

	return b
}

func (c *Criterion) indexOf(name string) int {
	return slices.IndexFunc(c.children, func(child *Criterion) bool {
		return child.name == name
	})
}

func (c *Criterion) notFound(name string) error {
	available := make([]string, len(c.children))
	for i, child := range c.children {
		available[i] = child.name
	}

	return &NotFoundError{Name: name, Available: available}
}
