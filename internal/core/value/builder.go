package value

// ObjectBuilder assembles an array of named fields by hand, typically for a
// component's default definition.
type ObjectBuilder struct {
	items []Value
}

// Object starts a new field set
func Object() *ObjectBuilder {
	return &ObjectBuilder{}
}

// Set adds a field. Setting a name that is already present replaces the
// earlier field in place, so built objects never carry duplicate names.
func (b *ObjectBuilder) Set(name string, v Value) *ObjectBuilder {
	field := Component(name, v)
	for i, item := range b.items {
		if item.s == name {
			b.items[i] = field
			return b
		}
	}
	b.items = append(b.items, field)
	return b
}

func (b *ObjectBuilder) Build() Value {
	return Array(b.items...)
}
