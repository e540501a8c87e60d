package api

// Context is the shared variable space nodes communicate through. It
// accumulates as execution proceeds: entries are only ever appended or
// overwritten wholesale, never mutated in place.
type Context map[string]Value

// Get returns the value bound to name, or the None value when absent.
func (c Context) Get(name string) Value {
	if v, ok := c[name]; ok {
		return v
	}
	return None()
}

// Lookup returns the value bound to name and whether it is present.
func (c Context) Lookup(name string) (Value, bool) {
	v, ok := c[name]
	return v, ok
}

// Clone returns a shallow copy. Values are immutable, so sharing them
// between the copies is safe.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Names returns the bound names in unspecified order.
func (c Context) Names() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	return out
}
