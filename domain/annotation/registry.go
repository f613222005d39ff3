package annotation

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"sort"
	"strconv"
)

// Class is one entry of the registry. Color is assigned once per session and never persisted.
type Class struct {
	Name  string
	Index int
	Color color.RGBA
}

// Hex returns the color as #rrggbb.
func (c Class) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Color.R, c.Color.G, c.Color.B)
}

// PlaceholderName is the synthesized name for an index found on disk without a known class.
func PlaceholderName(index int) string { return "class_" + strconv.Itoa(index) }

// ColorSource yields a 24-bit RGB value; tests inject a seeded generator.
type ColorSource func() uint32

// RandomColors returns a ColorSource uniform over the 24-bit color space.
func RandomColors(r *rand.Rand) ColorSource {
	if r == nil {
		return func() uint32 { return rand.Uint32N(0x1000000) }
	}
	return func() uint32 { return r.Uint32N(0x1000000) }
}

// Registry maps class names to stable indices and back. Indices grow monotonically and are
// never reused or renumbered.
type Registry struct {
	byName  map[string]int
	byIndex map[int]Class
	next    int
	colors  ColorSource
}

// NewRegistry returns an empty registry drawing colors from colors (random when nil).
func NewRegistry(colors ColorSource) *Registry {
	if colors == nil {
		colors = RandomColors(nil)
	}
	return &Registry{byName: make(map[string]int), byIndex: make(map[int]Class), colors: colors}
}

// GetOrCreate returns the index of name, appending a new class when it is unknown. New
// indices follow the highest index in use. With sparse indices this differs from the
// class count: after registering cat=5, a new dog gets 6, not 1.
func (r *Registry) GetOrCreate(name string) int {
	if idx, ok := r.byName[name]; ok {
		return idx
	}
	idx := r.next
	r.insert(name, idx)
	return idx
}

// Register adds an explicit name/index pair, as entered at startup or seeded from config.
// Re-registering an identical pair is a no-op.
func (r *Registry) Register(name string, index int) error {
	if name == "" {
		return fmt.Errorf("class name is empty")
	}
	if index < 0 {
		return fmt.Errorf("class %q: negative index %d", name, index)
	}
	if idx, ok := r.byName[name]; ok {
		if idx == index {
			return nil
		}
		return fmt.Errorf("class %q already has index %d", name, idx)
	}
	if c, ok := r.byIndex[index]; ok {
		return fmt.Errorf("index %d already belongs to class %q", index, c.Name)
	}
	r.insert(name, index)
	return nil
}

// Reconcile creates placeholder classes for indices that have no name yet and returns the
// names it created.
func (r *Registry) Reconcile(indices []int) []string {
	var created []string
	for _, idx := range indices {
		if idx < 0 {
			continue
		}
		if _, ok := r.byIndex[idx]; ok {
			continue
		}
		name := PlaceholderName(idx)
		for {
			if _, taken := r.byName[name]; !taken {
				break
			}
			name += "_"
		}
		r.insert(name, idx)
		created = append(created, name)
	}
	return created
}

// ByIndex returns the class with the given index.
func (r *Registry) ByIndex(index int) (Class, bool) {
	c, ok := r.byIndex[index]
	return c, ok
}

// ByName returns the class with the given name.
func (r *Registry) ByName(name string) (Class, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return Class{}, false
	}
	return r.byIndex[idx], true
}

// Name returns the class name for index, or its placeholder when unknown.
func (r *Registry) Name(index int) string {
	if c, ok := r.byIndex[index]; ok {
		return c.Name
	}
	return PlaceholderName(index)
}

// Classes returns every class ordered by index.
func (r *Registry) Classes() []Class {
	out := make([]Class, 0, len(r.byIndex))
	for _, c := range r.byIndex {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Names returns class names ordered by index.
func (r *Registry) Names() []string {
	classes := r.Classes()
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = c.Name
	}
	return out
}

// Len returns the number of known classes.
func (r *Registry) Len() int { return len(r.byIndex) }

func (r *Registry) insert(name string, index int) {
	rgb := r.colors() & 0xFFFFFF
	c := Class{
		Name:  name,
		Index: index,
		Color: color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xFF},
	}
	r.byName[name] = index
	r.byIndex[index] = c
	if index >= r.next {
		r.next = index + 1
	}
}
