package fingerprint

// Index is the set of keys already present at the destination. It is
// rebuilt from the destination's own listing on every run, which keeps
// the destination the single source of truth for what has been synced.
type Index struct {
	keys map[Key]bool
}

func NewIndex() Index {
	return Index{map[Key]bool{}}
}

func (i Index) Add(k Key) {
	i.keys[k] = true
}

func (i Index) AddAll(other Index) {
	for k := range other.keys {
		i.Add(k)
	}
}

func (i Index) Exists(k Key) bool {
	if _, ok := i.keys[k]; ok {
		return true
	}

	return false
}

func (i Index) Size() int {
	return len(i.keys)
}
