package heap

// Symbol is an interned name. Equality is pointer identity: two Symbol
// values with the same Name always share one TaggedPtr, the interner's
// core guarantee (original_source/src/symbolmap.rs), since the heap's
// Intern always returns the same slot index for the same string.
type Symbol struct {
	Name string
	self TaggedPtr
}

func (*Symbol) isValue() {}

// Self returns the TaggedPtr this Symbol was allocated at.
func (s *Symbol) Self() TaggedPtr { return s.self }
