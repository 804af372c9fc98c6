package orp

import "sync/atomic"

type snapshot struct {
	calc *Calculator
	gen  uint64
}

// Store holds the active calculator. Readers always see a complete table;
// a reload builds a new calculator and swaps it in. Every swap advances the
// store's generation.
type Store struct {
	cur atomic.Pointer[snapshot]
}

// NewStore returns a store serving c.
func NewStore(c *Calculator) *Store {
	if c == nil {
		c = NewCalculator(nil)
	}
	s := &Store{}
	s.cur.Store(&snapshot{calc: c})
	return s
}

// Load returns the current calculator.
func (s *Store) Load() *Calculator {
	return s.cur.Load().calc
}

// Current returns the current calculator and the generation it was
// installed at. Results computed with it may be tagged with gen.
func (s *Store) Current() (*Calculator, uint64) {
	snap := s.cur.Load()
	return snap.calc, snap.gen
}

// Swap installs c and returns the previous calculator.
func (s *Store) Swap(c *Calculator) *Calculator {
	for {
		old := s.cur.Load()
		if s.cur.CompareAndSwap(old, &snapshot{calc: c, gen: old.gen + 1}) {
			return old.calc
		}
	}
}

// ReloadFile loads an exception-words file and swaps in a calculator built
// from it. On error the current calculator stays in place.
func (s *Store) ReloadFile(path string) (int, error) {
	exc, err := LoadExceptions(path)
	if err != nil {
		return 0, err
	}
	s.Swap(NewCalculator(exc))
	return exc.Len(), nil
}
