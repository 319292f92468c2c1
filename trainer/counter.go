package trainer

import "sort"

// Number is the set of count types a Counter can accumulate: integer counts
// for byte frequency, float counts for pack-scheme scoring.
type Number interface {
	~int | ~int64 | ~float64
}

// Counted pairs a counted key with its accumulated value, as returned by
// Counter.TopK.
type Counted[T Number] struct {
	Key   byte
	Value T
}

// Counter is a frequency map over byte keys with "top-K by value"
// extraction. The zero value is ready to use.
type Counter[T Number] struct {
	counts map[byte]T
}

// Add increments the count for key by delta.
func (c *Counter[T]) Add(key byte, delta T) {
	if c.counts == nil {
		c.counts = make(map[byte]T)
	}
	c.counts[key] += delta
}

// Get returns the current count for key.
func (c *Counter[T]) Get(key byte) T {
	return c.counts[key]
}

// Len returns the number of distinct keys seen.
func (c *Counter[T]) Len() int {
	return len(c.counts)
}

// TopK returns up to k entries in descending order of Value. Ties are
// broken by ascending key byte value, a deterministic tie-break chosen so
// that two Counters fed identical (key, delta) pairs in any order always
// produce an identical TopK result.
func (c *Counter[T]) TopK(k int) []Counted[T] {
	all := make([]Counted[T], 0, len(c.counts))
	for key, v := range c.counts {
		all = append(all, Counted[T]{Key: key, Value: v})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Value != all[j].Value {
			return all[i].Value > all[j].Value
		}
		return all[i].Key < all[j].Key
	})
	if k >= 0 && k < len(all) {
		all = all[:k]
	}
	return all
}

// BigramCounter accumulates leading-byte and successor-byte frequencies
// across a corpus: for every adjacent pair (b, b') within a training
// segment, it increments the count of b as a leader and the count of b'
// as a successor of b.
type BigramCounter struct {
	leaders    Counter[int]
	successors map[byte]*Counter[int]
}

// NewBigramCounter returns an empty BigramCounter.
func NewBigramCounter() *BigramCounter {
	return &BigramCounter{successors: make(map[byte]*Counter[int])}
}

// Add folds the bigrams of one corpus segment (length >= 2, as produced by
// CorpusReader.Next) into the counter.
func (bc *BigramCounter) Add(segment []byte) {
	for i := 0; i+1 < len(segment); i++ {
		b, next := segment[i], segment[i+1]
		bc.leaders.Add(b, 1)
		sc, ok := bc.successors[b]
		if !ok {
			sc = &Counter[int]{}
			bc.successors[b] = sc
		}
		sc.Add(next, 1)
	}
	// The final byte of a segment is counted only as the successor in the
	// pair starting at i == len(segment)-2 (already counted above); it never
	// leads a pair within this segment, so nothing further to add for it.
}

// Leaders returns the top-k most frequent leading bytes, ranked by
// Counter.TopK's deterministic tie-break.
func (bc *BigramCounter) Leaders(k int) []Counted[int] {
	return bc.leaders.TopK(k)
}

// Successors returns the top-k most frequent successors observed after
// leader b, ranked by Counter.TopK's deterministic tie-break.
func (bc *BigramCounter) Successors(b byte, k int) []Counted[int] {
	sc, ok := bc.successors[b]
	if !ok {
		return nil
	}
	return sc.TopK(k)
}
