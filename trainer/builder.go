package trainer

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	"github.com/dsnet/golib/errs"

	"github.com/dsnet/shoco/shoco"
)

// Options configures ModelBuilder.Build.
type Options struct {
	// MaxLeadingBits sets C = 2^MaxLeadingBits, the number of distinct
	// leading bytes tracked. Must be between 1 and 8.
	MaxLeadingBits uint

	// MaxSuccessorBits sets S = 2^MaxSuccessorBits, the number of
	// successor ranks tracked per leading byte. Must be between 1 and
	// MaxLeadingBits.
	MaxSuccessorBits uint

	// EncodingTypes selects how many of the canonical pack schemes (1-3)
	// the built Model carries. Zero defaults to 3.
	EncodingTypes int

	// OptimizeEncoding, when true, runs the pack-scheme search instead of
	// using the canonical default width vectors.
	OptimizeEncoding bool

	// Concurrency bounds how many candidate schemes Optimize scores in
	// parallel. Zero or negative means unbounded (one goroutine per
	// candidate).
	Concurrency int

	// Input controls CorpusReader's segmentation and trimming. Zero
	// means DefaultInputOptions.
	Input InputOptions

	// Dedup, when true, skips segments that are exact duplicates of one
	// already counted (fingerprinted with xxhash), so a corpus dominated
	// by a handful of repeated lines doesn't skew the frequency tables
	// toward them.
	Dedup bool
}

// ModelBuilder accumulates corpus segments and builds a shoco.Model from
// them. Construct one with NewModelBuilder, which fills in defaults for
// zero option fields; a zero ModelBuilder fails Build's option checks.
// There is no incremental/streaming builder API because the ranking step
// needs the complete frequency tables before it can assign ranks.
type ModelBuilder struct {
	opts Options
}

// NewModelBuilder returns a ModelBuilder configured by opts.
func NewModelBuilder(opts Options) *ModelBuilder {
	if opts.EncodingTypes == 0 {
		opts.EncodingTypes = 3
	}
	if opts.MaxLeadingBits == 0 {
		opts.MaxLeadingBits = 5 // C = 32, the canonical default
	}
	if opts.MaxSuccessorBits == 0 {
		opts.MaxSuccessorBits = 4 // S = 16, the canonical default
	}
	return &ModelBuilder{opts: opts}
}

// Build trains a Model from corpus: segment, count, rank, and assemble the
// lookup tables; then (optionally) run the pack scheme search.
func (mb *ModelBuilder) Build(corpus []byte) (m *shoco.Model, err error) {
	defer errs.Recover(&err)

	o := mb.opts
	errs.Assert(o.MaxLeadingBits >= 1 && o.MaxLeadingBits <= 8, shoco.ErrInvalidConfiguration)
	errs.Assert(o.MaxSuccessorBits >= 1 && o.MaxSuccessorBits <= o.MaxLeadingBits, shoco.ErrInvalidConfiguration)
	errs.Assert(o.EncodingTypes >= 1 && o.EncodingTypes <= 3, shoco.ErrInvalidConfiguration)

	c := 1 << o.MaxLeadingBits
	s := 1 << o.MaxSuccessorBits

	bc := NewBigramCounter()
	seen := make(map[uint64]bool)
	reader := NewCorpusReader(bytes.NewReader(corpus), o.Input)
	for seg, ok := reader.Next(); ok; seg, ok = reader.Next() {
		if o.Dedup {
			h := xxhash.Sum64(seg)
			if seen[h] {
				continue
			}
			seen[h] = true
		}
		bc.Add(seg)
	}

	leaders := bc.Leaders(c)
	charsByID := make([]byte, c)
	var idsByChar [256]byte
	for i := range idsByChar {
		idsByChar[i] = shoco.InvalidIndex
	}
	used := make(map[byte]bool, len(leaders))
	for i, lc := range leaders {
		charsByID[i] = lc.Key
		idsByChar[lc.Key] = byte(i)
		used[lc.Key] = true
	}
	// Pad with otherwise-unused byte values if the corpus had fewer than C
	// distinct leaders, so CharsByID keeps its required power-of-two
	// length (shoco.NewModel rejects a short table outright).
	next := 0
	for i := len(leaders); i < c; i++ {
		for used[byte(next)] {
			next++
		}
		charsByID[i] = byte(next)
		idsByChar[byte(next)] = byte(i)
		used[byte(next)] = true
		next++
	}

	successorIDs := make([]byte, c*c)
	for i := range successorIDs {
		successorIDs[i] = shoco.InvalidIndex
	}
	minChar, maxChar := 256, 0
	for r, lc := range leaders {
		if int(lc.Key) < minChar {
			minChar = int(lc.Key)
		}
		if int(lc.Key) >= maxChar {
			maxChar = int(lc.Key) + 1
		}
		successors := bc.Successors(lc.Key, s)
		for rank, sc := range successors {
			if rp := idsByChar[sc.Key]; rp != shoco.InvalidIndex {
				successorIDs[flatRowCol(r, int(rp), c)] = byte(rank)
			}
		}
	}
	if len(leaders) == 0 {
		minChar, maxChar = 0, 0
	}

	rows := maxChar - minChar
	charsBySuccessorID := make([]byte, rows*s)
	for r, lc := range leaders {
		successors := bc.Successors(lc.Key, s)
		for rank, sc := range successors {
			charsBySuccessorID[flatRowCol(int(lc.Key)-minChar, rank, s)] = sc.Key
		}
	}

	var packs []shoco.PackScheme
	if o.OptimizeEncoding {
		packs, err = optimizePacks(corpus, o, charsByID, idsByChar, successorIDs, c)
		errs.Panic(err)
	} else {
		packs, err = shoco.BuildDefaultPacks(o.EncodingTypes)
		errs.Panic(err)
	}

	m, err = shoco.NewModel(shoco.ModelConfig{
		MinChar:            minChar,
		MaxChar:            maxChar,
		CharsByID:          charsByID,
		IDsByChar:          idsByChar,
		SuccessorIDs:       successorIDs,
		SuccessorCols:      s,
		CharsBySuccessorID: charsBySuccessorID,
		Packs:              packs,
	})
	errs.Panic(err)
	return m, nil
}

// flatRowCol mirrors shoco's unexported flatIndex; the trainer builds the
// same row-major tables but lives in a separate package so it can import
// shoco without a cycle.
func flatRowCol(row, col, cols int) int { return row*cols + col }
