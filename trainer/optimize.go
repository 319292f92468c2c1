package trainer

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dsnet/shoco/shoco"
)

// sizeClass describes one of the three pack-scheme size classes the
// optimizer searches independently: bytesPacked bytes encode fieldCount+1
// original bytes (one leading byte plus fieldCount successors), behind a
// header of headerWidth leading one-bits.
type sizeClass struct {
	bytesPacked int
	headerWidth uint
	fieldCount  int
}

var sizeClasses = []sizeClass{
	{bytesPacked: 1, headerWidth: 2, fieldCount: 1},
	{bytesPacked: 2, headerWidth: 3, fieldCount: 3},
	{bytesPacked: 4, headerWidth: 4, fieldCount: 7},
}

// candidate is one enumerated width vector for a size class: a leading
// field of leadWidth bits followed by fieldCount successor fields of
// succWidth bits each, uniform across the class (a reduced slice of the
// full non-uniform search space; see DESIGN.md).
type candidate struct {
	leadWidth uint
	succWidth uint
}

func enumerateCandidates(class sizeClass, maxLead, maxSucc uint) []candidate {
	total := uint(class.bytesPacked)*8 - class.headerWidth
	var out []candidate
	for lead := uint(1); lead <= maxLead && lead < total; lead++ {
		rem := total - lead
		if class.fieldCount == 0 || rem%uint(class.fieldCount) != 0 {
			continue
		}
		succ := rem / uint(class.fieldCount)
		if succ < 1 || succ > maxSucc {
			continue
		}
		out = append(out, candidate{leadWidth: lead, succWidth: succ})
	}
	return out
}

// canEncode reports whether a candidate's fields can represent the chain
// starting at offset p within segment, using the already-ranked
// charsByID/idsByChar/successorIDs tables.
func canEncode(segment []byte, p int, cand candidate, class sizeClass, idsByChar [256]byte, successorIDs []byte, c int) bool {
	if p+class.fieldCount >= len(segment) {
		return false
	}
	id0 := idsByChar[segment[p]]
	if id0 == shoco.InvalidIndex || uint32(id0) >= 1<<cand.leadWidth {
		return false
	}
	last := id0
	for i := 1; i <= class.fieldCount; i++ {
		b := segment[p+i]
		if b == 0 {
			return false
		}
		idk := idsByChar[b]
		if idk == shoco.InvalidIndex {
			return false
		}
		sk := successorIDs[flatRowCol(int(last), int(idk), c)]
		if sk == shoco.InvalidIndex || uint32(sk) >= 1<<cand.succWidth {
			return false
		}
		last = idk
	}
	return true
}

// optimizePacks runs the pack-scheme search: for each size class, score
// every enumerated candidate by scanning the corpus once per candidate
// concurrently (one goroutine per candidate), and keep the candidate with
// the smallest accumulated ratio. Ties are broken by encounter order, i.e.
// the first candidate enumerateCandidates produced.
func optimizePacks(corpus []byte, o Options, charsByID []byte, idsByChar [256]byte, successorIDs []byte, c int) ([]shoco.PackScheme, error) {
	n := o.EncodingTypes
	packs := make([]shoco.PackScheme, n)

	for ci := 0; ci < n; ci++ {
		class := sizeClasses[ci]
		cands := enumerateCandidates(class, o.MaxLeadingBits, o.MaxSuccessorBits)
		if len(cands) == 0 {
			return nil, shoco.ErrInvalidConfiguration
		}

		scores := make([]float64, len(cands))
		g, _ := errgroup.WithContext(context.Background())
		if o.Concurrency > 0 {
			g.SetLimit(o.Concurrency)
		}
		for i, cand := range cands {
			i, cand := i, cand
			g.Go(func() error {
				scores[i] = scoreCandidate(corpus, o.Input, cand, class, idsByChar, successorIDs, c)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		best := 0
		for i := 1; i < len(cands); i++ {
			if scores[i] < scores[best] {
				best = i
			}
		}

		widths := make([]uint, 0, class.fieldCount+2)
		widths = append(widths, class.headerWidth, cands[best].leadWidth)
		for i := 0; i < class.fieldCount; i++ {
			widths = append(widths, cands[best].succWidth)
		}
		p, err := shoco.NewPackScheme(widths)
		if err != nil {
			return nil, err
		}
		packs[ci] = p
	}
	return packs, nil
}

// scoreCandidate accumulates the ratio contribution (bytesPacked /
// bytesUnpacked) of every position where cand can encode, across every
// segment of corpus. All candidates of one size class share the same
// ratio, so the total is proportional to the number of positions cand can
// encode, and a lower total means fewer such positions.
func scoreCandidate(corpus []byte, input InputOptions, cand candidate, class sizeClass, idsByChar [256]byte, successorIDs []byte, c int) float64 {
	ratio := float64(class.bytesPacked) / float64(class.fieldCount+1)
	var total float64
	reader := NewCorpusReader(bytes.NewReader(corpus), input)
	for seg, ok := reader.Next(); ok; seg, ok = reader.Next() {
		for p := 0; p < len(seg); p++ {
			if canEncode(seg, p, cand, class, idsByChar, successorIDs, c) {
				total += ratio
			}
		}
	}
	return total
}
