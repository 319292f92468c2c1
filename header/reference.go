package header

import (
	_ "embed"
	"bytes"
	"sync"

	"github.com/dsnet/shoco/shoco"
)

//go:embed testdata/english.h
var referenceHeader []byte

var (
	referenceOnce  sync.Once
	referenceModel *shoco.Model
	referenceErr   error
)

// Reference returns the hand-built English-words model shipped with this
// module, parsed once from the embedded C-header text and cached for
// subsequent callers. Every call returns the same *shoco.Model; callers
// must not mutate anything reachable from it.
func Reference() (*shoco.Model, error) {
	referenceOnce.Do(func() {
		referenceModel, referenceErr = Parse(bytes.NewReader(referenceHeader))
	})
	return referenceModel, referenceErr
}
