package vm

import (
	"math/rand"
	"time"

	"github.com/kolkov/casexpr/internal/data"
	"github.com/kolkov/casexpr/internal/token"
)

// Context supplies the evaluator with everything outside the case itself:
// settings that affect semantics, the random source, the clock, and the
// host's lagged-case accessors.
type Context struct {
	// Epoch is the starting year for resolving two-digit years.
	Epoch int

	// FuzzBits is the number of mantissa bits ignored by the functions
	// that test for integer values.
	FuzzBits int

	// ViewLength and ViewWidth back $LENGTH and $WIDTH.
	ViewLength int
	ViewWidth  int

	// MaxWarnings caps the warnings buffered per evaluation; zero means
	// no cap.
	MaxWarnings int

	// Rand is the source for UNIFORM and NORMAL. Nil means those
	// functions return SYSMIS.
	Rand *rand.Rand

	// Now supplies the clock for the $DATE, $TIME and $JDATE system
	// variables. Nil falls back to time.Now.
	Now func() time.Time

	// LagNum and LagStr fetch values from n cases back. Nil means LAG
	// returns missing.
	LagNum func(v *data.Variable, n int) float64
	LagStr func(v *data.Variable, n int) []byte
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Warning is a runtime diagnostic attributed to a source range. The
// evaluator raises each warning site at most once per evaluation.
type Warning struct {
	Span    token.Span
	Message string
}

func (w *Warning) String() string {
	return w.Span.String() + ": " + w.Message
}
