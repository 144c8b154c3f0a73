package splintr

import (
	"fmt"

	"github.com/euforicio/splintr-go/tokenizer"
)

// Variant selects one trained base vocabulary. All variants share the
// marker table; only the identifier range bases differ.
type Variant int

const (
	CL100KBase Variant = iota
	O200KBase
)

func (v Variant) String() string {
	switch v {
	case CL100KBase:
		return "cl100k_base"
	case O200KBase:
		return "o200k_base"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// Category groups markers. The declaration order is a fixed partition
// of the marker id slots; downstream consumers hardcode offsets, so it
// must never be reordered.
type Category int

const (
	CategoryConversation Category = iota
	CategoryReasoning
	CategoryAgentLoop
	CategoryToolCalling
	CategoryCodeExecution
	CategoryRetrieval
	CategoryMemory
	CategoryControl
	CategoryMultimodal
	CategoryDocument
)

func (c Category) String() string {
	switch c {
	case CategoryConversation:
		return "conversation"
	case CategoryReasoning:
		return "reasoning"
	case CategoryAgentLoop:
		return "agent-loop"
	case CategoryToolCalling:
		return "tool-calling"
	case CategoryCodeExecution:
		return "code-execution"
	case CategoryRetrieval:
		return "retrieval"
	case CategoryMemory:
		return "memory"
	case CategoryControl:
		return "control"
	case CategoryMultimodal:
		return "multimodal"
	case CategoryDocument:
		return "document"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Marker is one named special token. Its offset within the extended
// range is its index in the canonical table and is variant-independent.
type Marker struct {
	Name     string
	Literal  string
	Category Category
}

// TokenClass names the identifier range an id falls in.
type TokenClass int

const (
	ClassInvalid TokenClass = iota
	ClassBase
	ClassReserved
	ClassMarker
)

func (c TokenClass) String() string {
	switch c {
	case ClassBase:
		return "base"
	case ClassReserved:
		return "reserved"
	case ClassMarker:
		return "marker"
	default:
		return "invalid"
	}
}

// Decode errors, re-exported from the core for callers that only import
// this package.
var (
	ErrInvalidToken  = tokenizer.ErrInvalidToken
	ErrReservedToken = tokenizer.ErrReservedToken
)
