package splintr

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/euforicio/splintr-go/tokenizer"
)

// Option configures a Tokenizer at construction time.
type Option func(*options)

type options struct {
	resolver  tokenizer.ReservedResolver
	cacheSize int
	patterns  []string
}

// WithReservedResolver installs an external mapping for ids in the
// reserved range. Without one, decoding a reserved id fails with
// ErrReservedToken.
func WithReservedResolver(fn tokenizer.ReservedResolver) Option {
	return func(o *options) { o.resolver = fn }
}

// WithCacheSize sets the piece cache capacity. Negative disables the
// cache; zero keeps the default.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithPretokenizer overrides the variant's default split patterns.
func WithPretokenizer(patterns ...string) Option {
	return func(o *options) { o.patterns = patterns }
}

// Tokenizer binds a base vocabulary to the shared marker layout for one
// variant. It is immutable after construction; concurrent Encode and
// Decode calls on the same instance need no locking.
type Tokenizer struct {
	name   string
	layout Layout
	core   *tokenizer.Core
}

// New builds a tokenizer for the variant from already-loaded vocabulary
// pairs. Construction validates the vocabulary (byte totality, rank
// uniqueness, range fit) and the marker table; encode and decode never
// re-check these.
func New(v Variant, pairs []tokenizer.Pair, opts ...Option) (*Tokenizer, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.patterns) == 0 {
		switch v {
		case O200KBase:
			o.patterns = []string{tokenizer.O200KPattern}
		default:
			o.patterns = []string{tokenizer.CL100KPattern}
		}
	}
	return build(v.String(), v.Layout(), pairs, o)
}

// NewWithLayout builds a tokenizer with a caller-supplied layout, for
// vocabularies outside the built-in variants. The cl100k split pattern
// is used unless WithPretokenizer overrides it.
func NewWithLayout(name string, l Layout, pairs []tokenizer.Pair, opts ...Option) (*Tokenizer, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.patterns) == 0 {
		o.patterns = []string{tokenizer.CL100KPattern}
	}
	return build(name, l, pairs, o)
}

// Load fetches the variant's vocabulary via the encoding loader and
// builds a tokenizer from it.
func Load(v Variant, opts ...Option) (*Tokenizer, error) {
	pairs, err := tokenizer.LoadEncoding(v.String())
	if err != nil {
		return nil, err
	}
	return New(v, pairs, opts...)
}

func build(name string, l Layout, pairs []tokenizer.Pair, o options) (*Tokenizer, error) {
	specials := make(map[string]tokenizer.Rank, len(markerTable))
	for i, m := range markerTable {
		specials[m.Literal] = l.ExtendedBase() + uint32(i)
	}
	pre, err := tokenizer.NewPretokenizer(o.patterns...)
	if err != nil {
		return nil, fmt.Errorf("splintr: build %s: %w", name, err)
	}
	core, err := tokenizer.NewCore(tokenizer.Config{
		Pairs:        pairs,
		Specials:     specials,
		ReservedLo:   l.BaseSize,
		ReservedHi:   l.ExtendedBase(),
		Pretokenizer: pre,
		CacheSize:    o.cacheSize,
		Resolver:     o.resolver,
	})
	if err != nil {
		return nil, fmt.Errorf("splintr: build %s: %w", name, err)
	}
	return &Tokenizer{name: name, layout: l, core: core}, nil
}

// Name returns the variant or layout name the tokenizer was built with.
func (t *Tokenizer) Name() string { return t.name }

// Layout returns the tokenizer's identifier layout.
func (t *Tokenizer) Layout() Layout { return t.layout }

// Encode converts text to token ids. Marker literals in the input are
// always emitted as their single reserved id; everything between them
// is BPE-merged. Encoding is total and never fails.
func (t *Tokenizer) Encode(text string) []uint32 {
	return t.core.Encode(text)
}

// EncodeOrdinary converts text to token ids with marker matching
// disabled; marker-like substrings are merged as plain text.
func (t *Tokenizer) EncodeOrdinary(text string) []uint32 {
	return t.core.EncodeOrdinary(text)
}

// EncodeBatch encodes independent texts in parallel. Results line up
// with the inputs.
func (t *Tokenizer) EncodeBatch(texts []string) [][]uint32 {
	out := make([][]uint32, len(texts))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range texts {
		g.Go(func() error {
			out[i] = t.core.Encode(s)
			return nil
		})
	}
	_ = g.Wait() // encoding is total; the group only bounds parallelism
	return out
}

// Decode reconstructs the text for ids. Ids outside the variant's
// identifier space fail with ErrInvalidToken; reserved ids without a
// resolver fail with ErrReservedToken. Nothing is silently substituted.
func (t *Tokenizer) Decode(ids []uint32) (string, error) {
	return t.core.DecodeUTF8(ids)
}

// DecodeBytes is Decode without the final string conversion, for hosts
// that tokenize raw byte sequences.
func (t *Tokenizer) DecodeBytes(ids []uint32) ([]byte, error) {
	return t.core.DecodeBytes(ids)
}

// Segments splits text into literal and marker segments without
// encoding the literals. Concatenating the segment texts reproduces
// the input exactly.
func (t *Tokenizer) Segments(text string) []tokenizer.Segment {
	return t.core.Segments(text)
}

// MarkerID returns the id of the named marker for this tokenizer's
// variant.
func (t *Tokenizer) MarkerID(name string) (uint32, bool) {
	off, ok := markerOffsets[name]
	if !ok {
		return 0, false
	}
	return t.layout.ExtendedBase() + off, true
}

// Marker is the reverse lookup: the marker definition for an id, for
// callers that detect or strip markers without a full decode.
func (t *Tokenizer) Marker(id uint32) (Marker, bool) {
	if t.layout.Classify(id) != ClassMarker {
		return Marker{}, false
	}
	return markerTable[id-t.layout.ExtendedBase()], true
}

// Classify names the identifier range id falls in.
func (t *Tokenizer) Classify(id uint32) TokenClass {
	return t.layout.Classify(id)
}

// Close releases the decode store.
func (t *Tokenizer) Close() { t.core.Close() }
