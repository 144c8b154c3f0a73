package tokenizer

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Rank represents the priority/rank of a token in BPE encoding.
// Lower rank means the merge was learned earlier and binds tighter.
type Rank = uint32

// Pair is one base vocabulary entry: the raw token bytes and their rank.
type Pair struct {
	Bytes []byte
	Rank  Rank
}

// ReservedResolver maps an externally-reserved token id to its bytes.
// Returning ok=false leaves the id unresolved and decoding fails.
type ReservedResolver func(id Rank) ([]byte, bool)

// Decode errors. Both are wrapped with the offending id; use errors.Is.
var (
	ErrInvalidToken  = errors.New("tokenizer: token id out of range")
	ErrReservedToken = errors.New("tokenizer: reserved token id has no resolver")
)

// DefaultCacheSize bounds the piece cache when Config.CacheSize is zero.
const DefaultCacheSize = 8192

// maxCachedPiece keeps pathological pieces from evicting the whole cache.
const maxCachedPiece = 128

// Config carries everything a Core needs. Pairs and Specials are treated
// as immutable after construction.
type Config struct {
	// Pairs is the base vocabulary. It must contain an entry for every
	// single byte value and all ranks must fall below ReservedLo.
	Pairs []Pair
	// Specials maps special token literals to their ids. Ids must sit at
	// or above ReservedHi.
	Specials map[string]Rank
	// ReservedLo/ReservedHi delimit the externally-reserved id range
	// [ReservedLo, ReservedHi). Ids in it are opaque to the Core.
	ReservedLo Rank
	ReservedHi Rank
	// Pretokenizer splits literal spans before merging. Nil means each
	// literal span is merged as a single piece.
	Pretokenizer *Pretokenizer
	// CacheSize is the piece cache capacity. Zero selects
	// DefaultCacheSize, negative disables caching.
	CacheSize int
	// Resolver, when set, supplies bytes for reserved ids during decode.
	Resolver ReservedResolver
}

// Core is the segmentation-and-encoding engine. A constructed Core is
// immutable and safe for concurrent use.
type Core struct {
	enc        map[string]Rank
	dec        tokenStore
	specials   *specialsTrie
	specialDec map[Rank]string
	pre        *Pretokenizer
	reservedLo Rank
	reservedHi Rank
	resolver   ReservedResolver
	cache      *lru.Cache[string, []Rank]
	nodesPool  sync.Pool
}

// NewCore validates cfg and builds the engine. All construction errors
// surface here; Encode never fails afterwards.
func NewCore(cfg Config) (*Core, error) {
	if len(cfg.Pairs) == 0 {
		return nil, errors.New("tokenizer: empty vocabulary")
	}
	if cfg.ReservedLo > cfg.ReservedHi {
		return nil, fmt.Errorf("tokenizer: reserved range [%d, %d) is inverted", cfg.ReservedLo, cfg.ReservedHi)
	}

	enc := make(map[string]Rank, len(cfg.Pairs))
	var seen [256]bool
	for _, p := range cfg.Pairs {
		if p.Rank >= cfg.ReservedLo {
			return nil, fmt.Errorf("tokenizer: rank %d overlaps the reserved range", p.Rank)
		}
		enc[string(p.Bytes)] = p.Rank
		if len(p.Bytes) == 1 {
			seen[p.Bytes[0]] = true
		}
	}
	for b, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("tokenizer: base vocabulary is missing byte 0x%02x", b)
		}
	}

	dec, err := newTokenStore(cfg.Pairs)
	if err != nil {
		return nil, err
	}

	trie := &specialsTrie{}
	specialDec := make(map[Rank]string, len(cfg.Specials))
	for lit, id := range cfg.Specials {
		if id < cfg.ReservedHi {
			return nil, fmt.Errorf("tokenizer: special %q id %d collides with base or reserved ids", lit, id)
		}
		if prev, ok := specialDec[id]; ok {
			return nil, fmt.Errorf("tokenizer: specials %q and %q share id %d", prev, lit, id)
		}
		if err := trie.insert(lit, id); err != nil {
			return nil, err
		}
		specialDec[id] = lit
	}

	var cache *lru.Cache[string, []Rank]
	if cfg.CacheSize >= 0 {
		size := cfg.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		cache, err = lru.New[string, []Rank](size)
		if err != nil {
			return nil, err
		}
	}

	return &Core{
		enc:        enc,
		dec:        dec,
		specials:   trie,
		specialDec: specialDec,
		pre:        cfg.Pretokenizer,
		reservedLo: cfg.ReservedLo,
		reservedHi: cfg.ReservedHi,
		resolver:   cfg.Resolver,
		cache:      cache,
		nodesPool:  sync.Pool{New: func() any { b := make([]mergeNode, 0, 64); return &b }},
	}, nil
}

// Close releases the decode store.
func (c *Core) Close() { c.dec.Close() }

// Encode converts text to token ids. Registered special literals are
// always emitted as their single id, even when they occur inside what
// looks like ordinary text. Encoding is total: any input maps to ids.
func (c *Core) Encode(text string) []Rank {
	out := make([]Rank, 0, len(text)/3+1)
	lit := 0
	for i := 0; i < len(text); {
		id, n, ok := c.specials.matchAt(text, i)
		if !ok {
			i++
			continue
		}
		if lit < i {
			out = c.appendLiteral(out, text[lit:i])
		}
		out = append(out, id)
		i += n
		lit = i
	}
	if lit < len(text) {
		out = c.appendLiteral(out, text[lit:])
	}
	return out
}

// EncodeOrdinary converts text to token ids with special matching
// disabled; special literals in the input merge like any other text.
func (c *Core) EncodeOrdinary(text string) []Rank {
	out := make([]Rank, 0, len(text)/3+1)
	return c.appendLiteral(out, text)
}

func (c *Core) appendLiteral(out []Rank, span string) []Rank {
	for piece := range c.pre.Split(span) {
		out = c.appendPiece(out, piece)
	}
	return out
}

func (c *Core) appendPiece(out []Rank, piece string) []Rank {
	if piece == "" {
		return out
	}
	// Whole piece in the vocabulary; also covers single bytes, which the
	// base vocabulary is guaranteed to contain.
	if id, ok := c.enc[piece]; ok {
		return append(out, id)
	}
	if c.cache != nil {
		if ids, ok := c.cache.Get(piece); ok {
			return append(out, ids...)
		}
	}
	ids := c.merge(piece)
	if c.cache != nil && len(piece) <= maxCachedPiece {
		c.cache.Add(piece, ids)
	}
	return append(out, ids...)
}

// IsSpecial reports whether id denotes a registered special token.
func (c *Core) IsSpecial(id Rank) bool {
	_, ok := c.specialDec[id]
	return ok
}

// SpecialLiteral returns the literal string for a special token id.
func (c *Core) SpecialLiteral(id Rank) (string, bool) {
	lit, ok := c.specialDec[id]
	return lit, ok
}

func (c *Core) DecodeUTF8(ids []Rank) (string, error) {
	bs, err := c.DecodeBytes(ids)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

func (c *Core) DecodeBytes(ids []Rank) ([]byte, error) {
	var out []byte
	if err := c.DecodeBytesInto(&out, ids); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeBytesInto appends the decoded bytes for the provided ids into
// dst, avoiding intermediate slice allocations. Ids outside the known
// ranges and unresolved reserved ids fail without partial substitution.
func (c *Core) DecodeBytesInto(dst *[]byte, ids []Rank) error {
	buf := *dst
	for _, id := range ids {
		switch {
		case id < c.reservedLo:
			if !c.dec.AppendInto(&buf, id) {
				return fmt.Errorf("%w: %d", ErrInvalidToken, id)
			}
		case id < c.reservedHi:
			var b []byte
			ok := false
			if c.resolver != nil {
				b, ok = c.resolver(id)
			}
			if !ok {
				return fmt.Errorf("%w: %d", ErrReservedToken, id)
			}
			buf = append(buf, b...)
		default:
			lit, ok := c.specialDec[id]
			if !ok {
				return fmt.Errorf("%w: %d", ErrInvalidToken, id)
			}
			buf = append(buf, lit...)
		}
	}
	*dst = buf
	return nil
}
