package tokenizer

import (
	"errors"
	"slices"
	"sync"
	"testing"
)

func newEncodeCore(t *testing.T, opts ...func(*Config)) *Core {
	t.Helper()
	cfg := Config{
		Pairs: testPairs(map[string]Rank{"th": 500, "the": 501, "in": 502}),
		Specials: map[string]Rank{
			"<|think|>":  1010,
			"<|/think|>": 1011,
			"<|pad|>":    1012,
		},
		ReservedLo: 1000,
		ReservedHi: 1010,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	pre, err := NewPretokenizer(CL100KPattern)
	if err != nil {
		t.Fatalf("NewPretokenizer: %v", err)
	}
	cfg.Pretokenizer = pre
	core, err := NewCore(cfg)
	if err != nil {
		t.Fatalf("NewCore: %v", err)
	}
	t.Cleanup(core.Close)
	return core
}

func TestNewCoreConstructionErrors(t *testing.T) {
	base := testPairs(nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{
			name: "empty vocabulary",
			cfg:  Config{ReservedLo: 1000, ReservedHi: 1000},
		},
		{
			name: "missing byte value",
			cfg:  Config{Pairs: base[:255], ReservedLo: 1000, ReservedHi: 1000},
		},
		{
			name: "duplicate rank",
			cfg: Config{
				Pairs:      append(slices.Clone(base), Pair{Bytes: []byte("xy"), Rank: 7}),
				ReservedLo: 1000, ReservedHi: 1000,
			},
		},
		{
			name: "rank inside reserved range",
			cfg: Config{
				Pairs:      append(slices.Clone(base), Pair{Bytes: []byte("xy"), Rank: 1000}),
				ReservedLo: 1000, ReservedHi: 1010,
			},
		},
		{
			name: "special id below reserved end",
			cfg: Config{
				Pairs:      base,
				Specials:   map[string]Rank{"<|pad|>": 1005},
				ReservedLo: 1000, ReservedHi: 1010,
			},
		},
		{
			name: "specials sharing an id",
			cfg: Config{
				Pairs:      base,
				Specials:   map[string]Rank{"<|pad|>": 1010, "<|sep|>": 1010},
				ReservedLo: 1000, ReservedHi: 1010,
			},
		},
		{
			name: "inverted reserved range",
			cfg:  Config{Pairs: base, ReservedLo: 1010, ReservedHi: 1000},
		},
	}
	for _, tc := range tests {
		if _, err := NewCore(tc.cfg); err == nil {
			t.Fatalf("%s: expected construction error", tc.name)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	core := newEncodeCore(t)

	inputs := []string{
		"",
		"hi",
		"the thing in the think tank",
		"héllo wörld — 你好",
		"<|think|>hi<|/think|>bye",
		"<|pad|><|pad|>",
		"almost a marker: <|think|",
		"spaces   and\nnewlines\r\n",
		"\xff\xfe raw bytes \xfd",
	}
	for _, in := range inputs {
		ids := core.Encode(in)
		back, err := core.DecodeUTF8(ids)
		if err != nil {
			t.Fatalf("decode(%q): %v", in, err)
		}
		if back != in {
			t.Fatalf("round trip of %q: got %q (ids %v)", in, back, ids)
		}
	}
}

func TestEncodeEmitsMarkersAtomically(t *testing.T) {
	core := newEncodeCore(t)

	ids := core.Encode("<|think|>hi<|/think|>bye")
	want := []Rank{1010, 'h', 'i', 1011, 'b', 'y', 'e'}
	if !slices.Equal(ids, want) {
		t.Fatalf("Encode = %v, want %v", ids, want)
	}

	// Flanking literals must encode exactly as they do in isolation.
	var flanked []Rank
	flanked = append(flanked, core.Encode("<|think|>")...)
	flanked = append(flanked, core.Encode("hi")...)
	flanked = append(flanked, core.Encode("<|/think|>")...)
	flanked = append(flanked, core.Encode("bye")...)
	if !slices.Equal(ids, flanked) {
		t.Fatalf("marker boundaries leaked into merges: %v vs %v", ids, flanked)
	}
}

func TestEncodeOrdinaryTreatsMarkersAsText(t *testing.T) {
	core := newEncodeCore(t)

	ids := core.EncodeOrdinary("<|think|>")
	for _, id := range ids {
		if id >= 1000 {
			t.Fatalf("ordinary encoding produced special or reserved id %d", id)
		}
	}
	back, err := core.DecodeUTF8(ids)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back != "<|think|>" {
		t.Fatalf("round trip: %q", back)
	}
}

func TestEncodeEmpty(t *testing.T) {
	core := newEncodeCore(t)
	if ids := core.Encode(""); len(ids) != 0 {
		t.Fatalf("Encode(\"\") = %v", ids)
	}
	out, err := core.DecodeUTF8(nil)
	if err != nil || out != "" {
		t.Fatalf("DecodeUTF8(nil) = %q, %v", out, err)
	}
}

func TestDecodeRangeErrors(t *testing.T) {
	core := newEncodeCore(t)

	if _, err := core.DecodeUTF8([]Rank{999999}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	// 1013 is past the registered specials but below nothing else.
	if _, err := core.DecodeUTF8([]Rank{1013}); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unregistered special slot, got %v", err)
	}
	if _, err := core.DecodeUTF8([]Rank{1005}); !errors.Is(err, ErrReservedToken) {
		t.Fatalf("expected ErrReservedToken, got %v", err)
	}
}

func TestDecodeReservedWithResolver(t *testing.T) {
	core := newEncodeCore(t, func(cfg *Config) {
		cfg.Resolver = func(id Rank) ([]byte, bool) {
			if id == 1005 {
				return []byte("[R]"), true
			}
			return nil, false
		}
	})

	out, err := core.DecodeUTF8([]Rank{'a', 1005, 'b'})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != "a[R]b" {
		t.Fatalf("decode = %q", out)
	}

	// The resolver declining is still a reserved error, not a silent drop.
	if _, err := core.DecodeUTF8([]Rank{1006}); !errors.Is(err, ErrReservedToken) {
		t.Fatalf("expected ErrReservedToken, got %v", err)
	}
}

func TestSpecialLookups(t *testing.T) {
	core := newEncodeCore(t)

	if !core.IsSpecial(1010) || core.IsSpecial(999) {
		t.Fatalf("IsSpecial misclassified")
	}
	lit, ok := core.SpecialLiteral(1011)
	if !ok || lit != "<|/think|>" {
		t.Fatalf("SpecialLiteral(1011) = %q, %v", lit, ok)
	}
}

func TestEncodeConcurrentCallsAgree(t *testing.T) {
	core := newEncodeCore(t)

	text := "the thing <|think|>in the tank<|/think|> thinks"
	want := core.Encode(text)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if got := core.Encode(text); !slices.Equal(got, want) {
					t.Errorf("concurrent encode diverged: %v vs %v", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestPieceCacheDoesNotChangeResults(t *testing.T) {
	cached := newEncodeCore(t)
	uncached := newEncodeCore(t, func(cfg *Config) { cfg.CacheSize = -1 })

	text := "the the the thing thinks in the think tank"
	want := uncached.Encode(text)
	for i := 0; i < 3; i++ {
		if got := cached.Encode(text); !slices.Equal(got, want) {
			t.Fatalf("pass %d: cached %v, uncached %v", i, got, want)
		}
	}
}
