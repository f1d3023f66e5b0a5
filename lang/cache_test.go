package lang

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// countingParser returns a parse function that counts its invocations.
func countingParser(calls *atomic.Int64) CacheOption {
	return WithParser(func(ctx context.Context, text string) (Phrase, error) {
		calls.Add(1)

		return Parse(ctx, text)
	})
}

func TestCache_GetOrParse(t *testing.T) {
	var calls atomic.Int64

	c := NewCache(countingParser(&calls))
	ctx := context.Background()

	first, err := c.GetOrParse(ctx, "greeting", "Hello ${name}")
	if err != nil {
		t.Fatalf("GetOrParse failed: %v", err)
	}

	second, err := c.GetOrParse(ctx, "greeting", "Hello ${name}")
	if err != nil {
		t.Fatalf("GetOrParse failed: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("expected 1 parse, got %d", calls.Load())
	}

	if &first[0] != &second[0] {
		t.Error("expected the cached phrase to be returned")
	}

	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}

func TestCache_StaleText(t *testing.T) {
	var calls atomic.Int64

	c := NewCache(countingParser(&calls))
	ctx := context.Background()

	if _, err := c.GetOrParse(ctx, "k", "old ${a}"); err != nil {
		t.Fatalf("GetOrParse failed: %v", err)
	}

	got, err := c.GetOrParse(ctx, "k", "new ${b}")
	if err != nil {
		t.Fatalf("GetOrParse failed: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("expected changed text to re-parse, got %d parses", calls.Load())
	}

	want := Phrase{lit("new "), ident("b")}
	if diff := pretty.Compare(got, want); diff != "" {
		t.Errorf("phrase mismatch:\n%s", diff)
	}

	if cached, ok := c.Get("k"); !ok || cached.String() != "new ${b}" {
		t.Errorf("expected replaced entry, got %v (%v)", cached, ok)
	}
}

func TestCache_ErrorsNotCached(t *testing.T) {
	var calls atomic.Int64

	c := NewCache(countingParser(&calls))
	ctx := context.Background()

	for range 2 {
		_, err := c.GetOrParse(ctx, "bad", "You have ${ total")
		if !errors.Is(err, ErrInvalidSyntax) {
			t.Fatalf("expected ErrInvalidSyntax, got %v", err)
		}
	}

	if calls.Load() != 2 {
		t.Errorf("expected a parse per lookup, got %d", calls.Load())
	}

	if _, ok := c.Get("bad"); ok {
		t.Error("failed parse was cached")
	}
}

func TestCache_Evict(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if _, err := c.GetOrParse(ctx, k, k); err != nil {
			t.Fatalf("GetOrParse failed: %v", err)
		}
	}

	c.Evict("a", "missing")

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}

	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestCache_ConcurrentFirstLookup(t *testing.T) {
	var calls atomic.Int64

	release := make(chan struct{})

	c := NewCache(WithParser(func(ctx context.Context, text string) (Phrase, error) {
		calls.Add(1)
		<-release

		return Parse(ctx, text)
	}))

	const workers = 16

	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)

	results := make([]Phrase, workers)

	for i := range workers {
		wg.Add(1)
		started.Add(1)

		go func() {
			defer wg.Done()

			started.Done()

			p, err := c.GetOrParse(context.Background(), "k", "x ${y}")
			if err != nil {
				t.Errorf("GetOrParse failed: %v", err)
			}

			results[i] = p
		}()
	}

	started.Wait()
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("expected a single parse, got %d", n)
	}

	for i, p := range results {
		if p.String() != "x ${y}" {
			t.Errorf("worker %d: unexpected phrase %v", i, p)
		}
	}
}

func TestCache_Metrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := NewCache(WithRegisterer(reg))
	ctx := context.Background()

	_, _ = c.GetOrParse(ctx, "a", "a")
	_, _ = c.GetOrParse(ctx, "a", "a")
	_, _ = c.GetOrParse(ctx, "b", "${")
	c.Evict("a")

	const want = `
# HELP lingo_parse_cache_evictions_total Entries removed from the cache.
# TYPE lingo_parse_cache_evictions_total counter
lingo_parse_cache_evictions_total 1
# HELP lingo_parse_cache_hits_total Lookups served from the cache.
# TYPE lingo_parse_cache_hits_total counter
lingo_parse_cache_hits_total 1
# HELP lingo_parse_cache_misses_total Lookups that required a parse.
# TYPE lingo_parse_cache_misses_total counter
lingo_parse_cache_misses_total 2
# HELP lingo_parse_cache_parse_failures_total Parses that failed.
# TYPE lingo_parse_cache_parse_failures_total counter
lingo_parse_cache_parse_failures_total 1
`

	if err := testutil.GatherAndCompare(reg, strings.NewReader(want)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
}
