package textassist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/erazemk/lostfound/internal/model"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, which starts its stats worker at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeGenerator struct {
	reply string
	err   error
	calls atomic.Int32
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	return f.reply, f.err
}

// blockingGenerator waits until the context is done.
type blockingGenerator struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return "", ctx.Err()
}

func TestEnhance(t *testing.T) {
	a := New(&fakeGenerator{reply: "  Black leather wallet with a student card.\n"}, Options{})

	got := a.Enhance(context.Background(), "black wallet, has card")
	assert.Equal(t, "Black leather wallet with a student card.", got)
}

func TestEnhanceFallsBack(t *testing.T) {
	tests := []struct {
		name string
		a    *Assistant
	}{
		{"no generator", New(nil, Options{})},
		{"nil assistant", nil},
		{"error", New(&fakeGenerator{err: errors.New("quota")}, Options{})},
		{"empty reply", New(&fakeGenerator{reply: "   "}, Options{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "blue umbrella", tt.a.Enhance(context.Background(), "blue umbrella"))
		})
	}
}

func TestEnhanceTimeout(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{})}
	a := New(gen, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	got := a.Enhance(context.Background(), "red scarf")
	assert.Equal(t, "red scarf", got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		reply string
		want  model.Category
	}{
		{"Keys", model.CategoryKeys},
		{"electronics.", model.CategoryElectronics},
		{"\"Cards & IDs\"", model.CategoryCards},
		{"Furniture", model.CategoryOther},
		{"", model.CategoryOther},
	}

	for _, tt := range tests {
		a := New(&fakeGenerator{reply: tt.reply}, Options{})
		assert.Equal(t, tt.want, a.Categorize(context.Background(), "title", "desc"), "reply %q", tt.reply)
	}

	assert.Equal(t, model.CategoryOther, New(nil, Options{}).Categorize(context.Background(), "t", "d"))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("unavailable")}
	a := New(gen, Options{TripAfter: 3, OpenFor: time.Minute})

	for range 3 {
		a.Enhance(context.Background(), "x")
	}
	require.EqualValues(t, 3, gen.calls.Load())

	// Open breaker short-circuits without calling the generator.
	assert.Equal(t, "x", a.Enhance(context.Background(), "x"))
	assert.EqualValues(t, 3, gen.calls.Load())
}

func TestConcurrencyLimit(t *testing.T) {
	gen := &blockingGenerator{started: make(chan struct{})}
	a := New(gen, Options{Timeout: 200 * time.Millisecond, MaxConcurrent: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan string)
	go func() {
		done <- a.Enhance(ctx, "first")
	}()
	<-gen.started

	// The only slot is taken, so this call times out waiting for it.
	short := New(gen, Options{Timeout: 20 * time.Millisecond, MaxConcurrent: 1})
	short.sem = a.sem
	assert.Equal(t, "second", short.Enhance(context.Background(), "second"))

	cancel()
	assert.Equal(t, "first", <-done)
}
