package bridge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airgaplab/airgap/pkg/api"
	"github.com/airgaplab/airgap/pkg/policy"
)

func newTestBridge(opts ...Option) *Bridge {
	opts = append([]Option{WithRegistration(nil)}, opts...)
	return New(nil, opts...)
}

func TestBridge_SetThenCurrentSameGoroutine(t *testing.T) {
	b := newTestBridge()
	conf := policy.NewConfiguration([]string{"localhost"}, nil)

	b.Set(conf)

	got := b.Current()
	require.NotNil(t, got)
	assert.Equal(t, []string{"localhost"}, got.AllowedHosts())
}

func TestBridge_CurrentNilWithoutPolicy(t *testing.T) {
	b := newTestBridge()

	assert.Nil(t, b.Current())
}

func TestBridge_ClearRemovesPolicy(t *testing.T) {
	b := newTestBridge()
	b.Set(policy.NewConfiguration([]string{"*"}, nil))

	b.Clear()

	assert.Nil(t, b.Current())
	assert.Equal(t, uint64(1), b.Generation(), "clear increments the generation")
}

func TestBridge_WorkerInheritsConfiguration(t *testing.T) {
	b := newTestBridge()
	conf := policy.NewConfiguration([]string{"localhost"}, nil)
	b.Set(conf)

	got := make(chan *policy.Configuration, 1)
	b.Go(func() {
		got <- b.Current()
	})

	inherited := <-got
	require.NotNil(t, inherited)
	assert.Equal(t, []string{"localhost"}, inherited.AllowedHosts())
}

func TestBridge_GenerationInvalidatesInheritedCopy(t *testing.T) {
	// A worker that inherited configuration A before the clear must observe
	// "no policy" afterwards, not A: pool goroutines kept alive by the
	// runtime must never carry one test's policy into the next.
	b := newTestBridge()
	b.Set(policy.NewConfiguration([]string{"localhost"}, nil))

	release := make(chan struct{})
	got := make(chan *policy.Configuration, 1)
	b.Go(func() {
		<-release
		got <- b.Current()
	})

	b.Clear()
	close(release)

	assert.Nil(t, <-got, "inherited copy must be invalidated by the clear")
}

func TestBridge_NewPolicyAfterClearReachesOldWorkers(t *testing.T) {
	b := newTestBridge()
	b.Set(policy.NewConfiguration([]string{"old.test"}, nil))

	release := make(chan struct{})
	got := make(chan *policy.Configuration, 1)
	b.Go(func() {
		<-release
		got <- b.Current()
	})

	b.Clear()
	b.Set(policy.NewConfiguration([]string{"new.test"}, nil))
	close(release)

	// The worker's inherited stamp is stale, so it falls through to the
	// globally published value of the new test.
	current := <-got
	require.NotNil(t, current)
	assert.Equal(t, []string{"new.test"}, current.AllowedHosts())
}

func TestBridge_RegistrationRetriesUntilAttached(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	reg := func(CheckFunc) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 2 {
			return api.ErrNotAttached
		}
		return nil
	}
	b := New(nil, WithRegistration(reg))
	conf := policy.NewConfiguration([]string{"*"}, nil)

	b.Set(conf)
	assert.False(t, b.registered.Load(), "first registration attempt fails")

	b.Set(conf)
	assert.True(t, b.registered.Load(), "second attempt links")

	b.Set(conf)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls, "no further attempts once linked")
}

func TestBridge_TakenHandleStopsRegistrationRetries(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	reg := func(CheckFunc) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return api.ErrAlreadyRegistered
	}
	b := New(nil, WithRegistration(reg))
	conf := policy.NewConfiguration([]string{"*"}, nil)

	b.Set(conf)
	b.Set(conf)

	assert.False(t, b.registered.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "a taken handle is permanent, not worth retrying")
}

func TestBridge_ConcurrentReadersWhilePolicyRollsOver(t *testing.T) {
	b := newTestBridge()
	conf := policy.NewConfiguration([]string{"localhost"}, nil)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_ = b.Current()
				_ = b.CheckConnection("localhost", 80, "test")
			}
		}()
	}

	for i := 0; i < 200; i++ {
		b.Set(conf)
		b.Clear()
	}
	close(stop)
	wg.Wait()
}

func TestDefault_SingleInstance(t *testing.T) {
	assert.Same(t, Default(), Default())
}
