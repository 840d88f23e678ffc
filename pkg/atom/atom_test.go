package atom

import (
	"errors"
	"math"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/atomstore/pkg/atom/codec"
	"github.com/yndnr/atomstore/pkg/storage"
)

func stored(t *testing.T, s storage.Adapter, key string) string {
	t.Helper()
	raw, ok, err := s.GetItem(key)
	require.NoError(t, err)
	require.True(t, ok, "nothing stored under %q", key)
	return raw
}

func newIntAtom(t *testing.T, s storage.Adapter, initial int, mw ...Middleware[int]) *Atom[int] {
	t.Helper()
	a, err := New(Options[int]{Key: "k", Initial: initial, Storage: s, Middleware: mw})
	require.NoError(t, err)
	return a
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options[int]{Storage: storage.NewMemory()})
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = New(Options[int]{Key: "k"})
	assert.ErrorIs(t, err, ErrNoStorage)
	assert.Equal(t, "ATOM-4001", Code(err))
}

func TestNew_SeedsEmptySlot(t *testing.T) {
	s := storage.NewMemory()
	newIntAtom(t, s, 5)

	assert.Equal(t, "5", stored(t, s, "k"))
}

func TestAtom_Scenario(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 5)

	v, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, "5", stored(t, s, "k"))

	v, err = a.Set(Value(6))
	require.NoError(t, err)
	assert.Equal(t, 6, v)
	assert.Equal(t, "6", stored(t, s, "k"))

	v, err = a.Set(Derive(func(v int) int { return v + 1 }))
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "7", stored(t, s, "k"))
}

func TestAtom_SharedKeyIsShared(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 0)
	b := newIntAtom(t, s, 0)

	_, err := a.Set(Value(42))
	require.NoError(t, err)

	v, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestAtom_ExistingValueWins(t *testing.T) {
	s := storage.NewMemory()
	require.NoError(t, s.SetItem("k", "100"))

	a := newIntAtom(t, s, 0)

	v, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, 100, v)
	assert.Equal(t, "100", stored(t, s, "k"))
}

func TestAtom_ReseedsAfterExternalRemoval(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 3)

	_, err := a.Set(Value(9))
	require.NoError(t, err)
	require.NoError(t, s.RemoveItem("k"))

	v, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, "3", stored(t, s, "k"))
}

func TestAtom_Reset(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 5)

	for _, v := range []int{1, 2, 3} {
		_, err := a.Set(Value(v))
		require.NoError(t, err)
	}

	v, err := a.Reset()
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, "5", stored(t, s, "k"))
}

func TestAtom_Update(t *testing.T) {
	a := newIntAtom(t, storage.NewMemory(), 10)

	v, err := a.Update(func(v int) int { return v * 2 })
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	v, err = a.Set(Derive[int](nil))
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestAtom_RoundTripsStructs(t *testing.T) {
	type profile struct {
		Name  string            `json:"name"`
		Tags  []string          `json:"tags"`
		Prefs map[string]string `json:"prefs"`
	}

	s := storage.NewMemory()
	a, err := New(Options[profile]{Key: "profile", Storage: s})
	require.NoError(t, err)

	want := profile{Name: "ada", Tags: []string{"x", "y"}, Prefs: map[string]string{"theme": "dark"}}
	_, err = a.Set(Value(want))
	require.NoError(t, err)

	got, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.JSONEq(t, `{"name":"ada","tags":["x","y"],"prefs":{"theme":"dark"}}`, stored(t, s, "profile"))
}

func TestAtom_CustomCodec(t *testing.T) {
	s := storage.NewMemory()
	c := codec.Funcs(
		func(v int) (string, error) { return "n=" + strconv.Itoa(v), nil },
		func(s string) (int, error) {
			if len(s) < 2 || s[:2] != "n=" {
				return 0, errors.New("bad prefix")
			}
			return strconv.Atoi(s[2:])
		},
	)

	a, err := New(Options[int]{Key: "k", Initial: 1, Storage: s, Codec: c})
	require.NoError(t, err)
	assert.Equal(t, "n=1", stored(t, s, "k"))

	_, err = a.Set(Value(8))
	require.NoError(t, err)
	assert.Equal(t, "n=8", stored(t, s, "k"))

	v, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, v)
}

func TestAtom_DecodeError(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 0)

	require.NoError(t, s.SetItem("k", "{not json"))

	_, err := a.Get()
	assert.ErrorIs(t, err, ErrDecode)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "k", ae.Key)

	// A derived set reads first, so it fails the same way and writes nothing.
	_, err = a.Update(func(v int) int { return v + 1 })
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, "{not json", stored(t, s, "k"))
}

func TestAtom_DecodeErrorOnConstruction(t *testing.T) {
	s := storage.NewMemory()
	require.NoError(t, s.SetItem("k", "oops"))

	_, err := New(Options[int]{Key: "k", Storage: s})
	assert.ErrorIs(t, err, ErrDecode)
}

func TestAtom_EncodeError(t *testing.T) {
	s := storage.NewMemory()
	a, err := New(Options[float64]{Key: "f", Initial: 1, Storage: s})
	require.NoError(t, err)

	// encoding/json rejects +Inf.
	_, err = a.Set(Value(math.Inf(1)))
	assert.ErrorIs(t, err, ErrEncode)
	assert.Equal(t, "1", stored(t, s, "f"))
}

func TestAtom_StorageErrors(t *testing.T) {
	boom := errors.New("disk on fire")

	_, err := New(Options[int]{Key: "k", Storage: storage.AdapterFuncs{
		Get: func(string) (string, bool, error) { return "", false, boom },
		Set: func(string, string) error { return nil },
	}})
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, boom)

	_, err = New(Options[int]{Key: "k", Storage: storage.AdapterFuncs{
		Get: func(string) (string, bool, error) { return "", false, nil },
		Set: func(string, string) error { return boom },
	}})
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, boom)
}

func TestNewFromTarget(t *testing.T) {
	session := storage.NewMemory()
	r := storage.NewResolver(storage.WithPreset(storage.Session, session))

	a, err := NewFromTarget(r, storage.Session, Options[string]{Key: "greeting", Initial: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "greeting", a.Key())
	assert.Equal(t, `"hi"`, stored(t, session, "greeting"))

	custom := storage.NewMemory()
	_, err = NewFromTarget(r, storage.Custom(custom), Options[string]{Key: "greeting", Initial: "yo"})
	require.NoError(t, err)
	assert.Equal(t, `"yo"`, stored(t, custom, "greeting"))

	_, err = NewFromTarget(r, storage.Local, Options[string]{Key: "greeting"})
	assert.ErrorIs(t, err, ErrNoStorage)
	assert.ErrorIs(t, err, storage.ErrUnknownPreset)
}

func TestAtom_Subscribe(t *testing.T) {
	a := newIntAtom(t, storage.NewMemory(), 0)

	var got []int
	unsubscribe := a.Subscribe(func(v int) { got = append(got, v) })

	_, err := a.Set(Value(1))
	require.NoError(t, err)
	_, err = a.Update(func(v int) int { return v + 1 })
	require.NoError(t, err)
	_, err = a.Reset()
	require.NoError(t, err)

	unsubscribe()
	unsubscribe()

	_, err = a.Set(Value(99))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 0}, got)
}

func TestAtom_UnsubscribeOnlyRemovesItsListener(t *testing.T) {
	a := newIntAtom(t, storage.NewMemory(), 0)

	var first, second, third int
	u1 := a.Subscribe(func(int) { first++ })
	u2 := a.Subscribe(func(int) { second++ })
	a.Subscribe(func(int) { third++ })

	u2()
	u2()
	u1()

	_, err := a.Set(Value(1))
	require.NoError(t, err)

	assert.Equal(t, 0, first)
	assert.Equal(t, 0, second)
	assert.Equal(t, 1, third)
}

func TestAtom_SubscribersSeeSeeding(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 4)

	var got []int
	a.Subscribe(func(v int) { got = append(got, v) })

	require.NoError(t, s.RemoveItem("k"))
	_, err := a.Get()
	require.NoError(t, err)

	assert.Equal(t, []int{4}, got)
}

func TestAtom_UnsubscribeDuringNotify(t *testing.T) {
	a := newIntAtom(t, storage.NewMemory(), 0)

	var calls []string
	var unsubscribe func()
	unsubscribe = a.Subscribe(func(int) {
		calls = append(calls, "first")
		unsubscribe()
	})
	a.Subscribe(func(int) { calls = append(calls, "second") })

	_, err := a.Set(Value(1))
	require.NoError(t, err)
	_, err = a.Set(Value(2))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "second"}, calls)
}

func TestAtom_MiddlewareComposesLeftToRight(t *testing.T) {
	s := storage.NewMemory()
	m1 := OnSet(Callback[int](func(v int, _ Operation) (Result[int], error) {
		return Transformed(v + 1), nil
	}))
	m2 := OnSet(Callback[int](func(v int, _ Operation) (Result[int], error) {
		return Transformed(v * 10), nil
	}))
	a := newIntAtom(t, s, 0, m1, m2)

	var notified int
	a.Subscribe(func(v int) { notified = v })

	v, err := a.Set(Value(2))
	require.NoError(t, err)
	assert.Equal(t, 30, v)
	assert.Equal(t, 30, notified)
	assert.Equal(t, "30", stored(t, s, "k"))
}

func TestAtom_MiddlewareScoping(t *testing.T) {
	var gets, sets, both []Operation
	record := func(into *[]Operation) Callback[int] {
		return func(_ int, op Operation) (Result[int], error) {
			*into = append(*into, op)
			return Deferred[int](), nil
		}
	}

	a := newIntAtom(t, storage.NewMemory(), 0)
	a.AddMiddleware(OnGet(record(&gets)))
	a.AddMiddleware(OnSet(record(&sets)))
	a.AddMiddleware(record(&both))

	_, err := a.Set(Value(1))
	require.NoError(t, err)
	assert.Empty(t, gets)
	assert.Equal(t, []Operation{OpSet}, sets)
	assert.Equal(t, []Operation{OpSet}, both)

	_, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, []Operation{OpGet}, gets)
	assert.Equal(t, []Operation{OpSet}, sets)
	assert.Equal(t, []Operation{OpSet, OpGet}, both)
}

func TestAtom_GetMiddlewareDoesNotTouchStorage(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 0)
	_, err := a.Set(Value(3))
	require.NoError(t, err)

	a.AddMiddleware(OnGet(Callback[int](func(v int, _ Operation) (Result[int], error) {
		return Transformed(v * 100), nil
	})))

	v, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, 300, v)
	assert.Equal(t, "3", stored(t, s, "k"))
}

func TestAtom_RejectingMiddlewareLeavesStateUnchanged(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 1)

	errNegative := errors.New("negative")
	a.AddMiddleware(Registration[int]{
		Label:      "non-negative",
		Operations: []Operation{OpSet},
		Callback: func(v int, _ Operation) (Result[int], error) {
			if v < 0 {
				return Result[int]{}, errNegative
			}
			return Deferred[int](), nil
		},
	})

	notified := false
	a.Subscribe(func(int) { notified = true })

	_, err := a.Set(Value(-5))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMiddleware)
	assert.ErrorIs(t, err, errNegative)
	assert.Contains(t, err.Error(), "non-negative on set")

	assert.False(t, notified)
	assert.Equal(t, "1", stored(t, s, "k"))
	v, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestAtom_SeedingReturnsProcessedValue(t *testing.T) {
	s := storage.NewMemory()
	double := OnGet(Callback[int](func(v int, _ Operation) (Result[int], error) {
		return Transformed(v * 2), nil
	}))
	plusOne := OnSet(Callback[int](func(v int, _ Operation) (Result[int], error) {
		return Transformed(v + 1), nil
	}))
	a := newIntAtom(t, s, 5, double, plusOne)

	// Construction seeded 2*5+1.
	assert.Equal(t, "11", stored(t, s, "k"))

	require.NoError(t, s.RemoveItem("k"))
	v, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, 11, v)
}

func TestAtom_AddMiddlewareDoesNotReprocess(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 0)
	_, err := a.Set(Value(7))
	require.NoError(t, err)

	a.AddMiddleware(OnSet(Callback[int](func(v int, _ Operation) (Result[int], error) {
		return Transformed(v + 1000), nil
	})))

	assert.Equal(t, "7", stored(t, s, "k"))
}

func TestAtom_NilCallbackIsSkipped(t *testing.T) {
	a := newIntAtom(t, storage.NewMemory(), 0)
	a.AddMiddleware(Registration[int]{Operations: []Operation{OpGet, OpSet}})

	v, err := a.Set(Value(4))
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

func TestAtom_DetachedMiddleware(t *testing.T) {
	s := storage.NewMemory()
	a := newIntAtom(t, s, 0)

	var (
		mu   sync.Mutex
		seen []int
		done = make(chan struct{}, 1)
	)
	a.AddMiddleware(OnSet(Detached(func(v int, _ Operation) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
		done <- struct{}{}
	})))

	v, err := a.Set(Value(12))
	require.NoError(t, err)
	assert.Equal(t, 12, v)
	assert.Equal(t, "12", stored(t, s, "k"))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("detached middleware never ran")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{12}, seen)
}

func TestAtom_DetachedMiddlewareMaySubscribe(t *testing.T) {
	a := newIntAtom(t, storage.NewMemory(), 0)

	subscribed := make(chan struct{})
	var once sync.Once
	a.AddMiddleware(OnSet(Detached(func(int, Operation) {
		once.Do(func() {
			a.Subscribe(func(int) {})()
			close(subscribed)
		})
	})))

	_, err := a.Set(Value(1))
	require.NoError(t, err)

	select {
	case <-subscribed:
	case <-time.After(5 * time.Second):
		t.Fatal("detached middleware never ran")
	}
}

func TestAtom_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "atomstore")
	require.NoError(t, err)

	s := storage.NewMemory()
	a, err := New(Options[int]{
		Key:     "k",
		Storage: s,
		Metrics: m,
		Middleware: []Middleware[int]{OnSet(Callback[int](func(v int, _ Operation) (Result[int], error) {
			if v > 100 {
				return Result[int]{}, errors.New("too big")
			}
			return Deferred[int](), nil
		}))},
	})
	require.NoError(t, err)
	a.Subscribe(func(int) {})

	_, err = a.Set(Value(1))
	require.NoError(t, err)
	_, err = a.Set(Value(101))
	require.Error(t, err)
	_, err = a.Get()
	require.NoError(t, err)

	require.NoError(t, s.SetItem("k", "garbage"))
	_, err = a.Get()
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.seeds.WithLabelValues("k")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sets.WithLabelValues("k")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.gets.WithLabelValues("k")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("k")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("k")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("k", "get")))

	_, err = NewMetrics(reg, "atomstore")
	assert.Error(t, err)
}

func TestError_Format(t *testing.T) {
	err := ErrMiddleware.with("k", "guard on set", errors.New("nope"))
	assert.Equal(t, `[ATOM-4222] middleware rejected value (key "k"): guard on set: nope`, err.Error())
	assert.True(t, errors.Is(err, ErrMiddleware))
	assert.False(t, errors.Is(err, ErrDecode))
	assert.Equal(t, "", Code(errors.New("plain")))
}
