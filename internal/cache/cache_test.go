package cache

import (
	"errors"
	"strconv"
	"testing"
)

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[string, int](2, func(k string, _ int) { evicted = append(evicted, k) })

	c.Add("a", 1)
	c.Add("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) missed")
	}
	c.Add("c", 3)

	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("evicted = %v, want [b]", evicted)
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Get(b) hit after eviction")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Evictions != 1 || st.Capacity != 2 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestLRU_AddReplaces(t *testing.T) {
	var evicted []int
	c := New[string, int](4, func(_ string, v int) { evicted = append(evicted, v) })
	c.Add("a", 1)
	c.Add("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) = %d, want 2", v)
	}
	if len(evicted) != 1 || evicted[0] != 1 {
		t.Errorf("evicted = %v, want [1]", evicted)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_GetOrCreate(t *testing.T) {
	c := New[int, string](0, nil)
	calls := 0
	create := func() (string, error) {
		calls++
		return "v", nil
	}
	for range 3 {
		v, err := c.GetOrCreate(1, create)
		if err != nil || v != "v" {
			t.Fatalf("GetOrCreate() = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrCreate(2, func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Errorf("GetOrCreate() error = %v, want boom", err)
	}
	if _, ok := c.Get(2); ok {
		t.Error("failed create was cached")
	}
}

func TestLRU_Unlimited(t *testing.T) {
	evictions := 0
	c := New[int, int](0, func(int, int) { evictions++ })
	for i := range 100 {
		c.Add(i, i)
	}
	if c.Len() != 100 || evictions != 0 {
		t.Errorf("Len/evictions = %d/%d, want 100/0", c.Len(), evictions)
	}
}

func TestLRU_Purge(t *testing.T) {
	var evicted, purged int
	c := New[int, int](8, func(int, int) { evicted++ })
	for i := range 5 {
		c.Add(i, i)
	}
	c.Purge(func(int, int) { purged++ })
	if purged != 5 || evicted != 0 {
		t.Errorf("purged/evicted = %d/%d, want 5/0", purged, evicted)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after Purge", c.Len())
	}

	c.Add(1, 1)
	c.Purge(nil)
	if evicted != 1 {
		t.Errorf("Purge(nil) called onEvict %d times, want 1", evicted)
	}
	if c.Stats().Evictions != 0 {
		t.Error("Purge counted as eviction")
	}
}

func BenchmarkLRUGet(b *testing.B) {
	c := New[string, int](1000, nil)
	for i := 0; i < 100; i++ {
		c.Add(strconv.Itoa(i), i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get("50")
	}
}

func BenchmarkLRUChurn(b *testing.B) {
	c := New[int, int](64, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(i%128, i)
	}
}
