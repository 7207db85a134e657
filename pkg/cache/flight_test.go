package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchStrangerReadThrough(t *testing.T) {
	r := NewRoster()

	t.Run("cache hit skips the fetch", func(t *testing.T) {
		r.SetStranger(&StrangerInfo{UserID: 55, Nickname: "cached"})
		s, err := r.FetchStranger(55, false, func() (*StrangerInfo, error) {
			t.Error("fetch ran on a cache hit")
			return nil, nil
		})
		if err != nil {
			t.Fatalf("FetchStranger: %v", err)
		}
		if s.Nickname != "cached" {
			t.Errorf("Nickname = %q, want %q", s.Nickname, "cached")
		}
	})

	t.Run("force refresh bypasses the cache", func(t *testing.T) {
		fetched := false
		s, err := r.FetchStranger(55, true, func() (*StrangerInfo, error) {
			fetched = true
			return &StrangerInfo{UserID: 55, Nickname: "fresh"}, nil
		})
		if err != nil {
			t.Fatalf("FetchStranger: %v", err)
		}
		if !fetched {
			t.Error("fetch did not run with force")
		}
		if s.Nickname != "fresh" {
			t.Errorf("Nickname = %q, want %q", s.Nickname, "fresh")
		}
		if cached, _ := r.Stranger(55); cached.Nickname != "fresh" {
			t.Error("cache was not updated")
		}
	})

	t.Run("not-found evicts the stale entry", func(t *testing.T) {
		r.SetStranger(&StrangerInfo{UserID: 66, Nickname: "stale"})
		s, err := r.FetchStranger(66, true, func() (*StrangerInfo, error) {
			return nil, nil
		})
		if err != nil {
			t.Fatalf("FetchStranger: %v", err)
		}
		if s != nil {
			t.Errorf("result = %+v, want nil", s)
		}
		if _, ok := r.Stranger(66); ok {
			t.Error("stale entry survived a not-found fetch")
		}
	})

	t.Run("fetch error leaves the cache untouched", func(t *testing.T) {
		r.SetStranger(&StrangerInfo{UserID: 77, Nickname: "kept"})
		_, err := r.FetchStranger(77, true, func() (*StrangerInfo, error) {
			return nil, errors.New("network down")
		})
		if err == nil {
			t.Fatal("expected an error")
		}
		if s, ok := r.Stranger(77); !ok || s.Nickname != "kept" {
			t.Error("cache entry lost on a failed fetch")
		}
	})
}

func TestConcurrentMissesCollapseToOneFetch(t *testing.T) {
	r := NewRoster()

	var fetches atomic.Int32
	release := make(chan struct{})

	const callers = 10
	var entered, wg sync.WaitGroup
	entered.Add(callers)
	results := make([]*StrangerInfo, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entered.Done()
			s, err := r.FetchStranger(55, false, func() (*StrangerInfo, error) {
				fetches.Add(1)
				<-release
				return &StrangerInfo{UserID: 55, Nickname: "dedup"}, nil
			})
			if err != nil {
				t.Errorf("caller %d: %v", i, err)
			}
			results[i] = s
		}(i)
	}

	// The fetch blocks until every caller has at least started; all
	// of them miss the cache and join the one flight.
	entered.Wait()
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := fetches.Load(); n != 1 {
		t.Errorf("fetch ran %d times for concurrent misses, want 1", n)
	}
	for i, s := range results {
		if s == nil || s.Nickname != "dedup" {
			t.Errorf("caller %d got %+v", i, s)
		}
	}
}

func TestFetchMembersEmptyListIsLoaded(t *testing.T) {
	r := NewRoster()

	members, err := r.FetchMembers(100, false, func() ([]MemberInfo, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("FetchMembers: %v", err)
	}
	if members == nil {
		t.Fatal("members = nil, want an empty loaded map")
	}
	if len(members) != 0 {
		t.Errorf("members has %d entries, want 0", len(members))
	}

	// A second non-forced read is served from the cache.
	_, err = r.FetchMembers(100, false, func() ([]MemberInfo, error) {
		t.Error("fetch ran for an already-loaded member map")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("FetchMembers: %v", err)
	}
}
