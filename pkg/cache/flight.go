package cache

import (
	"fmt"
	"sync"
)

// flightGroup de-duplicates concurrent fetches for the same key: the
// first caller runs fn, later callers for the same key block on the
// same result. Keys are namespaced strings ("stranger/55",
// "member/100/55").
type flightGroup struct {
	mu    sync.Mutex
	calls map[string]*flightCall
}

type flightCall struct {
	done chan struct{}
	val  any
	err  error
}

// do runs fn under key, collapsing concurrent callers onto one
// execution.
func (g *flightGroup) do(key string, fn func() (any, error)) (any, error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*flightCall)
	}
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.val, c.err
	}
	c := &flightCall{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err
}

// FetchStranger reads through the cache for user id. fetch runs at
// most once per concurrent miss group; a nil result from fetch evicts
// any stale entry and reports absence.
func (r *Roster) FetchStranger(id int64, force bool, fetch func() (*StrangerInfo, error)) (*StrangerInfo, error) {
	if !force {
		if s, ok := r.Stranger(id); ok {
			return s, nil
		}
	}

	v, err := r.flights.do(fmt.Sprintf("stranger/%d", id), func() (any, error) {
		s, err := fetch()
		if err != nil {
			return nil, err
		}
		if s == nil {
			r.DeleteStranger(id)
			return (*StrangerInfo)(nil), nil
		}
		r.SetStranger(s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*StrangerInfo), nil
}

// FetchGroup reads through the cache for group id.
func (r *Roster) FetchGroup(id int64, force bool, fetch func() (*GroupInfo, error)) (*GroupInfo, error) {
	if !force {
		if g, ok := r.Group(id); ok {
			return g, nil
		}
	}

	v, err := r.flights.do(fmt.Sprintf("group/%d", id), func() (any, error) {
		g, err := fetch()
		if err != nil {
			return nil, err
		}
		if g == nil {
			r.DeleteGroup(id)
			return (*GroupInfo)(nil), nil
		}
		r.SetGroup(g)
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*GroupInfo), nil
}

// FetchMember reads through the cache for user uid in group gid.
func (r *Roster) FetchMember(gid, uid int64, force bool, fetch func() (*MemberInfo, error)) (*MemberInfo, error) {
	if !force {
		if m, ok := r.Member(gid, uid); ok {
			return m, nil
		}
	}

	v, err := r.flights.do(fmt.Sprintf("member/%d/%d", gid, uid), func() (any, error) {
		m, err := fetch()
		if err != nil {
			return nil, err
		}
		if m == nil {
			r.DeleteMember(gid, uid)
			return (*MemberInfo)(nil), nil
		}
		r.SetMember(m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*MemberInfo), nil
}

// FetchMembers reads through the cache for group gid's full member
// list. The loaded-but-empty state satisfies a non-forced read.
func (r *Roster) FetchMembers(gid int64, force bool, fetch func() ([]MemberInfo, error)) (map[int64]*MemberInfo, error) {
	if !force {
		if members, loaded := r.Members(gid); loaded {
			return members, nil
		}
	}

	_, err := r.flights.do(fmt.Sprintf("members/%d", gid), func() (any, error) {
		list, err := fetch()
		if err != nil {
			return nil, err
		}
		r.ReplaceMembers(gid, list)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	members, _ := r.Members(gid)
	return members, nil
}
