package cache

import (
	"sync"
)

// Roster is the cache of social-graph entities for one account.
//
// Member maps are nested per group and distinguish absent from empty:
// a group whose member list was never fetched has no entry in the
// members map at all, while a fetched zero-member group has an empty
// (non-nil) inner map. Invalidation and replacement never leave a nil
// inner map behind.
type Roster struct {
	mu        sync.RWMutex
	friends   map[int64]*FriendInfo
	strangers map[int64]*StrangerInfo
	groups    map[int64]*GroupInfo
	members   map[int64]map[int64]*MemberInfo

	flights flightGroup
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		friends:   make(map[int64]*FriendInfo),
		strangers: make(map[int64]*StrangerInfo),
		groups:    make(map[int64]*GroupInfo),
		members:   make(map[int64]map[int64]*MemberInfo),
	}
}

// Friend returns the cached friend record for id.
func (r *Roster) Friend(id int64) (*FriendInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.friends[id]
	return f, ok
}

// SetFriend inserts or replaces a friend record.
func (r *Roster) SetFriend(f *FriendInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.friends[f.UserID] = f
}

// DeleteFriend evicts a friend record. Called synchronously with the
// friend-removed push, before the event is dispatched.
func (r *Roster) DeleteFriend(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.friends, id)
}

// Friends returns a snapshot copy of the friend map.
func (r *Roster) Friends() map[int64]*FriendInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]*FriendInfo, len(r.friends))
	for id, f := range r.friends {
		out[id] = f
	}
	return out
}

// ReplaceFriends swaps the entire friend map. The caller passes a
// fully-populated map built from a successful remote listing; a
// partial failure never reaches this method, so observers see either
// the old mapping or the new one.
func (r *Roster) ReplaceFriends(friends map[int64]*FriendInfo) {
	if friends == nil {
		friends = make(map[int64]*FriendInfo)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.friends = friends
}

// FriendCount returns the number of cached friends.
func (r *Roster) FriendCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.friends)
}

// Stranger returns the cached stranger record for id.
func (r *Roster) Stranger(id int64) (*StrangerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strangers[id]
	return s, ok
}

// SetStranger inserts or replaces a stranger record.
func (r *Roster) SetStranger(s *StrangerInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strangers[s.UserID] = s
}

// DeleteStranger evicts a stranger record; used when a fetch reports
// the identifier unknown.
func (r *Roster) DeleteStranger(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.strangers, id)
}

// Strangers returns a snapshot copy of the stranger map.
func (r *Roster) Strangers() map[int64]*StrangerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]*StrangerInfo, len(r.strangers))
	for id, s := range r.strangers {
		out[id] = s
	}
	return out
}

// Group returns the cached group record for id.
func (r *Roster) Group(id int64) (*GroupInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	return g, ok
}

// SetGroup inserts or replaces a group record.
func (r *Roster) SetGroup(g *GroupInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.GroupID] = g
}

// DeleteGroup evicts a group record and its member map. Called on
// group-dismissed and kicked-from-group pushes.
func (r *Roster) DeleteGroup(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, id)
	delete(r.members, id)
}

// Groups returns a snapshot copy of the group map.
func (r *Roster) Groups() map[int64]*GroupInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64]*GroupInfo, len(r.groups))
	for id, g := range r.groups {
		out[id] = g
	}
	return out
}

// ReplaceGroups swaps the entire group map and drops member maps for
// groups no longer present.
func (r *Roster) ReplaceGroups(groups map[int64]*GroupInfo) {
	if groups == nil {
		groups = make(map[int64]*GroupInfo)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = groups
	for gid := range r.members {
		if _, ok := groups[gid]; !ok {
			delete(r.members, gid)
		}
	}
}

// GroupCount returns the number of cached groups.
func (r *Roster) GroupCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}

// Member returns the cached member record for user uid in group gid.
func (r *Roster) Member(gid, uid int64) (*MemberInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.members[gid]
	if !ok {
		return nil, false
	}
	m, ok := members[uid]
	return m, ok
}

// SetMember inserts or replaces one member record, creating the
// group's member map if this is the first record observed for it.
func (r *Roster) SetMember(m *MemberInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.members[m.GroupID]
	if !ok {
		members = make(map[int64]*MemberInfo)
		r.members[m.GroupID] = members
	}
	members[m.UserID] = m
}

// DeleteMember evicts one member record. Called synchronously with
// member-left and member-kicked pushes.
func (r *Roster) DeleteMember(gid, uid int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if members, ok := r.members[gid]; ok {
		delete(members, uid)
	}
}

// Members returns a snapshot copy of group gid's member map and
// whether the list has been loaded at all. (nil, false) means never
// fetched; (empty, true) means fetched and empty.
func (r *Roster) Members(gid int64) (map[int64]*MemberInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.members[gid]
	if !ok {
		return nil, false
	}
	out := make(map[int64]*MemberInfo, len(members))
	for uid, m := range members {
		out[uid] = m
	}
	return out, true
}

// MembersLoaded reports whether group gid's member list has been
// fetched.
func (r *Roster) MembersLoaded(gid int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[gid]
	return ok
}

// ReplaceMembers swaps group gid's member map with a freshly fetched
// listing. An empty slice yields an empty, loaded map.
func (r *Roster) ReplaceMembers(gid int64, list []MemberInfo) {
	members := make(map[int64]*MemberInfo, len(list))
	for i := range list {
		m := list[i]
		members[m.UserID] = &m
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[gid] = members
}

// Clear drops everything. Used on terminate.
func (r *Roster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.friends = make(map[int64]*FriendInfo)
	r.strangers = make(map[int64]*StrangerInfo)
	r.groups = make(map[int64]*GroupInfo)
	r.members = make(map[int64]map[int64]*MemberInfo)
}
