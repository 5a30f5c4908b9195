package scorestore

import (
	"context"
	"math"
	"sync"
	"time"
)

// Treap-based, in-memory Store implementation.
//
// Each key holds one treap ordered by score DESC, then member ASC. In-order
// traversal therefore produces the leaderboard from best to worst, and ties
// resolve deterministically. Keys expire lazily: an aged-out key is dropped
// the next time any operation touches it.

// scoreScale controls fixed-point scaling from float64.
const scoreScale = 1_000_000_000 // 9 decimal places

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * scoreScale
	if scaled > float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(scaled))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// treap node
type node struct {
	member string
	score  scoreFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aMember) ranks earlier than (bScore, bMember).
func less(aScore scoreFP, aMember string, bScore scoreFP, bMember string) bool {
	if aScore != bScore {
		return aScore > bScore // higher score ranks earlier
	}
	return aMember < bMember // tie-breaker by member asc
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// scoreToPriority keeps higher scores near the root.
func scoreToPriority(score scoreFP) uint64 {
	const offset = uint64(1) << 63
	return uint64(score) + offset
}

func insert(n *node, member string, score scoreFP) *node {
	if n == nil {
		return &node{member: member, score: score, prio: scoreToPriority(score), size: 1}
	}
	if less(score, member, n.score, n.member) {
		n.left = insert(n.left, member, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, member, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, member string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && member == n.member {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, member, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, member, score)
		}
	} else if less(score, member, n.score, n.member) {
		n.left = deleteNode(n.left, member, score)
	} else {
		n.right = deleteNode(n.right, member, score)
	}
	fix(n)
	return n
}

// countBefore returns the number of nodes ordered strictly before
// (score, member).
func countBefore(n *node, score scoreFP, member string) int {
	if n == nil {
		return 0
	}
	if less(n.score, n.member, score, member) {
		return nsize(n.left) + 1 + countBefore(n.right, score, member)
	}
	return countBefore(n.left, score, member)
}

// collectRange appends entries at in-order positions [start, stop] inclusive.
func collectRange(n *node, start, stop int, idx *int, out *[]Entry) {
	if n == nil || *idx > stop {
		return
	}
	// Skip whole left subtrees that end before start.
	if *idx+nsize(n.left) <= start-1 {
		*idx += nsize(n.left)
	} else {
		collectRange(n.left, start, stop, idx, out)
	}
	if *idx > stop {
		return
	}
	if *idx >= start {
		*out = append(*out, Entry{Member: n.member, Score: toFloat(n.score)})
	}
	*idx++
	collectRange(n.right, start, stop, idx, out)
}

// sortedSet is the per-key state: the treap, a member index, and a deadline.
type sortedSet struct {
	root     *node
	byMember map[string]scoreFP
	deadline time.Time // zero means no expiration
}

// MemStore is the embedded sorted-set store.
type MemStore struct {
	mu   sync.RWMutex
	keys map[string]*sortedSet
	now  func() time.Time
}

// NewMemStore constructs an empty in-memory score store.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		keys: make(map[string]*sortedSet),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// set returns the live set for key, purging it first when expired. Callers
// must hold mu.
func (s *MemStore) set(key string, create bool) *sortedSet {
	ss, ok := s.keys[key]
	if ok && !ss.deadline.IsZero() && s.now().After(ss.deadline) {
		delete(s.keys, key)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		ss = &sortedSet{byMember: make(map[string]scoreFP)}
		s.keys[key] = ss
	}
	return ss
}

// IncrBy implements Store.
func (s *MemStore) IncrBy(_ context.Context, key, member string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := s.set(key, true)
	next := toFixedPoint(delta)
	if old, ok := ss.byMember[member]; ok {
		ss.root = deleteNode(ss.root, member, old)
		next = old + toFixedPoint(delta)
	}
	ss.byMember[member] = next
	ss.root = insert(ss.root, member, next)
	return toFloat(next), nil
}

// Set implements Store.
func (s *MemStore) Set(_ context.Context, key, member string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := s.set(key, true)
	if old, ok := ss.byMember[member]; ok {
		ss.root = deleteNode(ss.root, member, old)
	}
	fp := toFixedPoint(score)
	ss.byMember[member] = fp
	ss.root = insert(ss.root, member, fp)
	return nil
}

// Rank implements Store. Ties share a rank: the rank is one more than the
// number of members with a strictly greater score.
func (s *MemStore) Rank(_ context.Context, key, member string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := s.set(key, false)
	if ss == nil {
		return 0, false, nil
	}
	score, ok := ss.byMember[member]
	if !ok {
		return 0, false, nil
	}
	// The empty member sorts before every real member at the same score, so
	// this counts exactly the strictly-greater scores.
	return int64(countBefore(ss.root, score, "")) + 1, true, nil
}

// Score implements Store.
func (s *MemStore) Score(_ context.Context, key, member string) (float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := s.set(key, false)
	if ss == nil {
		return 0, false, nil
	}
	score, ok := ss.byMember[member]
	if !ok {
		return 0, false, nil
	}
	return toFloat(score), true, nil
}

// Range implements Store.
func (s *MemStore) Range(_ context.Context, key string, start, stop int64) ([]Entry, error) {
	if start < 0 || (stop != -1 && stop < start) {
		return nil, ErrInvalidRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ss := s.set(key, false)
	if ss == nil {
		return []Entry{}, nil
	}
	last := int(stop)
	if stop == -1 || int(stop) >= nsize(ss.root) {
		last = nsize(ss.root) - 1
	}
	if int(start) > last {
		return []Entry{}, nil
	}
	out := make([]Entry, 0, last-int(start)+1)
	idx := 0
	collectRange(ss.root, int(start), last, &idx, &out)
	return out, nil
}

// Card implements Store.
func (s *MemStore) Card(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := s.set(key, false)
	if ss == nil {
		return 0, nil
	}
	return int64(len(ss.byMember)), nil
}

// Remove implements Store.
func (s *MemStore) Remove(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := s.set(key, false)
	if ss == nil {
		return nil
	}
	if old, ok := ss.byMember[member]; ok {
		ss.root = deleteNode(ss.root, member, old)
		delete(ss.byMember, member)
	}
	return nil
}

// Clear implements Store.
func (s *MemStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Expire implements Store.
func (s *MemStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := s.set(key, false)
	if ss == nil {
		return nil
	}
	ss.deadline = s.now().Add(ttl)
	return nil
}

// Close implements Store.
func (s *MemStore) Close() error { return nil }
