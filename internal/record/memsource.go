package record

import (
	"context"
	"sort"
	"sync"
)

// MemSource is an in-memory Source used by tests and embedded runs.
// Iteration order is by id so streamed resyncs are deterministic.
type MemSource struct {
	mu       sync.RWMutex
	users    map[string]User
	articles map[string]Article
	follows  map[string]map[string]bool // followerID -> followeeID set
	likes    map[string]map[string]bool // userID -> articleID set
	comments map[string]int64           // authorID -> comment count on their articles
}

// NewMemSource creates an empty in-memory source.
func NewMemSource() *MemSource {
	return &MemSource{
		users:    make(map[string]User),
		articles: make(map[string]Article),
		follows:  make(map[string]map[string]bool),
		likes:    make(map[string]map[string]bool),
		comments: make(map[string]int64),
	}
}

// PutUser adds or replaces a user row.
func (m *MemSource) PutUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// RemoveUser deletes a user row.
func (m *MemSource) RemoveUser(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// PutArticle adds or replaces an article row.
func (m *MemSource) PutArticle(a Article) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[a.ID] = a
}

// RemoveArticle deletes an article row.
func (m *MemSource) RemoveArticle(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.articles, id)
}

// PutFollow records a follow edge.
func (m *MemSource) PutFollow(followerID, followeeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.follows[followerID] == nil {
		m.follows[followerID] = make(map[string]bool)
	}
	m.follows[followerID][followeeID] = true
}

// RemoveFollow deletes a follow edge.
func (m *MemSource) RemoveFollow(followerID, followeeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.follows[followerID], followeeID)
}

// PutLike records a like edge.
func (m *MemSource) PutLike(userID, articleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.likes[userID] == nil {
		m.likes[userID] = make(map[string]bool)
	}
	m.likes[userID][articleID] = true
}

// RemoveLike deletes a like edge.
func (m *MemSource) RemoveLike(userID, articleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.likes[userID], articleID)
}

// SetCommentCount sets the aggregate comment count on an author's articles.
func (m *MemSource) SetCommentCount(authorID string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[authorID] = n
}

// FindUserByID implements Source.
func (m *MemSource) FindUserByID(_ context.Context, id string) (User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// FindUsersByIDs implements Source.
func (m *MemSource) FindUsersByIDs(_ context.Context, ids []string) (map[string]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]User, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// FollowerCount implements Source.
func (m *MemSource) FollowerCount(_ context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, followees := range m.follows {
		if followees[userID] {
			n++
		}
	}
	return n, nil
}

// FollowingIDs implements Source.
func (m *MemSource) FollowingIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.follows[userID]))
	for id := range m.follows[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// AuthorStats implements Source.
func (m *MemSource) AuthorStats(_ context.Context, userID string) (AuthorStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var stats AuthorStats
	for _, a := range m.articles {
		if a.AuthorID != userID || !a.Published() {
			continue
		}
		stats.Articles++
		stats.TotalViews += a.ViewCount
		stats.TotalLikes += a.LikeCount
	}
	stats.TotalComments = m.comments[userID]
	return stats, nil
}

// Users implements Source.
func (m *MemSource) Users(_ context.Context, batch int, fn func([]User) error) error {
	m.mu.RLock()
	ids := sortedKeys(m.users)
	rows := make([]User, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, m.users[id])
	}
	m.mu.RUnlock()
	return streamBatches(rows, batch, fn)
}

// PublishedArticles implements Source.
func (m *MemSource) PublishedArticles(_ context.Context, batch int, fn func([]Article) error) error {
	m.mu.RLock()
	ids := sortedKeys(m.articles)
	rows := make([]Article, 0, len(ids))
	for _, id := range ids {
		if a := m.articles[id]; a.Published() {
			rows = append(rows, a)
		}
	}
	m.mu.RUnlock()
	return streamBatches(rows, batch, fn)
}

// Follows implements Source.
func (m *MemSource) Follows(_ context.Context, batch int, fn func([]Follow) error) error {
	m.mu.RLock()
	rows := make([]Follow, 0)
	for _, followerID := range sortedKeys(m.follows) {
		followees := make([]string, 0, len(m.follows[followerID]))
		for id := range m.follows[followerID] {
			followees = append(followees, id)
		}
		sort.Strings(followees)
		for _, followeeID := range followees {
			rows = append(rows, Follow{FollowerID: followerID, FolloweeID: followeeID})
		}
	}
	m.mu.RUnlock()
	return streamBatches(rows, batch, fn)
}

// Likes implements Source.
func (m *MemSource) Likes(_ context.Context, batch int, fn func([]Like) error) error {
	m.mu.RLock()
	rows := make([]Like, 0)
	for _, userID := range sortedKeys(m.likes) {
		articles := make([]string, 0, len(m.likes[userID]))
		for id := range m.likes[userID] {
			articles = append(articles, id)
		}
		sort.Strings(articles)
		for _, articleID := range articles {
			rows = append(rows, Like{UserID: userID, ArticleID: articleID})
		}
	}
	m.mu.RUnlock()
	return streamBatches(rows, batch, fn)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func streamBatches[T any](rows []T, batch int, fn func([]T) error) error {
	if batch < 1 {
		batch = len(rows)
		if batch == 0 {
			return nil
		}
	}
	for start := 0; start < len(rows); start += batch {
		end := start + batch
		if end > len(rows) {
			end = len(rows)
		}
		if err := fn(rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}
