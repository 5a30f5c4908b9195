package graphstore

import (
	"context"
	"sort"
	"sync"
)

// MemGraph is the embedded property-graph store. It implements the same
// traversal semantics as the Neo4j adapter with explicit, deterministic
// tie-breaks (documented per query).
type MemGraph struct {
	mu         sync.RWMutex
	users      map[string]User
	articles   map[string]Article
	tags       map[string]map[string]bool // articleID -> tag names
	categories map[string]map[string]bool // articleID -> category names
	follows    map[string]map[string]bool // followerID -> followeeID set
	likes      map[string]map[string]bool // userID -> articleID set
}

// NewMemGraph constructs an empty in-memory graph.
func NewMemGraph() *MemGraph {
	return &MemGraph{
		users:      make(map[string]User),
		articles:   make(map[string]Article),
		tags:       make(map[string]map[string]bool),
		categories: make(map[string]map[string]bool),
		follows:    make(map[string]map[string]bool),
		likes:      make(map[string]map[string]bool),
	}
}

// Available implements Store. The embedded graph is always reachable.
func (g *MemGraph) Available(context.Context) bool { return true }

// UpsertUser implements Store.
func (g *MemGraph) UpsertUser(_ context.Context, u User) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.users[u.ID] = u
	return nil
}

// UpsertArticle implements Store.
func (g *MemGraph) UpsertArticle(_ context.Context, a Article) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.articles[a.ID] = a
	return nil
}

// DeleteUser implements Store. Incident FOLLOWS, LIKES, and AUTHORED edges
// are removed; authored articles stay as orphan nodes.
func (g *MemGraph) DeleteUser(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.users, id)
	delete(g.follows, id)
	delete(g.likes, id)
	for follower := range g.follows {
		delete(g.follows[follower], id)
	}
	for articleID, a := range g.articles {
		if a.AuthorID == id {
			a.AuthorID = ""
			g.articles[articleID] = a
		}
	}
	return nil
}

// DeleteArticle implements Store. Incident LIKES, HAS_TAG, IN_CATEGORY, and
// AUTHORED edges are removed with the node.
func (g *MemGraph) DeleteArticle(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.articles, id)
	delete(g.tags, id)
	delete(g.categories, id)
	for userID := range g.likes {
		delete(g.likes[userID], id)
	}
	return nil
}

// ReplaceArticleTopics implements Store.
func (g *MemGraph) ReplaceArticleTopics(_ context.Context, articleID string, tags, categories []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.tags[articleID] = toSet(tags)
	g.categories[articleID] = toSet(categories)
	return nil
}

// UpsertFollow implements Store.
func (g *MemGraph) UpsertFollow(_ context.Context, followerID, followeeID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.follows[followerID] == nil {
		g.follows[followerID] = make(map[string]bool)
	}
	g.follows[followerID][followeeID] = true
	return nil
}

// DeleteFollow implements Store.
func (g *MemGraph) DeleteFollow(_ context.Context, followerID, followeeID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.follows[followerID], followeeID)
	return nil
}

// UpsertLike implements Store.
func (g *MemGraph) UpsertLike(_ context.Context, userID, articleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.likes[userID] == nil {
		g.likes[userID] = make(map[string]bool)
	}
	g.likes[userID][articleID] = true
	return nil
}

// DeleteLike implements Store.
func (g *MemGraph) DeleteLike(_ context.Context, userID, articleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.likes[userID], articleID)
	return nil
}

// SimilarUsers implements Store: users sharing follow-targets with the
// subject, excluding the subject and anyone the subject already follows.
// Order: shared-followee count desc, then id asc.
func (g *MemGraph) SimilarUsers(_ context.Context, userID string, limit int) ([]SimilarUser, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	followees := g.follows[userID]
	shared := make(map[string]int64)
	for other, otherFollowees := range g.follows {
		if other == userID || followees[other] {
			continue
		}
		var n int64
		for followee := range followees {
			if otherFollowees[followee] {
				n++
			}
		}
		if n > 0 {
			shared[other] = n
		}
	}

	out := make([]SimilarUser, 0, len(shared))
	for id, n := range shared {
		u := g.users[id]
		out = append(out, SimilarUser{ID: id, Name: u.Name, Username: u.Username, SharedFollowees: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SharedFollowees != out[j].SharedFollowees {
			return out[i].SharedFollowees > out[j].SharedFollowees
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, limit), nil
}

// RelatedArticles implements Store: published articles sharing a tag or
// category with the subject article, excluding the subject.
// Order: shared attribute count desc, view count desc, id asc.
func (g *MemGraph) RelatedArticles(_ context.Context, articleID string, limit int) ([]RelatedArticle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	attrs := unionSets(g.tags[articleID], g.categories[articleID])
	out := g.byAttributeOverlap(attrs, map[string]bool{articleID: true})
	return truncate(out, limit), nil
}

// RecommendedArticles implements Store: published articles sharing a tag or
// category with articles the user liked, excluding everything already liked.
// Order: shared attribute count desc, view count desc, id asc.
func (g *MemGraph) RecommendedArticles(_ context.Context, userID string, limit int) ([]RelatedArticle, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	liked := g.likes[userID]
	attrs := make(map[string]bool)
	exclude := make(map[string]bool, len(liked))
	for articleID := range liked {
		exclude[articleID] = true
		for name := range g.tags[articleID] {
			attrs[name] = true
		}
		for name := range g.categories[articleID] {
			attrs[name] = true
		}
	}
	out := g.byAttributeOverlap(attrs, exclude)
	return truncate(out, limit), nil
}

// byAttributeOverlap ranks published articles by how many of their tags and
// categories appear in attrs. Callers must hold mu.
func (g *MemGraph) byAttributeOverlap(attrs, exclude map[string]bool) []RelatedArticle {
	out := make([]RelatedArticle, 0)
	for id, a := range g.articles {
		if exclude[id] {
			continue
		}
		var shared int64
		for name := range g.tags[id] {
			if attrs[name] {
				shared++
			}
		}
		for name := range g.categories[id] {
			if attrs[name] {
				shared++
			}
		}
		if shared == 0 {
			continue
		}
		out = append(out, RelatedArticle{ID: id, Title: a.Title, Slug: a.Slug, ViewCount: a.ViewCount, Shared: shared})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Shared != out[j].Shared {
			return out[i].Shared > out[j].Shared
		}
		if out[i].ViewCount != out[j].ViewCount {
			return out[i].ViewCount > out[j].ViewCount
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// InfluentialAuthors implements Store: users whose in-graph follower count
// meets the threshold. Order: follower count desc, authored-article count
// desc, id asc.
func (g *MemGraph) InfluentialAuthors(_ context.Context, minFollowers int64, limit int) ([]InfluentialAuthor, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	followers := make(map[string]int64)
	for _, followees := range g.follows {
		for followee := range followees {
			followers[followee]++
		}
	}
	authored := make(map[string]int64)
	for _, a := range g.articles {
		if a.AuthorID != "" {
			authored[a.AuthorID]++
		}
	}

	out := make([]InfluentialAuthor, 0)
	for id, u := range g.users {
		if followers[id] < minFollowers {
			continue
		}
		out = append(out, InfluentialAuthor{
			ID:        id,
			Name:      u.Name,
			Username:  u.Username,
			Followers: followers[id],
			Articles:  authored[id],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Followers != out[j].Followers {
			return out[i].Followers > out[j].Followers
		}
		if out[i].Articles != out[j].Articles {
			return out[i].Articles > out[j].Articles
		}
		return out[i].ID < out[j].ID
	})
	return truncate(out, limit), nil
}

// TopicsOfInterest implements Store: tags and categories on articles the
// user liked, counted per interaction. Tags and categories are each limited
// independently, then merged, re-sorted (count desc, name asc, tag before
// category) and truncated again. A dominant kind can therefore under-fill
// the other; that two-stage behavior is the contract.
func (g *MemGraph) TopicsOfInterest(_ context.Context, userID string, limit int) ([]Topic, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	tagCounts := make(map[string]int64)
	catCounts := make(map[string]int64)
	for articleID := range g.likes[userID] {
		if _, ok := g.articles[articleID]; !ok {
			continue
		}
		for name := range g.tags[articleID] {
			tagCounts[name]++
		}
		for name := range g.categories[articleID] {
			catCounts[name]++
		}
	}

	merged := append(
		topTopics(tagCounts, TopicTag, limit),
		topTopics(catCounts, TopicCategory, limit)...,
	)
	sortTopics(merged)
	return truncate(merged, limit), nil
}

// Statistics implements Store.
func (g *MemGraph) Statistics(_ context.Context) (Statistics, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var stats Statistics
	stats.Users = int64(len(g.users))
	stats.Articles = int64(len(g.articles))

	tagNames := make(map[string]bool)
	for _, names := range g.tags {
		for name := range names {
			tagNames[name] = true
		}
		stats.HasTag += int64(len(names))
	}
	catNames := make(map[string]bool)
	for _, names := range g.categories {
		for name := range names {
			catNames[name] = true
		}
		stats.InCategory += int64(len(names))
	}
	stats.Tags = int64(len(tagNames))
	stats.Categories = int64(len(catNames))

	for _, a := range g.articles {
		if a.AuthorID != "" {
			stats.Authored++
		}
	}
	for _, followees := range g.follows {
		stats.Follows += int64(len(followees))
	}
	for _, articles := range g.likes {
		stats.Likes += int64(len(articles))
	}
	return stats, nil
}

// ClearAll implements Store.
func (g *MemGraph) ClearAll(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.users = make(map[string]User)
	g.articles = make(map[string]Article)
	g.tags = make(map[string]map[string]bool)
	g.categories = make(map[string]map[string]bool)
	g.follows = make(map[string]map[string]bool)
	g.likes = make(map[string]map[string]bool)
	return nil
}

// Close implements Store.
func (g *MemGraph) Close(context.Context) error { return nil }

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		if name != "" {
			set[name] = true
		}
	}
	return set
}

func unionSets(sets ...map[string]bool) map[string]bool {
	union := make(map[string]bool)
	for _, set := range sets {
		for name := range set {
			union[name] = true
		}
	}
	return union
}

func topTopics(counts map[string]int64, kind TopicKind, limit int) []Topic {
	out := make([]Topic, 0, len(counts))
	for name, n := range counts {
		out = append(out, Topic{Name: name, Kind: kind, Interactions: n})
	}
	sortTopics(out)
	return truncate(out, limit)
}

func sortTopics(topics []Topic) {
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Interactions != topics[j].Interactions {
			return topics[i].Interactions > topics[j].Interactions
		}
		if topics[i].Name != topics[j].Name {
			return topics[i].Name < topics[j].Name
		}
		return topics[i].Kind == TopicTag && topics[j].Kind == TopicCategory
	})
}

func truncate[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
