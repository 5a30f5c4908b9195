package graphstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore implements Store over a Neo4j bolt connection. Availability is
// tracked by a Prober: while the backend is marked unavailable, writes no-op
// and reads return empty results so callers degrade instead of failing.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	prober *Prober
}

// NewNeo4jStore opens a driver against the given bolt URI. The connection is
// verified lazily by the first operation, per the probe policy configured
// through the options.
func NewNeo4jStore(uri, user, password string, opts ...ProbeOption) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	s := &Neo4jStore{driver: driver}
	s.prober = NewProber(func(ctx context.Context) error {
		return s.driver.VerifyConnectivity(ctx)
	}, opts...)
	return s, nil
}

// Available implements Store.
func (s *Neo4jStore) Available(ctx context.Context) bool {
	return s.prober.Available(ctx)
}

// write runs a single write statement, no-oping when the backend is
// unavailable.
func (s *Neo4jStore) write(ctx context.Context, query string, params map[string]interface{}) error {
	if !s.prober.Available(ctx) {
		return nil
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, query, params); err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return nil
}

// read runs a read statement and hands each record to collect. An
// unavailable backend yields no records and no error.
func (s *Neo4jStore) read(ctx context.Context, query string, params map[string]interface{}, collect func(*neo4j.Record)) error {
	if !s.prober.Available(ctx) {
		return nil
	}
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	for result.Next(ctx) {
		collect(result.Record())
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return nil
}

// UpsertUser implements Store.
func (s *Neo4jStore) UpsertUser(ctx context.Context, u User) error {
	query := `
		MERGE (u:User {id: $id})
		SET u.name = $name, u.email = $email, u.username = $username
	`
	return s.write(ctx, query, map[string]interface{}{
		"id":       u.ID,
		"name":     u.Name,
		"email":    u.Email,
		"username": u.Username,
	})
}

// UpsertArticle implements Store. The AUTHORED edge is re-merged when the
// author node exists.
func (s *Neo4jStore) UpsertArticle(ctx context.Context, a Article) error {
	query := `
		MERGE (a:Article {id: $id})
		SET a.title = $title, a.slug = $slug, a.status = $status,
		    a.author_id = $author_id, a.view_count = $view_count,
		    a.like_count = $like_count
		WITH a
		OPTIONAL MATCH (u:User {id: $author_id})
		FOREACH (author IN CASE WHEN u IS NULL THEN [] ELSE [u] END |
			MERGE (author)-[:AUTHORED]->(a))
	`
	return s.write(ctx, query, map[string]interface{}{
		"id":         a.ID,
		"title":      a.Title,
		"slug":       a.Slug,
		"status":     a.Status,
		"author_id":  a.AuthorID,
		"view_count": a.ViewCount,
		"like_count": a.LikeCount,
	})
}

// DeleteUser implements Store.
func (s *Neo4jStore) DeleteUser(ctx context.Context, id string) error {
	return s.write(ctx, `MATCH (u:User {id: $id}) DETACH DELETE u`,
		map[string]interface{}{"id": id})
}

// DeleteArticle implements Store.
func (s *Neo4jStore) DeleteArticle(ctx context.Context, id string) error {
	return s.write(ctx, `MATCH (a:Article {id: $id}) DETACH DELETE a`,
		map[string]interface{}{"id": id})
}

// ReplaceArticleTopics implements Store.
func (s *Neo4jStore) ReplaceArticleTopics(ctx context.Context, articleID string, tags, categories []string) error {
	drop := `
		MATCH (a:Article {id: $id})
		OPTIONAL MATCH (a)-[r:HAS_TAG|IN_CATEGORY]->()
		DELETE r
	`
	if err := s.write(ctx, drop, map[string]interface{}{"id": articleID}); err != nil {
		return err
	}
	if len(tags) > 0 {
		addTags := `
			MATCH (a:Article {id: $id})
			UNWIND $names AS name
			MERGE (t:Tag {name: name})
			MERGE (a)-[:HAS_TAG]->(t)
		`
		if err := s.write(ctx, addTags, map[string]interface{}{"id": articleID, "names": tags}); err != nil {
			return err
		}
	}
	if len(categories) > 0 {
		addCategories := `
			MATCH (a:Article {id: $id})
			UNWIND $names AS name
			MERGE (c:Category {name: name})
			MERGE (a)-[:IN_CATEGORY]->(c)
		`
		if err := s.write(ctx, addCategories, map[string]interface{}{"id": articleID, "names": categories}); err != nil {
			return err
		}
	}
	return nil
}

// UpsertFollow implements Store.
func (s *Neo4jStore) UpsertFollow(ctx context.Context, followerID, followeeID string) error {
	query := `
		MATCH (f:User {id: $follower}), (t:User {id: $followee})
		MERGE (f)-[:FOLLOWS]->(t)
	`
	return s.write(ctx, query, map[string]interface{}{"follower": followerID, "followee": followeeID})
}

// DeleteFollow implements Store.
func (s *Neo4jStore) DeleteFollow(ctx context.Context, followerID, followeeID string) error {
	query := `
		MATCH (f:User {id: $follower})-[r:FOLLOWS]->(t:User {id: $followee})
		DELETE r
	`
	return s.write(ctx, query, map[string]interface{}{"follower": followerID, "followee": followeeID})
}

// UpsertLike implements Store.
func (s *Neo4jStore) UpsertLike(ctx context.Context, userID, articleID string) error {
	query := `
		MATCH (u:User {id: $user}), (a:Article {id: $article})
		MERGE (u)-[:LIKES]->(a)
	`
	return s.write(ctx, query, map[string]interface{}{"user": userID, "article": articleID})
}

// DeleteLike implements Store.
func (s *Neo4jStore) DeleteLike(ctx context.Context, userID, articleID string) error {
	query := `
		MATCH (u:User {id: $user})-[r:LIKES]->(a:Article {id: $article})
		DELETE r
	`
	return s.write(ctx, query, map[string]interface{}{"user": userID, "article": articleID})
}

// SimilarUsers implements Store.
func (s *Neo4jStore) SimilarUsers(ctx context.Context, userID string, limit int) ([]SimilarUser, error) {
	query := `
		MATCH (me:User {id: $id})-[:FOLLOWS]->(t:User)<-[:FOLLOWS]-(other:User)
		WHERE other.id <> $id AND NOT (me)-[:FOLLOWS]->(other)
		RETURN other.id AS id, other.name AS name, other.username AS username,
		       count(DISTINCT t) AS shared
		ORDER BY shared DESC, id ASC
		LIMIT $limit
	`
	out := []SimilarUser{}
	err := s.read(ctx, query, map[string]interface{}{"id": userID, "limit": limit}, func(rec *neo4j.Record) {
		out = append(out, SimilarUser{
			ID:              stringVal(rec, "id"),
			Name:            stringVal(rec, "name"),
			Username:        stringVal(rec, "username"),
			SharedFollowees: intVal(rec, "shared"),
		})
	})
	return out, err
}

// RelatedArticles implements Store.
func (s *Neo4jStore) RelatedArticles(ctx context.Context, articleID string, limit int) ([]RelatedArticle, error) {
	query := `
		MATCH (a:Article {id: $id})-[:HAS_TAG|IN_CATEGORY]->(attr)
		      <-[:HAS_TAG|IN_CATEGORY]-(other:Article)
		WHERE other.id <> $id
		RETURN other.id AS id, other.title AS title, other.slug AS slug,
		       other.view_count AS view_count, count(DISTINCT attr) AS shared
		ORDER BY shared DESC, view_count DESC, id ASC
		LIMIT $limit
	`
	return s.readArticles(ctx, query, map[string]interface{}{"id": articleID, "limit": limit})
}

// RecommendedArticles implements Store.
func (s *Neo4jStore) RecommendedArticles(ctx context.Context, userID string, limit int) ([]RelatedArticle, error) {
	query := `
		MATCH (u:User {id: $id})-[:LIKES]->(:Article)-[:HAS_TAG|IN_CATEGORY]->(attr)
		      <-[:HAS_TAG|IN_CATEGORY]-(rec:Article)
		WHERE NOT (u)-[:LIKES]->(rec)
		RETURN rec.id AS id, rec.title AS title, rec.slug AS slug,
		       rec.view_count AS view_count, count(DISTINCT attr) AS shared
		ORDER BY shared DESC, view_count DESC, id ASC
		LIMIT $limit
	`
	return s.readArticles(ctx, query, map[string]interface{}{"id": userID, "limit": limit})
}

func (s *Neo4jStore) readArticles(ctx context.Context, query string, params map[string]interface{}) ([]RelatedArticle, error) {
	out := []RelatedArticle{}
	err := s.read(ctx, query, params, func(rec *neo4j.Record) {
		out = append(out, RelatedArticle{
			ID:        stringVal(rec, "id"),
			Title:     stringVal(rec, "title"),
			Slug:      stringVal(rec, "slug"),
			ViewCount: intVal(rec, "view_count"),
			Shared:    intVal(rec, "shared"),
		})
	})
	return out, err
}

// InfluentialAuthors implements Store.
func (s *Neo4jStore) InfluentialAuthors(ctx context.Context, minFollowers int64, limit int) ([]InfluentialAuthor, error) {
	query := `
		MATCH (u:User)<-[:FOLLOWS]-(f:User)
		WITH u, count(f) AS followers
		WHERE followers >= $min
		OPTIONAL MATCH (u)-[:AUTHORED]->(a:Article)
		RETURN u.id AS id, u.name AS name, u.username AS username,
		       followers, count(a) AS articles
		ORDER BY followers DESC, articles DESC, id ASC
		LIMIT $limit
	`
	out := []InfluentialAuthor{}
	err := s.read(ctx, query, map[string]interface{}{"min": minFollowers, "limit": limit}, func(rec *neo4j.Record) {
		out = append(out, InfluentialAuthor{
			ID:        stringVal(rec, "id"),
			Name:      stringVal(rec, "name"),
			Username:  stringVal(rec, "username"),
			Followers: intVal(rec, "followers"),
			Articles:  intVal(rec, "articles"),
		})
	})
	return out, err
}

// TopicsOfInterest implements Store. Tags and categories are queried
// separately with the same limit, then merged, re-sorted, and truncated in
// process to keep the two-stage semantics identical to the embedded graph.
func (s *Neo4jStore) TopicsOfInterest(ctx context.Context, userID string, limit int) ([]Topic, error) {
	tagQuery := `
		MATCH (u:User {id: $id})-[:LIKES]->(a:Article)-[:HAS_TAG]->(t:Tag)
		RETURN t.name AS name, count(a) AS interactions
		ORDER BY interactions DESC, name ASC
		LIMIT $limit
	`
	catQuery := `
		MATCH (u:User {id: $id})-[:LIKES]->(a:Article)-[:IN_CATEGORY]->(c:Category)
		RETURN c.name AS name, count(a) AS interactions
		ORDER BY interactions DESC, name ASC
		LIMIT $limit
	`
	params := map[string]interface{}{"id": userID, "limit": limit}

	merged := []Topic{}
	err := s.read(ctx, tagQuery, params, func(rec *neo4j.Record) {
		merged = append(merged, Topic{Name: stringVal(rec, "name"), Kind: TopicTag, Interactions: intVal(rec, "interactions")})
	})
	if err != nil {
		return nil, err
	}
	err = s.read(ctx, catQuery, params, func(rec *neo4j.Record) {
		merged = append(merged, Topic{Name: stringVal(rec, "name"), Kind: TopicCategory, Interactions: intVal(rec, "interactions")})
	})
	if err != nil {
		return nil, err
	}
	sortTopics(merged)
	return truncate(merged, limit), nil
}

// Statistics implements Store.
func (s *Neo4jStore) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	counts := []struct {
		query string
		dest  *int64
	}{
		{`MATCH (u:User) RETURN count(u) AS n`, &stats.Users},
		{`MATCH (a:Article) RETURN count(a) AS n`, &stats.Articles},
		{`MATCH (t:Tag) RETURN count(t) AS n`, &stats.Tags},
		{`MATCH (c:Category) RETURN count(c) AS n`, &stats.Categories},
		{`MATCH ()-[r:AUTHORED]->() RETURN count(r) AS n`, &stats.Authored},
		{`MATCH ()-[r:FOLLOWS]->() RETURN count(r) AS n`, &stats.Follows},
		{`MATCH ()-[r:LIKES]->() RETURN count(r) AS n`, &stats.Likes},
		{`MATCH ()-[r:HAS_TAG]->() RETURN count(r) AS n`, &stats.HasTag},
		{`MATCH ()-[r:IN_CATEGORY]->() RETURN count(r) AS n`, &stats.InCategory},
	}
	for _, c := range counts {
		dest := c.dest
		if err := s.read(ctx, c.query, nil, func(rec *neo4j.Record) {
			*dest = intVal(rec, "n")
		}); err != nil {
			return Statistics{}, err
		}
	}
	return stats, nil
}

// ClearAll implements Store.
func (s *Neo4jStore) ClearAll(ctx context.Context) error {
	return s.write(ctx, `MATCH (n) DETACH DELETE n`, nil)
}

// Close implements Store.
func (s *Neo4jStore) Close(ctx context.Context) error {
	if err := s.driver.Close(ctx); err != nil {
		return fmt.Errorf("neo4j close: %w", err)
	}
	return nil
}

func stringVal(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intVal(rec *neo4j.Record, key string) int64 {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return 0
	}
	n, _ := v.(int64)
	return n
}
