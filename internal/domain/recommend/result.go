// Package recommend defines the uniform envelope every recommendation query
// returns, regardless of the traversal that produced it.
package recommend

// Kind identifies a recommendation query type.
type Kind string

// Recommendation query kinds.
const (
	KindSimilarUsers        Kind = "similar_users"
	KindRelatedArticles     Kind = "related_articles"
	KindRecommendedArticles Kind = "recommended_articles"
	KindInfluentialAuthors  Kind = "influential_authors"
	KindTopicsOfInterest    Kind = "topics_of_interest"
)

// Item is one recommendation row. Keys depend on the kind: user rows carry
// id/name/username, article rows carry id/title/slug/view_count, topic rows
// carry name/kind/interactions, plus the per-query relevance counters.
type Item map[string]interface{}

// Result is the uniform recommendation envelope.
type Result struct {
	Kind         Kind                   `json:"type"`
	Items        []Item                 `json:"items"`
	TotalCount   int                    `json:"total_count"`
	ForUserID    string                 `json:"for_user_id,omitempty"`
	ForArticleID string                 `json:"for_article_id,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// IsEmpty reports whether the result carries no items.
func (r Result) IsEmpty() bool {
	return len(r.Items) == 0
}

// New wraps traversal rows in an envelope.
func New(kind Kind, items []Item) Result {
	if items == nil {
		items = []Item{}
	}
	return Result{
		Kind:       kind,
		Items:      items,
		TotalCount: len(items),
		Metadata:   map[string]interface{}{},
	}
}

// Empty builds an explicitly empty result tagged with the reason the query
// produced nothing. Unavailable graph stores answer with these instead of
// errors.
func Empty(kind Kind, reason string) Result {
	return Result{
		Kind:       kind,
		Items:      []Item{},
		TotalCount: 0,
		Metadata: map[string]interface{}{
			"empty":  true,
			"reason": reason,
		},
	}
}

// WithUser tags the result with the subject user id.
func (r Result) WithUser(userID string) Result {
	r.ForUserID = userID
	return r
}

// WithArticle tags the result with the subject article id.
func (r Result) WithArticle(articleID string) Result {
	r.ForArticleID = articleID
	return r
}
