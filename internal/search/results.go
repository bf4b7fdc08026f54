package search

// Result is a single catalog search hit with its relevance score.
type Result struct {
	BookID int64   `json:"bookId"`
	Score  float64 `json:"score"`
}
