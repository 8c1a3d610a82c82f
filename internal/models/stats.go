package models

// Stats is the admin dashboard summary over both collections.
type Stats struct {
	TotalPosts      int64 `json:"totalPosts"`
	PublishedPosts  int64 `json:"publishedPosts"`
	DraftPosts      int64 `json:"draftPosts"`
	TotalCategories int64 `json:"totalCategories"`
	TotalViews      int64 `json:"totalViews"`
}
