package models

// BlogPatch is a partial update payload. Nil fields mean "leave as is",
// so a sparse body never zeroes untouched columns.
type BlogPatch struct {
	Title *string `json:"title"`
	Likes *int    `json:"likes"`
}

// Apply merges the patch onto an existing blog and returns the result.
// Only title and likes are mutable; url, author, owner and id always
// carry over from the existing row.
func (p BlogPatch) Apply(existing Blog) Blog {
	merged := existing
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Likes != nil {
		merged.Likes = *p.Likes
	}
	return merged
}
