// Package stats holds pure reductions over a blog collection. Nothing
// here touches the store; callers fetch the collection first.
package stats

import "github.com/TinyGandalf/FullstackOpen-part4/internal/models"

// BlogSummary is the reduced favorite-blog projection: no id, url or
// owner, only what the ranking was computed from.
type BlogSummary struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// AuthorCount pairs an author with how many blogs they wrote.
type AuthorCount struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

// TotalLikes sums like counts, 0 for an empty collection.
func TotalLikes(blogs []models.Blog) int {
	total := 0
	for _, blog := range blogs {
		total += blog.Likes
	}
	return total
}

// FavoriteBlog returns the blog with the most likes. Comparison is
// strictly-greater, so on a tie the first blog encountered wins.
// ok is false for an empty collection.
func FavoriteBlog(blogs []models.Blog) (BlogSummary, bool) {
	if len(blogs) == 0 {
		return BlogSummary{}, false
	}
	top := blogs[0]
	for _, blog := range blogs[1:] {
		if blog.Likes > top.Likes {
			top = blog
		}
	}
	return BlogSummary{Title: top.Title, Author: top.Author, Likes: top.Likes}, true
}

// MostBlogs returns the author with the most blogs. Authors are grouped
// by exact string match, no normalization; ties go to the author first
// encountered in the input. ok is false for an empty collection.
func MostBlogs(blogs []models.Blog) (AuthorCount, bool) {
	if len(blogs) == 0 {
		return AuthorCount{}, false
	}
	counts := make(map[string]int, len(blogs))
	order := make([]string, 0, len(blogs))
	for _, blog := range blogs {
		if _, seen := counts[blog.Author]; !seen {
			order = append(order, blog.Author)
		}
		counts[blog.Author]++
	}
	top := AuthorCount{Author: order[0], Blogs: counts[order[0]]}
	for _, author := range order[1:] {
		if counts[author] > top.Blogs {
			top = AuthorCount{Author: author, Blogs: counts[author]}
		}
	}
	return top, true
}
