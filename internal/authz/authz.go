// Package authz renders mutation authorization decisions for blogs.
// Decisions are driven by a single policy table keyed by operation and
// whether the target exists, instead of per-route checks.
package authz

import (
	"fmt"

	"github.com/TinyGandalf/FullstackOpen-part4/internal/apperr"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/auth"
	"github.com/TinyGandalf/FullstackOpen-part4/internal/models"
)

type Operation int

const (
	OpUpdate Operation = iota
	OpDelete
)

type policyKey struct {
	op     Operation
	exists bool
}

type rule func(blog *models.Blog, caller auth.Caller, present bool) error

// Deleting a blog that does not exist fails exactly like deleting a
// blog you don't own: existence must not leak through the delete path.
// Update is the opposite — a missing target is NOT_FOUND for everyone,
// and an existing one is writable by any caller, anonymous included.
var policy = map[policyKey]rule{
	{OpDelete, false}: func(*models.Blog, auth.Caller, bool) error {
		return errNotOwner()
	},
	{OpDelete, true}: func(blog *models.Blog, caller auth.Caller, present bool) error {
		if !present || blog.UserID == "" || caller.ID != blog.UserID {
			return errNotOwner()
		}
		return nil
	},
	{OpUpdate, false}: func(*models.Blog, auth.Caller, bool) error {
		return apperr.New(apperr.NotFound, "blog not found")
	},
	{OpUpdate, true}: func(*models.Blog, auth.Caller, bool) error {
		return nil
	},
}

func errNotOwner() error {
	return apperr.New(apperr.Authorization, "only the creator can delete a blog")
}

// Authorize decides whether the caller may perform op on blog. A nil
// blog means the target does not resolve. Returns nil when allowed,
// otherwise an apperr with kind Authorization or NotFound.
func Authorize(op Operation, blog *models.Blog, caller auth.Caller, present bool) error {
	rule, ok := policy[policyKey{op: op, exists: blog != nil}]
	if !ok {
		return fmt.Errorf("authz: unknown operation %d", op)
	}
	return rule(blog, caller, present)
}
