package content

import (
	"context"

	"github.com/google/uuid"
)

// Store is the transactional persistence boundary for the wiki tree.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// Every mutating operation is atomic: a rename that records a redirect and
// rewrites derived paths is never observable half-done, and a losing
// concurrent writer fails with ErrPathConflict or ErrConflict rather than
// corrupting the tree.
//
// All operations return *StoreError for business logic failures and
// respect context cancellation. Reads are side-effect free and safe for
// unlimited concurrency.
type Store interface {
	// ========================================================================
	// Directory tree
	// ========================================================================

	// Root returns the root directory (path ""), creating it on first use.
	Root(ctx context.Context) (*Directory, error)

	// CreateDirectory creates a child directory under parentID. The new
	// directory's path segment is Slugify(title); creation fails with
	// ErrPathConflict if a sibling directory or a live page already owns
	// the resulting path. A first revision (seq 1) is recorded atomically.
	CreateDirectory(ctx context.Context, parentID uuid.UUID, title, description string, visibility Visibility, ownerID *uuid.UUID) (*Directory, error)

	// GetDirectory retrieves a directory by id.
	GetDirectory(ctx context.Context, id uuid.UUID) (*Directory, error)

	// GetDirectoryByPath retrieves a directory by its exact path.
	// The empty path returns the root.
	GetDirectoryByPath(ctx context.Context, path string) (*Directory, error)

	// ChildDirectories lists the direct subdirectories of a directory,
	// ordered by path.
	ChildDirectories(ctx context.Context, id uuid.UUID) ([]*Directory, error)

	// PagesIn lists the pages directly inside a directory, ordered by slug.
	PagesIn(ctx context.Context, id uuid.UUID) ([]*Page, error)

	// Ancestors returns the full ancestor chain of a directory, root
	// first, excluding the directory itself.
	Ancestors(ctx context.Context, id uuid.UUID) ([]*Directory, error)

	// Descendants returns a snapshot of every directory and page below the
	// given directory (the directory itself excluded). Used by bulk
	// operations that must pre-compute their working set.
	Descendants(ctx context.Context, id uuid.UUID) ([]TargetRef, error)

	// MoveDirectory renames and/or reparents a directory in one atomic
	// operation. Passing the current parent keeps the location; passing
	// the current title keeps the slug. The directory's derived path and
	// every descendant's derived path are rewritten, and redirects are
	// recorded for every old path that changed. Fails with
	// ErrPathConflict if the target path collides with a live sibling or
	// the move would make the directory its own ancestor. The root cannot
	// be moved.
	MoveDirectory(ctx context.Context, id, newParentID uuid.UUID, newTitle string) (*Directory, error)

	// UpdateDirectory records a content edit on a directory: title,
	// description and visibility are updated, a new revision is appended,
	// and the current-revision pointer is repointed, all atomically. A
	// title change that alters the slug behaves like MoveDirectory with
	// respect to paths and redirects.
	UpdateDirectory(ctx context.Context, id uuid.UUID, title, description string, visibility Visibility, authorID *uuid.UUID, changeMessage string) (*Directory, *Revision, error)

	// ========================================================================
	// Pages
	// ========================================================================

	// CreatePage creates a page in a directory with Slugify(title) as its
	// slug and records revision 1 atomically. Fails with ErrPathConflict
	// if the slug is already owned by any live page or the resulting path
	// by a directory. A stale redirect stored at the new path or slug is
	// deleted: the live entity wins.
	CreatePage(ctx context.Context, directoryID uuid.UUID, title, markdown string, visibility Visibility, ownerID *uuid.UUID) (*Page, error)

	// GetPage retrieves a page by id.
	GetPage(ctx context.Context, id uuid.UUID) (*Page, error)

	// GetPageBySlug retrieves a page by its globally unique slug.
	GetPageBySlug(ctx context.Context, slug string) (*Page, error)

	// LookupPage resolves a (directory path, slug) pair to a page. Both
	// parts must match: a page whose slug exists under a different
	// directory is ErrNotFound here.
	LookupPage(ctx context.Context, dirPath, slug string) (*Page, error)

	// UpdatePage records a content edit on a page: title, markdown and
	// visibility are updated and a new revision appended atomically. If
	// the title change alters the slug, a redirect is recorded for the old
	// path and old slug, and ErrPathConflict is returned if the new slug
	// is taken by a live page.
	UpdatePage(ctx context.Context, id uuid.UUID, title, markdown string, visibility Visibility, authorID *uuid.UUID, changeMessage string) (*Page, *Revision, error)

	// MovePage moves a page to another directory, keeping its slug, and
	// records a redirect for the old full path.
	MovePage(ctx context.Context, id, newDirectoryID uuid.UUID) (*Page, error)

	// PagePath returns the page's current full content path.
	PagePath(ctx context.Context, id uuid.UUID) (string, error)

	// ========================================================================
	// Slug redirects
	// ========================================================================

	// ResolveRedirect looks up a historical full path. ErrNotFound when no
	// redirect is recorded for it.
	ResolveRedirect(ctx context.Context, oldPath string) (*SlugRedirect, error)

	// ResolveSlugRedirect looks up a historical page slug (the wiki-link
	// namespace, independent of directories).
	ResolveSlugRedirect(ctx context.Context, oldSlug string) (*SlugRedirect, error)

	// ========================================================================
	// Revisions
	// ========================================================================

	// GetRevision retrieves one revision of an entity by sequence number.
	GetRevision(ctx context.Context, entity TargetRef, seq uint64) (*Revision, error)

	// ListRevisions lists an entity's revisions, newest first.
	ListRevisions(ctx context.Context, entity TargetRef) ([]*Revision, error)

	// ========================================================================
	// Permission grants
	// ========================================================================

	// SetGrants upserts the given subject→level grants on a target.
	// Grants for subjects not named in the call are left intact. A grant
	// with LevelNone removes the subject's grant.
	SetGrants(ctx context.Context, target TargetRef, grants []Grant) error

	// Grants lists the direct grants on a target.
	Grants(ctx context.Context, target TargetRef) ([]Grant, error)

	// ApplyGrantsRecursively upserts grants on a directory and every
	// descendant in a single atomic transaction over a pre-collected
	// subtree snapshot: either all descendants receive the update or none
	// do.
	ApplyGrantsRecursively(ctx context.Context, directoryID uuid.UUID, grants []Grant) error

	// ========================================================================
	// Users, groups, system owner
	// ========================================================================

	// PutUser inserts or updates a user record.
	PutUser(ctx context.Context, user *User) error

	// GetUser retrieves a user by id, with IsSystemOwner populated.
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)

	// PutGroup inserts or updates a group record.
	PutGroup(ctx context.Context, group *Group) error

	// GetGroup retrieves a group by id.
	GetGroup(ctx context.Context, id uuid.UUID) (*Group, error)

	// GroupsFor returns the ids of every group the user belongs to.
	GroupsFor(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// ClaimSystemOwner makes userID the system owner if and only if no
	// owner exists yet (compare-and-set; exactly one winner under
	// concurrent first logins). Returns true if the claim succeeded,
	// false if an owner (this user or another) was already recorded.
	// The role is immutable: no in-band operation revokes it.
	ClaimSystemOwner(ctx context.Context, userID uuid.UUID) (bool, error)

	// SystemOwner returns the system owner's id, with ok=false before any
	// successful claim.
	SystemOwner(ctx context.Context) (id uuid.UUID, ok bool, err error)

	// ========================================================================
	// View tallies
	// ========================================================================

	// RecordView appends a view tally row for a page. Tally rows are
	// summed into Page.ViewCount by SyncViewCounts.
	RecordView(ctx context.Context, pageID uuid.UUID) error

	// SyncViewCounts sums a snapshot of tally rows into the denormalized
	// per-page view counts and deletes exactly the rows it summed. Rows
	// inserted after the snapshot began are neither summed nor deleted,
	// so no view is ever lost. Returns the number of pages updated.
	SyncViewCounts(ctx context.Context) (int, error)

	// ========================================================================
	// Page links and attachments
	// ========================================================================

	// SetPageLinks replaces the outgoing wiki-link rows of a page.
	SetPageLinks(ctx context.Context, fromPage uuid.UUID, toPages []uuid.UUID) error

	// Backlinks returns the ids of pages whose content links to pageID.
	Backlinks(ctx context.Context, pageID uuid.UUID) ([]uuid.UUID, error)

	// PutAttachment records attachment metadata for a page.
	PutAttachment(ctx context.Context, att *Attachment) error

	// Attachments lists the attachments recorded for a page.
	Attachments(ctx context.Context, pageID uuid.UUID) ([]*Attachment, error)

	// ========================================================================
	// Lifecycle
	// ========================================================================

	// Healthcheck verifies the store is operational. Fast, read-only.
	Healthcheck(ctx context.Context) error

	// Close releases store resources. The store must not be used after.
	Close() error
}
