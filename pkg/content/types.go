// Package content defines the wiki's domain model: the rooted tree of
// directories and pages, immutable revisions, slug redirects, permission
// grants, and the Store interface that persistent backends implement.
//
// The package is storage-agnostic. Backends live under
// pkg/store/content (badger for persistence, memory for tests and
// ephemeral deployments) and are exercised by a shared conformance suite.
package content

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind discriminates the two addressable entity types.
//
// Redirects, grants, and revisions all reference entities through a tagged
// TargetRef rather than a polymorphic base type, so resolvers can
// pattern-match exhaustively and backends can enforce per-kind integrity.
type EntityKind string

const (
	KindDirectory EntityKind = "directory"
	KindPage      EntityKind = "page"
)

// TargetRef identifies a directory or page by kind and id.
type TargetRef struct {
	Kind EntityKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// DirectoryRef builds a TargetRef for a directory.
func DirectoryRef(id uuid.UUID) TargetRef {
	return TargetRef{Kind: KindDirectory, ID: id}
}

// PageRef builds a TargetRef for a page.
func PageRef(id uuid.UUID) TargetRef {
	return TargetRef{Kind: KindPage, ID: id}
}

// Visibility controls the implicit access floor of a directory or page.
//
//   - Public: anonymous and all users get at least View, regardless of grants
//   - Private: only Owner-level subjects get any access
//   - Restricted: grants apply as-is, with no implicit floor
type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityPrivate    Visibility = "private"
	VisibilityRestricted Visibility = "restricted"
)

// Valid reports whether v is a known visibility value.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityRestricted:
		return true
	}
	return false
}

// Level is an effective or granted permission level. Levels are totally
// ordered; comparisons use plain < and >.
type Level int

const (
	LevelNone Level = iota
	LevelView
	LevelEdit
	LevelOwner
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelView:
		return "view"
	case LevelEdit:
		return "edit"
	case LevelOwner:
		return "owner"
	default:
		return "unknown"
	}
}

// Max returns the more permissive of l and other.
func (l Level) Max(other Level) Level {
	if other > l {
		return other
	}
	return l
}

// Directory is a node in the wiki hierarchy.
//
// The root directory has ParentID == nil and Path == "". Path is derived:
// it is always the slash-joined concatenation of ancestor slugs, maintained
// by the store on every rename/move.
type Directory struct {
	ID          uuid.UUID  `json:"id"`
	Path        string     `json:"path"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Visibility  Visibility `json:"visibility"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`

	// CurrentRevision is the sequence number of the latest revision,
	// 0 if no revision has been recorded yet.
	CurrentRevision uint64 `json:"current_revision"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot reports whether d is the root directory.
func (d *Directory) IsRoot() bool {
	return d.ParentID == nil
}

// Slug returns the directory's own path segment ("" for the root).
func (d *Directory) Slug() string {
	return LastSegment(d.Path)
}

// Ref returns the directory's TargetRef.
func (d *Directory) Ref() TargetRef {
	return DirectoryRef(d.ID)
}

// Page is a wiki page with markdown content.
//
// (DirectoryID, Slug) is unique; slugs are additionally unique across the
// whole wiki so that #slug links resolve unambiguously. The slug is derived
// from the title at creation and rename time.
type Page struct {
	ID          uuid.UUID  `json:"id"`
	Slug        string     `json:"slug"`
	DirectoryID uuid.UUID  `json:"directory_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	Visibility  Visibility `json:"visibility"`

	// ViewCount is denormalized, updated periodically from view tallies.
	ViewCount uint64 `json:"view_count"`

	// CurrentRevision is the sequence number of the latest revision.
	// Always >= 1 for a persisted page.
	CurrentRevision uint64 `json:"current_revision"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PathIn returns the page's full content path within the given directory
// path (dir/slug, or just the slug for root-directory pages).
func (p *Page) PathIn(dirPath string) string {
	return JoinPath(dirPath, p.Slug)
}

// Ref returns the page's TargetRef.
func (p *Page) Ref() TargetRef {
	return PageRef(p.ID)
}

// Revision is an immutable snapshot of a page or directory at one point in
// time. For directories, Content holds the markdown description.
//
// Revisions for an entity are totally ordered by Seq, gapless from 1, and
// are never mutated or deleted.
type Revision struct {
	Entity        TargetRef  `json:"entity"`
	Seq           uint64     `json:"seq"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	ChangeMessage string     `json:"change_message"`
	AuthorID      *uuid.UUID `json:"author_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SlugRedirect maps a historical path to the entity that used to live
// there. The target is stored by reference, never by destination path, so
// a lookup always yields the target's current live path: chains cannot
// form and cycles are structurally impossible.
type SlugRedirect struct {
	OldPath   string    `json:"old_path"`
	Target    TargetRef `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

// SubjectKind discriminates grant subjects.
type SubjectKind string

const (
	SubjectUser  SubjectKind = "user"
	SubjectGroup SubjectKind = "group"
)

// Subject identifies a user or group holding a grant.
type Subject struct {
	Kind SubjectKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

// UserSubject builds a Subject for a user.
func UserSubject(id uuid.UUID) Subject {
	return Subject{Kind: SubjectUser, ID: id}
}

// GroupSubject builds a Subject for a group.
func GroupSubject(id uuid.UUID) Subject {
	return Subject{Kind: SubjectGroup, ID: id}
}

// Grant is a permission grant for a subject on some target. Multiple
// grants per target are permitted; the effective level for an identity is
// the maximum across all applicable grants.
type Grant struct {
	Subject Subject `json:"subject"`
	Level   Level   `json:"level"`
}

// User is a wiki account. IsSystemOwner is populated by the store from
// the singleton system-owner record; it is never set directly.
type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	IsSystemOwner bool      `json:"is_system_owner"`
	CreatedAt     time.Time `json:"created_at"`
}

// Group is a named set of users used as a grant subject.
type Group struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	MemberIDs []uuid.UUID `json:"member_ids"`
	CreatedAt time.Time   `json:"created_at"`
}

// Attachment records a file uploaded to a page. The bytes themselves live
// in an attachment store (S3, filesystem, memory); this row only carries
// the metadata and the opaque storage key.
type Attachment struct {
	ID               uuid.UUID  `json:"id"`
	PageID           uuid.UUID  `json:"page_id"`
	Key              string     `json:"key"`
	OriginalFilename string     `json:"original_filename"`
	ContentType      string     `json:"content_type"`
	Size             int64      `json:"size"`
	UploadedBy       *uuid.UUID `json:"uploaded_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
