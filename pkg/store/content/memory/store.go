// Package memory implements content.Store using in-memory maps.
//
// Suitable for tests, development, and ephemeral deployments where
// persistence is not required. All operations are protected by a single
// read-write mutex; this coarse-grained locking is simple and correct,
// and also makes every mutation trivially atomic.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// revisionKey addresses one revision of one entity.
type revisionKey struct {
	kind content.EntityKind
	id   uuid.UUID
	seq  uint64
}

// grantKey addresses one subject's grant on one target.
type grantKey struct {
	target  content.TargetRef
	subject content.Subject
}

// tallyRow is one un-aggregated page view record.
type tallyRow struct {
	id     uuid.UUID
	pageID uuid.UUID
	count  uint64
}

// MemoryStore implements content.Store with in-memory storage.
type MemoryStore struct {
	mu sync.RWMutex

	rootID uuid.UUID

	directories map[uuid.UUID]*content.Directory
	dirByPath   map[string]uuid.UUID

	pages      map[uuid.UUID]*content.Page
	pageBySlug map[string]uuid.UUID

	// redirects is keyed by old full path; slugRedirects by old page slug
	// (the wiki-link namespace).
	redirects     map[string]*content.SlugRedirect
	slugRedirects map[string]*content.SlugRedirect

	revisions map[revisionKey]*content.Revision

	grants map[grantKey]content.Level

	users  map[uuid.UUID]*content.User
	groups map[uuid.UUID]*content.Group
	owner  *uuid.UUID

	tallies []tallyRow

	links       map[uuid.UUID]map[uuid.UUID]struct{}
	attachments map[uuid.UUID][]*content.Attachment
}

// NewMemoryStore creates an empty in-memory content store. The root
// directory is created lazily on first access.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		directories:   make(map[uuid.UUID]*content.Directory),
		dirByPath:     make(map[string]uuid.UUID),
		pages:         make(map[uuid.UUID]*content.Page),
		pageBySlug:    make(map[string]uuid.UUID),
		redirects:     make(map[string]*content.SlugRedirect),
		slugRedirects: make(map[string]*content.SlugRedirect),
		revisions:     make(map[revisionKey]*content.Revision),
		grants:        make(map[grantKey]content.Level),
		users:         make(map[uuid.UUID]*content.User),
		groups:        make(map[uuid.UUID]*content.Group),
		links:         make(map[uuid.UUID]map[uuid.UUID]struct{}),
		attachments:   make(map[uuid.UUID][]*content.Attachment),
	}
}

// Healthcheck always succeeds: there are no external dependencies.
func (s *MemoryStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// ensureRootLocked creates the root directory if missing. Callers must
// hold the write lock.
func (s *MemoryStore) ensureRootLocked() *content.Directory {
	if s.rootID != uuid.Nil {
		return s.directories[s.rootID]
	}
	now := time.Now()
	root := &content.Directory{
		ID:         uuid.New(),
		Path:       "",
		Title:      "Home",
		Visibility: content.VisibilityPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.rootID = root.ID
	s.directories[root.ID] = root
	s.dirByPath[""] = root.ID
	return root
}

func notFound(msg, path string) error {
	return &content.StoreError{Code: content.ErrNotFound, Message: msg, Path: path}
}

func pathConflict(msg, path string) error {
	return &content.StoreError{Code: content.ErrPathConflict, Message: msg, Path: path}
}

func invalidArgument(msg string) error {
	return &content.StoreError{Code: content.ErrInvalidArgument, Message: msg}
}

func copyDirectory(d *content.Directory) *content.Directory {
	out := *d
	return &out
}

func copyPage(p *content.Page) *content.Page {
	out := *p
	return &out
}

func copyRevision(r *content.Revision) *content.Revision {
	out := *r
	return &out
}
