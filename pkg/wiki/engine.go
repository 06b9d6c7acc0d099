package wiki

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/internal/logger"
	"github.com/freelawproject/wiki/pkg/content"
	"github.com/freelawproject/wiki/pkg/permissions"
	"github.com/freelawproject/wiki/pkg/resolver"
	"github.com/freelawproject/wiki/pkg/revision"
)

// RevisionListener is invoked after a revision has committed. Listeners
// run synchronously on the writing goroutine; anything slow belongs in
// the listener's own goroutine.
type RevisionListener func(rev *content.Revision)

// Engine is the wiki core exposed to the web layer. It composes the
// store with the path, permission and link resolvers and gates every
// operation on the caller's effective level.
type Engine struct {
	store content.Store
	perms *permissions.Resolver
	paths *resolver.PathResolver
	links *resolver.WikiLinkResolver

	mu        sync.RWMutex
	listeners []RevisionListener
}

func NewEngine(store content.Store) *Engine {
	perms := permissions.NewResolver(store)
	return &Engine{
		store: store,
		perms: perms,
		paths: resolver.NewPathResolver(store),
		links: resolver.NewWikiLinkResolver(store, perms),
	}
}

// Store exposes the underlying store for administrative callers.
func (e *Engine) Store() content.Store {
	return e.store
}

// AddRevisionListener registers a listener for committed revisions.
func (e *Engine) AddRevisionListener(l RevisionListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

func (e *Engine) notify(rev *content.Revision) {
	e.mu.RLock()
	listeners := e.listeners
	e.mu.RUnlock()
	for _, l := range listeners {
		l(rev)
	}
}

// ResolvePath resolves a request path for a viewer. Content the viewer
// cannot see resolves exactly like content that does not exist, so
// probing for paths never confirms anything.
func (e *Engine) ResolvePath(ctx context.Context, path string, userID *uuid.UUID) (*resolver.Result, error) {
	res, err := e.paths.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	level, err := e.perms.EffectiveLevel(ctx, userID, res.Ref())
	if err != nil {
		return nil, err
	}
	if level < content.LevelView {
		return nil, &content.StoreError{
			Code:    content.ErrNotFound,
			Message: "nothing lives at this path",
			Path:    content.CleanPath(path),
		}
	}
	return res, nil
}

// EffectiveLevel reports the viewer's access level on a target.
func (e *Engine) EffectiveLevel(ctx context.Context, userID *uuid.UUID, target content.TargetRef) (content.Level, error) {
	return e.perms.EffectiveLevel(ctx, userID, target)
}

// RenderLinks rewrites #slug references in markdown for a viewer.
func (e *Engine) RenderLinks(ctx context.Context, markdown string, userID *uuid.UUID) (string, error) {
	return e.links.RenderLinks(ctx, markdown, userID)
}

// CreateRevision records a content edit on a page or directory. The
// entity's visibility is preserved; changing it is a separate,
// owner-gated operation. Requires Edit.
func (e *Engine) CreateRevision(ctx context.Context, userID *uuid.UUID, entity content.TargetRef, title, body, changeMessage string) (*content.Revision, error) {
	if err := e.requireLevel(ctx, userID, entity, content.LevelEdit); err != nil {
		return nil, err
	}

	var rev *content.Revision
	switch entity.Kind {
	case content.KindPage:
		page, err := e.store.GetPage(ctx, entity.ID)
		if err != nil {
			return nil, err
		}
		updated, r, err := e.store.UpdatePage(ctx, entity.ID, title, body, page.Visibility, userID, changeMessage)
		if err != nil {
			return nil, err
		}
		rev = r
		if err := e.syncPageLinks(ctx, updated); err != nil {
			logger.Warn("page link sync for %s failed: %v", updated.Slug, err)
		}
	case content.KindDirectory:
		dir, err := e.store.GetDirectory(ctx, entity.ID)
		if err != nil {
			return nil, err
		}
		_, r, err := e.store.UpdateDirectory(ctx, entity.ID, title, body, dir.Visibility, userID, changeMessage)
		if err != nil {
			return nil, err
		}
		rev = r
	default:
		return nil, &content.StoreError{
			Code:    content.ErrInvalidArgument,
			Message: "unknown target kind " + string(entity.Kind),
		}
	}

	e.notify(rev)
	return rev, nil
}

// Diff computes the structured line diff between two revisions of an
// entity. Requires View.
func (e *Engine) Diff(ctx context.Context, userID *uuid.UUID, entity content.TargetRef, seqA, seqB uint64) (*revision.Diff, error) {
	if err := e.requireLevel(ctx, userID, entity, content.LevelView); err != nil {
		return nil, err
	}
	a, err := e.store.GetRevision(ctx, entity, seqA)
	if err != nil {
		return nil, err
	}
	b, err := e.store.GetRevision(ctx, entity, seqB)
	if err != nil {
		return nil, err
	}
	return revision.Compute(a, b)
}

// Revert records a new revision whose title and content equal those of
// an older revision. History is never rewritten: the reverted-to
// revision stays untouched and the sequence keeps climbing. For
// directories the entity's visibility and grants are left as they are.
// Requires Edit.
func (e *Engine) Revert(ctx context.Context, userID *uuid.UUID, entity content.TargetRef, seq uint64) (*content.Revision, error) {
	old, err := e.store.GetRevision(ctx, entity, seq)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("Reverted to version %d", seq)
	return e.CreateRevision(ctx, userID, entity, old.Title, old.Content, message)
}

// ApplyPermissionsRecursively upserts grants on a directory and its
// whole subtree. Requires Owner on the directory.
func (e *Engine) ApplyPermissionsRecursively(ctx context.Context, userID *uuid.UUID, directoryID uuid.UUID, grants []content.Grant) error {
	target := content.DirectoryRef(directoryID)
	if err := e.requireLevel(ctx, userID, target, content.LevelOwner); err != nil {
		return err
	}
	return e.perms.ApplyPermissionsRecursively(ctx, directoryID, grants)
}

// RecordView appends a view tally row for a page.
func (e *Engine) RecordView(ctx context.Context, pageID uuid.UUID) error {
	return e.store.RecordView(ctx, pageID)
}

// SyncViewCounts folds pending tally rows into per-page view counts.
func (e *Engine) SyncViewCounts(ctx context.Context) (int, error) {
	updated, err := e.store.SyncViewCounts(ctx)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		logger.Debug("synced view counts for %d pages", updated)
	}
	return updated, nil
}

// ClaimSystemOwner makes userID the system owner if none exists yet.
func (e *Engine) ClaimSystemOwner(ctx context.Context, userID uuid.UUID) (bool, error) {
	claimed, err := e.store.ClaimSystemOwner(ctx, userID)
	if err != nil {
		return false, err
	}
	if claimed {
		logger.Info("user %s claimed the system owner role", userID)
	}
	return claimed, nil
}

func (e *Engine) requireLevel(ctx context.Context, userID *uuid.UUID, target content.TargetRef, level content.Level) error {
	got, err := e.perms.EffectiveLevel(ctx, userID, target)
	if err != nil {
		return err
	}
	if got < level {
		return &content.StoreError{
			Code:    content.ErrPermissionDenied,
			Message: "requires " + level.String() + " access",
		}
	}
	return nil
}

// syncPageLinks re-extracts #slug references from the page's content and
// replaces its outgoing link rows, resolving historical slugs through
// the redirect index.
func (e *Engine) syncPageLinks(ctx context.Context, page *content.Page) error {
	var targets []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, slug := range resolver.ExtractSlugs(page.Content) {
		linked, err := e.store.GetPageBySlug(ctx, slug)
		if content.IsNotFound(err) {
			red, rerr := e.store.ResolveSlugRedirect(ctx, slug)
			if rerr != nil || red.Target.Kind != content.KindPage {
				continue
			}
			linked, err = e.store.GetPage(ctx, red.Target.ID)
		}
		if err != nil {
			if content.IsNotFound(err) {
				continue
			}
			return err
		}
		if !seen[linked.ID] {
			seen[linked.ID] = true
			targets = append(targets, linked.ID)
		}
	}
	return e.store.SetPageLinks(ctx, page.ID, targets)
}
