package resolver

import (
	"context"

	"github.com/freelawproject/wiki/internal/logger"
	"github.com/freelawproject/wiki/pkg/content"
)

// ResultKind discriminates resolution outcomes.
type ResultKind int

const (
	// ResultDirectory means the path is a live directory.
	ResultDirectory ResultKind = iota

	// ResultPage means the path is a live page.
	ResultPage

	// ResultRedirect means the path is historical and CurrentPath carries
	// the target's live location.
	ResultRedirect
)

// Result is a successful path resolution. Exactly one of Directory and
// Page is set for the direct hits; a redirect carries the target ref and
// its current canonical path.
type Result struct {
	Kind        ResultKind
	Directory   *content.Directory
	Page        *content.Page
	Target      content.TargetRef
	CurrentPath string
}

// Ref returns the resolved entity's reference, whichever kind it is.
func (r *Result) Ref() content.TargetRef {
	switch r.Kind {
	case ResultDirectory:
		return r.Directory.Ref()
	case ResultPage:
		return r.Page.Ref()
	default:
		return r.Target
	}
}

// PathResolver turns request paths into directories, pages or redirects.
//
// Directories and pages share one namespace, so the check order decides
// which entity wins if the construction-time uniqueness checks were ever
// violated. The order is fixed: exact directory path, then page by final
// segment, then the redirect index, then not found.
type PathResolver struct {
	store content.Store
}

func NewPathResolver(store content.Store) *PathResolver {
	return &PathResolver{store: store}
}

// Resolve resolves a request path. A miss everywhere returns a StoreError
// with ErrNotFound.
func (r *PathResolver) Resolve(ctx context.Context, path string) (*Result, error) {
	path = content.CleanPath(path)

	dir, err := r.store.GetDirectoryByPath(ctx, path)
	if err == nil {
		return &Result{Kind: ResultDirectory, Directory: dir, CurrentPath: dir.Path}, nil
	}
	if !content.IsNotFound(err) {
		return nil, err
	}

	dirPath, slug := content.SplitLast(path)
	page, err := r.store.LookupPage(ctx, dirPath, slug)
	if err == nil {
		return &Result{Kind: ResultPage, Page: page, CurrentPath: path}, nil
	}
	if !content.IsNotFound(err) {
		return nil, err
	}

	red, err := r.store.ResolveRedirect(ctx, path)
	if err != nil {
		if content.IsNotFound(err) {
			return nil, notFound(path)
		}
		return nil, err
	}
	current, err := r.livePath(ctx, red.Target)
	if err != nil {
		if content.IsNotFound(err) {
			// Dangling redirect target. Treat as a miss.
			return nil, notFound(path)
		}
		return nil, err
	}
	if current == path {
		// The target's live path is the path we failed to resolve above.
		// That means the indexes disagree with the redirect table, which
		// the collapsing rules are supposed to make impossible.
		logger.Error("redirect at %q resolves to itself", path)
		return nil, &content.StoreError{
			Code:    content.ErrRedirectCycle,
			Message: "redirect resolves to its own path",
			Path:    path,
		}
	}
	return &Result{Kind: ResultRedirect, Target: red.Target, CurrentPath: current}, nil
}

func (r *PathResolver) livePath(ctx context.Context, target content.TargetRef) (string, error) {
	switch target.Kind {
	case content.KindDirectory:
		dir, err := r.store.GetDirectory(ctx, target.ID)
		if err != nil {
			return "", err
		}
		return dir.Path, nil
	case content.KindPage:
		return r.store.PagePath(ctx, target.ID)
	default:
		return "", &content.StoreError{
			Code:    content.ErrInvalidArgument,
			Message: "unknown target kind " + string(target.Kind),
		}
	}
}

func notFound(path string) error {
	return &content.StoreError{Code: content.ErrNotFound, Message: "nothing lives at this path", Path: path}
}
