package resolver

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
	"github.com/freelawproject/wiki/pkg/permissions"
)

// wikiLinkRE matches a #slug token. Word boundaries are checked manually
// because the token must not start mid-word (re2 has no lookbehind).
var wikiLinkRE = regexp.MustCompile(`#[a-z0-9]+(?:-[a-z0-9]+)*`)

// WikiLinkResolver rewrites #slug references in stored Markdown.
//
// A slug that matches a live page the viewer can see becomes a titled
// Markdown link to the page's current path. A slug that matches a
// historical slug resolves through the redirect index to the live page
// and renders its current title. Everything else becomes a red link, and
// a page the viewer cannot see renders exactly like a page that does not
// exist, so restricted titles never leak.
type WikiLinkResolver struct {
	store content.Store
	perms *permissions.Resolver
}

func NewWikiLinkResolver(store content.Store, perms *permissions.Resolver) *WikiLinkResolver {
	return &WikiLinkResolver{store: store, perms: perms}
}

// RenderLinks rewrites every #slug token in markdown for the given
// viewer. A nil userID renders for an anonymous viewer.
func (r *WikiLinkResolver) RenderLinks(ctx context.Context, markdown string, userID *uuid.UUID) (string, error) {
	matches := wikiLinkRE.FindAllStringIndex(markdown, -1)
	if len(matches) == 0 {
		return markdown, nil
	}

	rendered := make(map[string]string)
	var out strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && isWordByte(markdown[start-1]) {
			continue
		}
		slug := markdown[start+1 : end]

		replacement, ok := rendered[slug]
		if !ok {
			var err error
			replacement, err = r.renderSlug(ctx, slug, userID)
			if err != nil {
				return "", err
			}
			rendered[slug] = replacement
		}

		out.WriteString(markdown[last:start])
		out.WriteString(replacement)
		last = end
	}
	out.WriteString(markdown[last:])
	return out.String(), nil
}

func (r *WikiLinkResolver) renderSlug(ctx context.Context, slug string, userID *uuid.UUID) (string, error) {
	page, err := r.lookup(ctx, slug)
	if err != nil {
		if content.IsNotFound(err) {
			return redLink(slug), nil
		}
		return "", err
	}

	level, err := r.perms.EffectiveLevel(ctx, userID, page.Ref())
	if err != nil {
		return "", err
	}
	if level < content.LevelView {
		return redLink(slug), nil
	}

	path, err := r.store.PagePath(ctx, page.ID)
	if err != nil {
		return "", err
	}
	return "[" + page.Title + "](/" + path + ")", nil
}

// lookup finds the live page for a slug, following the slug redirect
// index when the slug is historical.
func (r *WikiLinkResolver) lookup(ctx context.Context, slug string) (*content.Page, error) {
	page, err := r.store.GetPageBySlug(ctx, slug)
	if err == nil {
		return page, nil
	}
	if !content.IsNotFound(err) {
		return nil, err
	}
	red, err := r.store.ResolveSlugRedirect(ctx, slug)
	if err != nil {
		return nil, err
	}
	if red.Target.Kind != content.KindPage {
		return nil, &content.StoreError{Code: content.ErrNotFound, Message: "slug redirect does not target a page"}
	}
	return r.store.GetPage(ctx, red.Target.ID)
}

// ExtractSlugs returns the distinct #slug tokens referenced by markdown,
// in order of first appearance.
func ExtractSlugs(markdown string) []string {
	var slugs []string
	seen := make(map[string]bool)
	for _, m := range wikiLinkRE.FindAllStringIndex(markdown, -1) {
		if m[0] > 0 && isWordByte(markdown[m[0]-1]) {
			continue
		}
		slug := markdown[m[0]+1 : m[1]]
		if !seen[slug] {
			seen[slug] = true
			slugs = append(slugs, slug)
		}
	}
	return slugs
}

func redLink(slug string) string {
	return `<span class="text-red-500 dark:text-red-400" title="Page not found">#` + slug + `</span>`
}

func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}
