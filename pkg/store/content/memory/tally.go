package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/freelawproject/wiki/pkg/content"
)

// RecordView appends a view tally row for a page.
func (s *MemoryStore) RecordView(ctx context.Context, pageID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[pageID]; !ok {
		return notFound("page not found", "")
	}
	s.tallies = append(s.tallies, tallyRow{id: uuid.New(), pageID: pageID, count: 1})
	return nil
}

// SyncViewCounts sums the current tally rows into page view counts and
// deletes exactly the rows it summed. Rows appended by a concurrent
// RecordView after the snapshot are kept for the next run.
func (s *MemoryStore) SyncViewCounts(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	snapshot := s.tallies
	s.mu.Unlock()

	totals := make(map[uuid.UUID]uint64)
	summed := make(map[uuid.UUID]bool, len(snapshot))
	for _, row := range snapshot {
		totals[row.pageID] += row.count
		summed[row.id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for pageID, total := range totals {
		if page, ok := s.pages[pageID]; ok {
			page.ViewCount += total
		}
	}
	remaining := s.tallies[:0]
	for _, row := range s.tallies {
		if !summed[row.id] {
			remaining = append(remaining, row)
		}
	}
	s.tallies = remaining
	return len(totals), nil
}

// SetPageLinks replaces the outgoing wiki-link rows of a page.
func (s *MemoryStore) SetPageLinks(ctx context.Context, fromPage uuid.UUID, toPages []uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[fromPage]; !ok {
		return notFound("page not found", "")
	}
	if len(toPages) == 0 {
		delete(s.links, fromPage)
		return nil
	}
	set := make(map[uuid.UUID]struct{}, len(toPages))
	for _, to := range toPages {
		if to != fromPage {
			set[to] = struct{}{}
		}
	}
	s.links[fromPage] = set
	return nil
}

// Backlinks returns the ids of pages linking to pageID.
func (s *MemoryStore) Backlinks(ctx context.Context, pageID uuid.UUID) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var from []uuid.UUID
	for src, targets := range s.links {
		if _, ok := targets[pageID]; ok {
			from = append(from, src)
		}
	}
	sort.Slice(from, func(i, j int) bool { return from[i].String() < from[j].String() })
	return from, nil
}

// PutAttachment records attachment metadata for a page.
func (s *MemoryStore) PutAttachment(ctx context.Context, att *content.Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if att.ID == uuid.Nil {
		return invalidArgument("attachment id must be set")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[att.PageID]; !ok {
		return notFound("page not found", "")
	}
	a := *att
	s.attachments[att.PageID] = append(s.attachments[att.PageID], &a)
	return nil
}

// Attachments lists the attachments recorded for a page.
func (s *MemoryStore) Attachments(ctx context.Context, pageID uuid.UUID) ([]*content.Attachment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.pages[pageID]; !ok {
		return nil, notFound("page not found", "")
	}
	atts := s.attachments[pageID]
	out := make([]*content.Attachment, 0, len(atts))
	for _, a := range atts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}
