package letters

import (
	"context"
	"regexp"

	"github.com/microcosm-cc/bluemonday"

	"github.com/letterwriter/letterwriter/internal/apperr"
)

// Service wraps the repository with the ownership policy and content
// sanitization. Every read or mutation of an existing letter goes through
// authorize; handlers never compare owner ids themselves.
type Service struct {
	repo      Repository
	sanitizer *bluemonday.Policy
}

var classAttr = regexp.MustCompile(`^[a-zA-Z0-9\-_ ]+$`)

// letterPolicy strips scripts and event handlers but keeps the markup the
// rich-text editor emits: alignment, fonts, sizes and indentation arrive as
// class attributes (ql-align-center, ql-font-serif, ...), colors as inline
// styles. Stored content must read back exactly as the editor produced it.
func letterPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(classAttr).Globally()
	p.AllowStyles("text-align", "color", "background-color", "font-family", "font-size").Globally()
	return p
}

func NewService(r Repository) *Service {
	return &Service{repo: r, sanitizer: letterPolicy()}
}

// authorize is the single authorization policy for letters: absent letters
// yield ErrNotFound, letters owned by someone else yield ErrForbidden without
// exposing any of their content.
func authorize(l *Letter, ownerID string) error {
	if l == nil {
		return apperr.ErrNotFound
	}
	if l.UserID != ownerID {
		return apperr.ErrForbidden
	}
	return nil
}

func (s *Service) Create(ctx context.Context, ownerID, title, content string, isDraft bool) (*Letter, error) {
	l := &Letter{
		Title:   title,
		Content: s.sanitizer.Sanitize(content),
		IsDraft: isDraft,
		UserID:  ownerID,
	}
	return s.repo.Insert(ctx, l)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]*Letter, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (*Letter, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(l, ownerID); err != nil {
		return nil, err
	}
	return l, nil
}

// Update replaces title, content and draft flag. The owner never changes.
func (s *Service) Update(ctx context.Context, id, ownerID, title, content string, isDraft bool) (*Letter, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(l, ownerID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, title, s.sanitizer.Sanitize(content), isDraft)
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(l, ownerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetGoogleDocID records the exported document id on an owned letter.
func (s *Service) SetGoogleDocID(ctx context.Context, id, ownerID, docID string) error {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorize(l, ownerID); err != nil {
		return err
	}
	return s.repo.SetGoogleDocID(ctx, id, docID)
}
