// Package pagemodel is the entry point callers use to tag, read and clean a
// page. A Page hands out a document snapshot and accepts the attribute writes
// made against it; Service runs the passes in between.
package pagemodel

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/polzovatel/mmid-page-model/internal/dom"
	"github.com/polzovatel/mmid-page-model/internal/fields"
	"github.com/polzovatel/mmid-page-model/internal/session"
	"github.com/polzovatel/mmid-page-model/internal/tree"
)

// ErrNoPage is returned when an operation is called without a page.
var ErrNoPage = errors.New("pagemodel: no page")

// Page is a document the service can snapshot and write back to.
type Page interface {
	// Capture returns the current document generation.
	Capture(ctx context.Context) (*dom.Document, error)
	// Apply replays attribute writes made on the last captured document.
	Apply(ctx context.Context, muts []dom.Mutation) error
}

// Service runs identifier injection, tree building, field reading and
// cleanup against pages. Calls for the same page must not overlap with a
// navigation of that page.
type Service struct {
	sessions *session.Manager
	builder  *tree.Builder
	logger   zerolog.Logger
}

// NewService returns a service tracking page sessions in sessions.
func NewService(sessions *session.Manager, logger zerolog.Logger) *Service {
	return &Service{
		sessions: sessions,
		builder:  tree.NewBuilder(sessions, logger.With().Str("comp", "tree").Logger()),
		logger:   logger,
	}
}

// Sessions exposes the session cache.
func (s *Service) Sessions() *session.Manager { return s.sessions }

// InjectIdentifiers tags every interactive element of p and returns the
// highest identifier assigned, -1 when nothing on the page is eligible. A
// failing page yields -1 and the error.
func (s *Service) InjectIdentifiers(ctx context.Context, p Page) (int, error) {
	doc, err := s.capture(ctx, p)
	if err != nil {
		return -1, err
	}
	high := s.sessions.For(doc).Inject(doc)
	if err := s.apply(ctx, p, doc); err != nil {
		return -1, err
	}
	return high, nil
}

// BuildTree injects identifiers and returns the pruned tree of p. It never
// fails; an unusable page yields the sentinel error root.
func (s *Service) BuildTree(ctx context.Context, p Page, opts tree.Options) *tree.Node {
	doc, err := s.capture(ctx, p)
	if err != nil {
		s.logger.Error().Err(err).Msg("build tree")
		return tree.ErrorRoot(err)
	}
	root := s.builder.Build(doc, opts)
	if err := s.apply(ctx, p, doc); err != nil {
		s.logger.Error().Err(err).Msg("build tree")
		return tree.ErrorRoot(err)
	}
	return root
}

// GetFields reads the identified form controls of p. Failures are logged and
// produce an empty map.
func (s *Service) GetFields(ctx context.Context, p Page) map[string]fields.Record {
	doc, err := s.capture(ctx, p)
	if err != nil {
		s.logger.Error().Err(err).Msg("read fields")
		return map[string]fields.Record{}
	}
	return fields.Read(doc)
}

// CleanupIdentifiers strips identifiers and debug borders from p. The page's
// session keeps its high-water mark, so a later injection continues the
// numbering.
func (s *Service) CleanupIdentifiers(ctx context.Context, p Page) error {
	doc, err := s.capture(ctx, p)
	if err != nil {
		return err
	}
	n := s.sessions.For(doc).Cleanup(doc)
	s.logger.Debug().Int("touched", n).Str("doc", doc.ID()).Msg("identifiers removed")
	return s.apply(ctx, p, doc)
}

func (s *Service) capture(ctx context.Context, p Page) (*dom.Document, error) {
	if p == nil {
		return nil, ErrNoPage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := p.Capture(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture page: %w", err)
	}
	if doc == nil {
		return nil, ErrNoPage
	}
	return doc, nil
}

func (s *Service) apply(ctx context.Context, p Page, doc *dom.Document) error {
	muts := doc.TakeMutations()
	if len(muts) == 0 {
		return nil
	}
	if err := p.Apply(ctx, muts); err != nil {
		return fmt.Errorf("apply %d mutations: %w", len(muts), err)
	}
	return nil
}
