// Package convocatoria manages recruitment postings, their applicants and the
// technical evaluations graded with each posting's formulas.
package convocatoria

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/convocatorias/internal/grading"
	"github.com/spigell/convocatorias/internal/logger"
)

const (
	DefaultWorkers  = 4
	DefaultCacheTTL = 10 * time.Minute

	MinVacancies = 1
	MaxVacancies = 999
)

// Config tunes the service.
type Config struct {
	Domain grading.Domain
	// RepresentativeScore is the raw score criteria are validated at. Nil
	// selects grading.DefaultRepresentativeScore; zero is a valid score.
	RepresentativeScore *float64
	DefaultObservation  string
	Workers             int
	CacheTTL            time.Duration
}

func (c Config) withDefaults() Config {
	if c.Domain == (grading.Domain{}) {
		c.Domain = grading.DefaultDomain
	}
	if c.RepresentativeScore == nil {
		c.RepresentativeScore = RepresentativeScore(grading.DefaultRepresentativeScore)
	}
	if strings.TrimSpace(c.DefaultObservation) == "" {
		c.DefaultObservation = DefaultObservation
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	return c
}

// RepresentativeScore returns a Config.RepresentativeScore value for raw.
func RepresentativeScore(raw float64) *float64 { return &raw }

// Deps aggregates the collaborators of the service.
type Deps struct {
	Store  Store
	Logger *zap.Logger
	Now    func() time.Time
	NewID  func() string
}

// Service implements posting, applicant and evaluation operations on top of
// a Store. Every mutation loads the document, changes it and saves it back
// while holding the service lock.
type Service struct {
	cfg      Config
	store    Store
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
	cache    *compiledCache
	defaults Criteria

	mu sync.Mutex
}

// New creates a Service. A nil logger is replaced with a no-op one.
func New(cfg Config, deps Deps) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("store is required")
	}

	defaults, err := DefaultCriteria()
	if err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()
	if err := cfg.Domain.Check(*cfg.RepresentativeScore); err != nil {
		return nil, fmt.Errorf("representative score: %w", err)
	}

	s := &Service{
		cfg:      cfg,
		store:    deps.Store,
		logger:   logger.WithFields(deps.Logger),
		now:      deps.Now,
		newID:    deps.NewID,
		cache:    newCompiledCache(cfg.CacheTTL),
		defaults: defaults,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	return s, nil
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// update runs fn over the stored document and saves it when fn succeeds.
func (s *Service) update(ctx context.Context, fn func(*Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading store: %w", err)
	}

	if err := fn(data); err != nil {
		return err
	}

	if err := s.store.Save(ctx, data); err != nil {
		return fmt.Errorf("saving store: %w", err)
	}
	return nil
}

func (s *Service) view(ctx context.Context) (*Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading store: %w", err)
	}
	return data, nil
}

func (d *Data) posting(id string) (*Posting, error) {
	for _, p := range d.Postings {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("posting %s: %w", id, ErrNotFound)
}

func (d *Data) applicant(id string) (*Applicant, error) {
	for _, a := range d.Applicants {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, fmt.Errorf("applicant %s: %w", id, ErrNotFound)
}

func (d *Data) applicantsOf(postingID string) []*Applicant {
	var out []*Applicant
	for _, a := range d.Applicants {
		if a.PostingID == postingID {
			out = append(out, a)
		}
	}
	return out
}

func normalizePostingInput(in PostingInput) (PostingInput, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.Position = strings.TrimSpace(in.Position)
	in.PositionCode = strings.TrimSpace(in.PositionCode)
	in.OrganizationalUnit = strings.TrimSpace(in.OrganizationalUnit)
	in.CreatedBy = strings.TrimSpace(in.CreatedBy)

	required := []struct {
		name  string
		value string
	}{
		{"type", in.Type},
		{"position", in.Position},
		{"position code", in.PositionCode},
		{"organizational unit", in.OrganizationalUnit},
	}
	for _, field := range required {
		if field.value == "" {
			return in, fmt.Errorf("%s is required: %w", field.name, ErrInvalidInput)
		}
	}

	if in.Vacancies < MinVacancies || in.Vacancies > MaxVacancies {
		return in, fmt.Errorf("vacancies must be between %d and %d, got %d: %w", MinVacancies, MaxVacancies, in.Vacancies, ErrInvalidInput)
	}

	return in, nil
}

func (d *Data) checkPositionCode(code, exceptID string) error {
	for _, p := range d.Postings {
		if p.ID != exceptID && strings.EqualFold(p.PositionCode, code) {
			return fmt.Errorf("position code %s is used by posting %s: %w", code, p.ID, ErrConflict)
		}
	}
	return nil
}

// CreatePosting registers an active posting with the builtin criteria.
func (s *Service) CreatePosting(ctx context.Context, in PostingInput) (*Posting, error) {
	in, err := normalizePostingInput(in)
	if err != nil {
		return nil, err
	}

	var created *Posting
	err = s.update(ctx, func(d *Data) error {
		if err := d.checkPositionCode(in.PositionCode, ""); err != nil {
			return err
		}

		now := s.now()
		created = &Posting{
			ID:                 s.newID(),
			Type:               in.Type,
			Position:           in.Position,
			PositionCode:       in.PositionCode,
			OrganizationalUnit: in.OrganizationalUnit,
			Vacancies:          in.Vacancies,
			Status:             StatusActive,
			Criteria:           cloneCriteria(s.defaults),
			CreatedBy:          in.CreatedBy,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		d.Postings = append(d.Postings, created)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating posting: %w", err)
	}

	s.logger.Info("posting created", logger.PostingFields(created.ID, created.PositionCode)...)
	return created, nil
}

// UpdatePosting replaces the editable fields of a posting.
func (s *Service) UpdatePosting(ctx context.Context, id string, in PostingInput) (*Posting, error) {
	in, err := normalizePostingInput(in)
	if err != nil {
		return nil, err
	}

	var updated *Posting
	err = s.update(ctx, func(d *Data) error {
		p, err := d.posting(id)
		if err != nil {
			return err
		}
		if err := d.checkPositionCode(in.PositionCode, id); err != nil {
			return err
		}

		p.Type = in.Type
		p.Position = in.Position
		p.PositionCode = in.PositionCode
		p.OrganizationalUnit = in.OrganizationalUnit
		p.Vacancies = in.Vacancies
		p.UpdatedAt = s.now()
		updated = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("updating posting: %w", err)
	}

	s.logger.Info("posting updated", logger.PostingFields(updated.ID, updated.PositionCode)...)
	return updated, nil
}

// SetStatus activates or deactivates a posting.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (*Posting, error) {
	if status != StatusActive && status != StatusInactive {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalidInput)
	}

	var updated *Posting
	err := s.update(ctx, func(d *Data) error {
		p, err := d.posting(id)
		if err != nil {
			return err
		}
		p.Status = status
		p.UpdatedAt = s.now()
		updated = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("setting posting status: %w", err)
	}

	s.logger.Info("posting status changed",
		append(logger.PostingFields(updated.ID, updated.PositionCode), zap.String("status", string(status)))...,
	)
	return updated, nil
}

// ToggleStatus flips a posting between active and inactive.
func (s *Service) ToggleStatus(ctx context.Context, id string) (*Posting, error) {
	p, err := s.GetPosting(ctx, id)
	if err != nil {
		return nil, err
	}

	next := StatusInactive
	if !p.Active() {
		next = StatusActive
	}
	return s.SetStatus(ctx, id, next)
}

func (s *Service) GetPosting(ctx context.Context, id string) (*Posting, error) {
	d, err := s.view(ctx)
	if err != nil {
		return nil, err
	}
	return d.posting(id)
}

// ListPostings returns postings, newest first.
func (s *Service) ListPostings(ctx context.Context) ([]*Posting, error) {
	d, err := s.view(ctx)
	if err != nil {
		return nil, err
	}

	postings := append([]*Posting(nil), d.Postings...)
	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].CreatedAt.After(postings[j].CreatedAt)
	})
	return postings, nil
}

// Stats counts postings, applicants and evaluations.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	d, err := s.view(ctx)
	if err != nil {
		return Stats{}, err
	}

	active := make(map[string]bool, len(d.Postings))
	st := Stats{Postings: len(d.Postings), Applicants: len(d.Applicants)}
	for _, p := range d.Postings {
		if p.Active() {
			st.ActivePostings++
			active[p.ID] = true
		}
	}

	for _, a := range d.Applicants {
		if !a.Evaluated() {
			if active[a.PostingID] {
				st.Pending++
			}
			continue
		}
		st.Evaluated++
		if a.Evaluation.Result.Passed() {
			st.Passed++
		} else {
			st.Failed++
		}
	}

	return st, nil
}

func cloneCriteria(c Criteria) Criteria {
	c.Observations = append([]string(nil), c.Observations...)
	return c
}
