package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"testadmin/internal/metrics"
	"testadmin/internal/models"
	"testadmin/internal/repositories"
	"testadmin/internal/scheduling"

	"go.uber.org/zap"
)

// Notifier accepts lifecycle events. Implementations must not block the caller.
type Notifier interface {
	Notify(kind models.EventKind, payload any)
}

// CandidateDirectory resolves candidate identities with the caller's credential.
// Failures yield an empty map.
type CandidateDirectory interface {
	FetchCandidates(ctx context.Context, bearerToken string) map[string]models.CandidateInfo
}

const defaultTestLinkBase = "http://localhost:3000/test/"

// TestService owns the test lifecycle: CRUD, timer arming and candidate assignment.
type TestService struct {
	repo      repositories.TestRepository
	timers    *scheduling.Registry
	notifier  Notifier
	directory CandidateDirectory
	logger    *zap.Logger

	now             func() time.Time
	async           func(func())
	testLinkBase    string
	callbackTimeout time.Duration
}

type TestServiceOption func(*TestService)

// WithClock replaces the wall clock used to compare against startAt/endAt.
func WithClock(now func() time.Time) TestServiceOption {
	return func(s *TestService) { s.now = now }
}

// WithAsync replaces how assignment enrichment is launched.
func WithAsync(run func(func())) TestServiceOption {
	return func(s *TestService) { s.async = run }
}

func WithTestLinkBase(base string) TestServiceOption {
	return func(s *TestService) {
		if base != "" {
			s.testLinkBase = base
		}
	}
}

// WithCallbackTimeout bounds store access from timer callbacks and enrichment.
func WithCallbackTimeout(d time.Duration) TestServiceOption {
	return func(s *TestService) {
		if d > 0 {
			s.callbackTimeout = d
		}
	}
}

func NewTestService(
	repo repositories.TestRepository,
	timers *scheduling.Registry,
	notifier Notifier,
	directory CandidateDirectory,
	logger *zap.Logger,
	opts ...TestServiceOption,
) *TestService {
	s := &TestService{
		repo:            repo,
		timers:          timers,
		notifier:        notifier,
		directory:       directory,
		logger:          logger,
		now:             time.Now,
		async:           func(fn func()) { go fn() },
		testLinkBase:    defaultTestLinkBase,
		callbackTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TestService) CreateTest(ctx context.Context, req *models.CreateTestRequest) (*models.Test, error) {
	test := &models.Test{
		Name:               req.Name,
		Description:        req.Description,
		CategoryIDs:        req.CategoryIDs,
		QuestionIDs:        req.QuestionIDs,
		DurationMinutes:    req.DurationMinutes,
		StartAt:            models.UTCPtr(req.StartAt),
		EndAt:              models.UTCPtr(req.EndAt),
		AssignedCandidates: []string{},
	}
	saved, err := s.save(ctx, test)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Test created", zap.String("testId", saved.ID), zap.String("name", saved.Name))

	if saved.StartAt != nil {
		return s.Schedule(ctx, saved.ID)
	}
	return saved, nil
}

func (s *TestService) FindByID(ctx context.Context, id string) (*models.Test, error) {
	return s.load(ctx, id)
}

func (s *TestService) FindAll(ctx context.Context) ([]*models.Test, error) {
	tests, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	return tests, nil
}

// UpdateTest replaces the editable fields. A start time re-arms the timers;
// clearing it drops any pending ones.
func (s *TestService) UpdateTest(ctx context.Context, id string, req *models.CreateTestRequest) (*models.Test, error) {
	test, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	test.Name = req.Name
	test.Description = req.Description
	test.CategoryIDs = req.CategoryIDs
	test.QuestionIDs = req.QuestionIDs
	test.DurationMinutes = req.DurationMinutes
	test.StartAt = models.UTCPtr(req.StartAt)
	test.EndAt = models.UTCPtr(req.EndAt)

	saved, err := s.save(ctx, test)
	if err != nil {
		return nil, err
	}
	if saved.StartAt != nil {
		return s.Schedule(ctx, saved.ID)
	}
	s.CancelSchedules(saved.ID)
	return saved, nil
}

// DeleteTest removes the record and then any pending timers.
func (s *TestService) DeleteTest(ctx context.Context, id string) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return fmt.Errorf("check test: %w", err)
	}
	if !exists {
		return ErrTestNotFound
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete test: %w", err)
	}
	s.CancelSchedules(id)
	s.logger.Info("Test deleted", zap.String("testId", id))
	return nil
}

// CancelSchedules drops pending start/end timers; unknown ids are a no-op.
func (s *TestService) CancelSchedules(id string) {
	s.timers.CancelAll(id)
}

// Schedule arms timers for the stored window, or applies transitions whose
// instants already passed. A future start clears active.
func (s *TestService) Schedule(ctx context.Context, id string) (*models.Test, error) {
	test, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.StartAt == nil {
		return nil, invalidArgument(models.MsgStartTimeRequired)
	}
	if test.EndAt != nil && !test.EndAt.After(*test.StartAt) {
		return nil, invalidArgument("end time must be after start time")
	}

	s.CancelSchedules(id)

	now := s.now().UTC()
	var immediate []models.EventKind
	deferredStart := test.StartAt.After(now)
	deferredEnd := test.EndAt != nil && test.EndAt.After(now)

	test.Active = !deferredStart
	if !deferredStart {
		immediate = append(immediate, models.EventTestStarted)
	}
	if test.EndAt != nil && !deferredEnd {
		test.Active = false
		// the window closed before anyone saw it open
		immediate = []models.EventKind{models.EventTestEnded}
	}
	test.Scheduled = true

	// Timers are armed only once the scheduled state is stored.
	saved, err := s.save(ctx, test)
	if err != nil {
		return nil, err
	}

	if deferredStart {
		s.timers.Arm(id, scheduling.KindStart, *saved.StartAt, func() { s.onTimer(id, true) })
	}
	if deferredEnd {
		s.timers.Arm(id, scheduling.KindEnd, *saved.EndAt, func() { s.onTimer(id, false) })
	}

	s.logger.Info("Test scheduled",
		zap.String("testId", id),
		zap.Timep("startAt", saved.StartAt),
		zap.Timep("endAt", saved.EndAt),
		zap.Bool("active", saved.Active))

	if deferredStart {
		s.notifier.Notify(models.EventTestScheduled, &models.TestScheduledEvent{
			EventType:   models.EventTestScheduled,
			TestID:      saved.ID,
			TestName:    saved.Name,
			ScheduledAt: saved.StartAt,
			Duration:    saved.DurationMinutes,
		})
	}
	for _, kind := range immediate {
		s.recordTransition(kind, "immediate")
		if saved.HasCandidates() {
			s.notifier.Notify(kind, &models.TestLifecycleEvent{EventType: kind, TestID: saved.ID})
		}
	}
	return saved, nil
}

// onTimer reloads the record and flips active. A deleted test is skipped
// without a write.
func (s *TestService) onTimer(id string, active bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.callbackTimeout)
	defer cancel()

	kind := models.EventTestEnded
	if active {
		kind = models.EventTestStarted
	}

	test, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrTestNotFound) {
		s.logger.Debug("Timer fired for missing test", zap.String("testId", id))
		return
	}
	if err != nil {
		s.logger.Error("Failed to load test in timer", zap.String("testId", id), zap.Error(err))
		return
	}

	test.Active = active
	saved, err := s.repo.Save(ctx, test)
	if errors.Is(err, repositories.ErrTestNotFound) {
		s.logger.Debug("Test deleted before transition was stored", zap.String("testId", id))
		return
	}
	if err != nil {
		s.logger.Error("Failed to persist transition", zap.String("testId", id), zap.Bool("active", active), zap.Error(err))
		return
	}
	s.logger.Info("Test transitioned", zap.String("testId", id), zap.Bool("active", active))
	s.recordTransition(kind, "timer")

	if saved.HasCandidates() {
		s.notifier.Notify(kind, &models.TestLifecycleEvent{EventType: kind, TestID: id})
	}
}

func (s *TestService) recordTransition(kind models.EventKind, source string) {
	transition := "ended"
	if kind == models.EventTestStarted {
		transition = "started"
	}
	metrics.Transitions.WithLabelValues(transition, source).Inc()
}

// AssignCandidates merges ids into the roster, keeping first-seen order, and
// persists before returning. Invitations go out afterwards for ids new to the
// roster that the directory resolves.
func (s *TestService) AssignCandidates(ctx context.Context, id string, candidateIDs []string, bearerToken string) (*models.Test, error) {
	test, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	merged, added := mergeCandidates(test.AssignedCandidates, candidateIDs)
	test.AssignedCandidates = merged

	saved, err := s.save(ctx, test)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Candidates assigned",
		zap.String("testId", id),
		zap.Int("requested", len(candidateIDs)),
		zap.Int("added", len(added)))

	if len(added) > 0 {
		snapshot := saved.Clone()
		s.async(func() { s.sendInvitations(snapshot, added, bearerToken) })
	}
	return saved, nil
}

func (s *TestService) sendInvitations(test *models.Test, added []string, bearerToken string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Assignment notification panicked", zap.String("testId", test.ID), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.callbackTimeout)
	defer cancel()

	directory := s.directory.FetchCandidates(ctx, bearerToken)
	candidates := make([]models.CandidateInfo, 0, len(added))
	for _, cid := range added {
		if info, ok := directory[cid]; ok {
			candidates = append(candidates, info)
		}
	}
	if len(candidates) == 0 {
		s.logger.Warn("No assigned candidates resolved; skipping notification", zap.String("testId", test.ID))
		return
	}

	s.notifier.Notify(models.EventTestAssigned, &models.TestAssignedEvent{
		EventType:       models.EventTestAssigned,
		TestID:          test.ID,
		TestName:        test.Name,
		StartTime:       test.StartAt,
		EndTime:         test.EndAt,
		DurationMinutes: test.DurationMinutes,
		TestLink:        s.testLinkBase + test.ID,
		Candidates:      candidates,
	})
}

// GetTestsForCandidate lists tests whose roster contains the candidate.
func (s *TestService) GetTestsForCandidate(ctx context.Context, candidateID string) ([]*models.Test, error) {
	tests, err := s.repo.FindByAssignedCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("list candidate tests: %w", err)
	}
	if tests == nil {
		tests = []*models.Test{}
	}
	return tests, nil
}

func (s *TestService) load(ctx context.Context, id string) (*models.Test, error) {
	test, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrTestNotFound) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load test: %w", err)
	}
	return test, nil
}

// save stores an existing or new record. Updating a record that was deleted
// meanwhile yields ErrTestNotFound rather than recreating it.
func (s *TestService) save(ctx context.Context, test *models.Test) (*models.Test, error) {
	saved, err := s.repo.Save(ctx, test)
	if errors.Is(err, repositories.ErrTestNotFound) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("save test: %w", err)
	}
	return saved, nil
}

// mergeCandidates appends unseen ids to existing, preserving order, and
// reports which ids were added.
func mergeCandidates(existing, requested []string) (merged, added []string) {
	seen := make(map[string]struct{}, len(existing)+len(requested))
	merged = make([]string, 0, len(existing)+len(requested))
	for _, id := range existing {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range requested {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
		added = append(added, id)
	}
	return merged, added
}
