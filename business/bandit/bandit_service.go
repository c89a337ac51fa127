package bandit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"myCampaignEngine/domain"
	"myCampaignEngine/pkg/logger"

	"gorm.io/datatypes"
)

// ---- Repository interfaces ----

type BeliefRepository interface {
	LoadBeliefs(ctx context.Context) ([]domain.BeliefParameters, error)
	IncrementBelief(ctx context.Context, userID string, action domain.ActionKey, dAlpha, dBeta, priorAlpha, priorBeta float64) error
	ResetBelief(ctx context.Context, userID string, action domain.ActionKey, priorAlpha, priorBeta float64) error
}

type DecisionRepository interface {
	SaveDecision(ctx context.Context, d domain.Decision) error
	UpdateOutcome(ctx context.Context, id string, outcome domain.Outcome, at time.Time) error
	LoadDecisions(ctx context.Context) ([]domain.Decision, error)
}

type UserRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, bool, error)
}

// ---- Results ----

type DecideStatus string

const (
	StatusDecided          DecideStatus = "decided"
	StatusNoEligibleAction DecideStatus = "no_eligible_action"
)

// DecideResult is either a decision or an explicit "do not contact" answer.
// A no-eligible-action result is not an error and must not be retried.
type DecideResult struct {
	Status   DecideStatus         `json:"status"`
	Decision *domain.DecisionView `json:"decision,omitempty"`
	Reason   string               `json:"reason,omitempty"`
}

func (r DecideResult) NoEligibleAction() bool {
	return r.Status == StatusNoEligibleAction
}

// ---- Usecase / Service ----

type BanditService struct {
	cfg          Config
	beliefs      *BeliefStore
	catalog      *ActionCatalog
	selector     *Selector
	log          *DecisionLog
	recorder     *OutcomeRecorder
	aggregator   *MetricsAggregator
	userRepo     UserRepository
	beliefRepo   BeliefRepository
	decisionRepo DecisionRepository
	contacts     FrequencyCounter
}

// NewBanditService wires the engine. Every repository and the frequency
// counter may be nil; the engine then runs purely in memory.
func NewBanditService(
	cfg Config,
	catalog *ActionCatalog,
	userRepo UserRepository,
	beliefRepo BeliefRepository,
	decisionRepo DecisionRepository,
	contacts FrequencyCounter,
) (*BanditService, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, fmt.Errorf("bandit config: %w", err)
	}
	if catalog == nil {
		catalog = NewActionCatalog(nil, cfg.HoldoutPercent, DefaultGuardrails(contacts, cfg.FrequencyCapPerDay)...)
	}

	beliefs := NewBeliefStore(cfg)
	log := NewDecisionLog()

	return &BanditService{
		cfg:          cfg,
		beliefs:      beliefs,
		catalog:      catalog,
		selector:     NewSelector(beliefs, cfg.Seed),
		log:          log,
		recorder:     NewOutcomeRecorder(log, beliefs),
		aggregator:   NewMetricsAggregator(log, beliefs),
		userRepo:     userRepo,
		beliefRepo:   beliefRepo,
		decisionRepo: decisionRepo,
		contacts:     contacts,
	}, nil
}

func (s *BanditService) Beliefs() *BeliefStore { return s.beliefs }
func (s *BanditService) Catalog() *ActionCatalog { return s.catalog }
func (s *BanditService) Decisions() *DecisionLog { return s.log }
func (s *BanditService) Aggregator() *MetricsAggregator { return s.aggregator }

// Warm reloads persisted beliefs and decisions into memory.
func (s *BanditService) Warm(ctx context.Context) error {
	if s.beliefRepo != nil {
		params, err := s.beliefRepo.LoadBeliefs(ctx)
		if err != nil {
			return fmt.Errorf("load beliefs: %w", err)
		}
		s.beliefs.Restore(params)
	}
	if s.decisionRepo != nil {
		decisions, err := s.decisionRepo.LoadDecisions(ctx)
		if err != nil {
			return fmt.Errorf("load decisions: %w", err)
		}
		s.log.Restore(decisions)
	}
	logger.Info("bandit_warm",
		"beliefs", s.beliefs.Len(),
		"decisions", s.log.Len(),
	)
	return nil
}

func (s *BanditService) loadUser(ctx context.Context, userID string) (domain.User, error) {
	user := domain.User{ID: userID}
	if s.userRepo == nil {
		return user, nil
	}
	u, ok, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		return user, fmt.Errorf("load user: %w", err)
	}
	if ok {
		u.ID = userID
		return u, nil
	}
	return user, nil
}

//  Decisioning

// Decide picks one action for userID. reqCtx is stored with the decision
// for later analysis.
func (s *BanditService) Decide(ctx context.Context, userID string, reqCtx map[string]any) (DecideResult, error) {
	if err := ctx.Err(); err != nil {
		return DecideResult{}, fmt.Errorf("context error: %w", err)
	}
	if userID == "" {
		return DecideResult{}, ErrUserRequired
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return DecideResult{}, err
	}

	elig, err := s.catalog.EligibleActions(ctx, user)
	if err != nil {
		return DecideResult{}, err
	}

	tid := TraceIDFromContext(ctx)
	if elig.Empty() {
		reason := elig.Reason()
		BanditNoEligibleTotal.WithLabelValues(reason).Inc()
		logger.Debug("bandit_no_eligible_action",
			"trace_id", tid,
			"user_id", userID,
			"reason", reason,
			"excluded", len(elig.Excluded),
		)
		return DecideResult{Status: StatusNoEligibleAction, Reason: reason}, nil
	}

	sel, ok := s.selector.Select(userID, elig.Actions)
	if !ok {
		BanditNoEligibleTotal.WithLabelValues(ReasonEmptyCatalog).Inc()
		return DecideResult{Status: StatusNoEligibleAction, Reason: ReasonEmptyCatalog}, nil
	}

	d := sel.decision
	if len(reqCtx) > 0 {
		d.Context = datatypes.JSONMap(reqCtx)
	}
	s.log.Append(d)

	if s.decisionRepo != nil {
		if err := withRetry(ctx, s.cfg.PersistRetries, s.cfg.PersistBaseDelay, func() error {
			return s.decisionRepo.SaveDecision(ctx, d)
		}); err != nil {
			BanditPersistFailuresTotal.WithLabelValues("save_decision").Inc()
			logger.Error("bandit_persist_decision_failed", "trace_id", tid, "decision_id", d.ID, "error", err)
		}
	}

	if s.contacts != nil {
		if _, err := s.contacts.Incr(ctx, userID, d.Channel, d.CreatedAt); err != nil {
			logger.Warn("bandit_frequency_incr_failed", "trace_id", tid, "user_id", userID, "channel", d.Channel, "error", err)
		}
	}

	BanditDecisionsTotal.
		WithLabelValues(strconv.FormatBool(d.IsExploration), d.Channel).
		Inc()

	logger.Debug("bandit_decide",
		"trace_id", tid,
		"user_id", userID,
		"decision_id", d.ID,
		"action", d.Key().String(),
		"candidates", len(elig.Actions),
		"sampled_score", d.SampledScore,
		"confidence", d.Confidence,
		"exploration", d.IsExploration,
	)

	view := domain.DecisionView{
		DecisionID:    d.ID,
		UserID:        d.UserID,
		Action:        d.Key(),
		Score:         d.SampledScore,
		Confidence:    d.Confidence,
		IsExploration: d.IsExploration,
		Reasoning:     s.reasoning(d, sel.belief, len(elig.Actions)),
		CreatedAt:     d.CreatedAt,
	}
	return DecideResult{Status: StatusDecided, Decision: &view}, nil
}

func (s *BanditService) reasoning(d domain.Decision, b domain.BeliefParameters, candidates int) string {
	conv, ign := s.beliefs.Observations(b)
	mode := "exploiting the best-known action"
	if d.IsExploration {
		mode = "exploring to learn more"
	}
	return fmt.Sprintf(
		"%s via %s (partner %s) won among %d eligible actions with a sampled score of %.2f; posterior mean %.2f from %.0f conversions and %.0f ignores, %s",
		d.OfferID, d.Channel, d.Partner, candidates, d.SampledScore, d.Confidence, conv, ign, mode,
	)
}

//  Feedback / learning

// ReportOutcome closes a decision. It returns ErrDecisionNotFound,
// ErrAlreadyRecorded or ErrInvalidOutcome for caller mistakes.
func (s *BanditService) ReportOutcome(ctx context.Context, decisionID string, outcome string) (domain.Decision, error) {
	if err := ctx.Err(); err != nil {
		return domain.Decision{}, fmt.Errorf("context error: %w", err)
	}
	o, ok := domain.ParseOutcome(outcome)
	if !ok || !o.Terminal() {
		return domain.Decision{}, ErrInvalidOutcome
	}

	d, params, updated, err := s.recorder.RecordOutcome(decisionID, o)
	if err != nil {
		return d, err
	}

	tid := TraceIDFromContext(ctx)
	s.persistOutcome(ctx, d, o, tid)

	BanditOutcomesTotal.WithLabelValues(string(o)).Inc()

	logger.Debug("bandit_outcome",
		"trace_id", tid,
		"decision_id", d.ID,
		"user_id", d.UserID,
		"action", d.Key().String(),
		"outcome", o,
		"belief_updated", updated,
		"alpha", params.Alpha,
		"beta", params.Beta,
	)
	return d, nil
}

func (s *BanditService) persistOutcome(ctx context.Context, d domain.Decision, o domain.Outcome, tid string) {
	at := time.Now()
	if d.OutcomeAt != nil {
		at = *d.OutcomeAt
	}
	if s.decisionRepo != nil {
		if err := withRetry(ctx, s.cfg.PersistRetries, s.cfg.PersistBaseDelay, func() error {
			return s.decisionRepo.UpdateOutcome(ctx, d.ID, o, at)
		}); err != nil {
			BanditPersistFailuresTotal.WithLabelValues("update_outcome").Inc()
			logger.Error("bandit_persist_outcome_failed", "trace_id", tid, "decision_id", d.ID, "error", err)
		}
	}

	dAlpha, dBeta, labelled := s.cfg.BeliefDelta(o)
	if s.beliefRepo == nil || !labelled {
		return
	}
	if err := withRetry(ctx, s.cfg.PersistRetries, s.cfg.PersistBaseDelay, func() error {
		return s.beliefRepo.IncrementBelief(ctx, d.UserID, d.Key(), dAlpha, dBeta, s.cfg.PriorAlpha, s.cfg.PriorBeta)
	}); err != nil {
		BanditPersistFailuresTotal.WithLabelValues("increment_belief").Inc()
		logger.Error("bandit_persist_belief_failed", "trace_id", tid, "decision_id", d.ID, "error", err)
	}
}

//  Metrics

func (s *BanditService) Metrics(w Window) domain.MetricsSummary {
	return s.aggregator.Summary(w)
}

func (s *BanditService) LearningCurve(b Bucketing) []domain.LearningPoint {
	return s.aggregator.LearningCurve(b)
}

func (s *BanditService) Leaderboard(topN int) []domain.LeaderboardEntry {
	return s.aggregator.Leaderboard(topN)
}

//  Administrative

// ResetBelief puts one (user, action) belief back to the prior. Intended for
// test fixtures and cold-start simulation.
func (s *BanditService) ResetBelief(ctx context.Context, userID string, action domain.ActionKey) (domain.BeliefParameters, error) {
	if userID == "" {
		return domain.BeliefParameters{}, ErrUserRequired
	}
	p := s.beliefs.Reset(userID, action)

	if s.beliefRepo != nil {
		if err := withRetry(ctx, s.cfg.PersistRetries, s.cfg.PersistBaseDelay, func() error {
			return s.beliefRepo.ResetBelief(ctx, userID, action, s.cfg.PriorAlpha, s.cfg.PriorBeta)
		}); err != nil {
			BanditPersistFailuresTotal.WithLabelValues("reset_belief").Inc()
			return p, fmt.Errorf("persist reset: %w", err)
		}
	}

	logger.Info("bandit_belief_reset",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"action", action.String(),
	)
	return p, nil
}

func (s *BanditService) RefreshCatalog(ctx context.Context) error {
	return s.catalog.Refresh(ctx)
}
