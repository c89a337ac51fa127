package bandit

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"myCampaignEngine/domain"
	"myCampaignEngine/pkg/logger"
)

type ActionRepository interface {
	ListActions(ctx context.Context) ([]domain.Action, error)
	UpsertActions(ctx context.Context, actions []domain.Action) error
}

const (
	ReasonHoldout      = "holdout"
	ReasonGuardrail    = "guardrail"
	ReasonEmptyCatalog = "empty_catalog"
)

// Eligibility is the outcome of filtering the action space for one user.
type Eligibility struct {
	Actions  []domain.Action
	Holdout  bool
	Excluded map[domain.ActionKey]string // action -> guardrail name
}

func (e Eligibility) Empty() bool {
	return len(e.Actions) == 0
}

// Reason explains an empty eligible set.
func (e Eligibility) Reason() string {
	switch {
	case e.Holdout:
		return ReasonHoldout
	case len(e.Excluded) > 0:
		return ReasonGuardrail
	default:
		return ReasonEmptyCatalog
	}
}

// ActionCatalog holds the action space and filters it per user. The action
// list is an immutable snapshot swapped on Refresh, so reads never wait on
// the repository.
type ActionCatalog struct {
	repo           ActionRepository
	guardrails     []Guardrail
	holdoutPercent int
	now            func() time.Time

	actions atomic.Pointer[[]domain.Action]
}

func NewActionCatalog(repo ActionRepository, holdoutPercent int, guardrails ...Guardrail) *ActionCatalog {
	c := &ActionCatalog{
		repo:           repo,
		guardrails:     guardrails,
		holdoutPercent: holdoutPercent,
		now:            time.Now,
	}
	empty := []domain.Action{}
	c.actions.Store(&empty)
	return c
}

// SetActions replaces the action space in memory.
func (c *ActionCatalog) SetActions(actions []domain.Action) {
	cp := make([]domain.Action, len(actions))
	copy(cp, actions)
	c.actions.Store(&cp)
}

func (c *ActionCatalog) Actions() []domain.Action {
	return *c.actions.Load()
}

// Refresh reloads the action space from the repository.
func (c *ActionCatalog) Refresh(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}
	actions, err := c.repo.ListActions(ctx)
	if err != nil {
		return fmt.Errorf("load actions: %w", err)
	}
	c.SetActions(actions)
	logger.Info("bandit_catalog_refreshed", "actions", len(actions))
	return nil
}

// Seed writes actions to the repository when it is empty, then refreshes.
func (c *ActionCatalog) Seed(ctx context.Context, actions []domain.Action) error {
	if len(actions) == 0 {
		return nil
	}
	if c.repo == nil {
		if len(c.Actions()) == 0 {
			c.SetActions(actions)
		}
		return nil
	}
	existing, err := c.repo.ListActions(ctx)
	if err != nil {
		return fmt.Errorf("load actions: %w", err)
	}
	if len(existing) == 0 {
		if err := c.repo.UpsertActions(ctx, actions); err != nil {
			return fmt.Errorf("seed actions: %w", err)
		}
	}
	return c.Refresh(ctx)
}

func (c *ActionCatalog) InHoldout(userID string) bool {
	return inHoldout(userID, c.holdoutPercent)
}

// EligibleActions filters the action space for user. Holdout users get an
// empty set. A guardrail that errors excludes the action.
func (c *ActionCatalog) EligibleActions(ctx context.Context, user domain.User) (Eligibility, error) {
	if err := ctx.Err(); err != nil {
		return Eligibility{}, fmt.Errorf("context error: %w", err)
	}
	if c.InHoldout(user.ID) {
		return Eligibility{Holdout: true}, nil
	}

	now := c.now()
	out := Eligibility{}
	for _, a := range c.Actions() {
		if !a.Active {
			continue
		}
		if name, ok := c.check(ctx, user, a, now); !ok {
			if out.Excluded == nil {
				out.Excluded = make(map[domain.ActionKey]string)
			}
			out.Excluded[a.Key()] = name
			continue
		}
		out.Actions = append(out.Actions, a)
	}
	return out, nil
}

func (c *ActionCatalog) check(ctx context.Context, user domain.User, a domain.Action, now time.Time) (string, bool) {
	for _, g := range c.guardrails {
		ok, err := g.Allow(ctx, user, a, now)
		if err != nil {
			logger.Warn("bandit_guardrail_error",
				"trace_id", TraceIDFromContext(ctx),
				"guardrail", g.Name(),
				"action", a.Key().String(),
				"error", err,
			)
			return g.Name(), false
		}
		if !ok {
			return g.Name(), false
		}
	}
	return "", true
}

// ParseActionSeed reads "offer:channel:partner" entries.
func ParseActionSeed(entries []string) ([]domain.Action, error) {
	out := make([]domain.Action, 0, len(entries))
	for _, e := range entries {
		parts := strings.Split(strings.TrimSpace(e), ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("invalid action %q: want offer:channel:partner", e)
		}
		out = append(out, domain.Action{
			OfferID: parts[0],
			Channel: parts[1],
			Partner: parts[2],
			Active:  true,
		})
	}
	return out, nil
}
