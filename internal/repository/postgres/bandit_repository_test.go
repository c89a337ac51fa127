package postgres

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"myCampaignEngine/business/bandit"
	"myCampaignEngine/domain"
	"myCampaignEngine/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory sqlite database with the engine schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

var repoKey = domain.ActionKey{OfferID: "loan-10", Channel: "sms", Partner: "bank-a"}

func TestBanditRepository_IncrementBelief(t *testing.T) {
	ctx := context.Background()
	repo := NewBanditRepository(newTestDB(t))

	require.NoError(t, repo.IncrementBelief(ctx, "U-1", repoKey, 1, 0, 1, 1))
	require.NoError(t, repo.IncrementBelief(ctx, "U-1", repoKey, 1, 0, 1, 1))
	require.NoError(t, repo.IncrementBelief(ctx, "U-1", repoKey, 0, 1, 1, 1))
	require.NoError(t, repo.IncrementBelief(ctx, "U-2", repoKey, 0, 1, 1, 1))

	rows, err := repo.LoadBeliefs(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byUser := map[string]domain.BeliefParameters{}
	for _, r := range rows {
		byUser[r.UserID] = r
	}
	assert.Equal(t, 3.0, byUser["U-1"].Alpha)
	assert.Equal(t, 2.0, byUser["U-1"].Beta)
	assert.Equal(t, repoKey, byUser["U-1"].Key())
	assert.Equal(t, 1.0, byUser["U-2"].Alpha)
	assert.Equal(t, 2.0, byUser["U-2"].Beta)
}

func TestBanditRepository_IncrementBeliefConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewBanditRepository(newTestDB(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementBelief(ctx, "U-1", repoKey, 1, 0, 1, 1))
		}()
	}
	wg.Wait()

	rows, err := repo.LoadBeliefs(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 21.0, rows[0].Alpha)
	assert.Equal(t, 1.0, rows[0].Beta)
}

func TestBanditRepository_ResetBelief(t *testing.T) {
	ctx := context.Background()
	repo := NewBanditRepository(newTestDB(t))

	require.NoError(t, repo.IncrementBelief(ctx, "U-1", repoKey, 4, 2, 1, 1))
	require.NoError(t, repo.ResetBelief(ctx, "U-1", repoKey, 1, 1))
	require.NoError(t, repo.ResetBelief(ctx, "U-9", repoKey, 1, 1))

	rows, err := repo.LoadBeliefs(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 1.0, r.Alpha, r.UserID)
		assert.Equal(t, 1.0, r.Beta, r.UserID)
	}
}

func TestBanditRepository_Decisions(t *testing.T) {
	ctx := context.Background()
	repo := NewBanditRepository(newTestDB(t))
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	d1 := domain.Decision{
		ID: "d-1", UserID: "U-1", OfferID: repoKey.OfferID, Channel: repoKey.Channel, Partner: repoKey.Partner,
		SampledScore: 0.7, Confidence: 0.5, IsExploration: true,
		Outcome: domain.OutcomePending, Context: map[string]any{"campaign": "spring"}, CreatedAt: base.Add(time.Minute),
	}
	d0 := d1
	d0.ID, d0.CreatedAt, d0.Context = "d-0", base, nil

	require.NoError(t, repo.SaveDecision(ctx, d1))
	require.NoError(t, repo.SaveDecision(ctx, d0))
	require.NoError(t, repo.SaveDecision(ctx, d1), "saving twice is a no-op")

	rows, err := repo.LoadDecisions(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "d-0", rows[0].ID)
	assert.Equal(t, "d-1", rows[1].ID)
	assert.Equal(t, "spring", rows[1].Context["campaign"])
	assert.True(t, rows[1].IsExploration)

	at := base.Add(time.Hour)
	require.NoError(t, repo.UpdateOutcome(ctx, "d-1", domain.OutcomeConverted, at))

	err = repo.UpdateOutcome(ctx, "d-1", domain.OutcomeIgnored, at)
	assert.ErrorIs(t, err, bandit.ErrAlreadyRecorded)

	err = repo.UpdateOutcome(ctx, "missing", domain.OutcomeIgnored, at)
	assert.ErrorIs(t, err, bandit.ErrDecisionNotFound)

	rows, err = repo.LoadDecisions(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeConverted, rows[1].Outcome)
	require.NotNil(t, rows[1].OutcomeAt)
	assert.True(t, at.Equal(*rows[1].OutcomeAt))
	assert.Equal(t, domain.OutcomePending, rows[0].Outcome)
}

func TestBanditRepository_ContextCanceled(t *testing.T) {
	repo := NewBanditRepository(newTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.LoadBeliefs(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.SaveDecision(ctx, domain.Decision{ID: "x"}), context.Canceled)
}

// The engine and the repository agree after a restart.
func TestBanditRepository_WarmRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewBanditRepository(db)
	actions := NewActionRepository(db)
	require.NoError(t, actions.UpsertActions(ctx, []domain.Action{
		{OfferID: "o1", Channel: "sms", Partner: "p1", Active: true},
	}))

	cfg := bandit.Config{HoldoutPercent: 0, Seed: 1}
	newService := func() *bandit.BanditService {
		catalog := bandit.NewActionCatalog(actions, 0)
		require.NoError(t, catalog.Refresh(ctx))
		svc, err := bandit.NewBanditService(cfg, catalog, NewUserRepository(db), repo, repo, nil)
		require.NoError(t, err)
		require.NoError(t, svc.Warm(ctx))
		return svc
	}

	first := newService()
	res, err := first.Decide(ctx, "U-1", nil)
	require.NoError(t, err)
	_, err = first.ReportOutcome(ctx, res.Decision.DecisionID, "converted")
	require.NoError(t, err)
	pending, err := first.Decide(ctx, "U-1", nil)
	require.NoError(t, err)

	second := newService()
	p, ok := second.Beliefs().Peek("U-1", res.Decision.Action)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Alpha)
	assert.Equal(t, 1.0, p.Beta)
	assert.Equal(t, 2, second.Decisions().Len())

	_, err = second.ReportOutcome(ctx, res.Decision.DecisionID, "ignored")
	assert.ErrorIs(t, err, bandit.ErrAlreadyRecorded)
	_, err = second.ReportOutcome(ctx, pending.Decision.DecisionID, "ignored")
	require.NoError(t, err)
}
