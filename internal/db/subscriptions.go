package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Subscription plans
const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
)

// GetOrCreateSubscription returns the user's subscription, creating a free
// one on first access, and lazily resets usage when the stored period is
// older than the current month.
func (db *DB) GetOrCreateSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	var s Subscription
	err := db.pool.QueryRow(ctx,
		`INSERT INTO user_subscriptions (user_id)
		 VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET
		     jobs_used = CASE WHEN user_subscriptions.period_start < date_trunc('month', NOW())
		                      THEN 0 ELSE user_subscriptions.jobs_used END,
		     analyses_used = CASE WHEN user_subscriptions.period_start < date_trunc('month', NOW())
		                          THEN 0 ELSE user_subscriptions.analyses_used END,
		     period_start = GREATEST(user_subscriptions.period_start, date_trunc('month', NOW())::date)
		 RETURNING user_id, plan, jobs_used, analyses_used, period_start, updated_at`,
		userID,
	).Scan(&s.UserID, &s.Plan, &s.JobsUsed, &s.AnalysesUsed, &s.PeriodStart, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &s, nil
}

// SetSubscriptionPlan changes the user's plan. Usage counters keep running.
func (db *DB) SetSubscriptionPlan(ctx context.Context, userID uuid.UUID, plan string) (*Subscription, error) {
	var s Subscription
	err := db.pool.QueryRow(ctx,
		`UPDATE user_subscriptions SET plan = $1, updated_at = NOW()
		 WHERE user_id = $2
		 RETURNING user_id, plan, jobs_used, analyses_used, period_start, updated_at`,
		plan, userID,
	).Scan(&s.UserID, &s.Plan, &s.JobsUsed, &s.AnalysesUsed, &s.PeriodStart, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to set subscription plan: %w", err)
	}
	return &s, nil
}

// IncrementJobsUsed bumps the monthly job counter
func (db *DB) IncrementJobsUsed(ctx context.Context, userID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE user_subscriptions SET jobs_used = jobs_used + 1, updated_at = NOW()
		 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment jobs used: %w", err)
	}
	return nil
}

// IncrementAnalysesUsed bumps the monthly analysis counter
func (db *DB) IncrementAnalysesUsed(ctx context.Context, userID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE user_subscriptions SET analyses_used = analyses_used + 1, updated_at = NOW()
		 WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment analyses used: %w", err)
	}
	return nil
}

// ResetStaleUsage zeroes usage counters for every subscription whose period
// predates the current month. Run by the monthly scheduler.
func (db *DB) ResetStaleUsage(ctx context.Context) (int64, error) {
	result, err := db.pool.Exec(ctx,
		`UPDATE user_subscriptions
		 SET jobs_used = 0, analyses_used = 0,
		     period_start = date_trunc('month', NOW())::date, updated_at = NOW()
		 WHERE period_start < date_trunc('month', NOW())::date`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset stale usage: %w", err)
	}
	return result.RowsAffected(), nil
}
