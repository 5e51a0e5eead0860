package db

import (
	"context"
	"fmt"
	"log"
)

// Migration is a named schema change applied at startup. Statements must be
// idempotent (IF NOT EXISTS) since the full list runs on every boot.
type Migration struct {
	Name string
	SQL  string
}

// migrations is the ordered schema history. Append only; never reorder.
var migrations = []Migration{
	{
		Name: "create_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'hr',
			name TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "create_jobs",
		SQL: `CREATE TABLE IF NOT EXISTS jobs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			requirements JSONB NOT NULL DEFAULT '[]'::jsonb,
			status TEXT NOT NULL DEFAULT 'open',
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "create_candidates",
		SQL: `CREATE TABLE IF NOT EXISTS candidates (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			resume_filename TEXT NOT NULL DEFAULT '',
			resume_text TEXT NOT NULL DEFAULT '',
			skills JSONB NOT NULL DEFAULT '[]'::jsonb,
			experience JSONB NOT NULL DEFAULT '[]'::jsonb,
			education JSONB NOT NULL DEFAULT '[]'::jsonb,
			projects JSONB NOT NULL DEFAULT '[]'::jsonb,
			summary TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			vibe_coding_score INTEGER NOT NULL DEFAULT 0,
			analysis_status TEXT NOT NULL DEFAULT 'complete',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "create_applications",
		SQL: `CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			applicant_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			candidate_id UUID REFERENCES candidates(id) ON DELETE SET NULL,
			cover_note TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'submitted',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (job_id, applicant_id)
		)`,
	},
	{
		Name: "create_interviews",
		SQL: `CREATE TABLE IF NOT EXISTS interviews (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			candidate_id UUID NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
			job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'pending',
			transcript JSONB NOT NULL DEFAULT '[]'::jsonb,
			evaluation JSONB,
			started_at TIMESTAMPTZ,
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "create_user_subscriptions",
		SQL: `CREATE TABLE IF NOT EXISTS user_subscriptions (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			plan TEXT NOT NULL DEFAULT 'free',
			jobs_used INTEGER NOT NULL DEFAULT 0,
			analyses_used INTEGER NOT NULL DEFAULT 0,
			period_start DATE NOT NULL DEFAULT date_trunc('month', NOW()),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Name: "index_candidates_job_score",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_candidates_job_score ON candidates (job_id, score DESC)`,
	},
	{
		Name: "index_jobs_board",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_jobs_board ON jobs (is_public, status)`,
	},
}

// Migrate runs all schema migrations in order.
func (db *DB) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := db.pool.Exec(ctx, m.SQL); err != nil {
			return fmt.Errorf("migration %s failed: %w", m.Name, err)
		}
		log.Printf("[migrate] applied %s", m.Name)
	}
	return nil
}
