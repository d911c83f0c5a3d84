// Package decisions is the Postgres-backed Decision Store. Status
// transitions are enforced in SQL through guarded updates, so a lost
// race never overwrites a terminal state.
package decisions

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/adkite/adkite/internal/domain"
)

var (
	// ErrNotFound: no decision with that id in the organization.
	ErrNotFound = errors.New("decision not found")
	// ErrInvalidTransition: the decision is not in a state the requested
	// transition starts from.
	ErrInvalidTransition = errors.New("invalid decision status transition")
)

// PgStore persists decisions in Postgres.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore opens a connection pool and verifies connectivity.
func NewPgStore(ctx context.Context, dsn string) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "create decision store pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &PgStore{pool: pool}, nil
}

// NewPgStoreFromPool wraps an existing pool (shared with the
// connection directory).
func NewPgStoreFromPool(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const decisionColumns = `id, org_id, platform, entity_type, entity_id, entity_name,
	tool, parameters, current_state, status, reviewed_at, reviewed_by,
	executed_at, execution_result, error_message, created_at`

// Create inserts a new pending decision, generating its id when absent.
func (s *PgStore) Create(ctx context.Context, d *domain.Decision) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = domain.StatusPending
	}

	params, err := json.Marshal(d.Params)
	if err != nil {
		return errors.Wrap(err, "marshal decision parameters")
	}
	state, err := json.Marshal(d.CurrentState)
	if err != nil {
		return errors.Wrap(err, "marshal decision current state")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO ad_decisions
			(id, org_id, platform, entity_type, entity_id, entity_name, tool, parameters, current_state, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())`,
		d.ID, d.OrgID, d.Platform, d.EntityType, d.EntityID, d.EntityName, d.Tool, params, state, d.Status)
	return errors.Wrap(err, "insert decision")
}

// Get loads one decision scoped to an organization.
func (s *PgStore) Get(ctx context.Context, id, orgID string) (*domain.Decision, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+decisionColumns+` FROM ad_decisions WHERE id = $1 AND org_id = $2`, id, orgID)
	return scanDecision(row)
}

// ListPending returns the organization's decisions awaiting review.
func (s *PgStore) ListPending(ctx context.Context, orgID string) ([]*domain.Decision, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+decisionColumns+` FROM ad_decisions WHERE org_id = $1 AND status = $2 ORDER BY created_at`,
		orgID, domain.StatusPending)
	if err != nil {
		return nil, errors.Wrap(err, "query pending decisions")
	}
	defer rows.Close()

	var out []*domain.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Approve moves a pending decision to approved.
func (s *PgStore) Approve(ctx context.Context, id, orgID, reviewer string) error {
	return s.transition(ctx, `
		UPDATE ad_decisions SET status = $1, reviewed_at = now(), reviewed_by = $2
		WHERE id = $3 AND org_id = $4 AND status = $5`,
		domain.StatusApproved, reviewer, id, orgID, domain.StatusPending)
}

// Reject moves a pending decision to rejected (terminal).
func (s *PgStore) Reject(ctx context.Context, id, orgID, reviewer string) error {
	return s.transition(ctx, `
		UPDATE ad_decisions SET status = $1, reviewed_at = now(), reviewed_by = $2
		WHERE id = $3 AND org_id = $4 AND status = $5`,
		domain.StatusRejected, reviewer, id, orgID, domain.StatusPending)
}

// Expire moves a pending decision to expired (terminal).
func (s *PgStore) Expire(ctx context.Context, id, orgID string) error {
	return s.transition(ctx, `
		UPDATE ad_decisions SET status = $1
		WHERE id = $2 AND org_id = $3 AND status = $4`,
		domain.StatusExpired, id, orgID, domain.StatusPending)
}

// MarkExecuted records a successful execution on an approved decision.
func (s *PgStore) MarkExecuted(ctx context.Context, id, orgID string, result domain.Payload) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "marshal execution result")
	}
	return s.transition(ctx, `
		UPDATE ad_decisions SET status = $1, executed_at = now(), execution_result = $2, error_message = ''
		WHERE id = $3 AND org_id = $4 AND status = $5`,
		domain.StatusExecuted, payload, id, orgID, domain.StatusApproved)
}

// MarkFailed records a failed execution on an approved decision. A
// partial compound result, when present, is preserved alongside the
// error message.
func (s *PgStore) MarkFailed(ctx context.Context, id, orgID, message string, result domain.Payload) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, "marshal execution result")
	}
	return s.transition(ctx, `
		UPDATE ad_decisions SET status = $1, executed_at = now(), execution_result = $2, error_message = $3
		WHERE id = $4 AND org_id = $5 AND status = $6`,
		domain.StatusFailed, payload, message, id, orgID, domain.StatusApproved)
}

// Acknowledge rates an accumulated_insight decision, the only tool
// whose lifecycle is pending -> acknowledged.
func (s *PgStore) Acknowledge(ctx context.Context, id, orgID string, rating int) error {
	return s.transition(ctx, `
		UPDATE ad_decisions SET status = $1, execution_result = jsonb_build_object('rating', $2::int), reviewed_at = now()
		WHERE id = $3 AND org_id = $4 AND status = $5 AND tool = $6`,
		domain.StatusAcknowledged, rating, id, orgID, domain.StatusPending, domain.ToolAccumulatedInsight)
}

// transition runs a guarded update and distinguishes "no such decision"
// from "wrong current status".
func (s *PgStore) transition(ctx context.Context, sql string, args ...any) error {
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return errors.Wrap(err, "update decision status")
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

// Close releases the pool.
func (s *PgStore) Close() {
	s.pool.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*domain.Decision, error) {
	var (
		d            domain.Decision
		params       []byte
		currentState []byte
		execResult   []byte
	)
	err := row.Scan(&d.ID, &d.OrgID, &d.Platform, &d.EntityType, &d.EntityID, &d.EntityName,
		&d.Tool, &params, &currentState, &d.Status, &d.ReviewedAt, &d.ReviewedBy,
		&d.ExecutedAt, &execResult, &d.ErrorMessage, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "scan decision")
	}

	if len(params) > 0 {
		if err := json.Unmarshal(params, &d.Params); err != nil {
			return nil, errors.Wrap(err, "decode decision parameters")
		}
	}
	if len(currentState) > 0 {
		if err := json.Unmarshal(currentState, &d.CurrentState); err != nil {
			return nil, errors.Wrap(err, "decode decision current state")
		}
	}
	if len(execResult) > 0 {
		if err := json.Unmarshal(execResult, &d.ExecutionResult); err != nil {
			return nil, errors.Wrap(err, "decode execution result")
		}
	}
	return &d, nil
}
