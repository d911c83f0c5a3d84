package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/adkite/adkite/internal/domain"
	"github.com/adkite/adkite/internal/services/execution"
)

// DecisionStore is the persistence contract the engine needs: load a
// decision and record its terminal outcome.
type DecisionStore interface {
	Get(ctx context.Context, id, orgID string) (*domain.Decision, error)
	MarkExecuted(ctx context.Context, id, orgID string, result domain.Payload) error
	MarkFailed(ctx context.Context, id, orgID, message string, result domain.Payload) error
}

// AuditLog records terminal execution outcomes.
type AuditLog interface {
	Append(event domain.ExecutionEvent) error
}

// Engine runs approved decisions through the dispatcher and writes the
// outcome back as the decision's terminal status. Executions are
// request-scoped and independent; concurrent calls need no coordination.
type Engine struct {
	store      DecisionStore
	dispatcher *execution.Dispatcher
	audit      AuditLog
	logger     *zap.Logger
}

// NewEngine wires the engine's collaborators.
func NewEngine(store DecisionStore, dispatcher *execution.Dispatcher, audit AuditLog, logger *zap.Logger) *Engine {
	return &Engine{store: store, dispatcher: dispatcher, audit: audit, logger: logger}
}

// ExecuteDecision loads an approved decision, applies it to the target
// platform, and persists the result. Every error becomes a
// {status: failed, error_message} update; nothing is silently swallowed.
func (e *Engine) ExecuteDecision(ctx context.Context, id, orgID string) (domain.Payload, error) {
	d, err := e.store.Get(ctx, id, orgID)
	if err != nil {
		return nil, errors.Wrap(err, "load decision")
	}
	if d.Status != domain.StatusApproved {
		return nil, domain.NewValidationError("decision %s is %s; only approved decisions can be executed", id, d.Status)
	}

	logger := e.logger.With(
		zap.String("decision_id", d.ID), zap.String("org_id", d.OrgID),
		zap.String("platform", string(d.Platform)), zap.String("tool", d.Tool))

	result, err := e.dispatcher.Execute(ctx, execution.Request{
		OrgID:      d.OrgID,
		Platform:   d.Platform,
		Tool:       d.Tool,
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		EntityName: d.EntityName,
		Params:     d.Params,
	})

	if err != nil {
		logger.Warn("decision execution failed", zap.Error(err))
		if storeErr := e.store.MarkFailed(ctx, d.ID, d.OrgID, err.Error(), nil); storeErr != nil {
			logger.Error("failed to persist execution failure", zap.Error(storeErr))
		}
		e.appendAudit(d, false, domain.CodeOf(err), err.Error(), nil, logger)
		return nil, err
	}

	// a compound action can complete partially: not an error, but the
	// decision still terminates as failed with the precise step report
	if success, ok := result["success"].(bool); ok && !success {
		message, _ := result["message"].(string)
		logger.Warn("decision executed partially", zap.String("message", message))
		if storeErr := e.store.MarkFailed(ctx, d.ID, d.OrgID, message, result); storeErr != nil {
			logger.Error("failed to persist partial execution", zap.Error(storeErr))
		}
		e.appendAudit(d, false, "", message, result, logger)
		return result, nil
	}

	if storeErr := e.store.MarkExecuted(ctx, d.ID, d.OrgID, result); storeErr != nil {
		logger.Error("failed to persist execution result", zap.Error(storeErr))
		return nil, errors.Wrap(storeErr, "persist execution result")
	}
	e.appendAudit(d, true, "", "", result, logger)
	logger.Info("decision executed")
	return result, nil
}

func (e *Engine) appendAudit(d *domain.Decision, success bool, code domain.ErrorCode, errMsg string, result domain.Payload, logger *zap.Logger) {
	if e.audit == nil {
		return
	}
	event := domain.ExecutionEvent{
		Timestamp:  time.Now().UTC(),
		DecisionID: d.ID,
		OrgID:      d.OrgID,
		Platform:   d.Platform,
		Tool:       d.Tool,
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		Success:    success,
		ErrorCode:  code,
		Error:      errMsg,
		Result:     result,
	}
	if err := e.audit.Append(event); err != nil {
		logger.Error("failed to append audit event", zap.Error(err))
	}
}
