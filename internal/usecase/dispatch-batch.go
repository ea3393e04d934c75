package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/dto"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/protocols"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/repositories"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReceiptCache is the fast-path lookup in front of the durable receipt
// table. A miss is never an error; the table stays authoritative.
type ReceiptCache interface {
	Get(ctx context.Context, correlationID string) (*dto.DispatchResult, bool)
	Set(ctx context.Context, correlationID string, result *dto.DispatchResult)
}

const sessionCreatedRoutingKey = "session.created"

// DispatchBatchUseCase creates one notification batch for a queue: it
// gates on idempotency, quota and channel state, validates the targeted
// patients, resolves a template per patient and persists the session with
// its messages atomically.
type DispatchBatchUseCase struct {
	Queues     repositories.QueueRepositoryInterface
	Patients   repositories.PatientRepositoryInterface
	Templates  repositories.TemplateRepositoryInterface
	Conditions repositories.ConditionRepositoryInterface
	Sessions   repositories.SessionRepositoryInterface
	Channels   repositories.ChannelRepositoryInterface
	Receipts   repositories.ReceiptRepositoryInterface

	Quota      protocols.QuotaGate
	Moderators protocols.ModeratorResolver
	Variables  protocols.VariableResolver

	Cache      ReceiptCache
	Publisher  protocols.Queue
	ReceiptTTL time.Duration
	Log        *logrus.Logger
}

func NewDispatchBatchUseCase(
	queues repositories.QueueRepositoryInterface,
	patients repositories.PatientRepositoryInterface,
	templates repositories.TemplateRepositoryInterface,
	conditions repositories.ConditionRepositoryInterface,
	sessions repositories.SessionRepositoryInterface,
	channels repositories.ChannelRepositoryInterface,
	receipts repositories.ReceiptRepositoryInterface,
	quota protocols.QuotaGate,
	moderators protocols.ModeratorResolver,
	variables protocols.VariableResolver,
	cache ReceiptCache,
	publisher protocols.Queue,
	receiptTTL time.Duration,
	log *logrus.Logger,
) *DispatchBatchUseCase {
	return &DispatchBatchUseCase{
		Queues:     queues,
		Patients:   patients,
		Templates:  templates,
		Conditions: conditions,
		Sessions:   sessions,
		Channels:   channels,
		Receipts:   receipts,
		Quota:      quota,
		Moderators: moderators,
		Variables:  variables,
		Cache:      cache,
		Publisher:  publisher,
		ReceiptTTL: receiptTTL,
		Log:        log,
	}
}

// Execute runs one dispatch call. Preconditions are checked in order and
// each rejection leaves no persisted state behind; on success the session,
// its messages and the idempotency receipt commit in one transaction.
func (ds *DispatchBatchUseCase) Execute(ctx context.Context, req *dto.DispatchRequest) (*dto.DispatchResult, error) {
	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	if result, ok := ds.replay(ctx, correlationID); ok {
		ds.Log.WithFields(logrus.Fields{"correlationId": correlationID, "sessionId": result.SessionID}).
			Info("[DISPATCH] - Replayed prior result for correlation id")
		return result, nil
	}

	moderatorID, err := ds.resolveModerator(ctx, req)
	if err != nil {
		return nil, err
	}

	ok, err := ds.Quota.HasQuota(ctx, req.RequesterUserID, len(req.PatientIDs))
	if err != nil {
		return nil, fmt.Errorf("quota check: %w", err)
	}
	if !ok {
		return nil, dto.NewDispatchError(dto.CodeQuotaExceeded,
			fmt.Sprintf("requester %d lacks quota for %d messages", req.RequesterUserID, len(req.PatientIDs)))
	}

	if err := ds.checkChannel(ctx, moderatorID); err != nil {
		return nil, err
	}

	queue, err := ds.Queues.FindById(ctx, req.QueueID)
	if err != nil {
		return nil, fmt.Errorf("queue %d: %w", req.QueueID, err)
	}

	fallback, err := ds.Templates.FindById(ctx, req.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("template %d: %w", req.TemplateID, err)
	}

	patients, err := ds.validatePatients(ctx, queue.ID, req.PatientIDs)
	if err != nil {
		return nil, err
	}

	session, messages, err := ds.buildBatch(ctx, req, queue, fallback, patients, moderatorID, correlationID)
	if err != nil {
		return nil, err
	}

	receipt := &models.DispatchReceipt{
		CorrelationID: correlationID,
		SessionID:     session.ID,
		QueuedCount:   len(messages),
		RequesterID:   req.RequesterUserID,
		ExpiresAt:     time.Now().UTC().Add(ds.ReceiptTTL),
	}

	if err := ds.Sessions.CreateBatch(ctx, session, messages, receipt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race on the correlation id: the whole batch rolled
			// back, so return the winner's receipt instead.
			if result, ok := ds.replay(ctx, correlationID); ok {
				return result, nil
			}
		}
		return nil, fmt.Errorf("create batch: %w", err)
	}

	result := &dto.DispatchResult{
		Success:       true,
		Queued:        len(messages),
		SessionID:     session.ID,
		CorrelationID: correlationID,
	}
	if ds.Cache != nil {
		ds.Cache.Set(ctx, correlationID, result)
	}
	ds.announce(ctx, session)

	ds.Log.WithFields(logrus.Fields{
		"sessionId":     session.ID,
		"queueId":       queue.ID,
		"moderatorId":   moderatorID,
		"queued":        len(messages),
		"correlationId": correlationID,
	}).Info("[DISPATCH] - Batch created")

	return result, nil
}

func (ds *DispatchBatchUseCase) replay(ctx context.Context, correlationID string) (*dto.DispatchResult, bool) {
	if ds.Cache != nil {
		if result, ok := ds.Cache.Get(ctx, correlationID); ok {
			return result, true
		}
	}

	receipt, err := ds.Receipts.FindByCorrelation(ctx, correlationID)
	if err != nil {
		return nil, false
	}
	result := &dto.DispatchResult{
		Success:       true,
		Queued:        receipt.QueuedCount,
		SessionID:     receipt.SessionID,
		CorrelationID: receipt.CorrelationID,
	}
	if ds.Cache != nil {
		ds.Cache.Set(ctx, correlationID, result)
	}
	return result, true
}

func (ds *DispatchBatchUseCase) resolveModerator(ctx context.Context, req *dto.DispatchRequest) (uint, error) {
	if req.ModeratorID != 0 {
		return req.ModeratorID, nil
	}
	moderatorID, err := ds.Moderators.EffectiveModeratorID(ctx, req.RequesterUserID)
	if err != nil || moderatorID == 0 {
		return 0, dto.NewDispatchError(dto.CodeModeratorIDRequired,
			"no moderator id supplied and none could be resolved for the requester")
	}
	return moderatorID, nil
}

// checkChannel rejects blocking connectivity states and self-heals a stale
// system pause on an otherwise healthy, idle channel before admitting the
// batch. A manual pause does not block creation: messages are still queued
// and simply wait for resume.
func (ds *DispatchBatchUseCase) checkChannel(ctx context.Context, moderatorID uint) error {
	channel, err := ds.Channels.Get(ctx, moderatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.NewDispatchError(dto.CodeSessionNotConnected,
				fmt.Sprintf("no WhatsApp channel registered for moderator %d", moderatorID))
		}
		return fmt.Errorf("channel lookup: %w", err)
	}

	switch channel.Connectivity {
	case models.ChannelPendingAuth:
		return dto.NewDispatchError(dto.CodeAuthenticationRequired, "channel is waiting for QR authentication")
	case models.ChannelNetworkFailure:
		return dto.NewDispatchError(dto.CodeNetworkFailure, "channel lost network connectivity")
	case models.ChannelBrowserClosed:
		return dto.NewDispatchError(dto.CodeBrowserClosed, "channel browser session was closed")
	case models.ChannelDisconnected:
		return dto.NewDispatchError(dto.CodeSessionNotConnected, "channel is not connected")
	case models.ChannelConnected:
	}

	if channel.IsPaused && channel.PauseReason != nil && *channel.PauseReason != models.PauseManual {
		busy, err := ds.Channels.HasActiveWork(ctx, moderatorID)
		if err != nil {
			return fmt.Errorf("channel activity check: %w", err)
		}
		if !busy {
			if err := ds.Channels.ClearPause(ctx, moderatorID); err != nil {
				return fmt.Errorf("channel self-heal: %w", err)
			}
			ds.Log.WithField("moderatorId", moderatorID).
				Info("[DISPATCH] - Cleared stale system pause on idle channel")
		}
	}

	return nil
}

// validatePatients enforces the all-or-nothing policy: every targeted
// patient must exist in the queue and hold a valid WhatsApp number, or the
// whole dispatch is rejected.
func (ds *DispatchBatchUseCase) validatePatients(ctx context.Context, queueID uint, ids []uint) ([]models.Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	patients, err := ds.Patients.FindByIds(ctx, queueID, ids)
	if err != nil {
		return nil, fmt.Errorf("patient lookup: %w", err)
	}
	if len(patients) != len(ids) {
		return nil, dto.NewDispatchError(dto.CodeWhatsAppValidation,
			fmt.Sprintf("%d of %d targeted patients not found in queue %d", len(ids)-len(patients), len(ids), queueID))
	}

	for i := range patients {
		if patients[i].WhatsAppValidity != models.WhatsAppValid {
			return nil, dto.NewDispatchError(dto.CodeWhatsAppValidation,
				fmt.Sprintf("patient %d has WhatsApp validity %q", patients[i].ID, patients[i].WhatsAppValidity))
		}
	}
	return patients, nil
}

// buildBatch resolves one template per patient and renders the final
// content. The condition set is loaded once and iterated single-threaded
// so selection stays deterministic within the batch.
func (ds *DispatchBatchUseCase) buildBatch(
	ctx context.Context,
	req *dto.DispatchRequest,
	queue *models.Queue,
	fallback *models.MessageTemplate,
	patients []models.Patient,
	moderatorID uint,
	correlationID string,
) (*models.MessageSession, []models.Message, error) {
	conditions, err := ds.Conditions.ListByQueue(ctx, queue.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("condition lookup: %w", err)
	}

	contents, conditions, err := ds.loadConditionTemplates(ctx, conditions, fallback)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	session := &models.MessageSession{
		ID:              uuid.NewString(),
		QueueID:         queue.ID,
		ModeratorID:     moderatorID,
		RequesterUserID: req.RequesterUserID,
		Status:          models.SessionActive,
		TotalMessages:   len(patients),
		OngoingMessages: len(patients),
		CorrelationID:   correlationID,
		StartTime:       now,
	}

	messages := make([]models.Message, 0, len(patients))
	for i := range patients {
		patient := &patients[i]
		calculated := queue.CalculatedPosition(patient)

		templateID := ResolveTemplate(conditions, calculated, fallback.ID)
		content := contents[templateID]
		if req.OverrideContent != "" {
			content = req.OverrideContent
		}
		rendered := ds.Variables.Resolve(content, patient, queue, calculated)

		messages = append(messages, models.Message{
			ID:                 uuid.NewString(),
			SessionID:          session.ID,
			PatientID:          patient.ID,
			TemplateID:         templateID,
			CalculatedPosition: calculated,
			Content:            rendered,
			Status:             models.MessageQueued,
			Attempts:           0,
			CorrelationID:      correlationID,
		})
	}

	return session, messages, nil
}

// loadConditionTemplates maps template id to content for every condition
// the resolver may pick, dropping conditions whose template no longer
// exists so they can never win selection.
func (ds *DispatchBatchUseCase) loadConditionTemplates(
	ctx context.Context,
	conditions []models.MessageCondition,
	fallback *models.MessageTemplate,
) (map[uint]string, []models.MessageCondition, error) {
	ids := make([]uint, 0, len(conditions))
	for i := range conditions {
		ids = append(ids, conditions[i].TemplateID)
	}

	templates, err := ds.Templates.FindByIds(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("condition template lookup: %w", err)
	}

	contents := map[uint]string{fallback.ID: fallback.Content}
	for i := range templates {
		contents[templates[i].ID] = templates[i].Content
	}

	kept := make([]models.MessageCondition, 0, len(conditions))
	for i := range conditions {
		if _, ok := contents[conditions[i].TemplateID]; ok {
			kept = append(kept, conditions[i])
		}
	}
	return contents, kept, nil
}

// announce publishes a session.created event for the external sender.
// Delivery is best-effort: the batch is already durable, and the sender
// also polls for dispatchable work.
func (ds *DispatchBatchUseCase) announce(ctx context.Context, session *models.MessageSession) {
	if ds.Publisher == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"sessionId":   session.ID,
		"queueId":     session.QueueID,
		"moderatorId": session.ModeratorID,
		"total":       session.TotalMessages,
	})
	if err != nil {
		return
	}
	if err := ds.Publisher.Publish(ctx, sessionCreatedRoutingKey, body); err != nil {
		ds.Log.WithField("sessionId", session.ID).
			Warnf("[DISPATCH] - Failed to publish session.created: %v", err)
	}
}
