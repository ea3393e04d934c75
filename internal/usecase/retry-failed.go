package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/dto"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/repositories"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/sirupsen/logrus"
)

// Permanent-failure vocabulary: errors that retrying can never fix.
var nonRetryableTerms = []string{
	"invalid number",
	"invalid phone",
	"not found",
	"validation failed",
	"recipient unavailable",
}

// Channel/account problems an operator must resolve before retrying.
var requiresActionTerms = []string{
	"paused",
	"suspended",
	"authentication",
	"unauthorized",
	"account",
}

// ClassifyFailure buckets one error text. Anything unrecognized lands in
// the retryable bucket so an operator can still attempt it.
func ClassifyFailure(errorMessage string) dto.FailureBucket {
	text := strings.ToLower(errorMessage)
	for _, term := range nonRetryableTerms {
		if strings.Contains(text, term) {
			return dto.BucketNonRetryable
		}
	}
	for _, term := range requiresActionTerms {
		if strings.Contains(text, term) {
			return dto.BucketRequiresAction
		}
	}
	return dto.BucketRetryable
}

// RetryFailedUseCase reports and requeues a session's failed messages.
type RetryFailedUseCase struct {
	Sessions repositories.SessionRepositoryInterface
	Messages repositories.MessageRepositoryInterface
	Patients repositories.PatientRepositoryInterface
	Log      *logrus.Logger
}

func NewRetryFailedUseCase(
	sessions repositories.SessionRepositoryInterface,
	messages repositories.MessageRepositoryInterface,
	patients repositories.PatientRepositoryInterface,
	log *logrus.Logger,
) *RetryFailedUseCase {
	return &RetryFailedUseCase{Sessions: sessions, Messages: messages, Patients: patients, Log: log}
}

// Report groups the session's failed messages into buckets with per-error
// counts, the shape an operator needs to direct a bulk retry. A deleted or
// invalid patient forces the non-retryable bucket regardless of error text.
func (ru *RetryFailedUseCase) Report(ctx context.Context, sessionID string) (*dto.FailureReport, error) {
	if _, err := ru.Sessions.FindById(ctx, sessionID); err != nil {
		return nil, err
	}

	failed, err := ru.Messages.ListFailedBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list failed messages: %w", err)
	}

	groups := map[dto.FailureBucket]map[string]*dto.FailureGroup{
		dto.BucketRetryable:      {},
		dto.BucketNonRetryable:   {},
		dto.BucketRequiresAction: {},
	}

	for i := range failed {
		message := &failed[i]
		errText := ""
		if message.ErrorMessage != nil {
			errText = *message.ErrorMessage
		}

		bucket := ClassifyFailure(errText)
		if patientUnreachable(&message.Patient) {
			bucket = dto.BucketNonRetryable
		}

		group, ok := groups[bucket][errText]
		if !ok {
			group = &dto.FailureGroup{ErrorMessage: errText}
			groups[bucket][errText] = group
		}
		group.Count++
		group.MessageIDs = append(group.MessageIDs, message.ID)
	}

	return &dto.FailureReport{
		Retryable:      flattenGroups(groups[dto.BucketRetryable]),
		NonRetryable:   flattenGroups(groups[dto.BucketNonRetryable]),
		RequiresAction: flattenGroups(groups[dto.BucketRequiresAction]),
	}, nil
}

// Execute requeues the chosen failed messages best-effort: each item is
// revalidated against its patient and skipped individually when it no
// longer qualifies, without aborting the rest. Attempts counters are
// preserved by the repository.
func (ru *RetryFailedUseCase) Execute(ctx context.Context, sessionID string, req *dto.RetryRequest) (*dto.RetryReport, error) {
	if _, err := ru.Sessions.FindById(ctx, sessionID); err != nil {
		return nil, err
	}

	failed, err := ru.Messages.ListFailedBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list failed messages: %w", err)
	}

	chosen := failed
	if len(req.MessageIDs) > 0 {
		wanted := make(map[string]bool, len(req.MessageIDs))
		for _, id := range req.MessageIDs {
			wanted[id] = true
		}
		chosen = chosen[:0]
		for i := range failed {
			if wanted[failed[i].ID] {
				chosen = append(chosen, failed[i])
			}
		}
	}

	report := &dto.RetryReport{}
	for i := range chosen {
		message := &chosen[i]

		patient, err := ru.Patients.FindById(ctx, message.PatientID)
		if err != nil {
			report.Skipped = append(report.Skipped, dto.SkippedMessage{
				MessageID: message.ID, Reason: "patient no longer exists",
			})
			continue
		}
		if patient.WhatsAppValidity != models.WhatsAppValid {
			report.Skipped = append(report.Skipped, dto.SkippedMessage{
				MessageID: message.ID,
				Reason:    fmt.Sprintf("patient WhatsApp validity is %q", patient.WhatsAppValidity),
			})
			continue
		}

		if err := ru.Messages.Requeue(ctx, message.ID); err != nil {
			report.Skipped = append(report.Skipped, dto.SkippedMessage{
				MessageID: message.ID, Reason: err.Error(),
			})
			continue
		}
		report.Requeued++
	}

	ru.Log.WithFields(logrus.Fields{
		"sessionId": sessionID,
		"requeued":  report.Requeued,
		"skipped":   len(report.Skipped),
	}).Info("[RETRY] - Bulk retry finished")

	return report, nil
}

func patientUnreachable(patient *models.Patient) bool {
	if patient == nil || patient.ID == 0 {
		return true
	}
	if patient.DeletedAt.Valid {
		return true
	}
	return patient.WhatsAppValidity != models.WhatsAppValid
}

func flattenGroups(byError map[string]*dto.FailureGroup) []dto.FailureGroup {
	out := make([]dto.FailureGroup, 0, len(byError))
	for _, group := range byError {
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ErrorMessage < out[j].ErrorMessage
	})
	return out
}
