package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/dto"
	"github.com/sirupsen/logrus"
)

// ReceiptDispatchEventUseCase handles a dispatch request arriving as a
// queue event instead of an HTTP call. The payload is the same contract;
// a missing correlation id is filled in by the dispatcher, so redelivered
// events must carry their own to stay idempotent.
type ReceiptDispatchEventUseCase struct {
	Dispatcher *DispatchBatchUseCase
	Log        *logrus.Logger
}

func NewReceiptDispatchEventUseCase(dispatcher *DispatchBatchUseCase, log *logrus.Logger) *ReceiptDispatchEventUseCase {
	return &ReceiptDispatchEventUseCase{Dispatcher: dispatcher, Log: log}
}

func (ru *ReceiptDispatchEventUseCase) Execute(ctx context.Context, event string) error {
	var req dto.DispatchRequest
	if err := json.Unmarshal([]byte(event), &req); err != nil {
		return fmt.Errorf("unmarshal dispatch event: %w", err)
	}

	result, err := ru.Dispatcher.Execute(ctx, &req)
	if err != nil {
		var rejection *dto.DispatchError
		if errors.As(err, &rejection) {
			// A rejected dispatch is a terminal outcome for the event,
			// not a redelivery candidate.
			ru.Log.WithFields(logrus.Fields{
				"queueId": req.QueueID,
				"code":    rejection.Code,
			}).Warnf("[EVENT] - Dispatch rejected: %s", rejection.Message)
			return nil
		}
		return err
	}

	ru.Log.WithFields(logrus.Fields{
		"sessionId": result.SessionID,
		"queued":    result.Queued,
	}).Info("[EVENT] - Dispatch event processed")
	return nil
}
