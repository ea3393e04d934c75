package dto

// ErrorCode is the machine-readable reason a dispatch was rejected.
type ErrorCode string

const (
	CodeQuotaExceeded          ErrorCode = "QUOTA_EXCEEDED"
	CodeAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"
	CodeNetworkFailure         ErrorCode = "NETWORK_FAILURE"
	CodeBrowserClosed          ErrorCode = "BROWSER_CLOSED"
	CodeSessionNotConnected    ErrorCode = "SESSION_NOT_CONNECTED"
	CodeModeratorIDRequired    ErrorCode = "MODERATOR_ID_REQUIRED"
	CodeWhatsAppValidation     ErrorCode = "WhatsAppValidationRequired"
)

// DispatchError rejects a dispatch with no persisted state.
type DispatchError struct {
	Code    ErrorCode `json:"error"`
	Message string    `json:"message"`
}

func (e *DispatchError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func NewDispatchError(code ErrorCode, message string) *DispatchError {
	return &DispatchError{Code: code, Message: message}
}

// DispatchRequest asks for one notification batch over a queue's patients.
// CorrelationID is optional; the engine generates one when absent, but
// callers that retry must supply their own to get idempotent replays.
type DispatchRequest struct {
	QueueID         uint   `json:"queueId" binding:"required"`
	TemplateID      uint   `json:"templateId" binding:"required"`
	PatientIDs      []uint `json:"patientIds"`
	OverrideContent string `json:"overrideContent,omitempty"`
	ModeratorID     uint   `json:"moderatorId,omitempty"`
	RequesterUserID uint   `json:"requesterUserId,omitempty"`
	CorrelationID   string `json:"correlationId,omitempty"`
}

type DispatchResult struct {
	Success       bool   `json:"success"`
	Queued        int    `json:"queued"`
	SessionID     string `json:"sessionId"`
	CorrelationID string `json:"correlationId"`
}
