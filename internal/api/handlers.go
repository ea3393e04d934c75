package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/dto"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/repositories"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/usecase"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	Dispatcher *usecase.DispatchBatchUseCase
	Pauser     *usecase.PauseUseCase
	Retrier    *usecase.RetryFailedUseCase
	Canceller  *usecase.CancelSessionUseCase
	Sessions   repositories.SessionRepositoryInterface
	Messages   repositories.MessageRepositoryInterface
}

func NewHandler(
	dispatcher *usecase.DispatchBatchUseCase,
	pauser *usecase.PauseUseCase,
	retrier *usecase.RetryFailedUseCase,
	canceller *usecase.CancelSessionUseCase,
	sessions repositories.SessionRepositoryInterface,
	messages repositories.MessageRepositoryInterface,
) *Handler {
	return &Handler{
		Dispatcher: dispatcher,
		Pauser:     pauser,
		Retrier:    retrier,
		Canceller:  canceller,
		Sessions:   sessions,
		Messages:   messages,
	}
}

type pauseRequest struct {
	Reason      models.PauseReason `json:"reason,omitempty"`
	ActorUserID uint               `json:"actorUserId,omitempty"`
}

func (pr *pauseRequest) reason() models.PauseReason {
	if pr.Reason == "" {
		return models.PauseManual
	}
	return pr.Reason
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Dispatch(c *gin.Context) {
	var req dto.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "INVALID_REQUEST", "message": err.Error()})
		return
	}

	result, err := h.Dispatcher.Execute(c.Request.Context(), &req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.Sessions.FindById(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) ListQueueSessions(c *gin.Context) {
	queueID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	sessions, err := h.Sessions.ListByQueue(c.Request.Context(), queueID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sessions})
}

func (h *Handler) PauseSession(c *gin.Context) {
	var req pauseRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.Pauser.PauseSession(c.Request.Context(), c.Param("id"), req.reason(), req.ActorUserID); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ResumeSession(c *gin.Context) {
	if err := h.Pauser.ResumeSession(c.Request.Context(), c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) CancelSession(c *gin.Context) {
	cancelled, err := h.Canceller.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "cancelledMessages": cancelled})
}

func (h *Handler) SessionFailures(c *gin.Context) {
	report, err := h.Retrier.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) RetrySession(c *gin.Context) {
	var req dto.RetryRequest
	_ = c.ShouldBindJSON(&req)

	report, err := h.Retrier.Execute(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) PauseMessage(c *gin.Context) {
	var req pauseRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.Pauser.PauseMessage(c.Request.Context(), c.Param("id"), req.reason(), req.ActorUserID); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ResumeMessage(c *gin.Context) {
	if err := h.Pauser.ResumeMessage(c.Request.Context(), c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) PauseChannel(c *gin.Context) {
	moderatorID, ok := uintParam(c, "moderatorId")
	if !ok {
		return
	}
	var req pauseRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.Pauser.PauseChannel(c.Request.Context(), moderatorID, req.reason(), req.ActorUserID); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ResumeChannel(c *gin.Context) {
	moderatorID, ok := uintParam(c, "moderatorId")
	if !ok {
		return
	}
	if err := h.Pauser.ResumeChannel(c.Request.Context(), moderatorID); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) renderError(c *gin.Context, err error) {
	var rejection *dto.DispatchError
	if errors.As(err, &rejection) {
		c.JSON(statusForCode(rejection.Code), gin.H{
			"success": false,
			"error":   rejection.Code,
			"message": rejection.Message,
		})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "NOT_FOUND", "message": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "INTERNAL", "message": err.Error()})
}

func statusForCode(code dto.ErrorCode) int {
	switch code {
	case dto.CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case dto.CodeAuthenticationRequired, dto.CodeNetworkFailure, dto.CodeBrowserClosed, dto.CodeSessionNotConnected:
		return http.StatusConflict
	case dto.CodeModeratorIDRequired, dto.CodeWhatsAppValidation:
		return http.StatusBadRequest
	}
	return http.StatusBadRequest
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "INVALID_REQUEST", "message": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
