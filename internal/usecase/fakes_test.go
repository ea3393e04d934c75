package usecase

import (
	"context"
	"time"

	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/application/dto"
	"github.com/Abdullah-Elkholy/Clinics-Management-System-sub002/internal/domain/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for every repository interface, so
// the usecases run against real state transitions without a database.
type fakeStore struct {
	queues     map[uint]*models.Queue
	patients   map[uint]*models.Patient
	templates  map[uint]*models.MessageTemplate
	conditions []models.MessageCondition
	channels   map[uint]*models.Channel
	sessions   map[string]*models.MessageSession
	messages   map[string]*models.Message
	receipts   map[string]*models.DispatchReceipt
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		queues:    map[uint]*models.Queue{},
		patients:  map[uint]*models.Patient{},
		templates: map[uint]*models.MessageTemplate{},
		channels:  map[uint]*models.Channel{},
		sessions:  map[string]*models.MessageSession{},
		messages:  map[string]*models.Message{},
		receipts:  map[string]*models.DispatchReceipt{},
	}
}

func (f *fakeStore) FindById(ctx context.Context, id uint) (*models.Queue, error) {
	if q, ok := f.queues[id]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePatients struct{ store *fakeStore }

func (f *fakePatients) FindById(ctx context.Context, id uint) (*models.Patient, error) {
	if p, ok := f.store.patients[id]; ok && !p.DeletedAt.Valid {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePatients) FindByIds(ctx context.Context, queueID uint, ids []uint) ([]models.Patient, error) {
	var out []models.Patient
	for _, id := range ids {
		if p, ok := f.store.patients[id]; ok && p.QueueID == queueID && !p.DeletedAt.Valid {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeTemplates struct{ store *fakeStore }

func (f *fakeTemplates) FindById(ctx context.Context, id uint) (*models.MessageTemplate, error) {
	if t, ok := f.store.templates[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTemplates) FindByIds(ctx context.Context, ids []uint) ([]models.MessageTemplate, error) {
	var out []models.MessageTemplate
	for _, id := range ids {
		if t, ok := f.store.templates[id]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

type fakeConditions struct{ store *fakeStore }

func (f *fakeConditions) ListByQueue(ctx context.Context, queueID uint) ([]models.MessageCondition, error) {
	var out []models.MessageCondition
	for _, c := range f.store.conditions {
		if c.QueueID == queueID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeChannels struct {
	store        *fakeStore
	clearedPause []uint
}

func (f *fakeChannels) Get(ctx context.Context, moderatorID uint) (*models.Channel, error) {
	if c, ok := f.store.channels[moderatorID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeChannels) Pause(ctx context.Context, moderatorID uint, reason models.PauseReason, actor uint) error {
	c, ok := f.store.channels[moderatorID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	c.IsPaused = true
	c.PauseReason = &reason
	c.PausedAt = &now
	c.PausedBy = &actor
	return nil
}

func (f *fakeChannels) ClearPause(ctx context.Context, moderatorID uint) error {
	c, ok := f.store.channels[moderatorID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.IsPaused = false
	c.PauseReason = nil
	c.PausedAt = nil
	c.PausedBy = nil
	f.clearedPause = append(f.clearedPause, moderatorID)
	return nil
}

func (f *fakeChannels) HasActiveWork(ctx context.Context, moderatorID uint) (bool, error) {
	for _, m := range f.store.messages {
		session, ok := f.store.sessions[m.SessionID]
		if !ok || session.ModeratorID != moderatorID {
			continue
		}
		if m.Pending() {
			return true, nil
		}
	}
	return false, nil
}

type fakeSessions struct{ store *fakeStore }

func (f *fakeSessions) CreateBatch(ctx context.Context, session *models.MessageSession, messages []models.Message, receipt *models.DispatchReceipt) error {
	if _, exists := f.store.receipts[receipt.CorrelationID]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.store.sessions[session.ID] = session
	for i := range messages {
		m := messages[i]
		f.store.messages[m.ID] = &m
	}
	f.store.receipts[receipt.CorrelationID] = receipt
	return nil
}

func (f *fakeSessions) FindById(ctx context.Context, id string) (*models.MessageSession, error) {
	if s, ok := f.store.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSessions) ListByQueue(ctx context.Context, queueID uint) ([]models.MessageSession, error) {
	var out []models.MessageSession
	for _, s := range f.store.sessions {
		if s.QueueID == queueID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessions) Pause(ctx context.Context, id string, reason models.PauseReason, actor uint) error {
	s, ok := f.store.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	s.IsPaused = true
	s.PauseReason = &reason
	s.PausedAt = &now
	s.PausedBy = &actor
	s.Status = models.SessionPaused
	return nil
}

func (f *fakeSessions) Resume(ctx context.Context, id string) error {
	s, ok := f.store.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.IsPaused = false
	s.PauseReason = nil
	s.PausedAt = nil
	s.PausedBy = nil
	s.Status = models.SessionActive
	return nil
}

func (f *fakeSessions) Cancel(ctx context.Context, id string) (int64, error) {
	s, ok := f.store.sessions[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	var cancelled int64
	for _, m := range f.store.messages {
		if m.SessionID == id && m.Pending() {
			m.Status = models.MessageFailed
			reason := "session cancelled"
			m.ErrorMessage = &reason
			cancelled++
		}
	}
	s.Status = models.SessionCancelled
	s.FailedMessages += int(cancelled)
	s.OngoingMessages = 0
	return cancelled, nil
}

type fakeMessages struct{ store *fakeStore }

func (f *fakeMessages) FindById(ctx context.Context, id string) (*models.Message, error) {
	if m, ok := f.store.messages[id]; ok {
		return m, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMessages) ListFailedBySession(ctx context.Context, sessionID string) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.store.messages {
		if m.SessionID == sessionID && m.Status == models.MessageFailed {
			msg := *m
			if p, ok := f.store.patients[m.PatientID]; ok {
				msg.Patient = *p
			}
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessages) ListDispatchable(ctx context.Context, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range f.store.messages {
		if m.Status != models.MessageQueued {
			continue
		}
		session := f.store.sessions[m.SessionID]
		var channel *models.Channel
		if session != nil {
			channel = f.store.channels[session.ModeratorID]
		}
		if !models.EffectivePause(channel, session, m) {
			out = append(out, *m)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeMessages) Pause(ctx context.Context, id string, reason models.PauseReason, actor uint) error {
	m, ok := f.store.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	m.IsPaused = true
	m.PauseReason = &reason
	m.PausedAt = &now
	m.PausedBy = &actor
	if m.Status == models.MessageSending {
		m.Status = models.MessageQueued
	}
	return nil
}

func (f *fakeMessages) Resume(ctx context.Context, id string) error {
	m, ok := f.store.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.IsPaused = false
	m.PauseReason = nil
	m.PausedAt = nil
	m.PausedBy = nil
	return nil
}

func (f *fakeMessages) Requeue(ctx context.Context, id string) error {
	m, ok := f.store.messages[id]
	if !ok || m.Status != models.MessageFailed {
		return gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	m.Status = models.MessageQueued
	m.IsPaused = false
	m.PauseReason = nil
	m.ErrorMessage = nil
	m.LastAttemptAt = &now
	if s, ok := f.store.sessions[m.SessionID]; ok {
		s.FailedMessages--
		s.OngoingMessages++
		s.Status = models.SessionActive
	}
	return nil
}

func (f *fakeMessages) MarkSending(ctx context.Context, id string) error {
	m, ok := f.store.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now().UTC()
	m.Status = models.MessageSending
	m.Attempts++
	m.LastAttemptAt = &now
	return nil
}

func (f *fakeMessages) MarkSent(ctx context.Context, id string) error {
	m, ok := f.store.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Status = models.MessageSent
	if s, ok := f.store.sessions[m.SessionID]; ok {
		s.SentMessages++
		s.OngoingMessages--
	}
	return nil
}

func (f *fakeMessages) MarkFailed(ctx context.Context, id string, errorMessage string) error {
	m, ok := f.store.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Status = models.MessageFailed
	m.ErrorMessage = &errorMessage
	if s, ok := f.store.sessions[m.SessionID]; ok {
		s.FailedMessages++
		s.OngoingMessages--
	}
	return nil
}

type fakeReceipts struct{ store *fakeStore }

func (f *fakeReceipts) FindByCorrelation(ctx context.Context, correlationID string) (*models.DispatchReceipt, error) {
	if r, ok := f.store.receipts[correlationID]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReceipts) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

type fakeQuota struct {
	available int
	calls     int
}

func (f *fakeQuota) HasQuota(ctx context.Context, userID uint, count int) (bool, error) {
	f.calls++
	return f.available >= count, nil
}

type fakeModerators struct{ moderatorID uint }

func (f *fakeModerators) EffectiveModeratorID(ctx context.Context, userID uint) (uint, error) {
	return f.moderatorID, nil
}

type fakeRenderer struct{}

func (fakeRenderer) Resolve(templateContent string, patient *models.Patient, queue *models.Queue, calculatedPosition int) string {
	return templateContent
}

type fakeCache struct {
	entries map[string]*dto.DispatchResult
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*dto.DispatchResult{}}
}

func (f *fakeCache) Get(ctx context.Context, correlationID string) (*dto.DispatchResult, bool) {
	r, ok := f.entries[correlationID]
	return r, ok
}

func (f *fakeCache) Set(ctx context.Context, correlationID string, result *dto.DispatchResult) {
	f.entries[correlationID] = result
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// newDispatcher assembles a DispatchBatchUseCase over the fake store with
// a connected channel and generous quota.
func newDispatcher(store *fakeStore) (*DispatchBatchUseCase, *fakeChannels, *fakeQuota) {
	channels := &fakeChannels{store: store}
	quota := &fakeQuota{available: 1000}
	dispatcher := NewDispatchBatchUseCase(
		store,
		&fakePatients{store: store},
		&fakeTemplates{store: store},
		&fakeConditions{store: store},
		&fakeSessions{store: store},
		channels,
		&fakeReceipts{store: store},
		quota,
		&fakeModerators{moderatorID: 7},
		fakeRenderer{},
		newFakeCache(),
		nil,
		time.Hour,
		testLogger(),
	)
	return dispatcher, channels, quota
}
