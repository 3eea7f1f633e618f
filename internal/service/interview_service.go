package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sfinx/internal/domain"
	"sfinx/internal/interview"
	"sfinx/internal/repository"
)

var (
	// ErrWrongStage indica que la operacion no aplica en la etapa actual.
	ErrWrongStage = errors.New("operation not allowed at current stage")
	// ErrFollowupTextRequired se devuelve cuando la repregunta llega vacia.
	ErrFollowupTextRequired = errors.New("followup text is required")
)

// InterviewSettings es la configuracion comun a todas las entrevistas.
type InterviewSettings struct {
	Script            interview.Script
	Timebox           time.Duration
	UnproductiveLimit int
	Weight            interview.WeightFunc
}

// InterviewRepositories agrupa la persistencia opcional; un campo nil desactiva esa parte.
type InterviewRepositories struct {
	Interviews   repository.InterviewRepository
	Messages     repository.MessageRepository
	Observations repository.ObservationRepository
	Archive      repository.ArchiveRepository
}

// InterviewService orquesta los eventos de cada entrevista sobre su Session.
// Cada sesion tiene un unico escritor: las operaciones sobre el mismo id se serializan.
type InterviewService struct {
	logger   *zap.Logger
	store    SessionStore
	judge    Judge
	settings InterviewSettings
	repos    InterviewRepositories
	now      func() time.Time
	locks    *sessionLocks
}

func NewInterviewService(
	logger *zap.Logger,
	store SessionStore,
	judge Judge,
	settings InterviewSettings,
	repos InterviewRepositories,
) *InterviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InterviewService{
		logger:   logger,
		store:    store,
		judge:    judge,
		settings: settings,
		repos:    repos,
		now:      func() time.Time { return time.Now().UTC() },
		locks:    newSessionLocks(),
	}
}

// Start crea la sesion de una entrevista nueva en idle.
func (s *InterviewService) Start(ctx context.Context, candidateName string) (LiveInterview, error) {
	sess, err := interview.NewSession(interview.Config{
		CandidateName:     candidateName,
		Script:            s.settings.Script,
		Timebox:           s.settings.Timebox,
		UnproductiveLimit: s.settings.UnproductiveLimit,
		Weight:            s.settings.Weight,
	})
	if err != nil {
		return LiveInterview{}, fmt.Errorf("new session: %w", err)
	}

	now := s.now()
	live := LiveInterview{
		ID:            uuid.NewString(),
		CandidateName: strings.TrimSpace(candidateName),
		Session:       *sess,
		CreatedAt:     now,
	}

	if s.repos.Interviews != nil {
		record := domain.Interview{
			ID:            live.ID,
			CandidateName: live.CandidateName,
			Stage:         string(sess.Stage()),
			TimeboxMs:     s.settings.Timebox.Milliseconds(),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repos.Interviews.Create(ctx, record); err != nil {
			return LiveInterview{}, fmt.Errorf("create interview: %w", err)
		}
	}

	if err := s.store.Save(ctx, live); err != nil {
		return LiveInterview{}, fmt.Errorf("save session: %w", err)
	}
	s.logger.Info("interview started", zap.String("interview_id", live.ID))
	return live, nil
}

// AssistantFinalized aplica una frase final del asistente.
func (s *InterviewService) AssistantFinalized(ctx context.Context, id, text string) (interview.Outcome, LiveInterview, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	live, err := s.load(ctx, id)
	if err != nil {
		return interview.OutcomeIgnored, LiveInterview{}, err
	}

	before := live.Session.Stage()
	expected := live.Session.Machine.Expectations()
	outcome, err := live.Session.OnAssistantUtteranceFinalized(text, s.now())
	if err != nil {
		s.logger.Error("assistant utterance rejected", zap.Error(err), zap.String("interview_id", id))
		return outcome, live, err
	}

	switch outcome {
	case interview.OutcomeMismatch:
		// el guion se desvio: distinto de "todavia no le toca"
		fields := []zap.Field{
			zap.String("interview_id", id),
			zap.String("stage", string(before)),
			zap.String("got", strings.TrimSpace(text)),
		}
		for _, e := range expected {
			fields = append(fields, zap.String("expected_"+string(e.Next), e.Utterance))
		}
		s.logger.Warn("assistant utterance drifted from script", fields...)
	case interview.OutcomeIgnored:
		s.logger.Debug("assistant utterance not expected at stage", zap.String("interview_id", id), zap.String("stage", string(before)))
	case interview.OutcomeAdvanced:
		switch live.Session.Stage() {
		case interview.StageBackgroundAsked, interview.StageFollowupAsked:
			live.LastQuestion = strings.TrimSpace(text)
			live.LastAnswer = ""
		}
	}

	s.appendTranscript(ctx, live, domain.RoleAssistant, text, outcome)
	if err := s.store.Save(ctx, live); err != nil {
		return outcome, live, fmt.Errorf("save session: %w", err)
	}
	if before == interview.StageBackgroundAnswered && live.Session.Stage() == interview.StageCodingSession {
		// el guard cerro la fase antes de aceptar la repregunta
		s.afterDecision(ctx, live, interview.Decision{Stage: live.Session.Stage(), ExitReason: live.Session.ExitReason()})
	} else if live.Session.Stage() != before {
		s.syncRecord(ctx, live, nil)
	}
	return outcome, live, nil
}

// UserFinalized aplica el fin de turno del candidato. El texto solo se guarda para el juez.
func (s *InterviewService) UserFinalized(ctx context.Context, id, text string) (interview.Outcome, LiveInterview, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	live, err := s.load(ctx, id)
	if err != nil {
		return interview.OutcomeIgnored, LiveInterview{}, err
	}

	outcome := live.Session.OnUserUtteranceFinalized()
	if outcome == interview.OutcomeAdvanced && live.Session.Stage() == interview.StageBackgroundAnswered {
		live.LastAnswer = strings.TrimSpace(text)
	}

	s.appendTranscript(ctx, live, domain.RoleUser, text, outcome)
	if err := s.store.Save(ctx, live); err != nil {
		return outcome, live, fmt.Errorf("save session: %w", err)
	}
	if outcome == interview.OutcomeAdvanced {
		s.syncRecord(ctx, live, nil)
	}
	return outcome, live, nil
}

// ExpectFollowup registra la repregunta que el asistente dira a continuacion.
func (s *InterviewService) ExpectFollowup(ctx context.Context, id, text string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	live, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if live.Session.Stage() != interview.StageBackgroundAnswered {
		return fmt.Errorf("expect followup at %s: %w", live.Session.Stage(), ErrWrongStage)
	}
	if strings.TrimSpace(text) == "" {
		return ErrFollowupTextRequired
	}
	live.Session.ExpectFollowup(text)
	return s.store.Save(ctx, live)
}

// Evaluate juzga el ultimo turno y decide si la fase de background termina.
// Un juez caido se trata como turno sin evidencia.
func (s *InterviewService) Evaluate(ctx context.Context, id string) (interview.Decision, LiveInterview, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	live, err := s.load(ctx, id)
	if err != nil {
		return interview.Decision{}, LiveInterview{}, err
	}
	if live.Session.Stage() != interview.StageBackgroundAnswered {
		return interview.Decision{Stage: live.Session.Stage()}, live, interview.ErrNotAtDecisionPoint
	}
	if live.Session.Machine.AnswerEvaluated {
		return interview.Decision{Stage: live.Session.Stage()}, live, interview.ErrAnswerEvaluated
	}

	result, err := s.judge.Evaluate(ctx, live.LastQuestion, live.LastAnswer)
	if err != nil {
		s.logger.Warn("judge failed, counting turn as unproductive", zap.Error(err), zap.String("interview_id", id))
		result = interview.JudgeResult{}
	}

	now := s.now()
	decision, err := live.Session.RecordEvaluation(result, live.LastAnswer, now)
	if err != nil {
		return decision, live, err
	}
	s.persistObservations(ctx, live, decision.Observations, now)

	if err := s.store.Save(ctx, live); err != nil {
		return decision, live, fmt.Errorf("save session: %w", err)
	}
	s.afterDecision(ctx, live, decision)
	return decision, live, nil
}

// Tick es un punto de decision sin evidencia nueva: el timebox se muestrea, no se agenda.
func (s *InterviewService) Tick(ctx context.Context, id string) (interview.Decision, LiveInterview, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	live, err := s.load(ctx, id)
	if err != nil {
		return interview.Decision{}, LiveInterview{}, err
	}
	decision, err := live.Session.Decide(s.now())
	if err != nil {
		return decision, live, err
	}
	if err := s.store.Save(ctx, live); err != nil {
		return decision, live, fmt.Errorf("save session: %w", err)
	}
	s.afterDecision(ctx, live, decision)
	return decision, live, nil
}

// End termina la entrevista y archiva la foto final.
func (s *InterviewService) End(ctx context.Context, id string) (LiveInterview, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	live, err := s.load(ctx, id)
	if err != nil {
		return LiveInterview{}, err
	}
	live.Session.End()
	if err := s.store.Save(ctx, live); err != nil {
		return live, fmt.Errorf("save session: %w", err)
	}
	now := s.now()
	s.syncRecord(ctx, live, &now)
	s.archive(ctx, live)
	s.logger.Info("interview ended", zap.String("interview_id", id))
	return live, nil
}

// Reset vuelve la entrevista a idle con guard y scorer nuevos, conservando candidato y guion.
func (s *InterviewService) Reset(ctx context.Context, id string) (LiveInterview, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	live, err := s.load(ctx, id)
	if err != nil {
		return LiveInterview{}, err
	}
	script := live.Session.Script
	live.Session.Reset()
	if err := live.Session.Configure(live.CandidateName, script); err != nil {
		return live, fmt.Errorf("reconfigure session: %w", err)
	}
	live.LastQuestion = ""
	live.LastAnswer = ""

	if err := s.store.Save(ctx, live); err != nil {
		return live, fmt.Errorf("save session: %w", err)
	}
	s.syncRecord(ctx, live, nil)
	s.logger.Info("interview reset", zap.String("interview_id", id))
	return live, nil
}

// Snapshot devuelve la proyeccion de solo lectura para telemetria.
func (s *InterviewService) Snapshot(ctx context.Context, id string) (interview.SessionSnapshot, error) {
	live, err := s.load(ctx, id)
	if err != nil {
		return interview.SessionSnapshot{}, err
	}
	return live.Session.Snapshot(s.now()), nil
}

func (s *InterviewService) load(ctx context.Context, id string) (LiveInterview, error) {
	live, err := s.store.Get(ctx, id)
	if err != nil {
		return LiveInterview{}, err
	}
	live.Session.SetWeightFunc(s.settings.Weight)
	return live, nil
}

func (s *InterviewService) afterDecision(ctx context.Context, live LiveInterview, decision interview.Decision) {
	if !decision.Exited() {
		return
	}
	s.logger.Info("background phase exited",
		zap.String("interview_id", live.ID),
		zap.String("exit_reason", string(decision.ExitReason)),
		zap.Int("turns", live.Session.Turns),
	)
	s.syncRecord(ctx, live, nil)
	s.archive(ctx, live)
}

func (s *InterviewService) appendTranscript(ctx context.Context, live LiveInterview, role, text string, outcome interview.Outcome) {
	if s.repos.Messages == nil {
		return
	}
	msg := domain.Message{
		ID:          uuid.NewString(),
		InterviewID: live.ID,
		Role:        role,
		Content:     text,
		Stage:       string(live.Session.Stage()),
		Outcome:     string(outcome),
		CreatedAt:   s.now(),
	}
	if err := s.repos.Messages.Create(ctx, msg); err != nil {
		s.logger.Warn("transcript append failed", zap.Error(err), zap.String("interview_id", live.ID))
	}
}

func (s *InterviewService) persistObservations(ctx context.Context, live LiveInterview, observations []interview.TraitObservation, now time.Time) {
	if s.repos.Observations == nil || len(observations) == 0 {
		return
	}
	records := make([]domain.Observation, 0, len(observations))
	for _, o := range observations {
		records = append(records, domain.Observation{
			ID:               uuid.NewString(),
			InterviewID:      live.ID,
			Turn:             live.Session.Turns,
			Trait:            o.Trait.String(),
			NormalizedRating: o.NormalizedRating,
			Weight:           o.Weight,
			CreatedAt:        now,
		})
	}
	if err := s.repos.Observations.InsertBatch(ctx, records); err != nil {
		s.logger.Warn("observation insert failed", zap.Error(err), zap.String("interview_id", live.ID))
	}
}

func (s *InterviewService) syncRecord(ctx context.Context, live LiveInterview, endedAt *time.Time) {
	if s.repos.Interviews == nil {
		return
	}
	record := domain.Interview{
		ID:            live.ID,
		CandidateName: live.CandidateName,
		Stage:         string(live.Session.Stage()),
		ExitReason:    string(live.Session.ExitReason()),
		TimeboxMs:     live.Session.Guard.Timebox.Milliseconds(),
		EndedAt:       endedAt,
		CreatedAt:     live.CreatedAt,
		UpdatedAt:     s.now(),
	}
	if live.Session.Guard.TimerStarted() {
		started := live.Session.Guard.StartedAt
		record.StartedAt = &started
	}
	if err := s.repos.Interviews.UpdateProgress(ctx, record); err != nil {
		s.logger.Warn("interview progress update failed", zap.Error(err), zap.String("interview_id", live.ID))
	}
}

func (s *InterviewService) archive(ctx context.Context, live LiveInterview) {
	if s.repos.Archive == nil {
		return
	}
	now := s.now()
	snapshot, err := json.Marshal(live.Session.Snapshot(now))
	if err != nil {
		s.logger.Warn("snapshot marshal failed", zap.Error(err), zap.String("interview_id", live.ID))
		return
	}
	archive := domain.ArchivedInterview{
		InterviewID: live.ID,
		Stage:       string(live.Session.Stage()),
		ExitReason:  string(live.Session.ExitReason()),
		Snapshot:    snapshot,
		ArchivedAt:  now,
	}
	if err := s.repos.Archive.Save(ctx, archive); err != nil {
		s.logger.Warn("archive save failed", zap.Error(err), zap.String("interview_id", live.ID))
	}
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// sessionLocks serializa las operaciones por id y libera la entrada cuando nadie la usa.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*lockEntry)}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &lockEntry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
