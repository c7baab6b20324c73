package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"go.uber.org/zap"

	"focus-planner/internal/model"
	"focus-planner/internal/repository"
)

// FocusPhase names a stage of the Pomodoro cycle.
type FocusPhase string

const (
	PhaseWork       FocusPhase = "work"
	PhaseShortBreak FocusPhase = "shortBreak"
	PhaseLongBreak  FocusPhase = "longBreak"
)

// Classic 25/5/15 Pomodoro timings, long break after every fourth block.
const (
	FocusWorkMinutes       = 25
	FocusShortBreakMinutes = 5
	FocusLongBreakMinutes  = 15
	focusCycleLength       = 4
)

// PhaseDuration returns how long a phase runs.
func PhaseDuration(p FocusPhase) time.Duration {
	switch p {
	case PhaseShortBreak:
		return FocusShortBreakMinutes * time.Minute
	case PhaseLongBreak:
		return FocusLongBreakMinutes * time.Minute
	default:
		return FocusWorkMinutes * time.Minute
	}
}

// NextPhase returns the phase following p. completedWork counts finished
// work blocks including the one that just ended.
func NextPhase(p FocusPhase, completedWork int) FocusPhase {
	if p != PhaseWork {
		return PhaseWork
	}
	if completedWork%focusCycleLength == 0 {
		return PhaseLongBreak
	}
	return PhaseShortBreak
}

type focusSession struct {
	phase         FocusPhase
	completedWork int
	endsAt        time.Time
	timer         *time.Timer
}

// FocusService runs per-chat Pomodoro timers. Finished work blocks are
// credited to the day's focus minutes.
type FocusService struct {
	productivity *repository.ProductivityRepository
	clk          clock.Clock
	log          *zap.SugaredLogger
	notify       func(chatID int64, text string)

	mu       sync.Mutex
	sessions map[int64]*focusSession
}

func NewFocusService(productivity *repository.ProductivityRepository, clk clock.Clock, log *zap.SugaredLogger) *FocusService {
	return &FocusService{
		productivity: productivity,
		clk:          clk,
		log:          log,
		notify:       func(int64, string) {},
		sessions:     make(map[int64]*focusSession),
	}
}

// SetNotify installs the callback used to push phase changes to a chat.
func (s *FocusService) SetNotify(fn func(chatID int64, text string)) {
	if fn != nil {
		s.notify = fn
	}
}

// Start begins a new focus session for the chat with a work phase.
func (s *FocusService) Start(chatID int64) (FocusPhase, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.sessions[chatID]; running {
		return "", 0, fmt.Errorf("a focus session is already running")
	}

	d := PhaseDuration(PhaseWork)
	session := &focusSession{
		phase:  PhaseWork,
		endsAt: s.clk.Now().Add(d),
	}
	session.timer = time.AfterFunc(d, func() { s.advance(chatID) })
	s.sessions[chatID] = session

	s.log.Infow("focus session started", "chat", chatID)
	return PhaseWork, d, nil
}

// Status reports the current phase and remaining time, if a session runs.
func (s *FocusService) Status(chatID int64) (FocusPhase, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[chatID]
	if !ok {
		return "", 0, false
	}
	remaining := session.endsAt.Sub(s.clk.Now())
	if remaining < 0 {
		remaining = 0
	}
	return session.phase, remaining, true
}

// Stop aborts the chat's session. An unfinished work block earns no
// credit, same as closing the timer mid-pomodoro.
func (s *FocusService) Stop(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[chatID]
	if !ok {
		return false
	}
	session.timer.Stop()
	delete(s.sessions, chatID)
	s.log.Infow("focus session stopped", "chat", chatID, "completed_blocks", session.completedWork)
	return true
}

// Shutdown stops every running session.
func (s *FocusService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for chatID, session := range s.sessions {
		session.timer.Stop()
		delete(s.sessions, chatID)
	}
}

func (s *FocusService) advance(chatID int64) {
	s.mu.Lock()
	session, ok := s.sessions[chatID]
	if !ok {
		s.mu.Unlock()
		return
	}

	if session.phase == PhaseWork {
		session.completedWork++
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		today := s.clk.Now().Format(model.DateLayout)
		if err := s.productivity.AddFocusMinutes(ctx, today, FocusWorkMinutes); err != nil {
			s.log.Warnw("failed to record focus minutes", "chat", chatID, "err", err)
		}
		cancel()
	}

	next := NextPhase(session.phase, session.completedWork)
	d := PhaseDuration(next)
	session.phase = next
	session.endsAt = s.clk.Now().Add(d)
	session.timer = time.AfterFunc(d, func() { s.advance(chatID) })
	completed := session.completedWork
	s.mu.Unlock()

	s.notify(chatID, phaseMessage(next, completed))
}

func phaseMessage(next FocusPhase, completedWork int) string {
	switch next {
	case PhaseShortBreak:
		return fmt.Sprintf("✅ Focus block done! Take a %d minute break.", FocusShortBreakMinutes)
	case PhaseLongBreak:
		return fmt.Sprintf("🏆 %d focus blocks in a row! You earned a %d minute long break.", completedWork, FocusLongBreakMinutes)
	default:
		return fmt.Sprintf("🍅 Break over, back to focus for %d minutes.", FocusWorkMinutes)
	}
}
