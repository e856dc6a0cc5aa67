package service

import "sync/atomic"

// GenerationPhase describes the most recent generation request's
// progress. It is process-wide, not user-scoped; clients poll it to
// drive a loading indicator.
type GenerationPhase string

const (
	PhaseIdle       GenerationPhase = "idle"
	PhaseGenerating GenerationPhase = "generating"
	PhaseSearching  GenerationPhase = "searching"
	PhaseDone       GenerationPhase = "done"
)

// StatusService publishes the current generation phase with
// sequentially consistent visibility. Lifecycle: Begin at request
// start, Set at phase boundaries, Done at completion.
type StatusService struct {
	phase atomic.Value
}

func NewStatusService() *StatusService {
	s := &StatusService{}
	s.phase.Store(PhaseIdle)
	return s
}

func (s *StatusService) Begin() {
	s.phase.Store(PhaseGenerating)
}

func (s *StatusService) Set(phase GenerationPhase) {
	s.phase.Store(phase)
}

func (s *StatusService) Done() {
	s.phase.Store(PhaseDone)
}

func (s *StatusService) Current() GenerationPhase {
	return s.phase.Load().(GenerationPhase)
}
