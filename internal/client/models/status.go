package models

import (
	"fmt"
	"math"
)

// Phase is the discriminator of UploadStatus.
type Phase int

const (
	PhaseAwaitingInteraction Phase = iota
	PhaseInProgress
	PhaseSuccess
	PhaseFailed
)

var phaseCodes = map[Phase]string{
	PhaseAwaitingInteraction: "awaiting",
	PhaseInProgress:          "progress",
	PhaseSuccess:             "success",
	PhaseFailed:              "failed",
}

// String returns the code under which the phase is persisted.
func (p Phase) String() string {
	if s, ok := phaseCodes[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	for p, code := range phaseCodes {
		if code == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown upload phase %q", s)
}

// UploadStatus is the upload state of a page or of a document submission.
//
// Fraction is meaningful only for PhaseInProgress and is advisory: it is
// never used to decide whether two statuses are in the same phase. Cause is
// optional and only set for PhaseFailed.
type UploadStatus struct {
	Phase    Phase
	Fraction float64
	Cause    error
}

func AwaitingInteraction() UploadStatus {
	return UploadStatus{Phase: PhaseAwaitingInteraction}
}

// InProgress returns an in-flight status; fraction is clamped to [0, 1].
func InProgress(fraction float64) UploadStatus {
	switch {
	case math.IsNaN(fraction) || fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	return UploadStatus{Phase: PhaseInProgress, Fraction: fraction}
}

func Succeeded() UploadStatus {
	return UploadStatus{Phase: PhaseSuccess, Fraction: 1}
}

// Failed returns a failed status. cause may be nil.
func Failed(cause error) UploadStatus {
	return UploadStatus{Phase: PhaseFailed, Cause: cause}
}

// SamePhase reports whether s and o are in the same phase, ignoring
// fraction and cause.
func (s UploadStatus) SamePhase(o UploadStatus) bool {
	return s.Phase == o.Phase
}

// IsTerminal reports whether s is Success or Failed.
func (s UploadStatus) IsTerminal() bool {
	return s.Phase == PhaseSuccess || s.Phase == PhaseFailed
}

// IsActive reports whether s is AwaitingInteraction or InProgress.
func (s UploadStatus) IsActive() bool {
	return s.Phase == PhaseAwaitingInteraction || s.Phase == PhaseInProgress
}

func (s UploadStatus) String() string {
	switch s.Phase {
	case PhaseInProgress:
		return fmt.Sprintf("%s(%.0f%%)", s.Phase, s.Fraction*100)
	case PhaseFailed:
		if s.Cause != nil {
			return fmt.Sprintf("%s(%v)", s.Phase, s.Cause)
		}
	}
	return s.Phase.String()
}
