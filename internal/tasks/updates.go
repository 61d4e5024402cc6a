package tasks

import (
	"fmt"

	"github.com/desertthunder/songsmith/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CreateProject Phase = iota
	Melody
	Instrumental
	MixMaster
	Video
	FullSong
	UploadVoice
	Export
)

func (p Phase) String() string {
	switch p {
	case CreateProject:
		return "create_project"
	case Melody:
		return "melody"
	case Instrumental:
		return "instrumental"
	case MixMaster:
		return "mix"
	case Video:
		return "video"
	case FullSong:
		return "full"
	case UploadVoice:
		return "upload_voice"
	case Export:
		return "export"
	default:
		return ""
	}
}

// Percent converts Step/Total to a 0..1 fraction.
func (u ProgressUpdate) Percent() float64 {
	if u.Total <= 0 {
		return 0
	}
	return float64(u.Step) / float64(u.Total)
}

func statusUpdate(phase Phase, status string) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: 0, Total: 100, Message: status}
}

func jobUpdate(phase Phase, job *models.Job) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    int(job.Progress),
		Total:   100,
		Message: job.StatusLine(),
		Data:    job,
	}
}

func doneUpdate(phase Phase, status string, bundle models.ResultBundle) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: 100, Total: 100, Message: status, Data: bundle}
}

func failedUpdate(phase Phase, err error) ProgressUpdate {
	return ProgressUpdate{Phase: phase, Step: 0, Total: 100, Message: err.Error(), Data: err}
}

func downloadingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Export,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading: %s...", step, total, name),
	}
}

func downloadCompletedUpdate(step, total int, name string, size int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Export,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d bytes)", step, total, name, size),
	}
}

func downloadFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Export,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
