package projection

import "github.com/matzehuels/blueprint/pkg/model"

// Icon names a status glyph.
type Icon string

const (
	IconTime    Icon = "time"
	IconSync    Icon = "sync"
	IconCheck   Icon = "check"
	IconWarning Icon = "warning"
)

// IconFor maps a status to its icon. Failed and Cancelled share one.
func IconFor(s model.Status) Icon {
	switch s {
	case model.StatusReady:
		return IconTime
	case model.StatusRunning:
		return IconSync
	case model.StatusDone:
		return IconCheck
	case model.StatusFailed, model.StatusCancelled:
		return IconWarning
	}
	return ""
}

// Glyph returns a single-character rendering for terminals.
func (i Icon) Glyph() string {
	switch i {
	case IconTime:
		return "◷"
	case IconSync:
		return "↻"
	case IconCheck:
		return "✓"
	case IconWarning:
		return "!"
	}
	return " "
}

// Summary counts jobs per status.
type Summary struct {
	Total     int `json:"total"`
	Ready     int `json:"ready"`
	Running   int `json:"running"`
	Done      int `json:"done"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// Summarize counts jobs per status. Jobs with an unknown status only
// count towards Total.
func Summarize(jobs []model.Job) Summary {
	var s Summary
	for _, j := range jobs {
		s.Total++
		switch j.Status {
		case model.StatusReady:
			s.Ready++
		case model.StatusRunning:
			s.Running++
		case model.StatusDone:
			s.Done++
		case model.StatusFailed:
			s.Failed++
		case model.StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// Finished reports whether every job reached a terminal status.
func (s Summary) Finished() bool {
	return s.Total > 0 && s.Done+s.Failed+s.Cancelled == s.Total
}
