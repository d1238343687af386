package domain

import "encoding/json"

type EventKind string

const (
	EventKindStatus   EventKind = "status"
	EventKindProgress EventKind = "progress"
	EventKindIntake   EventKind = "intake"
)

// EventData is implemented by the fixed set of event payloads below.
type EventData interface {
	Kind() EventKind
	eventData()
}

type StatusEvent struct {
	Status     JobStatus `json:"status"`
	Mode       Mode      `json:"mode,omitempty"`
	OutputFile string    `json:"output_file,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func (StatusEvent) Kind() EventKind { return EventKindStatus }
func (StatusEvent) eventData()      {}

type ProgressEvent struct {
	Step string `json:"step"`
	Pct  int    `json:"pct"`
}

func (ProgressEvent) Kind() EventKind { return EventKindProgress }
func (ProgressEvent) eventData()      {}

type IntakeStatus string

const (
	IntakeAnalyzing IntakeStatus = "analyzing"
	IntakeDone      IntakeStatus = "done"
	IntakeFailed    IntakeStatus = "failed"
)

type IntakeEvent struct {
	Status   IntakeStatus `json:"status"`
	Filename string       `json:"filename"`
	Error    string       `json:"error,omitempty"`
}

func (IntakeEvent) Kind() EventKind { return EventKindIntake }
func (IntakeEvent) eventData()      {}

// Event is an ephemeral notification about one job.
type Event struct {
	JobID string
	Data  EventData
}

func (e Event) Kind() EventKind {
	if e.Data == nil {
		return ""
	}
	return e.Data.Kind()
}

// MarshalJSON flattens the payload next to job_id.
func (e Event) MarshalJSON() ([]byte, error) {
	id, err := json.Marshal(e.JobID)
	if err != nil {
		return nil, err
	}
	head := `{"job_id":` + string(id)
	if e.Data == nil {
		return []byte(head + "}"), nil
	}
	body, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	if len(body) <= 2 {
		return []byte(head + "}"), nil
	}
	out := make([]byte, 0, len(head)+len(body))
	out = append(out, head...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}
