package types

import "fmt"

// Status is the workflow state of a Job. It only ever moves forward along
// the pipeline path, or sideways into StatusError from any non-terminal
// state. Nothing moves a job backward; retrying a step is a fresh
// invocation, not a rewind.
type Status string

const (
	StatusPending     Status = "pending"
	StatusScriptReady Status = "script_ready"
	StatusGenerating  Status = "generating"
	StatusFilesReady  Status = "files_ready"
	StatusUploading   Status = "uploading"
	StatusUploaded    Status = "uploaded"
	StatusError       Status = "error"
)

// statusRank orders the forward path. StatusError sits outside the path.
var statusRank = map[Status]int{
	StatusPending:     0,
	StatusScriptReady: 1,
	StatusGenerating:  2,
	StatusFilesReady:  3,
	StatusUploading:   4,
	StatusUploaded:    5,
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusUploaded
}

// CanAdvance reports whether a transition from s to next is legal.
func (s Status) CanAdvance(next Status) bool {
	if next == StatusError {
		return !s.Terminal()
	}
	if s == StatusError {
		// Recovery re-enters the path wherever the retried step lands.
		_, ok := statusRank[next]
		return ok
	}
	cur, ok := statusRank[s]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// Advance returns the job with its status moved to next, or an error when
// the transition would move backward.
func (j Job) Advance(next Status) (Job, error) {
	if !j.Status.CanAdvance(next) {
		return j, fmt.Errorf("illegal status transition %s -> %s", j.Status, next)
	}
	j.Status = next
	if next != StatusError {
		j.Error = ""
	}
	return j, nil
}

// Fail returns the job moved to StatusError carrying the failure message.
// Artifacts already recorded on the job are kept as-is.
func (j Job) Fail(err error) Job {
	j.Status = StatusError
	j.Error = err.Error()
	return j
}
