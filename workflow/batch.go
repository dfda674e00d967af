package workflow

import (
	"context"
	"log"

	"storycast/types"
)

// BatchEntry is the outcome for one job inside a batch run.
type BatchEntry struct {
	JobID  string       `json:"job_id"`
	Status types.Status `json:"status"`
	NoOp   bool         `json:"no_op"`
	Error  string       `json:"error,omitempty"`
}

// BatchReport aggregates a whole batch run.
type BatchReport struct {
	Entries   []BatchEntry `json:"entries"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// RunBatch drives each job through script generation (when still pending)
// and file generation, strictly one job at a time in input order. A job
// landing in error never stops the loop; the report carries its failure.
func (r *Runner) RunBatch(ctx context.Context, jobIDs []string) BatchReport {
	var report BatchReport
	for _, id := range jobIDs {
		entry := r.runOne(ctx, id)
		if entry.Error == "" {
			report.Succeeded++
		} else {
			report.Failed++
		}
		report.Entries = append(report.Entries, entry)
	}
	log.Printf("[workflow] Batch done: %d succeeded, %d failed", report.Succeeded, report.Failed)
	return report
}

func (r *Runner) runOne(ctx context.Context, jobID string) BatchEntry {
	entry := BatchEntry{JobID: jobID}

	job, err := r.deps.Jobs.Get(jobID)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}

	if job.Status == types.StatusPending {
		job, err = r.GenerateScript(ctx, jobID)
		if err != nil {
			entry.Status = job.Status
			entry.Error = err.Error()
			return entry
		}
	}

	res, err := r.GenerateFiles(ctx, jobID)
	entry.Status = res.Job.Status
	entry.NoOp = res.NoOp
	if err != nil {
		entry.Error = err.Error()
	}
	return entry
}
