// Package job runs one download end to end: metadata fetch, media download,
// sidecar emission.
package job

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"meetdl/internal/downloader"
	"meetdl/internal/meta"
	"meetdl/internal/model"
	"meetdl/internal/progress"
	"meetdl/internal/util"
)

const timestampLayout = "2006-01-02_15-04-05"

// Runner executes single jobs. Every exit path produces exactly one
// JobResult; errors never escape Run.
type Runner struct {
	Meta    *meta.Client
	Invoker *downloader.Invoker
	MaxName int // sanitized title length bound; 0 = util.DefaultMaxNameLen
}

// Run downloads one meeting recording. A metadata failure short-circuits
// before the downloader is touched; a sidecar write failure is reported but
// does not fail an otherwise successful download.
func (r *Runner) Run(ctx context.Context, in model.JobInput) model.JobResult {
	return r.run(ctx, in, "", nil)
}

// RunReported is Run with progress events delivered to rep under jobID.
func (r *Runner) RunReported(ctx context.Context, in model.JobInput, jobID string, rep progress.Reporter) model.JobResult {
	return r.run(ctx, in, jobID, rep)
}

func (r *Runner) run(ctx context.Context, in model.JobInput, jobID string, rep progress.Reporter) model.JobResult {
	start := time.Now()
	res := model.JobResult{Input: in}

	fail := func(err error) model.JobResult {
		res.Outcome = model.OutcomeFailed
		if ctx.Err() != nil {
			res.Outcome = model.OutcomeCancelled
		}
		res.Err = err
		res.Elapsed = time.Since(start)
		return res
	}

	meetingID, err := util.ExtractMeetingID(in.URL)
	if err != nil {
		return fail(err)
	}

	update(rep, jobID, progress.StageMetadata, -1, "Fetching meeting metadata")
	rec, err := r.Meta.FetchMeeting(ctx, meetingID, in.AuthToken)
	if err != nil {
		return fail(fmt.Errorf("metadata: %w", err))
	}

	destPath := filepath.Join(in.OutputDir, Basename(rec, r.MaxName)+".mp4")

	update(rep, jobID, progress.StageDownloading, -1, "Downloading "+rec.Title)
	stats, err := r.Invoker.Download(ctx, downloader.Request{
		ManifestURL: rec.ManifestURL,
		DestPath:    destPath,
		JobID:       jobID,
		Reporter:    rep,
	})
	if err != nil {
		return fail(fmt.Errorf("download: %w", err))
	}

	update(rep, jobID, progress.StageSidecar, -1, "Writing metadata sidecar")
	if _, werr := util.WriteSidecarFile(destPath, rec.Raw); werr != nil && rep != nil {
		rep.Log(progress.Log{
			JobID:  jobID,
			Stream: progress.StreamStderr,
			Line:   fmt.Sprintf("warning: failed to write sidecar: %v", werr),
		})
	}

	res.Outcome = model.OutcomeSuccess
	res.FilePath = destPath
	res.Bytes = stats.Bytes
	res.Elapsed = time.Since(start)
	return res
}

// Basename is the extension-less filename a meeting is saved under. The
// recordedAt timestamp plus the sanitized title keeps names unique within a
// batch; a missing recordedAt falls back to the current time.
func Basename(rec model.MeetingRecord, maxName int) string {
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	return recordedAt.Format(timestampLayout) + "_" + util.SanitizeFilename(rec.Title, maxName)
}

func update(rep progress.Reporter, jobID string, stage progress.Stage, pct float64, msg string) {
	if rep == nil {
		return
	}
	rep.Update(progress.Update{JobID: jobID, Stage: stage, Percent: pct, Message: msg})
}
