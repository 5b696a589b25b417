package sync

import (
	"context"

	"github.com/chroniclebot/chronicle/internal/domain"
)

// Job adapts one (config, message) sync to the worker pool's Job interface.
type Job struct {
	executor *Executor
	cfg      domain.SyncConfig
	msg      *domain.MessageSnapshot
}

// NewJob creates a pool job that syncs one message for one config. The
// config is copied so the job stays valid after the triggering event returns.
func NewJob(executor *Executor, cfg domain.SyncConfig, msg *domain.MessageSnapshot) *Job {
	return &Job{executor: executor, cfg: cfg, msg: msg}
}

// Process runs the sync pipeline
func (j *Job) Process(ctx context.Context) error {
	_, err := j.executor.Execute(ctx, &j.cfg, j.msg)
	return err
}
