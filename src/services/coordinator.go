// src/services/coordinator.go
package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/models"
)

// JobState tracks one submitted file through its lifecycle.
type JobState string

const (
	JobIdle           JobState = "Idle"
	JobSubmitting     JobState = "Submitting"
	JobAwaitingResult JobState = "AwaitingResult"
	JobSucceeded      JobState = "Succeeded"
	JobFailed         JobState = "Failed"
)

// PushEvent is one out-of-band notification from the extraction service,
// tagged with the correlation token it answers.
type PushEvent struct {
	Token  string             `json:"token"`
	Status string             `json:"status"` // "done" or "failed"
	Data   []models.RawRecord `json:"data,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// JobSnapshot is a point-in-time view of a tracked job for status reads.
type JobSnapshot struct {
	Token     string    `json:"token"`
	State     JobState  `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	Error     string    `json:"error,omitempty"`
}

type job struct {
	token     string
	state     JobState
	createdAt time.Time
	result    *StatementResult
	err       error
	done      chan struct{}
	timeout   *time.Timer
}

func (j *job) terminal() bool {
	return j.state == JobSucceeded || j.state == JobFailed
}

// StatementPersister stores the canonical statement after a successful job.
type StatementPersister interface {
	Save(slot string, statement *models.Statement) error
}

// Coordinator reconciles the two independent event channels of one
// submitted file: the local transfer outcome and the out-of-band push
// result. It is the only place where they meet; a job has exactly one
// terminal resolution, whichever event reaches it first.
type Coordinator struct {
	extractor   ExtractorClient
	statements  StatementService
	persister   StatementPersister
	slot        string
	waitTimeout time.Duration
	retention   time.Duration

	mu   sync.Mutex
	jobs map[string]*job
}

func NewCoordinator(
	extractor ExtractorClient,
	statements StatementService,
	persister StatementPersister,
	slot string,
	waitTimeout time.Duration,
	retention time.Duration,
) *Coordinator {
	return &Coordinator{
		extractor:   extractor,
		statements:  statements,
		persister:   persister,
		slot:        slot,
		waitTimeout: waitTimeout,
		retention:   retention,
		jobs:        make(map[string]*job),
	}
}

// Submit mints a correlation token, registers the job, and starts the
// transfer. The token is registered before any bytes move so a fast push
// event can never outrun its own job. The transfer itself runs detached
// from the caller's request.
func (c *Coordinator) Submit(filename, passCode string, file io.Reader) (string, error) {
	token := uuid.NewString()

	j := &job{
		token:     token,
		state:     JobSubmitting,
		createdAt: time.Now(),
		done:      make(chan struct{}),
	}

	c.mu.Lock()
	c.jobs[token] = j
	c.mu.Unlock()

	logger.L.Info("Job submitted", "token", token, "filename", filename)

	go c.transfer(j, filename, passCode, file)
	return token, nil
}

// transfer moves the file to the extraction service. Local transfer
// completion and external processing completion are independent events:
// a successful transfer only advances the job to AwaitingResult.
func (c *Coordinator) transfer(j *job, filename, passCode string, file io.Reader) {
	err := c.extractor.Submit(context.Background(), j.token, filename, passCode, file)

	c.mu.Lock()
	defer c.mu.Unlock()

	if j.terminal() {
		// A push event (or a failure) already resolved the job.
		return
	}

	if err != nil {
		c.failLocked(j, fmt.Errorf("%w: %v", ErrTransferFailure, err))
		return
	}

	j.state = JobAwaitingResult
	j.timeout = time.AfterFunc(c.waitTimeout, func() { c.expire(j.token) })
	logger.L.Info("Transfer complete, awaiting extraction result", "token", j.token)
}

// HandleEvent consumes one push notification. Events whose token does not
// match a tracked job are stale or duplicate deliveries, ignored without
// error; a second resolution for an already-terminal job is a no-op.
func (c *Coordinator) HandleEvent(event PushEvent) {
	c.mu.Lock()
	j, ok := c.jobs[event.Token]
	if !ok {
		c.mu.Unlock()
		logger.L.Debug("Ignoring push event for unknown token", "token", event.Token, "status", event.Status)
		return
	}
	if j.terminal() {
		c.mu.Unlock()
		logger.L.Debug("Ignoring push event for resolved job", "token", event.Token, "state", j.state)
		return
	}
	c.mu.Unlock()

	switch event.Status {
	case "done":
		// Normalization runs outside the lock; the terminal transition
		// re-checks under it.
		result, err := c.statements.Normalize(event.Data)

		c.mu.Lock()
		defer c.mu.Unlock()
		if j.terminal() {
			return
		}
		if err != nil {
			c.failLocked(j, fmt.Errorf("%w: %v", ErrExternalFailure, err))
			return
		}
		c.succeedLocked(j, result)

	case "failed":
		reason := event.Error
		if reason == "" {
			reason = "no reason given"
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if j.terminal() {
			return
		}
		c.failLocked(j, fmt.Errorf("%w: %s", ErrExternalFailure, reason))

	default:
		logger.L.Warn("Ignoring push event with unknown status", "token", event.Token, "status", event.Status)
	}
}

// Await blocks until the job resolves or ctx is cancelled. Cancellation
// abandons the wait only; the job itself keeps running and is reclaimed by
// the retention sweep.
func (c *Coordinator) Await(ctx context.Context, token string) (*StatementResult, error) {
	c.mu.Lock()
	j, ok := c.jobs[token]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, token)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-j.done:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if j.err != nil {
		return nil, j.err
	}
	return j.result, nil
}

// Snapshot returns the job's current state for polling callers.
func (c *Coordinator) Snapshot(token string) (JobSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	j, ok := c.jobs[token]
	if !ok {
		return JobSnapshot{}, fmt.Errorf("%w: %s", ErrJobNotFound, token)
	}

	snap := JobSnapshot{
		Token:     j.token,
		State:     j.state,
		CreatedAt: j.createdAt,
	}
	if j.err != nil {
		snap.Error = j.err.Error()
	}
	return snap, nil
}

// Release drops a job once its caller has consumed the terminal state.
// Tokens are never reused; a retry is a fresh Submit.
func (c *Coordinator) Release(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if j, ok := c.jobs[token]; ok {
		c.removeLocked(j)
	}
}

// expire resolves a job that exceeded the bounded wait. Timeout is a
// distinct failure reason from an explicit external failure.
func (c *Coordinator) expire(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	j, ok := c.jobs[token]
	if !ok || j.terminal() {
		return
	}
	c.failLocked(j, fmt.Errorf("%w after %s", ErrJobTimeout, c.waitTimeout))
}

func (c *Coordinator) succeedLocked(j *job, result *StatementResult) {
	j.state = JobSucceeded
	j.result = result
	c.resolveLocked(j)

	if c.persister != nil {
		if err := c.persister.Save(c.slot, result.Statement); err != nil {
			logger.L.Error("Failed to persist statement", "token", j.token, "error", err)
		}
	}
	logger.L.Info("Job succeeded", "token", j.token,
		"transactions", len(result.Statement.Transactions),
		"diagnostics", len(result.Diagnostics))
}

func (c *Coordinator) failLocked(j *job, err error) {
	j.state = JobFailed
	j.err = err
	c.resolveLocked(j)
	logger.L.Warn("Job failed", "token", j.token, "reason", err.Error())
}

func (c *Coordinator) resolveLocked(j *job) {
	if j.timeout != nil {
		j.timeout.Stop()
		j.timeout = nil
	}
	close(j.done)

	// Resolved jobs linger for the retention window so slow callers can
	// still read the outcome, then disappear with their token.
	token := j.token
	time.AfterFunc(c.retention, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if current, ok := c.jobs[token]; ok && current == j {
			c.removeLocked(current)
		}
	})
}

func (c *Coordinator) removeLocked(j *job) {
	if j.timeout != nil {
		j.timeout.Stop()
	}
	delete(c.jobs, j.token)
	logger.L.Debug("Job released", "token", j.token, "state", j.state)
}
