package timed

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Shadow2ube/task-manager/pkg/common/validation"
	"github.com/Shadow2ube/task-manager/pkg/metrics"
	"github.com/Shadow2ube/task-manager/pkg/scheduling/taskman"
)

// Submitter accepts tasks for execution. *taskman.Manager satisfies it.
type Submitter interface {
	Add(t taskman.Task) (int64, error)
}

// Entry describes one scheduled submission.
type Entry struct {
	ID       string
	RunAt    time.Time
	Interval time.Duration // Zero for one-time entries
	Created  time.Time
}

// Scheduler submits tasks to a Submitter at points in time, with cron support.
type Scheduler interface {
	// Basic scheduling
	Schedule(id string, task taskman.Task, runAt time.Time) error
	ScheduleAfter(id string, task taskman.Task, delay time.Duration) error
	ScheduleRepeating(id string, task taskman.Task, interval time.Duration) error

	// Cron scheduling
	ScheduleCron(id string, cronExpr string, task taskman.Task) error

	// Entry management
	Cancel(id string) bool
	CancelAll()
	List() []Entry

	// Lifecycle
	Start() error
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	Submitter    Submitter      // Required
	Location     *time.Location // For cron scheduling (default: time.Local)
	TickInterval time.Duration  // How often to check for ready entries (default: 50ms)
	MaxEntries   int            // Maximum number of scheduled entries (default: 10000)
	Name         string         // Metrics label (default: "default")
	Metrics      *metrics.Registry
}

type entry struct {
	id           string
	task         taskman.Task
	runAt        time.Time
	interval     time.Duration
	cronSchedule cron.Schedule
	created      time.Time
}

type scheduler struct {
	submitter    Submitter
	location     *time.Location
	tickInterval time.Duration
	maxEntries   int
	name         string
	registry     *metrics.Registry
	cronParser   cron.Parser

	mu      sync.RWMutex
	entries map[string]*entry
	ticker  *time.Ticker
	done    chan struct{}
	running bool
}

// New creates a scheduler submitting to the given Submitter with defaults.
func New(sub Submitter) (Scheduler, error) {
	return NewWithConfig(Config{Submitter: sub})
}

// NewWithConfig creates a scheduler with custom configuration.
func NewWithConfig(cfg Config) (Scheduler, error) {
	if cfg.Submitter == nil {
		return nil, fmt.Errorf("submitter cannot be nil")
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = 50 * time.Millisecond
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	name := cfg.Name
	if name == "" {
		name = "default"
	}

	return &scheduler{
		submitter:    cfg.Submitter,
		location:     location,
		tickInterval: tickInterval,
		maxEntries:   maxEntries,
		name:         name,
		registry:     cfg.Metrics,
		cronParser:   cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		entries:      make(map[string]*entry),
		done:         make(chan struct{}),
	}, nil
}

// validateEntry checks the common argument rules for every Schedule variant.
func (s *scheduler) validateEntry(id string, task taskman.Task) error {
	if err := validation.ValidateNotEmpty("timed", "id", id); err != nil {
		return err
	}
	if err := validation.ValidateMaxLength("timed", "id", id, 255); err != nil {
		return err
	}
	if task.Run == nil {
		return fmt.Errorf("task %q has no function", id)
	}
	return nil
}

// insert adds an entry under the lock, enforcing uniqueness and capacity.
func (s *scheduler) insert(e *entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.id]; exists {
		return fmt.Errorf("entry with ID %q already exists, use a different ID or cancel the existing entry first", e.id)
	}
	if len(s.entries) >= s.maxEntries {
		return fmt.Errorf("cannot schedule entry: maximum number of entries (%d) reached", s.maxEntries)
	}

	s.entries[e.id] = e
	return nil
}

func (s *scheduler) Schedule(id string, task taskman.Task, runAt time.Time) error {
	if err := s.validateEntry(id, task); err != nil {
		return err
	}
	if runAt.IsZero() {
		return fmt.Errorf("entry run time cannot be zero")
	}

	return s.insert(&entry{
		id:      id,
		task:    task,
		runAt:   runAt,
		created: time.Now(),
	})
}

func (s *scheduler) ScheduleAfter(id string, task taskman.Task, delay time.Duration) error {
	return s.Schedule(id, task, time.Now().Add(delay))
}

func (s *scheduler) ScheduleRepeating(id string, task taskman.Task, interval time.Duration) error {
	if err := s.validateEntry(id, task); err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", interval)
	}

	return s.insert(&entry{
		id:       id,
		task:     task,
		runAt:    time.Now(),
		interval: interval,
		created:  time.Now(),
	})
}

func (s *scheduler) ScheduleCron(id string, cronExpr string, task taskman.Task) error {
	if err := s.validateEntry(id, task); err != nil {
		return err
	}
	if cronExpr == "" {
		return fmt.Errorf("cron expression cannot be empty")
	}

	schedule, err := s.cronParser.Parse(cronExpr)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	now := time.Now().In(s.location)
	return s.insert(&entry{
		id:           id,
		task:         task,
		runAt:        schedule.Next(now),
		cronSchedule: schedule,
		created:      time.Now(),
	})
}

func (s *scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		delete(s.entries, id)
		return true
	}
	return false
}

func (s *scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
}

func (s *scheduler) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, Entry{
			ID:       e.id,
			RunAt:    e.runAt,
			Interval: e.interval,
			Created:  e.created,
		})
	}

	// Sort by run time
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RunAt.Before(entries[j].RunAt)
	})

	return entries
}

func (s *scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running, call Stop() first")
	}

	s.running = true
	s.ticker = time.NewTicker(s.tickInterval)

	go s.run()
	return nil
}

func (s *scheduler) Stop() <-chan struct{} {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.done)
		if s.ticker != nil {
			s.ticker.Stop()
		}
	}
	s.mu.Unlock()

	stopped := make(chan struct{})
	close(stopped)
	return stopped
}

func (s *scheduler) run() {
	defer func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
	}()

	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.submitReady()
		}
	}
}

// submitReady hands every due entry to the Submitter. Rescheduling happens
// under the lock; submission happens outside it, since Add may block briefly.
func (s *scheduler) submitReady() {
	now := time.Now()

	s.mu.Lock()
	if len(s.entries) == 0 {
		s.mu.Unlock()
		return
	}

	ready := make([]*entry, 0, len(s.entries))
	for id, e := range s.entries {
		if now.Before(e.runAt) {
			continue
		}
		ready = append(ready, e)

		switch {
		case e.interval > 0:
			e.runAt = now.Add(e.interval)
		case e.cronSchedule != nil:
			e.runAt = e.cronSchedule.Next(now.In(s.location))
		default:
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, e := range ready {
		if _, err := s.submitter.Add(e.task); err != nil {
			// Submission failed (e.g. the manager stopped); keep processing
			// the remaining entries.
			continue
		}
		if s.registry != nil {
			s.registry.TimedSubmissions.WithLabelValues(s.name).Inc()
		}
	}
}
