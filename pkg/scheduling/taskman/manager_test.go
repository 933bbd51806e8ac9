package taskman

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Shadow2ube/task-manager/internal/testutil"
	tmerrors "github.com/Shadow2ube/task-manager/pkg/common/errors"
	"github.com/Shadow2ube/task-manager/pkg/storage/resultstore"
)

// value returns a task function that immediately succeeds with s.
func value(s string) TaskFunc {
	return func(_ context.Context) (string, error) {
		return s, nil
	}
}

func TestNewDefaults(t *testing.T) {
	m, err := NewWithConfig(Config{})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, m.cfg.Workers, DefaultWorkers)
	testutil.AssertEqual(t, m.cfg.IdleInterval, DefaultIdleInterval)
	testutil.AssertEqual(t, m.State(), StateIdle)

	<-m.Stop()
}

func TestNewPanicsOnNegativeWorkers(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic")
		}
	}()
	New(-1)
}

func TestNewWithConfigRejectsBadValues(t *testing.T) {
	_, err := NewWithConfig(Config{Workers: -2})
	testutil.AssertError(t, err)
	if !errors.Is(err, tmerrors.ErrInvalidConfiguration) {
		t.Errorf("want ErrInvalidConfiguration, got %v", err)
	}

	_, err = NewWithConfig(Config{IdleInterval: -time.Second})
	testutil.AssertError(t, err)
}

func TestRunToCompletionWithDependency(t *testing.T) {
	m := New(2)
	m.Set(KillOnEmpty, true)

	_, err := m.Add(Task{Name: "A", Pool: "p", Run: value("alpha")})
	testutil.AssertNoError(t, err)
	_, err = m.Add(Task{Name: "B", Pool: "p", After: "A", Run: value("beta")})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, m.Start())
	m.Join()

	// Both tasks are done, in dependency order.
	names := m.Tasks()
	testutil.AssertEqual(t, len(names), 2)
	testutil.AssertEqual(t, names[0], "A")
	testutil.AssertEqual(t, names[1], "B")

	// Published order matches completion order: slot 0 is A, slot 1 is B.
	pool := m.Pool("p")
	testutil.AssertEqual(t, len(pool), 2)
	testutil.AssertEqual(t, pool[0], "alpha")
	testutil.AssertEqual(t, pool[1], "beta")

	testutil.AssertEqual(t, m.State(), StateStopped)
}

func TestTaskIDsAssignedOnAdd(t *testing.T) {
	m := New(1)
	defer func() { <-m.Stop() }()

	first, err := m.Add(Task{Name: "a", Run: value("")})
	testutil.AssertNoError(t, err)
	second, err := m.Add(Task{Name: "a", Run: value("")})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, first, int64(1))
	testutil.AssertEqual(t, second, int64(2))
}

func TestConcurrentAddAssignsUniqueIDs(t *testing.T) {
	m := New(1)
	defer func() { <-m.Stop() }()

	const adders = 8
	const perAdder = 25

	ids := make(chan int64, adders*perAdder)
	var wg sync.WaitGroup
	for i := 0; i < adders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perAdder; j++ {
				id, err := m.Add(Task{Name: "t", Run: value("")})
				if err != nil {
					t.Errorf("Add failed: %v", err)
					return
				}
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	testutil.AssertEqual(t, len(seen), adders*perAdder)
}

func TestFailedTaskStillPublishes(t *testing.T) {
	errBoom := errors.New("boom")

	var failCount, stopCount int32
	var failedErr error
	var mu sync.Mutex

	m, err := NewWithConfig(Config{
		Workers:     1,
		KillOnEmpty: true,
		Hooks: HookFuncs{
			OnTaskFail: func(_ *Task, _ int, err error) {
				atomic.AddInt32(&failCount, 1)
				mu.Lock()
				failedErr = err
				mu.Unlock()
			},
			OnTaskStop: func(_ *Task, _ int) {
				atomic.AddInt32(&stopCount, 1)
			},
		},
	})
	testutil.AssertNoError(t, err)

	m.Add(Task{Name: "doomed", Run: func(_ context.Context) (string, error) {
		return "partial", errBoom
	}})

	testutil.AssertNoError(t, m.Start())
	m.Join()

	// The fail hook fires exactly once with the task's error; the stop hook
	// is not invoked for a failed task.
	testutil.AssertEqual(t, atomic.LoadInt32(&failCount), int32(1))
	testutil.AssertEqual(t, atomic.LoadInt32(&stopCount), int32(0))
	mu.Lock()
	if !errors.Is(failedErr, errBoom) {
		t.Errorf("fail hook got %v, want %v", failedErr, errBoom)
	}
	mu.Unlock()

	// The task is still done and its result still occupies a slot.
	names := m.Tasks()
	testutil.AssertEqual(t, len(names), 1)
	testutil.AssertEqual(t, names[0], "doomed")
	testutil.AssertEqual(t, m.Pool("doomed")[0], "partial")
}

func TestPanickingTaskIsFailure(t *testing.T) {
	var failCount int32

	m, err := NewWithConfig(Config{
		Workers:     1,
		KillOnEmpty: true,
		Hooks: HookFuncs{
			OnTaskFail: func(_ *Task, _ int, _ error) {
				atomic.AddInt32(&failCount, 1)
			},
		},
	})
	testutil.AssertNoError(t, err)

	m.Add(Task{Name: "explode", Run: func(_ context.Context) (string, error) {
		panic("kaboom")
	}})

	testutil.AssertNoError(t, m.Start())
	m.Join()

	testutil.AssertEqual(t, atomic.LoadInt32(&failCount), int32(1))
	testutil.AssertEqual(t, len(m.Pool("explode")), 1)
}

func TestKillOnEmptyDrainsAndJoins(t *testing.T) {
	var workerStops int32

	m, err := NewWithConfig(Config{
		Workers:     3,
		KillOnEmpty: true,
		Hooks: HookFuncs{
			OnWorkerStop: func(_ int) { atomic.AddInt32(&workerStops, 1) },
		},
	})
	testutil.AssertNoError(t, err)

	var executed int32
	for i := 0; i < 6; i++ {
		m.Add(Task{Name: fmt.Sprintf("t%d", i), Run: func(_ context.Context) (string, error) {
			atomic.AddInt32(&executed, 1)
			return "", nil
		}})
	}

	testutil.AssertNoError(t, m.Start())

	// Join returns without Stop ever being called.
	m.Join()

	testutil.AssertEqual(t, atomic.LoadInt32(&executed), int32(6))
	testutil.AssertEqual(t, atomic.LoadInt32(&workerStops), int32(3))
	testutil.AssertEqual(t, m.State(), StateStopped)
}

func TestWorkersStayAliveWithoutKillOnEmpty(t *testing.T) {
	var workerStarts, workerStops int32

	m, err := NewWithConfig(Config{
		Workers:      2,
		IdleInterval: 5 * time.Millisecond,
		Hooks: HookFuncs{
			OnWorkerStart: func(_ int) { atomic.AddInt32(&workerStarts, 1) },
			OnWorkerStop:  func(_ int) { atomic.AddInt32(&workerStops, 1) },
		},
	})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, m.Start())
	testutil.WaitForInt32(t, &workerStarts, 2, time.Second)

	// The queue is empty but workers keep idling.
	time.Sleep(50 * time.Millisecond)
	testutil.AssertEqual(t, atomic.LoadInt32(&workerStops), int32(0))
	testutil.AssertEqual(t, m.State(), StateRunning)

	// Work submitted later is still picked up.
	var executed int32
	m.Add(Task{Name: "late", Run: func(_ context.Context) (string, error) {
		atomic.AddInt32(&executed, 1)
		return "ok", nil
	}})
	testutil.WaitForInt32(t, &executed, 1, time.Second)

	<-m.Stop()
	testutil.AssertEqual(t, atomic.LoadInt32(&workerStops), int32(2))
}

func TestPauseHaltsConsumption(t *testing.T) {
	var executed int32

	m, err := NewWithConfig(Config{
		Workers:      2,
		IdleInterval: 5 * time.Millisecond,
	})
	testutil.AssertNoError(t, err)
	defer func() { <-m.Stop() }()

	testutil.AssertNoError(t, m.Start())

	m.Add(Task{Name: "first", Run: func(_ context.Context) (string, error) {
		atomic.AddInt32(&executed, 1)
		return "", nil
	}})
	testutil.WaitForInt32(t, &executed, 1, time.Second)

	m.Pause()
	testutil.AssertEqual(t, m.State(), StatePaused)

	// Let workers already past the pause check settle into the paused wait.
	time.Sleep(30 * time.Millisecond)

	// Tasks added while paused are queued but not consumed.
	m.Add(Task{Name: "held", Run: func(_ context.Context) (string, error) {
		atomic.AddInt32(&executed, 1)
		return "", nil
	}})
	time.Sleep(50 * time.Millisecond)
	testutil.AssertEqual(t, atomic.LoadInt32(&executed), int32(1))
	testutil.AssertEqual(t, m.IsDone(), false)

	// Start resumes the same workers.
	testutil.AssertNoError(t, m.Start())
	testutil.WaitForInt32(t, &executed, 2, time.Second)
}

func TestStopWhilePaused(t *testing.T) {
	m, err := NewWithConfig(Config{Workers: 2, IdleInterval: 5 * time.Millisecond})
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, m.Start())
	m.Pause()
	time.Sleep(30 * time.Millisecond)

	m.Add(Task{Name: "never", Run: value("")})

	<-m.Stop()
	testutil.AssertEqual(t, m.State(), StateStopped)
	// The queued task was never consumed.
	testutil.AssertEqual(t, m.IsDone(), false)
	testutil.AssertEqual(t, len(m.Pool("never")), 0)
}

func TestInFlightTaskFinishesAcrossPause(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var finished int32

	m, err := NewWithConfig(Config{Workers: 1, IdleInterval: 5 * time.Millisecond})
	testutil.AssertNoError(t, err)
	defer func() { <-m.Stop() }()

	m.Add(Task{Name: "slow", Run: func(_ context.Context) (string, error) {
		close(started)
		<-release
		atomic.AddInt32(&finished, 1)
		return "done", nil
	}})

	testutil.AssertNoError(t, m.Start())
	<-started

	// Pausing mid-execution does not interrupt the task.
	m.Pause()
	close(release)
	testutil.WaitForInt32(t, &finished, 1, time.Second)
	testutil.Eventually(t, func() bool {
		return len(m.Pool("slow")) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestAddAfterStopFailsLoudly(t *testing.T) {
	m := New(1)
	<-m.Stop()

	id, err := m.Add(Task{Name: "late", Run: value("")})
	testutil.AssertError(t, err)
	testutil.AssertEqual(t, id, int64(0))
	if !errors.Is(err, tmerrors.ErrStopped) {
		t.Errorf("want ErrStopped, got %v", err)
	}
}

func TestAddNilFunc(t *testing.T) {
	m := New(1)
	defer func() { <-m.Stop() }()

	_, err := m.Add(Task{Name: "empty"})
	testutil.AssertError(t, err)
	if !errors.Is(err, tmerrors.ErrNilTask) {
		t.Errorf("want ErrNilTask, got %v", err)
	}
}

func TestStartAfterStop(t *testing.T) {
	m := New(1)
	<-m.Stop()

	err := m.Start()
	testutil.AssertError(t, err)
	if !errors.Is(err, tmerrors.ErrStopped) {
		t.Errorf("want ErrStopped, got %v", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(2)
	testutil.AssertNoError(t, m.Start())

	first := m.Stop()
	second := m.Stop()
	<-first
	<-second
	testutil.AssertEqual(t, m.State(), StateStopped)
}

func TestIsDoneSnapshot(t *testing.T) {
	m := New(1)
	testutil.AssertEqual(t, m.IsDone(), true)

	m.Add(Task{Name: "queued", Run: value("")})
	testutil.AssertEqual(t, m.IsDone(), false)

	m.Set(KillOnEmpty, true)
	testutil.AssertNoError(t, m.Start())
	m.Join()
	testutil.AssertEqual(t, m.IsDone(), true)
}

func TestTasksListsDoneThenPending(t *testing.T) {
	m := New(1)

	m.Add(Task{Name: "a", Run: value("")})
	m.Add(Task{Name: "b", After: "a", Run: value("")})

	// Nothing has run: both names are pending, in queue order.
	names := m.Tasks()
	testutil.AssertEqual(t, len(names), 2)
	testutil.AssertEqual(t, names[0], "a")
	testutil.AssertEqual(t, names[1], "b")

	m.Set(KillOnEmpty, true)
	testutil.AssertNoError(t, m.Start())
	m.Join()

	// Everything ran: names now appear in completion order.
	names = m.Tasks()
	testutil.AssertEqual(t, len(names), 2)
	testutil.AssertEqual(t, names[0], "a")
	testutil.AssertEqual(t, names[1], "b")
}

func TestReentrantAdd(t *testing.T) {
	m, err := NewWithConfig(Config{Workers: 1, KillOnEmpty: true})
	testutil.AssertNoError(t, err)

	var childRan int32
	m.Add(Task{Name: "parent", Run: func(_ context.Context) (string, error) {
		// A running task may submit new work.
		_, err := m.Add(Task{Name: "child", Run: func(_ context.Context) (string, error) {
			atomic.AddInt32(&childRan, 1)
			return "child-result", nil
		}})
		if err != nil {
			return "", err
		}
		return "spawned", nil
	}})

	testutil.AssertNoError(t, m.Start())
	m.Join()

	testutil.AssertEqual(t, atomic.LoadInt32(&childRan), int32(1))
	testutil.AssertEqual(t, m.Pool("child")[0], "child-result")
}

func TestRotationUnblocksWhenDependencyArrives(t *testing.T) {
	m, err := NewWithConfig(Config{Workers: 1, IdleInterval: 5 * time.Millisecond})
	testutil.AssertNoError(t, err)

	m.Add(Task{Name: "waiter", After: "unblock", Pool: "out", Run: value("late")})
	m.Add(Task{Name: "free", Pool: "out", Run: value("early")})

	testutil.AssertNoError(t, m.Start())

	// The free task completes while the waiter rotates.
	testutil.Eventually(t, func() bool {
		return len(m.Pool("out")) == 1
	}, time.Second, 5*time.Millisecond)
	testutil.AssertEqual(t, m.Pool("out")[0], "early")

	// Completing the named dependency releases the waiter.
	m.Add(Task{Name: "unblock", Run: value("")})
	testutil.Eventually(t, func() bool {
		return len(m.Pool("out")) == 2
	}, time.Second, 5*time.Millisecond)
	testutil.AssertEqual(t, m.Pool("out")[1], "late")

	<-m.Stop()
}

func TestInOrderNeverRunsDependentEarly(t *testing.T) {
	release := make(chan struct{})
	var aFinished, cStarted, bStartedAfterA int32

	m, err := NewWithConfig(Config{
		Workers:      2,
		InOrder:      true,
		IdleInterval: 5 * time.Millisecond,
		Hooks: HookFuncs{
			OnTaskStart: func(task *Task, _ int) {
				switch task.Name {
				case "B":
					if atomic.LoadInt32(&aFinished) == 1 {
						atomic.AddInt32(&bStartedAfterA, 1)
					}
				case "C":
					atomic.AddInt32(&cStarted, 1)
				}
			},
		},
	})
	testutil.AssertNoError(t, err)

	m.Add(Task{Name: "A", Run: func(_ context.Context) (string, error) {
		<-release
		atomic.StoreInt32(&aFinished, 1)
		return "a", nil
	}})
	m.Add(Task{Name: "B", After: "A", Run: value("b")})
	m.Add(Task{Name: "C", Run: value("c")})

	testutil.AssertNoError(t, m.Start())

	// While A runs, B blocks the head of the queue and C is held behind it
	// even though a worker is free.
	time.Sleep(50 * time.Millisecond)
	testutil.AssertEqual(t, atomic.LoadInt32(&cStarted), int32(0))

	close(release)
	m.Set(KillOnEmpty, true)
	m.Join()

	// B only ever started after A completed; C eventually ran too.
	testutil.AssertEqual(t, atomic.LoadInt32(&bStartedAfterA), int32(1))
	testutil.AssertEqual(t, atomic.LoadInt32(&cStarted), int32(1))
}

func TestPolicyChangeTakesEffectAtNextDecision(t *testing.T) {
	m, err := NewWithConfig(Config{Workers: 2, IdleInterval: 5 * time.Millisecond})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, m.Start())
	time.Sleep(20 * time.Millisecond)
	testutil.AssertEqual(t, m.State(), StateRunning)

	// Flipping KillOnEmpty at runtime drains the idle pool.
	m.Set(KillOnEmpty, true)
	testutil.AssertEqual(t, m.Get(KillOnEmpty), true)
	m.Join()
	testutil.AssertEqual(t, m.State(), StateStopped)
}

func TestWorkerHooksFireOncePerWorker(t *testing.T) {
	var starts, stops int32

	m, err := NewWithConfig(Config{
		Workers:     4,
		KillOnEmpty: true,
		Hooks: HookFuncs{
			OnWorkerStart: func(_ int) { atomic.AddInt32(&starts, 1) },
			OnWorkerStop:  func(_ int) { atomic.AddInt32(&stops, 1) },
		},
	})
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, m.Start())
	m.Join()

	testutil.AssertEqual(t, atomic.LoadInt32(&starts), int32(4))
	testutil.AssertEqual(t, atomic.LoadInt32(&stops), int32(4))
}

func TestTargetPoolDefaultsToTaskName(t *testing.T) {
	m, err := NewWithConfig(Config{Workers: 1, KillOnEmpty: true})
	testutil.AssertNoError(t, err)

	m.Add(Task{Name: "named", Run: value("x")})
	m.Add(Task{Name: "routed", Pool: "elsewhere", Run: value("y")})

	testutil.AssertNoError(t, m.Start())
	m.Join()

	testutil.AssertEqual(t, m.Pool("named")[0], "x")
	testutil.AssertEqual(t, m.Pool("elsewhere")[0], "y")
	testutil.AssertEqual(t, len(m.Pool("routed")), 0)
}

func TestClearPoolLeavesOthersUntouched(t *testing.T) {
	m, err := NewWithConfig(Config{Workers: 1, KillOnEmpty: true})
	testutil.AssertNoError(t, err)

	m.Add(Task{Name: "a", Pool: "p", Run: value("1")})
	m.Add(Task{Name: "b", Pool: "q", Run: value("2")})

	testutil.AssertNoError(t, m.Start())
	m.Join()

	m.ClearPool("p")
	testutil.AssertEqual(t, len(m.Pool("p")), 0)
	testutil.AssertEqual(t, m.Pool("q")[0], "2")
}

func TestStatsSnapshot(t *testing.T) {
	m, err := NewWithConfig(Config{Workers: 2, KillOnEmpty: true})
	testutil.AssertNoError(t, err)

	for i := 0; i < 5; i++ {
		m.Add(Task{Name: "t", Run: value("")})
	}

	stats := m.Stats()
	testutil.AssertEqual(t, stats.Workers, 2)
	testutil.AssertEqual(t, stats.Queued, 5)
	testutil.AssertEqual(t, stats.Submitted, int64(5))

	testutil.AssertNoError(t, m.Start())
	m.Join()

	stats = m.Stats()
	testutil.AssertEqual(t, stats.Queued, 0)
	testutil.AssertEqual(t, stats.Done, 5)
	testutil.AssertEqual(t, stats.Completed, int64(5))
	testutil.AssertEqual(t, stats.State, StateStopped)
}

func TestJoinWithoutStartBlocksUntilStop(t *testing.T) {
	m := New(1)

	joined := make(chan struct{})
	go func() {
		m.Join()
		close(joined)
	}()

	select {
	case <-joined:
		t.Fatal("Join returned before Stop")
	case <-time.After(30 * time.Millisecond):
	}

	m.Stop()
	select {
	case <-joined:
	case <-time.After(time.Second):
		t.Fatal("Join did not return after Stop")
	}
}

func TestSharedStoreOutlivesManager(t *testing.T) {
	store := resultstore.New()

	m, err := NewWithConfig(Config{Workers: 1, KillOnEmpty: true, Store: store})
	testutil.AssertNoError(t, err)

	m.Add(Task{Name: "persist", Run: value("kept")})
	testutil.AssertNoError(t, m.Start())
	m.Join()

	// The pool is readable from the store after the manager stopped.
	testutil.AssertEqual(t, store.Pool("persist")[0], "kept")
}
