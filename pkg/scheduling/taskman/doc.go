/*
Package taskman provides a cooperative worker-pool task scheduler with named
result pools and soft dependency ordering.

Callers submit named tasks; a fixed-size pool of workers executes them and
deposits each result into a named, appendable pool that later tasks or callers
can read. A task may declare it must run after another named task, and two
runtime policies control termination and ordering.

Basic usage:

	mgr := taskman.New(4)

	mgr.Add(taskman.Task{
		Name: "fetch",
		Run: func(ctx context.Context) (string, error) {
			return "payload", nil
		},
	})
	mgr.Add(taskman.Task{
		Name:  "parse",
		After: "fetch", // runs only once "fetch" is done
		Pool:  "parsed",
		Run: func(ctx context.Context) (string, error) {
			return "tree", nil
		},
	})

	mgr.Set(taskman.KillOnEmpty, true)
	mgr.Start()
	mgr.Join() // workers drain the queue and exit

	results := mgr.Pool("parsed") // map[0:"tree"]

Dependency resolution:

A task is eligible when its After name is empty or already in the done set.
By default the resolver rotates an ineligible head to the back of the queue so
unrelated ready work keeps flowing. With the InOrder policy set, the head is
never skipped and the queue blocks until that exact dependency completes. A
dependency naming a task that never runs livelocks; the scheduler does not
validate the dependency graph.

Lifecycle:

	Idle -> Running <-> Paused -> Stopping -> Stopped

Start spawns the workers once and a supervisor that joins them. Pause lets
in-flight tasks finish, Stop signals workers to exit after any in-flight task,
and Join blocks until the terminal Stopped state. With KillOnEmpty set,
workers exit on their own when the queue drains and Join returns without Stop
ever being called.

Failure semantics:

A task signals failure by returning a non-nil error. Failed tasks route to the
TaskFail hook instead of TaskStop, but are still marked done and still occupy
a result slot; there is no automatic retry. Panics inside a task are recovered
and reported as failures. A task that has begun running is never canceled.

Observability:

Five hooks (task start/stop/fail, worker start/stop) run synchronously on the
worker goroutine that triggers them. Wrap any Hooks in NewMetricsHooks for
Prometheus instrumentation, or set Config.Metrics for queue-side gauges.
*/
package taskman
