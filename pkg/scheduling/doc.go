/*
Package scheduling provides the task scheduling components of the
task-manager library.

  - taskman: the cooperative worker-pool scheduler with named result pools
    and soft dependency ordering
  - timed: time- and cron-based deferred submission into a taskman.Manager

Task manager:

	mgr := taskman.New(4)
	mgr.Add(taskman.Task{Name: "work", Run: work})
	mgr.Set(taskman.KillOnEmpty, true)
	mgr.Start()
	mgr.Join()

Timed submission:

	sched, _ := timed.New(mgr)
	sched.Start()
	defer func() { <-sched.Stop() }()

	sched.ScheduleAfter("warmup", task, time.Minute)
	sched.ScheduleCron("nightly", "0 0 2 * * *", task)

Both components are safe for concurrent use.
*/
package scheduling
