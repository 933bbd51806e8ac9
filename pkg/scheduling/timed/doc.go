/*
Package timed submits tasks to a taskman.Manager at points in time.

It covers one-time delayed submission, fixed-interval repetition, and
six-field cron expressions (seconds included) via robfig/cron. The scheduler
only decides WHEN a task enters the queue; execution order and dependency
resolution remain the manager's job.

Basic usage:

	mgr := taskman.New(4)
	mgr.Start()

	sched, err := timed.New(mgr)
	if err != nil {
		log.Fatal(err)
	}
	sched.Start()
	defer func() { <-sched.Stop() }()

	task := taskman.Task{Name: "report", Run: buildReport}

	sched.Schedule("once", task, time.Now().Add(time.Minute))
	sched.ScheduleRepeating("poll", task, 30*time.Second)
	sched.ScheduleCron("nightly", "0 0 2 * * *", task)

Entries are identified by caller-chosen ids: scheduling a duplicate id fails,
Cancel removes one entry, CancelAll removes everything. List returns the
pending entries sorted by next run time.

The scheduler ticks at Config.TickInterval (default 50ms); an entry fires on
the first tick at or after its run time, so precision is bounded by the tick.
A submission rejected by the manager (for example after Stop) is dropped;
repeating and cron entries simply try again at their next occurrence.
*/
package timed
