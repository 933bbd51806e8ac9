/*
Package taskmanager provides a cooperative worker-pool task scheduler for Go
applications: named tasks, soft dependency ordering, and named result pools.

Task Scheduling (pkg/scheduling):
  - taskman: the core scheduler — worker pool, dependency resolution,
    lifecycle control, runtime policies, and observability hooks
  - timed: time- and cron-based deferred submission

Storage (pkg/storage):
  - resultstore: named, appendable pools of results keyed by per-pool slot ids

Observability (pkg/metrics):
  - Prometheus registry and hook decorators for task/worker instrumentation

Example usage:

	import (
		"github.com/Shadow2ube/task-manager/pkg/scheduling/taskman"
	)

	mgr := taskman.New(4)
	mgr.Add(taskman.Task{Name: "fetch", Run: fetch})
	mgr.Add(taskman.Task{Name: "parse", After: "fetch", Run: parse})

	mgr.Set(taskman.KillOnEmpty, true)
	mgr.Start()
	mgr.Join()

	for slot, result := range mgr.Pool("parse") {
		fmt.Println(slot, result)
	}
*/
package taskmanager
