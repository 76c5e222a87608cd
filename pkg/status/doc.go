/*
Package status tracks imgcollect jobs in memory.

	            +-------------+
	            |   Tracker   |
	            |   (jobs)    |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+-----+
	|  Observe  |           |  Format  |
	| (events)  |           | (humans) |
	+-----------+           +----------+

🎯 Purpose:
- Registers a job per run, keyed by uuid
- Folds the run's bus events into live counts
- Marks jobs complete or failed when the run ends
- Renders jobs and per-file events for people

🔄 Flow:
1. Start registers a running job
2. Observe(id) is subscribed to the engine's bus (directly or through a tee)
3. Per-file events move the counts; complete replaces them with the final result
4. error, or Fail from the caller, marks the job failed

🤝 Interfaces:
- Formatter: renders jobs, per-file events and errors

📝 Notes:
The tracker never touches the filesystem. Snapshots returned by Get and
List are copies, so callers may keep them after the job moves on.
*/
package status
