/*
Package operation runs imgcollect jobs end to end.

	+-------------+
	|  Operation  |
	|  (one job)  |
	+------+------+
	       |
	+------+------+
	|   Engine    |
	| (consolidate)|
	+------+------+
	       |
	+------+---------------+
	|                      |
	+----+-----+     +-----+-----+
	| Tracker  |     | Activity  |
	| (memory) |     | (sqlite)  |
	+----------+     +-----------+

🎯 Purpose:
- Opens the per-run log file under {data dir}/logs/image_merge
- Registers the job with the in-memory tracker
- Puts the activity recorder behind a queue so the merge loop never waits on SQLite
- Runs the consolidation engine and reports the outcome

🔄 Flow:
1. Collect opens collect_{YYYYMMDD_HHMMSS}.log and writes the config header
2. The tracker and the queued recorder are tee'd into one subscriber
3. The engine runs with that subscriber on its bus
4. The queue is drained; its first error fails the job too

⚡ Runner:
Runner executes any Operation either inline or on an errgroup goroutine.
The async mode returns as soon as the context is cancelled.

🔍 Example:

	op := &operation.CollectOperation{Options: operation.Options{
		Config:  cfg,
		DataDir: dataDir,
		Console: os.Stderr,
	}}
	if err := operation.NewRunner(false).Run(ctx, op); err != nil {
		return err
	}
	fmt.Println(op.Outcome.Result.Total)
*/
package operation
