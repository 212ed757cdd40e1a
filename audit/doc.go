// Package audit runs the topic audit: a bounded consume loop that positions
// every partition by timestamp, classifies each record by table and change
// type, and reports per-table counters once the topic goes idle.
//
// A run moves through the states of State. It subscribes with a
// rebalance.TimestampOffsetResolver, polls batches, processes each record in
// arrival order, commits after every batch and drains on the first empty
// poll:
//
//	runner, err := audit.NewRunner(audit.Config{
//	    Topic:      "uat.raw.cda.claims",
//	    ChangeData: true,
//	}, kafkaClient, recordDecoder)
//	if err != nil {
//	    return err
//	}
//	report, err := runner.WithLogger(log).Run(ctx)
//
// Records of excluded tables, and values whose source system is not in a
// non-empty source filter, are counted in Report.Total but touch no table
// counter. Tombstones carry no source and are never source filtered.
//
// The first decode, poll or commit failure aborts the run. Nothing is retried.
// The Kafka client is closed on every exit path.
package audit
