// Package rebalance positions newly assigned partitions at a point in time.
//
// TimestampOffsetResolver is a kafka.RebalanceListener. On every assignment
// it computes one target timestamp, asks the broker for the matching offsets
// and seeks the partitions that resolved. The steps are exposed as pure
// functions (Targets, SeekInstructions) plus ApplySeeks, which is the only
// step with side effects.
package rebalance
