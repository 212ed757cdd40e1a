// Command topic-audit consumes a Kafka topic of Avro change records from a
// point in time until it goes idle, and logs per-table counters.
//
//	topic-audit -t uat.raw.cda.claims -c -i claim -i policy
//	topic-audit -t com.x.queue.msg.TSTDTA -d 7 -l --brokers broker:9093
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
