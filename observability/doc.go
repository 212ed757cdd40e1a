// Package observability defines the hook infrastructure clients use to report
// completed operations.
//
// The kafka and schema_registry packages accept an optional Observer through
// their WithObserver builders and fx parameter structs. After every poll,
// commit, offset lookup or schema fetch they call ObserveOperation with an
// OperationContext describing what happened, how long it took and whether it
// failed. The metrics package ships an Observer that turns these events into
// Prometheus histograms; tests usually plug in a small recording observer.
//
// Usage:
//
//	client, err := kafka.NewClient(cfg)
//	if err != nil {
//	    return err
//	}
//	client = client.WithObserver(metrics.NewOperationObserver(collector))
package observability
