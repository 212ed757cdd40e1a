package audit

import (
	"time"

	"github.com/aalemi-dev/topic-audit/tables"
)

const (
	// DefaultPollTimeout is how long a poll may stay empty before the run drains.
	DefaultPollTimeout = 5 * time.Second

	// ChangeDataLookbackDays is the fixed lookback of change-data runs. The
	// configured day offset is ignored in that mode.
	ChangeDataLookbackDays = 1000
)

// Config defines one audit run.
type Config struct {
	// Topic is the single topic consumed by the run.
	Topic string

	// DayOffset positions every partition at the first record written at or
	// after now minus DayOffset days.
	DayOffset int

	// PollTimeout bounds each poll. An empty poll ends the run.
	// Defaults to DefaultPollTimeout.
	PollTimeout time.Duration

	// LogValues logs the decoded values of every processed record.
	LogValues bool

	// Tables restricts the run to the named tables. Empty means all tables.
	Tables []string

	// Sources restricts the run to values whose sourceSystem is listed.
	// Empty means all sources.
	Sources []string

	// ChangeData selects the change-data key convention and operation codes.
	ChangeData bool
}

// Lookback returns how far back from now partitions are positioned.
func (c Config) Lookback() time.Duration {
	days := c.DayOffset
	if c.ChangeData {
		days = ChangeDataLookbackDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// Mode returns the classification mode of the run.
func (c Config) Mode() tables.Mode {
	return tables.ModeFor(c.ChangeData)
}

// Filters returns the table and source filters of the run.
func (c Config) Filters() tables.Filters {
	return tables.NewFilters(c.Tables, c.Sources)
}

func (c Config) pollTimeout() time.Duration {
	if c.PollTimeout <= 0 {
		return DefaultPollTimeout
	}
	return c.PollTimeout
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if c.Topic == "" {
		return ErrMissingTopic
	}
	if c.DayOffset < 0 {
		return ErrNegativeDayOffset
	}
	return nil
}
