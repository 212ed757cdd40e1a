package logger

// Log levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Output encodings accepted by Config.Encoding.
const (
	// EncodingConsole writes tab separated, human readable lines. It is the
	// default because the audit summary is read by people.
	EncodingConsole = "console"

	// EncodingJSON writes one JSON object per entry, for log shippers.
	EncodingJSON = "json"
)

// Config defines the configuration structure for the logger.
type Config struct {
	// Level is the minimum level written: "debug", "info", "warning" or
	// "error". Unknown values fall back to "info".
	Level string

	// EnableTracing adds trace_id and span_id fields to entries logged with
	// one of the ...WithContext methods when the context carries a recording span.
	EnableTracing bool

	// ServiceName populates the "service" field of every entry.
	ServiceName string

	// CallerSkip is the number of stack frames skipped when reporting the
	// caller. Values <= 0 default to 1, which is right for direct calls.
	CallerSkip int

	// Encoding is EncodingConsole (default) or EncodingJSON.
	Encoding string

	// OutputPaths lists zap sinks; defaults to stderr.
	OutputPaths []string
}

func (c Config) encoding() string {
	if c.Encoding == EncodingJSON {
		return EncodingJSON
	}
	return EncodingConsole
}

func (c Config) outputPaths() []string {
	if len(c.OutputPaths) == 0 {
		return []string{"stderr"}
	}
	return c.OutputPaths
}
