package sqlite

// Config is the subset of storage.Config a SQLite repository needs.
type Config struct {
	// DSN is a file path or a "file:" URI; query parameters pass through to
	// the driver.
	DSN     string
	Table   string // "pp_task" or "main.pp_task"
	Columns []string
}
