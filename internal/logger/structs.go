package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `toml:"enabled"            mapstructure:"enabled"`
	UseConsoleWriter bool `toml:"use_console_writer" mapstructure:"use_console_writer"`
}

// LogFile implements a file based logger, one rolling file per level.
type LogFile struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Path    string `toml:"path"    mapstructure:"path"`

	// Combined, when set, receives every level and replaces the per level files.
	// Its rotation uses the Info* settings.
	Combined string `toml:"combined" mapstructure:"combined"`

	AccessLog        string `toml:"access"             mapstructure:"access"`
	AccessMaxSize    int    `toml:"access_max_size"    mapstructure:"access_max_size"`
	AccessMaxBackups int    `toml:"access_max_backups" mapstructure:"access_max_backups"`
	AccessMaxAge     int    `toml:"access_max_age"     mapstructure:"access_max_age"`

	ErrorLog        string `toml:"error"             mapstructure:"error"`
	ErrorMaxSize    int    `toml:"error_max_size"    mapstructure:"error_max_size"`
	ErrorMaxBackups int    `toml:"error_max_backups" mapstructure:"error_max_backups"`
	ErrorMaxAge     int    `toml:"error_max_age"     mapstructure:"error_max_age"`

	InfoLog        string `toml:"info"             mapstructure:"info"`
	InfoMaxSize    int    `toml:"info_max_size"    mapstructure:"info_max_size"`
	InfoMaxBackups int    `toml:"info_max_backups" mapstructure:"info_max_backups"`
	InfoMaxAge     int    `toml:"info_max_age"     mapstructure:"info_max_age"`

	TraceLog        string `toml:"trace"             mapstructure:"trace"`
	TraceMaxSize    int    `toml:"trace_max_size"    mapstructure:"trace_max_size"`
	TraceMaxBackups int    `toml:"trace_max_backups" mapstructure:"trace_max_backups"`
	TraceMaxAge     int    `toml:"trace_max_age"     mapstructure:"trace_max_age"`

	WarnLog        string `toml:"warn"             mapstructure:"warn"`
	WarnMaxSize    int    `toml:"warn_max_size"    mapstructure:"warn_max_size"`
	WarnMaxBackups int    `toml:"warn_max_backups" mapstructure:"warn_max_backups"`
	WarnMaxAge     int    `toml:"warn_max_age"     mapstructure:"warn_max_age"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string `toml:"level" mapstructure:"level"` // trace, debug, info, warn, error.

	// EnableAccessLogToConsole if true the REST access log is also written to the console.
	// Does not overrule flag Console.Enabled!
	EnableAccessLogToConsole bool `toml:"access_log_to_console" mapstructure:"access_log_to_console"`
	ReportCaller             bool `toml:"report_caller"         mapstructure:"report_caller"`

	AppName     string `toml:"app_name"     mapstructure:"app_name"`
	ServiceName string `toml:"service_name" mapstructure:"service_name"`

	// BufferSize is the number of recent lines kept in memory, 0 uses DefaultBufferSize.
	BufferSize int `toml:"buffer_size" mapstructure:"buffer_size"`

	// Console used mainly for docker and dev.
	Console Console `toml:"console" mapstructure:"console"`

	File LogFile `toml:"file" mapstructure:"file"`
}
