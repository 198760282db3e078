package settings

import "sync"

type Arguments struct {
	// The file path to the schema configuration file
	ConfigFile string

	// Root directory the database directory is created under
	DataDir string

	LogDir string

	// the host name or IP address to listen on
	Host string

	// the port number to listen on
	Port int

	// Serve switches from the interactive console to the TCP listener
	Serve bool

	// Strongly verbose logging
	Verbose bool

	Debug bool

	PrintToScreen bool

	Version string
}

var (
	instance *Arguments
	once     sync.Once
)

// GetSettings returns the process-wide settings instance.
func GetSettings() *Arguments {
	once.Do(func() {
		instance = &Arguments{}
	})
	return instance
}
