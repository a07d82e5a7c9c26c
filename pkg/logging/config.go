package logging

const (
	BaseDataDir = "data"
	LogsDir     = "logs"
)

// ProcessName type to ensure valid process names
type ProcessName string

const (
	ScannerProcess  ProcessName = "scanner"
	GapTradeProcess ProcessName = "gaptrade"
	TestProcess     ProcessName = "test"
)

type LoggerConfig struct {
	LogDir        string
	ProcessName   ProcessName
	IsDevelopment bool
}

func NewDefaultConfig(processName ProcessName) LoggerConfig {
	return LoggerConfig{
		LogDir:        BaseDataDir,
		ProcessName:   processName,
		IsDevelopment: true,
	}
}
