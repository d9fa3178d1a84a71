package logging

import "github.com/andrescamacho/excavator-go/internal/application/common"

// FanoutLogger forwards every entry to each wrapped logger
type FanoutLogger struct {
	loggers []common.OperationLogger
}

// NewFanoutLogger drops nil loggers
func NewFanoutLogger(loggers ...common.OperationLogger) *FanoutLogger {
	f := &FanoutLogger{}
	for _, l := range loggers {
		if l != nil {
			f.loggers = append(f.loggers, l)
		}
	}
	return f
}

func (f *FanoutLogger) Log(level, message string, metadata map[string]interface{}) {
	for _, l := range f.loggers {
		l.Log(level, message, metadata)
	}
}
