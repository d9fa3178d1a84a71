package logging

import (
	"flag"
	"fmt"
	"sort"

	"k8s.io/klog/v2"

	"github.com/andrescamacho/excavator-go/internal/application/common"
	"github.com/andrescamacho/excavator-go/internal/infrastructure/config"
)

// debugVerbosity is the klog verbosity at which DEBUG entries are emitted
const debugVerbosity = 2

// Setup configures klog from the logging section of the configuration
func Setup(cfg config.LoggingConfig) error {
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)

	verbosity := "0"
	if cfg.Level == "debug" {
		verbosity = fmt.Sprint(debugVerbosity)
	}
	settings := map[string]string{"v": verbosity}

	switch cfg.Output {
	case "file":
		settings["logtostderr"] = "false"
		settings["alsologtostderr"] = "false"
		settings["log_file"] = cfg.FilePath
	default:
		settings["logtostderr"] = "true"
	}

	for name, value := range settings {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("failed to set klog flag %s: %w", name, err)
		}
	}
	return nil
}

// KlogLogger writes operation log entries as klog structured records
type KlogLogger struct {
	minLevel int
}

// NewKlogLogger creates a logger that drops entries below level
// ("debug", "info", "warn", "error")
func NewKlogLogger(level string) *KlogLogger {
	return &KlogLogger{minLevel: levelRank(level)}
}

// Log implements common.OperationLogger
func (l *KlogLogger) Log(level, message string, metadata map[string]interface{}) {
	rank := levelRank(level)
	if rank < l.minLevel {
		return
	}

	kv := keysAndValues(metadata)
	switch level {
	case common.LevelDebug:
		klog.V(debugVerbosity).InfoS(message, kv...)
	case common.LevelWarning:
		klog.InfoS(message, append(kv, "level", "warning")...)
	case common.LevelError:
		var err error
		if e, ok := metadata["error"].(string); ok {
			err = fmt.Errorf("%s", e)
		}
		klog.ErrorS(err, message, kv...)
	default:
		klog.InfoS(message, kv...)
	}
}

// Flush writes buffered entries
func (l *KlogLogger) Flush() {
	klog.Flush()
}

func levelRank(level string) int {
	switch level {
	case common.LevelDebug, "debug":
		return 0
	case common.LevelWarning, "warn", "warning":
		return 2
	case common.LevelError, "error":
		return 3
	default:
		return 1
	}
}

// sorted so repeated entries render identically
func keysAndValues(metadata map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, metadata[k])
	}
	return kv
}

var _ common.OperationLogger = (*KlogLogger)(nil)
