package utils

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ReadConfigFromEnvAndInitLogger sets up the default logger from environment
// variables, so logging works before the config file is parsed.
func ReadConfigFromEnvAndInitLogger(
	logLevelEnv string,
	includeSrcEnv string,
	logToFileEnv string,
	filenameEnv string,
	maxSizeEnv string,
	maxAgeEnv string,
	maxBackupsEnv string,
) {
	InitLogger(
		os.Getenv(logLevelEnv),
		os.Getenv(includeSrcEnv) == "true",
		os.Getenv(logToFileEnv) == "true",
		os.Getenv(filenameEnv),
		envAsIntWithFallback(maxSizeEnv, 50),
		envAsIntWithFallback(maxAgeEnv, 28),
		envAsIntWithFallback(maxBackupsEnv, 10),
		false,
	)
}

func envAsIntWithFallback(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		slog.Error("could not parse env variable as int", slog.String("error", err.Error()), slog.String(key, val))
		return fallback
	}
	return parsed
}

func InitLogger(
	logLevel string,
	includeSrc bool,
	logToFile bool,
	logFilename string,
	logFileMaxSize int,
	logFileMaxAge int,
	logFileMaxBackups int,
	compressOldLogs bool,
) {
	opts := &slog.HandlerOptions{
		Level:     logLevelFromString(logLevel),
		AddSource: includeSrc,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source, _ := a.Value.Any().(*slog.Source)
				if source != nil {
					source.File = filepath.Base(source.File)
					source.Function = strings.Replace(source.Function, "github.com/mzd555/criteria-poc", "", -1)
				}
			}
			return a
		},
	}

	var logger *slog.Logger
	if logToFile && logFilename != "" {
		logTarget := &lumberjack.Logger{
			Filename:   logFilename,
			MaxSize:    logFileMaxSize, // megabytes
			MaxAge:     logFileMaxAge,  // days
			Compress:   compressOldLogs,
			MaxBackups: logFileMaxBackups,
		}

		w := io.MultiWriter(os.Stdout, logTarget)
		logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	slog.SetDefault(logger)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
