package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log       *zap.SugaredLogger = zap.NewNop().Sugar() // No-op until InitLogger runs
	ZapLogger *zap.Logger        = zap.NewNop()         // Expose the raw zap Logger
)

// InitLogger sends INFO and above to path, replacing the no-op logger.
func InitLogger(path string) {
	// Configure the core for file logging
	logFile, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("can't open log file: %v", err)
	}

	// Log InfoLevel and above to file
	ZapLogger = New(zapcore.AddSync(logFile), zap.InfoLevel)
	Log = ZapLogger.Sugar()
	Log.Infow("Logger initialized", zap.String("path", path)) // Log initialization message
}

// New builds the console-encoded logger used by the CLI on top of w.
func New(w zapcore.WriteSyncer, level zapcore.LevelEnabler) *zap.Logger {
	// Configure the encoder
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:          "T", // Keep time key brief
		LevelKey:         "L",
		NameKey:          "N",
		CallerKey:        "",              // Disable caller key
		FunctionKey:      zapcore.OmitKey, // Disable function key
		MessageKey:       "M",
		StacktraceKey:    "S",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,                        // INFO, WARN, etc.
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"), // Simpler time format
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder, // Unused while CallerKey is empty
		ConsoleSeparator: "  ",                       // Separator between elements in console output
	}

	// Console encoding keeps tier and version fields readable as key=value
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), w, level)
	return zap.New(core) // No caller or stacktrace annotations
}

// Sync flushes the logger. Call it on shutdown.
func Sync() {
	if ZapLogger != nil {
		_ = ZapLogger.Sync() // flushes buffer, if any
	}
}
