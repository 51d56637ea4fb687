// Package log wraps a process-wide zap SugaredLogger.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sugar starts as a no-op logger so packages can log before Init (and in tests).
var sugar = zap.NewNop().Sugar()

var level = zap.NewAtomicLevelAt(zap.InfoLevel)

// Init builds the zap logger from the log section of the configuration.
func Init(lvl, format, outputPath string) {
	if err := level.UnmarshalText([]byte(lvl)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	var zapConfig zap.Config
	if format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.Encoding = "console"
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Encoding = "json"
	}

	zapConfig.Level = level
	zapConfig.OutputPaths = []string{"stdout"}
	if outputPath != "" {
		// log to stdout and to <outputPath>/app.log
		_ = os.MkdirAll(outputPath, os.ModePerm)
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, outputPath+"/app.log")
	}

	logger, err := zapConfig.Build()
	if err != nil {
		panic(err)
	}
	sugar = logger.Sugar()
}

// SetLevel changes the level of the running logger. Unknown levels are ignored.
func SetLevel(lvl string) bool {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(lvl)); err != nil {
		return false
	}
	level.SetLevel(l)
	return true
}

// Level returns the current level as text.
func Level() string {
	return level.Level().String()
}

func Debugf(template string, args ...interface{}) {
	sugar.Debugf(template, args...)
}

// Info logs a message at info level.
func Info(msg string) {
	sugar.Info(msg)
}

func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

// Infow logs a structured info entry. Preferred for anything with context.
func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	sugar.Warnw(msg, keysAndValues...)
}

// Error logs msg at error level with err attached.
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	sugar.Errorw(msg, keysAndValues...)
}

// Fatal logs msg with err and exits the process.
func Fatal(msg string, err error) {
	sugar.Fatalw(msg, "error", err)
}

func Fatalf(template string, args ...interface{}) {
	sugar.Fatalf(template, args...)
}

// Sync flushes buffered entries. Call before the process exits.
func Sync() {
	_ = sugar.Sync()
}
