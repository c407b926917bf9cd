package logger

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field names shared by every event.
const (
	FieldEvent      = "event"
	FieldPipelineID = "pipeline_id"
	FieldStage      = "stage"
	FieldIndex      = "index"
	FieldStatus     = "status"
	FieldLine       = "line"
)

// Event names, stored under FieldEvent.
const (
	EventRunCommand      = "run_command"
	EventSyntaxError     = "syntax_error"
	EventPipelineStart   = "pipeline_start"
	EventPipelineEnd     = "pipeline_end"
	EventStageExit       = "stage_exit"
	EventUnknownCommand  = "unknown_command"
	EventSpawnFailure    = "spawn_failure"
	EventPanic           = "panic"
	EventPathNotified    = "path_notified"
	EventWatcherFailure  = "watcher_failure"
	EventDirectiveFailed = "directive_failed"
)

// Event tags a log entry with its event name.
func Event(name string) zap.Field {
	return zap.String(FieldEvent, name)
}

// New creates a logger that writes JSON lines to w. Debug events are only
// kept when debug is set.
func New(w io.Writer, debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}

// NewConsole creates a human readable logger for messages shown to the user
// before the application log exists.
func NewConsole(w io.Writer) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    zapcore.OmitKey,
		TimeKey:     zapcore.OmitKey,
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeLevel: zapcore.CapitalLevelEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		zapcore.InfoLevel,
	)
	return zap.New(core)
}
