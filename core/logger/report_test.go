package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReport(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(buf, false)
	log.Info("pipeline started", Event(EventPipelineStart), zap.String(FieldStage, "ls"))
	log.Info("pipeline started", Event(EventPipelineStart), zap.String(FieldStage, "ls"))
	log.Warn("command not found", Event(EventUnknownCommand), zap.String(FieldStage, "frobnicate"))
	log.Info("stage exited", Event(EventStageExit), zap.String(FieldStage, "grep"), zap.Int(FieldStatus, 2))
	log.Info("syntax error", Event(EventSyntaxError))
	log.Error("builtin panicked", Event(EventPanic), zap.String(FieldStage, "wc"))
	log.Info("no event field")

	report := NewReport()
	require.NoError(t, ReadJSONLinesLog(buf, report.Update))

	assert.Equal(t, 7, report.LogEntries)
	assert.Equal(t, 2, report.Commands.Count("ls"))
	assert.Equal(t, 1, report.UnknownCommands.Count("frobnicate"))
	assert.Equal(t, 1, report.StageExits.Count("grep", "2"))
	assert.Equal(t, 1, report.SyntaxErrors)
	assert.Equal(t, []string{"wc"}, report.Panics)

	_, err := json.Marshal(report)
	assert.NoError(t, err)
}

func TestReadJSONLinesLog_invalid(t *testing.T) {
	err := ReadJSONLinesLog(bytes.NewBufferString("{not json"), func(Entry) {})
	assert.Error(t, err)
}

func TestPathCounter_MarshalJSON(t *testing.T) {
	ctr := NewPathCounter("stage", "status")
	ctr.Increment("grep", "2")
	ctr.Increment("ls", "0")
	ctr.Increment("ls", "0")

	out, err := json.Marshal(ctr)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"count": 2, "event": {"stage": "ls", "status": "0"}},
		{"count": 1, "event": {"stage": "grep", "status": "2"}}
	]`, string(out))

	assert.Panics(t, func() { ctr.Increment("only-one") })
}
