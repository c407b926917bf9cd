package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Entry is a single decoded log line.
type Entry map[string]interface{}

// String returns the string value of key, or "" if it's missing.
func (e Entry) String(key string) string {
	switch v := e[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le Entry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry Entry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int        `json:"log_entries"`
	Events     StrCounter `json:"events"`

	Commands        StrCounter   `json:"command_names"`
	UnknownCommands StrCounter   `json:"unknown_commands"`
	SyntaxErrors    int          `json:"syntax_errors"`
	StageExits      *PathCounter `json:"stage_exits"`
	Panics          []string     `json:"panics"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		StageExits: NewPathCounter("stage", "status"),
	}
}

// Update adds a log entry to the report.
func (r *Report) Update(le Entry) {
	r.LogEntries++

	event := le.String(FieldEvent)
	if event == "" {
		return
	}
	r.Events.Increment(event)

	switch event {
	case EventPipelineStart:
		r.Commands.Increment(le.String(FieldStage))
	case EventUnknownCommand:
		r.UnknownCommands.Increment(le.String(FieldStage))
	case EventSyntaxError:
		r.SyntaxErrors++
	case EventStageExit:
		r.StageExits.Increment(le.String(FieldStage), le.String(FieldStatus))
	case EventPanic:
		r.Panics = append(r.Panics, le.String(FieldStage))
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Count returns how many times key was seen.
func (s *StrCounter) Count(key string) int {
	return s.internal[key]
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given tuple.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Count returns how many times the tuple was seen.
func (ctr *PathCounter) Count(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implements a custom JSON marshaler, most frequent tuples first.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	var out []Count
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
