// Package pipeline executes a parsed list of stages concurrently over a
// shared bus.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/josephlewis42/pipeshell/commands"
	"github.com/josephlewis42/pipeshell/core/bus"
	"github.com/josephlewis42/pipeshell/core/config"
	"github.com/josephlewis42/pipeshell/core/external"
	"github.com/josephlewis42/pipeshell/core/logger"
	"github.com/josephlewis42/pipeshell/core/lookpath"
	"github.com/josephlewis42/pipeshell/core/stage"
	"github.com/josephlewis42/pipeshell/core/vio"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrAlreadyStarted is returned when a pipeline is executed twice.
	ErrAlreadyStarted = errors.New("pipeline already started")
	// ErrNoStages is returned for a pipeline without stages.
	ErrNoStages = errors.New("pipeline has no stages")
)

// State is the lifecycle position of a pipeline.
type State int32

const (
	NotStarted State = iota
	Running
	Draining
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Pipeline is a single run of an ordered list of stages. It can only be
// executed once.
type Pipeline struct {
	ID     uuid.UUID
	Stages []stage.Stage
	Bus    *bus.Bus

	state atomic.Int32
}

// New creates a pipeline for stages. Boundary 0 is seeded with input and
// marked finished, so the first stage sees exactly those items.
func New(stages []stage.Stage, input ...string) *Pipeline {
	p := &Pipeline{
		ID:     uuid.New(),
		Stages: stages,
		Bus:    bus.New(len(stages) + 1),
	}

	for _, item := range input {
		p.Bus.Push(0, item)
	}
	p.Bus.MarkFinished(0)
	return p
}

// State returns the pipeline's current lifecycle state.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
}

// Orchestrator runs pipelines. Its fields are shared by every pipeline and
// must not change while one is executing.
type Orchestrator struct {
	Builtins *commands.Registry
	Paths    *lookpath.Cache
	Fs       afero.Fs
	Config   *config.Configuration

	// Stdout receives the final boundary's items, one per line.
	Stdout io.Writer
	// Stderr receives diagnostics from every stage.
	Stderr io.Writer
	Log    *zap.Logger
}

// NewOrchestrator creates an orchestrator backed by the real filesystem and
// search path.
func NewOrchestrator(cfg *config.Configuration, stdout, stderr io.Writer, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		Builtins: commands.NewRegistry(),
		Paths:    lookpath.NewCache(),
		Fs:       afero.NewOsFs(),
		Config:   cfg,
		Stdout:   stdout,
		Stderr:   stderr,
		Log:      log,
	}
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// Execute runs every stage of p concurrently and waits for all of them. A
// failing stage never stops its siblings; it only finishes its output early.
// Unless the pipeline ends in a write-file stage, the final boundary is then
// written to Stdout. The returned error is non-nil if the pipeline was
// misconfigured or ctx ended it.
func (o *Orchestrator) Execute(ctx context.Context, p *Pipeline) error {
	if !p.state.CompareAndSwap(int32(NotStarted), int32(Running)) {
		return ErrAlreadyStarted
	}
	defer p.setState(Finished)

	if len(p.Stages) == 0 {
		return ErrNoStages
	}
	if p.Bus.Len() != len(p.Stages)+1 {
		return fmt.Errorf("pipeline has %d stages but %d boundaries", len(p.Stages), p.Bus.Len())
	}

	log := o.logger().With(zap.String(logger.FieldPipelineID, p.ID.String()))
	log.Info("pipeline started",
		logger.Event(logger.EventPipelineStart),
		zap.String(logger.FieldStage, p.Stages[0].Name),
		zap.Int("stages", len(p.Stages)))
	start := time.Now()

	stderr := vio.NewSyncWriter(o.Stderr)
	var g errgroup.Group
	for i, st := range p.Stages {
		g.Go(func() error {
			return o.runStage(ctx, p.Bus, i, st, stderr, log)
		})
	}
	err := g.Wait()

	p.setState(Draining)
	last := len(p.Stages)
	pending := p.Bus.Pending(last)
	if p.Stages[last-1].Name != stage.WriteFile {
		stdout := vio.OrDiscard(o.Stdout)
		for {
			item, popErr := p.Bus.Pop(ctx, last)
			if popErr != nil {
				break
			}
			fmt.Fprintln(stdout, item)
		}
	}

	log.Info("pipeline finished",
		logger.Event(logger.EventPipelineEnd),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("output_items", pending),
		zap.Error(err))

	if err != nil {
		return err
	}
	return ctx.Err()
}

func (o *Orchestrator) runStage(ctx context.Context, b *bus.Bus, i int, st stage.Stage, stderr io.Writer, log *zap.Logger) error {
	defer b.MarkFinished(i + 1)
	log = log.With(zap.String(logger.FieldStage, st.Name), zap.Int(logger.FieldIndex, i))

	switch st.Kind {
	case stage.Builtin:
		builtin, ok := o.Builtins.Lookup(st.Name)
		if !ok {
			io.WriteString(stderr, st.Name+": command not found\n")
			log.Info("command not found", logger.Event(logger.EventUnknownCommand))
			return nil
		}

		proc := commands.NewProc(ctx, b, i, st.Argv())
		if o.Fs != nil {
			proc.Fs = o.Fs
		}
		proc.Stderr = stderr
		proc.Log = log
		if o.Paths != nil {
			proc.Paths = o.Paths
		}
		if o.Config != nil {
			proc.Config = o.Config
		}

		status := commands.Run(builtin, proc)
		level := zap.DebugLevel
		if status != 0 {
			level = zap.InfoLevel
		}
		log.Log(level, "builtin exited", logger.Event(logger.EventStageExit), zap.Int(logger.FieldStatus, status))
		return ctx.Err()

	case stage.External:
		runner := &external.Runner{Paths: o.Paths, Stderr: stderr, Log: log}
		return runner.Run(ctx, b, i, st)

	default:
		io.WriteString(stderr, fmt.Sprintf("%s: unknown stage kind %v\n", st.Name, st.Kind))
		return nil
	}
}
