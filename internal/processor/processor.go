// Package processor drives the per-row completion loop over a table.
//
// A run walks the table in order. For each row it resolves the instruction,
// asks for a verdict and writes successful answers to the sink. A failed
// verdict only skips that row. Sink, schema and cancellation errors stop the
// whole run.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/semaphore"

	"optisheet/internal/completion"
	"optisheet/internal/log"
	"optisheet/internal/service"
	"optisheet/internal/table"
)

// SheetRowOffset turns a 0-based data row index into a 1-based spreadsheet
// row, skipping the header row.
const SheetRowOffset = 2

// Asker returns a verdict for one text and instruction.
type Asker interface {
	Ask(ctx context.Context, text, instruction string) completion.Verdict
}

// Sink receives the results of a run.
type Sink interface {
	// Write stores a successful verdict for one row.
	Write(ctx context.Context, job RowJob, value string) error

	// Finalize persists the table once every row was processed.
	Finalize(ctx context.Context, t *table.Table) error
}

// RowJob is one unit of work.
type RowJob struct {
	// Index is the 0-based data row index.
	Index       int
	Text        string
	Instruction string
	// Column is the result column name.
	Column string
	// Cell is the result cell in spreadsheet coordinates.
	Cell service.Cell
}

// Job describes a run. The table is lent to the processor until the run ends.
type Job struct {
	Table        *table.Table
	TextColumn   string
	Instruction  Mode
	ResultColumn string
	Sink         Sink
}

func (j Job) validate() error {
	if j.Table == nil {
		return fmt.Errorf("table is required")
	}
	if j.Sink == nil {
		return fmt.Errorf("sink is required")
	}
	if _, err := j.Table.ColumnIndex(j.TextColumn); err != nil {
		return fmt.Errorf("text %w", err)
	}
	if _, err := j.Table.ColumnIndex(j.ResultColumn); err != nil {
		return fmt.Errorf("result %w", err)
	}
	return j.Instruction.Validate(j.Table)
}

// Listener is notified of run progress. Calls happen on the run's goroutine,
// one at a time.
type Listener interface {
	// OnProgress is called after every attempted row.
	OnProgress(s Status)

	// OnComplete is called exactly once with the terminal status.
	OnComplete(s Status)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are ignored.
type ListenerFuncs struct {
	Progress func(s Status)
	Complete func(s Status)
}

// OnProgress implements Listener.
func (l ListenerFuncs) OnProgress(s Status) {
	if l.Progress != nil {
		l.Progress(s)
	}
}

// OnComplete implements Listener.
func (l ListenerFuncs) OnComplete(s Status) {
	if l.Complete != nil {
		l.Complete(s)
	}
}

// Config is the configuration of Processor.
type Config struct {
	Asker  Asker
	Logger log.Logger
	// Now is used for run timestamps.
	Now func() time.Time
}

func (c *Config) defaults() error {
	if c.Asker == nil {
		return fmt.Errorf("asker is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "processor.Processor"})
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

// Processor runs jobs, at most one at a time.
type Processor struct {
	asker  Asker
	logger log.Logger
	now    func() time.Time
	active *semaphore.Weighted
}

// New returns a new processor.
func New(cfg Config) (*Processor, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &Processor{
		asker:  cfg.Asker,
		logger: cfg.Logger,
		now:    cfg.Now,
		active: semaphore.NewWeighted(1),
	}, nil
}

// Start validates the job and processes it on a background goroutine.
// It returns service.ErrAlreadyRunning if another run is active; the active
// run is not affected. A nil listener is allowed.
func (p *Processor) Start(ctx context.Context, job Job, l Listener) (*Run, error) {
	if !p.active.TryAcquire(1) {
		return nil, service.ErrAlreadyRunning
	}
	if err := job.validate(); err != nil {
		p.active.Release(1)
		return nil, err
	}
	if l == nil {
		l = ListenerFuncs{}
	}

	run := newRun(ulid.Make().String(), job.Table.Len())
	run.start(p.now())

	go p.loop(ctx, run, job, l)

	return run, nil
}

// Run processes the job and blocks until it ends.
func (p *Processor) Run(ctx context.Context, job Job, l Listener) (Status, error) {
	run, err := p.Start(ctx, job, l)
	if err != nil {
		return Status{State: NotStarted}, err
	}
	return run.Wait()
}

func (p *Processor) loop(ctx context.Context, run *Run, job Job, l Listener) {
	ctx = p.logger.SetValuesOnCtx(ctx, log.Kv{"run": run.ID()})
	logger := p.logger.WithCtxValues(ctx)
	logger.Debugf("run started: %d rows, instruction %s", job.Table.Len(), job.Instruction)

	err := p.process(ctx, logger, run, job, l)
	final := run.finish(err, p.now())
	if err != nil {
		logger.Errorf("run failed after %d/%d rows: %v", final.Completed, final.Total, err)
	} else {
		logger.Debugf("run completed: %d written, %d skipped", final.Written, final.Skipped)
	}

	l.OnComplete(final)
	p.active.Release(1)
	close(run.done)
}

func (p *Processor) process(ctx context.Context, logger log.Logger, run *Run, job Job, l Listener) error {
	resultCol, err := job.Table.ColumnIndex(job.ResultColumn)
	if err != nil {
		return err
	}

	for i := 0; i < job.Table.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted before row %d: %w", i+1, err)
		}

		rj, err := p.rowJob(job, i, resultCol)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}

		v := p.asker.Ask(ctx, rj.Text, rj.Instruction)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted at row %d: %w", i+1, err)
		}
		written := false
		if v.Failed() {
			logger.Warningf("row %d skipped: %s", i+1, v.Error())
		} else {
			if err := job.Sink.Write(ctx, rj, v.Text()); err != nil {
				return fmt.Errorf("could not write row %d: %w", i+1, err)
			}
			written = true
			logger.Debugf("row %d: %q", i+1, v.Text())
		}

		l.OnProgress(run.attempted(written))
	}

	if err := job.Sink.Finalize(ctx, job.Table); err != nil {
		return fmt.Errorf("could not save results: %w", err)
	}
	return nil
}

func (p *Processor) rowJob(job Job, row, resultCol int) (RowJob, error) {
	text, err := job.Table.Value(row, job.TextColumn)
	if err != nil {
		return RowJob{}, err
	}
	instruction, err := Resolve(job.Table, row, job.Instruction)
	if err != nil {
		return RowJob{}, err
	}
	return RowJob{
		Index:       row,
		Text:        text,
		Instruction: instruction,
		Column:      job.ResultColumn,
		Cell:        service.Cell{Row: row + SheetRowOffset, Col: resultCol + 1},
	}, nil
}
