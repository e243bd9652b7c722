package wrtasync

import (
	"context"
	"fmt"
	"sync"

	"github.com/pulseengine/wrt-go/internal/wrtengine"
	"github.com/pulseengine/wrt-go/internal/wrterror"
	"github.com/pulseengine/wrt-go/internal/wrtvalue"
	"golang.org/x/sync/semaphore"
)

// TaskID names one in-flight Scheduler task.
type TaskID uint64

// Task is one cooperatively-scheduled invocation: a Machine call that may
// span several Step calls, pausing at fuel or instruction-count boundaries
// between them (spec §5 "the only suspension points inside guest execution
// are fuel exhaustion ... and explicit host-call boundaries").
type Task struct {
	id      TaskID
	machine *wrtengine.Machine
	fn      *wrtengine.Function
	args    []wrtvalue.Value

	started bool
	state   *wrtengine.PauseState
	yields  int

	waitables int

	done    bool
	results []wrtvalue.Value
	err     error
}

// ID reports the task's identity, stable for its lifetime.
func (t *Task) ID() TaskID { return t.id }

// Done reports whether the task has run to completion or trapped.
func (t *Task) Done() bool { return t.done }

// Scheduler runs a bounded number of Tasks, each stepped forward by at most
// Limits.MaxFuelPerStep fuel and Limits.MaxInstructionsPerStep instructions
// per Step call — the cooperative multitasking spec §5 describes as
// "single-threaded cooperative within one execution context", generalized
// here to many contexts sharing one caller-driven step loop. Concurrency
// bounds (MaxConcurrentTasks, MaxAsyncOperations) are enforced with
// golang.org/x/sync/semaphore.Weighted rather than a hand-rolled counter +
// condition variable, the same package the pack's moby-moby repo vendors
// for bounding concurrent work.
type Scheduler struct {
	cfg ASILExecutionConfig

	mu     sync.Mutex
	tasks  map[TaskID]*Task
	nextID TaskID

	taskSlots  *semaphore.Weighted
	asyncSlots *semaphore.Weighted
}

// NewScheduler constructs a Scheduler enforcing cfg's limits.
func NewScheduler(cfg ASILExecutionConfig) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		tasks:      make(map[TaskID]*Task),
		taskSlots:  semaphore.NewWeighted(int64(max1(cfg.Limits.MaxConcurrentTasks))),
		asyncSlots: semaphore.NewWeighted(int64(max1(cfg.Limits.MaxAsyncOperations))),
	}
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Spawn registers a new Task for fn(args) on machine, blocking until a
// concurrent-task slot is available or ctx is done (spec §6's
// max_concurrent_tasks). The task does not start executing until the first
// Step call.
func (s *Scheduler) Spawn(ctx context.Context, machine *wrtengine.Machine, fn *wrtengine.Function, args []wrtvalue.Value) (TaskID, error) {
	if err := s.taskSlots.Acquire(ctx, 1); err != nil {
		return 0, wrterror.New(wrterror.CategoryAsyncRuntime, wrterror.CodeConcurrentTaskLimitExceeded, fmt.Sprintf("no concurrent-task slot available: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.tasks[id] = &Task{id: id, machine: machine, fn: fn, args: args}
	return id, nil
}

// Task looks up a previously spawned task.
func (s *Scheduler) Task(id TaskID) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, wrterror.New(wrterror.CategoryAsyncRuntime, wrterror.CodeTaskNotFound, fmt.Sprintf("no task with id %d", id))
	}
	return t, nil
}

// Step advances id by one bounded slice: at most Limits.MaxFuelPerStep fuel
// and Limits.MaxInstructionsPerStep instructions, starting the task on its
// first call and resuming its saved PauseState on every later one. Returns
// the task's final results once it completes; call Step again (it returns
// done=false) while the task is still paused.
func (s *Scheduler) Step(id TaskID) (done bool, results []wrtvalue.Value, err error) {
	t, err := s.Task(id)
	if err != nil {
		return false, nil, err
	}
	if t.done {
		return false, nil, wrterror.New(wrterror.CategoryAsyncRuntime, wrterror.CodeTaskAlreadyFinished, fmt.Sprintf("task %d already finished", id))
	}

	restore := withInstructionGate(t.machine, s.cfg.Limits.MaxInstructionsPerStep)
	defer restore()
	t.machine.AddFuel(s.cfg.Limits.MaxFuelPerStep)

	var result wrtengine.RunResult
	if !t.started {
		t.started = true
		result, err = t.machine.Call(t.fn, t.args)
	} else {
		result, err = t.machine.Resume(t.state)
	}

	if err != nil {
		t.done, t.err = true, err
		s.finish(t)
		return false, nil, err
	}

	if result.Paused {
		t.state = result.PauseState
		t.yields++
		if t.yields > s.cfg.Limits.MaxYieldsPerStep {
			t.done, t.err = true, wrterror.New(wrterror.CategoryAsyncRuntime, wrterror.CodeYieldBudgetExceeded, fmt.Sprintf("task %d exceeded %d yields without completing", id, s.cfg.Limits.MaxYieldsPerStep))
			s.finish(t)
			return false, nil, t.err
		}
		return false, nil, nil
	}

	t.done, t.results = true, result.Results
	s.finish(t)
	return true, result.Results, nil
}

// finish releases id's concurrent-task slot. Called exactly once, when a
// task stops being steppable (completed, trapped, or yield-budget killed).
func (s *Scheduler) finish(t *Task) {
	s.taskSlots.Release(1)
}

// RunToCompletion steps id until it finishes, trapping, erroring, or
// exceeding its yield budget — the synchronous convenience spec §6's
// invoke() describes as "may internally pause and resume transparently ...
// if the host passes an auto-resume option."
func (s *Scheduler) RunToCompletion(id TaskID) ([]wrtvalue.Value, error) {
	for {
		done, results, err := s.Step(id)
		if err != nil {
			return nil, err
		}
		if done {
			return results, nil
		}
	}
}

// AcquireAsyncOp reserves one of Limits.MaxAsyncOperations outstanding
// async-host-call slots, blocking until one frees or ctx is done.
// ReleaseAsyncOp must be called exactly once per successful acquire.
func (s *Scheduler) AcquireAsyncOp(ctx context.Context) error {
	if err := s.asyncSlots.Acquire(ctx, 1); err != nil {
		return wrterror.New(wrterror.CategoryAsyncRuntime, wrterror.CodeAsyncOperationLimitExceeded, fmt.Sprintf("no async-operation slot available: %v", err))
	}
	return nil
}

// ReleaseAsyncOp returns a slot reserved by AcquireAsyncOp.
func (s *Scheduler) ReleaseAsyncOp() { s.asyncSlots.Release(1) }

// RegisterWaitable records that id's task is now awaiting one more
// Component Model waitable (a future or stream per spec §6's WIT type
// list), enforcing Limits.MaxWaitablesPerTask.
func (s *Scheduler) RegisterWaitable(id TaskID) error {
	t, err := s.Task(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.waitables >= s.cfg.Limits.MaxWaitablesPerTask {
		return wrterror.New(wrterror.CategoryAsyncRuntime, wrterror.CodeWaitableLimitExceeded, fmt.Sprintf("task %d already holds %d waitables", id, t.waitables))
	}
	t.waitables++
	return nil
}

// ReleaseWaitable records that one of id's registered waitables resolved or
// was dropped.
func (s *Scheduler) ReleaseWaitable(id TaskID) error {
	t, err := s.Task(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.waitables > 0 {
		t.waitables--
	}
	return nil
}
