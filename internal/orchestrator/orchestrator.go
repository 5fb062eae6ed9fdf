// Package orchestrator resolves a run plan, spawns the generator and
// algorithms, wires their pipes together, and reaps the results.
package orchestrator

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/impalab/impalab/internal/collector"
	"github.com/impalab/impalab/internal/fanout"
	"github.com/impalab/impalab/internal/log"
	"github.com/impalab/impalab/internal/procio"
)

// PipeIOError wraps a failure reading or writing a child's pipe that
// is not itself a nonzero exit.
type PipeIOError struct {
	Component string
	Err       error
}

func (e *PipeIOError) Error() string {
	return fmt.Sprintf("pipe io for %s: %v", e.Component, e.Err)
}

func (e *PipeIOError) Unwrap() error { return e.Err }

// ChildResult is one child process's outcome.
type ChildResult struct {
	Name     string
	Language string // empty for the generator
	Exit     procio.ExitStatus
}

// Report is the aggregate outcome of a run.
type Report struct {
	Generator  *ChildResult
	Algorithms []ChildResult
	Errors     []error
}

// Success reports whether every child exited zero and no fatal error occurred.
func (r Report) Success() bool {
	if len(r.Errors) > 0 {
		return false
	}
	if r.Generator != nil && r.Generator.Exit.Failed() {
		return false
	}
	for _, a := range r.Algorithms {
		if a.Exit.Failed() {
			return false
		}
	}
	return true
}

// Config carries the fully resolved inputs for one run.
type Config struct {
	Plan        RunPlan
	Seed        uint64
	SeedSet     bool
	Passthrough []string
	Stdout      io.Writer
	Stderr      io.Writer
}

func freshSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure on a real OS is not something callers
		// can act on; fall back to a fixed, clearly-marked value.
		return 0
	}
	return binary.BigEndian.Uint64(b[:])
}

// Run executes ctx-scoped, spawning the generator (if any) and every
// algorithm in plan, wiring the generator's stdout to every
// algorithm's stdin via fan-out, collecting parsed BenchmarkEvents to
// cfg.Stdout, and forwarding algorithm stderr to cfg.Stderr. It
// blocks until every child has been reaped.
func Run(ctx context.Context, cfg Config) (Report, error) {
	seed := cfg.Seed
	if !cfg.SeedSet {
		seed = freshSeed()
	}
	log.Info(log.CatOrch, "run seed", "seed", strconv.FormatUint(seed, 10))

	report := Report{}
	sink := collector.NewWriterSink(cfg.Stdout)

	var genHandle *procio.Handle
	if cfg.Plan.Generator.Present {
		args := append([]string{}, cfg.Plan.Generator.Run.Args...)
		args = append(args, fmt.Sprintf("--seed=%d", seed))
		args = append(args, cfg.Passthrough...)

		h, err := procio.Launch(ctx, procio.LaunchSpec{
			Name:    "generator",
			Command: cfg.Plan.Generator.Run.Command,
			Args:    args,
			Dir:     cfg.Plan.Generator.Run.Dir,
		})
		if err != nil {
			return report, err
		}
		genHandle = h
	}

	type algoRuntime struct {
		spec   AlgorithmSpec
		handle *procio.Handle
	}
	stdinPolicy := procio.Capture
	if !cfg.Plan.Generator.Present {
		stdinPolicy = procio.Null
	}

	algos := make([]algoRuntime, 0, len(cfg.Plan.Algorithms))
	for _, spec := range cfg.Plan.Algorithms {
		args := append([]string{}, spec.Run.Args...)
		args = append(args, fmt.Sprintf("--functions=%s", strings.Join(spec.Functions, ",")))

		h, err := procio.Launch(ctx, procio.LaunchSpec{
			Name:    spec.Language,
			Command: spec.Run.Command,
			Args:    args,
			Dir:     spec.Run.Dir,
			Stdin:   stdinPolicy,
		})
		if err != nil {
			if genHandle != nil {
				_ = genHandle.Kill()
			}
			for _, a := range algos {
				_ = a.handle.Kill()
			}
			return report, err
		}
		algos = append(algos, algoRuntime{spec: spec, handle: h})
	}

	var wg sync.WaitGroup
	var errMu sync.Mutex
	addErr := func(err error) {
		errMu.Lock()
		report.Errors = append(report.Errors, err)
		errMu.Unlock()
	}

	if genHandle != nil {
		consumers := make([]fanout.Consumer, len(algos))
		for i, a := range algos {
			consumers[i] = fanout.Consumer{Name: a.spec.Language, W: a.handle.Stdin}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fanout.Run(genHandle.Stdout, consumers)
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := collector.ForwardStderr("generator", genHandle.Stderr, cfg.Stderr); err != nil {
				addErr(&PipeIOError{Component: "generator", Err: err})
			}
		}()
	}

	for _, a := range algos {
		wg.Add(2)
		go func(a algoRuntime) {
			defer wg.Done()
			if err := collector.Collect(a.spec.Language, a.handle.Stdout, sink); err != nil {
				addErr(&PipeIOError{Component: a.spec.Language, Err: err})
			}
		}(a)
		go func(a algoRuntime) {
			defer wg.Done()
			if err := collector.ForwardStderr(a.spec.Language, a.handle.Stderr, cfg.Stderr); err != nil {
				addErr(&PipeIOError{Component: a.spec.Language, Err: err})
			}
		}(a)
	}

	wg.Wait()

	if genHandle != nil {
		exit := genHandle.Wait()
		report.Generator = &ChildResult{Name: "generator", Exit: exit}
	}
	for _, a := range algos {
		exit := a.handle.Wait()
		report.Algorithms = append(report.Algorithms, ChildResult{Name: a.spec.Language, Language: a.spec.Language, Exit: exit})
	}

	return report, nil
}

// ExitCode maps a Run outcome to the process exit code contract:
// 0 = success, 1 = a child exited nonzero, 2 = orchestrator-side error.
func ExitCode(report Report, runErr error) int {
	if runErr != nil {
		return 2
	}
	if len(report.Errors) > 0 {
		return 2
	}
	if !report.Success() {
		return 1
	}
	return 0
}
