// Package torture implements concurrency stress testing for the flight
// recorder's ring buffer and registry, exercising the write/overflow/dump
// path under the kind of sustained concurrent load a single pass of
// go test never reaches.
package torture

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flightrecorder/flightrecorder/internal/logger"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// Scenario is a single torture test: it runs a workload against a fresh
// recorder registry and then verifies the invariants that workload must
// have preserved.
type Scenario interface {
	Name() string
	Execute(reg *recorder.Registry) error
	Verify(reg *recorder.Registry) error
}

// Config configures the torture test suite.
type Config struct {
	Iterations    int
	StopOnFailure bool
	Verbose       bool
}

// Report contains the results of a torture test run.
type Report struct {
	StartTime  time.Time
	EndTime    time.Time
	Iterations int
	Scenarios  map[string]*ScenarioResult
	Success    bool
}

// ScenarioResult contains results for a single scenario.
type ScenarioResult struct {
	Passed   int
	Failed   int
	Errors   []error
	Duration time.Duration
	mu       sync.Mutex
}

// Suite orchestrates torture testing.
type Suite struct {
	scenarios []Scenario
	config    Config
	mu        sync.Mutex
}

// NewSuite creates a new torture test suite.
func NewSuite(cfg Config) *Suite {
	return &Suite{config: cfg}
}

// RegisterScenario adds a scenario to the test suite.
func (s *Suite) RegisterScenario(scenario Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios = append(s.scenarios, scenario)
}

// Run executes the torture test suite sequentially.
func (s *Suite) Run() (*Report, error) {
	report := &Report{
		StartTime:  time.Now(),
		Iterations: s.config.Iterations,
		Scenarios:  make(map[string]*ScenarioResult),
	}
	for _, scenario := range s.scenarios {
		report.Scenarios[scenario.Name()] = &ScenarioResult{}
	}

	for i := 0; i < s.config.Iterations; i++ {
		if s.config.Verbose {
			logger.Log.Info("Iteration {current}/{total}", i+1, s.config.Iterations)
		}
		for _, scenario := range s.scenarios {
			if err := s.runScenario(scenario, report); err != nil && s.config.StopOnFailure {
				report.EndTime = time.Now()
				return report, err
			}
		}
		if i > 0 && i%100 == 0 && !s.config.Verbose {
			logger.Log.Info("Progress: {current}/{total} iterations", i, s.config.Iterations)
		}
	}

	report.EndTime = time.Now()
	report.Success = s.calculateSuccess(report)
	return report, nil
}

// RunParallel executes scenario iterations across workers for faster testing.
func (s *Suite) RunParallel(workers int) (*Report, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger.Log.Info("Running parallel torture test with {workers} workers", workers)

	report := &Report{
		StartTime:  time.Now(),
		Iterations: s.config.Iterations,
		Scenarios:  make(map[string]*ScenarioResult),
	}
	for _, scenario := range s.scenarios {
		report.Scenarios[scenario.Name()] = &ScenarioResult{}
	}

	type work struct{ scenario Scenario }
	workChan := make(chan work, workers*2)

	var completed int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workChan {
				_ = s.runScenario(item.scenario, report)
				current := atomic.AddInt64(&completed, 1)
				if current%100 == 0 {
					logger.Log.Info("Progress: {current}/{total} scenario runs completed",
						current, s.config.Iterations*len(s.scenarios))
				}
			}
		}()
	}

	for i := 0; i < s.config.Iterations; i++ {
		for _, scenario := range s.scenarios {
			workChan <- work{scenario: scenario}
		}
	}
	close(workChan)
	wg.Wait()

	report.EndTime = time.Now()
	report.Success = s.calculateSuccess(report)
	return report, nil
}

func (s *Suite) runScenario(scenario Scenario, report *Report) error {
	result := report.Scenarios[scenario.Name()]
	start := time.Now()

	reg := &recorder.Registry{}
	if err := scenario.Execute(reg); err != nil {
		result.mu.Lock()
		result.Failed++
		result.Errors = append(result.Errors, err)
		result.mu.Unlock()
		return err
	}

	if err := scenario.Verify(reg); err != nil {
		result.mu.Lock()
		result.Failed++
		result.Errors = append(result.Errors, err)
		result.mu.Unlock()
		return err
	}

	result.mu.Lock()
	result.Passed++
	result.Duration += time.Since(start)
	result.mu.Unlock()
	return nil
}

func (s *Suite) calculateSuccess(report *Report) bool {
	for _, result := range report.Scenarios {
		if result.Failed > 0 {
			return false
		}
	}
	return true
}

// PrintReport outputs a summary of the test results.
func (r *Report) PrintReport() {
	logger.Log.Info("")
	logger.Log.Info("=== TORTURE TEST REPORT ===")
	logger.Log.Info("Duration: {duration}", r.EndTime.Sub(r.StartTime))
	logger.Log.Info("Iterations: {count}", r.Iterations)
	logger.Log.Info("Overall Success: {success}", r.Success)
	logger.Log.Info("")

	for name, result := range r.Scenarios {
		logger.Log.Info("Scenario: {name}", name)
		logger.Log.Info("  Passed: {count}", result.Passed)
		logger.Log.Info("  Failed: {count}", result.Failed)
		if result.Failed > 0 && len(result.Errors) > 0 {
			logger.Log.Error("  Last Error: {error}", result.Errors[len(result.Errors)-1])
		}
		if result.Passed > 0 {
			logger.Log.Info("  Avg Duration: {duration}", result.Duration/time.Duration(result.Passed))
		}
		logger.Log.Info("")
	}

	totalPassed, totalFailed := 0, 0
	for _, result := range r.Scenarios {
		totalPassed += result.Passed
		totalFailed += result.Failed
	}
	logger.Log.Info("TOTAL: {passed} passed, {failed} failed", totalPassed, totalFailed)
	if !r.Success {
		logger.Log.Error(fmt.Sprintf("%d scenario(s) failed", totalFailed))
	}
}
