// Package testing provides concurrency test helpers and domain fixture
// builders shared by the guardiand package tests.
//
// Calling t.Fatal or t.FailNow inside a goroutine is undefined behavior:
// both call runtime.Goexit, which terminates the calling goroutine, not
// the test. TestHelper carries goroutine failures back to the test
// goroutine over an error channel instead.
package testing

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// TestHelper collects errors from test goroutines.
//
// Usage:
//
//	h := NewTestHelper(t)
//	for i := 0; i < 10; i++ {
//		h.Go(func() error {
//			result, err := doSomething()
//			if err != nil {
//				return fmt.Errorf("operation: %w", err)
//			}
//			if result != expected {
//				return fmt.Errorf("expected %v, got %v", expected, result)
//			}
//			return nil
//		})
//	}
//	h.Wait()
type TestHelper struct {
	t      *testing.T
	wg     sync.WaitGroup
	errors chan error
}

// NewTestHelper creates a helper bound to the running test.
func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{
		t:      t,
		errors: make(chan error, 100),
	}
}

// Go runs fn in a goroutine. A non-nil return is reported as a test
// error when Wait runs; fn must return instead of calling t.Fatal.
func (h *TestHelper) Go(fn func() error) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := fn(); err != nil {
			select {
			case h.errors <- err:
			default:
				// Buffer full; the test still fails on the recorded errors.
			}
		}
	}()
}

// Wait blocks until every Go func returns, then fails the test if any
// reported an error.
func (h *TestHelper) Wait() {
	h.wg.Wait()
	close(h.errors)

	failed := false
	for err := range h.errors {
		h.t.Errorf("goroutine error: %v", err)
		failed = true
	}
	if failed {
		h.t.FailNow()
	}
}

// WithTimeout runs fn and returns its error, or a timeout error if fn
// does not finish in time. The goroutine running fn is not cancelled.
func WithTimeout(timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("timeout after %v", timeout)
	}
}

// Eventually polls condition until it holds or the timeout elapses.
func Eventually(timeout, interval time.Duration, condition func() bool) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return nil
		}
		time.Sleep(interval)
	}
	return fmt.Errorf("condition not met within %v", timeout)
}
