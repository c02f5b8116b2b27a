package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

// fakeRemover returns a Remover whose RemoveAll fails with failErr for the
// first failures calls, then delegates to os.RemoveAll.
func fakeRemover(failures int, failErr error) (*Remover, *int, *[]time.Duration) {
	calls := 0
	var sleeps []time.Duration

	r := NewRemover()
	r.RemoveAll = func(path string) error {
		calls++
		if calls <= failures {
			return &os.PathError{Op: "unlinkat", Path: path, Err: failErr}
		}
		return os.RemoveAll(path)
	}
	r.Sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
	}
	return r, &calls, &sleeps
}

func makeTree(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "staging")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "file.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLinearBackoff(t *testing.T) {
	delay := LinearBackoff(200 * time.Millisecond)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{5, time.Second},
	}

	for _, tt := range tests {
		if got := delay(tt.attempt); got != tt.want {
			t.Errorf("LinearBackoff(200ms)(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"bare EBUSY", syscall.EBUSY, true},
		{"wrapped EBUSY", &os.PathError{Op: "unlinkat", Path: "x", Err: syscall.EBUSY}, true},
		{"permission denied", &os.PathError{Op: "unlinkat", Path: "x", Err: syscall.EACCES}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBusy(tt.err); got != tt.want {
				t.Errorf("IsBusy(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRemover_MissingPath(t *testing.T) {
	r, calls, sleeps := fakeRemover(0, nil)

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if err := r.Remove(missing); err != nil {
		t.Fatalf("Remove() on missing path returned %v", err)
	}
	if *calls != 0 {
		t.Errorf("expected no removal attempts, got %d", *calls)
	}
	if len(*sleeps) != 0 {
		t.Errorf("expected no sleeps, got %v", *sleeps)
	}
}

func TestRemover_SucceedsAfterBusy(t *testing.T) {
	for failures := 0; failures < DefaultRemoveAttempts; failures++ {
		dir := makeTree(t)
		r, calls, sleeps := fakeRemover(failures, syscall.EBUSY)

		if err := r.Remove(dir); err != nil {
			t.Fatalf("failures=%d: Remove() error = %v", failures, err)
		}
		if *calls != failures+1 {
			t.Errorf("failures=%d: expected %d attempts, got %d", failures, failures+1, *calls)
		}
		if len(*sleeps) != failures {
			t.Fatalf("failures=%d: expected %d sleeps, got %v", failures, failures, *sleeps)
		}
		for i := 1; i < len(*sleeps); i++ {
			if (*sleeps)[i] <= (*sleeps)[i-1] {
				t.Errorf("failures=%d: delays not increasing: %v", failures, *sleeps)
			}
		}
		if failures > 0 && (*sleeps)[0] != DefaultRemoveBackoff {
			t.Errorf("first delay = %v, want %v", (*sleeps)[0], DefaultRemoveBackoff)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("failures=%d: directory still exists", failures)
		}
	}
}

func TestRemover_ExhaustsRetries(t *testing.T) {
	dir := makeTree(t)
	r, calls, sleeps := fakeRemover(100, syscall.EBUSY)

	err := r.Remove(dir)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	var retryErr *RemoveRetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("expected *RemoveRetryError, got %T: %v", err, err)
	}
	if retryErr.Path != dir {
		t.Errorf("error path = %q, want %q", retryErr.Path, dir)
	}
	if !strings.Contains(err.Error(), dir) {
		t.Errorf("error message should name the path: %v", err)
	}
	if !errors.Is(err, syscall.EBUSY) {
		t.Error("expected error to unwrap to EBUSY")
	}
	if *calls != DefaultRemoveAttempts {
		t.Errorf("expected %d attempts, got %d", DefaultRemoveAttempts, *calls)
	}
	want := []time.Duration{200 * time.Millisecond, 400 * time.Millisecond, 600 * time.Millisecond, 800 * time.Millisecond}
	if len(*sleeps) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *sleeps, want)
	}
	for i := range want {
		if (*sleeps)[i] != want[i] {
			t.Errorf("sleep[%d] = %v, want %v", i, (*sleeps)[i], want[i])
		}
	}
}

func TestRemover_NonRetryableFailsImmediately(t *testing.T) {
	dir := makeTree(t)
	r, calls, sleeps := fakeRemover(100, syscall.EACCES)

	err := r.Remove(dir)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, syscall.EACCES) {
		t.Errorf("expected EACCES in chain, got %v", err)
	}
	var retryErr *RemoveRetryError
	if errors.As(err, &retryErr) {
		t.Error("non-retryable failure should not be reported as exhausted retries")
	}
	if *calls != 1 {
		t.Errorf("expected 1 attempt, got %d", *calls)
	}
	if len(*sleeps) != 0 {
		t.Errorf("expected no sleeps, got %v", *sleeps)
	}
}

func TestRemover_Idempotent(t *testing.T) {
	dir := makeTree(t)
	r := NewRemover()

	if err := r.Remove(dir); err != nil {
		t.Fatalf("first Remove() error = %v", err)
	}
	if err := r.Remove(dir); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("directory should not exist")
	}
}
