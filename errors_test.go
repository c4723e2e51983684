package growtable

import (
	goerrors "errors"
	"testing"
)

func TestNewErrHandleClosedRoundTrip(t *testing.T) {
	err := NewErrHandleClosed(7)
	if !IsHandleClosed(err) {
		t.Fatal("IsHandleClosed should recognize its own constructor")
	}
	if IsAllocationFailed(err) {
		t.Fatal("a handle-closed error must not report as allocation-failed")
	}
	if GetErrorCode(err) != ErrCodeHandleClosed {
		t.Fatalf("GetErrorCode = %v", GetErrorCode(err))
	}
}

func TestNewErrAllocationFailedWrapsCause(t *testing.T) {
	cause := goerrors.New("out of memory")
	err := NewErrAllocationFailed(1 << 20, cause)
	if !IsAllocationFailed(err) {
		t.Fatal("IsAllocationFailed should recognize its own constructor")
	}
	if !goerrors.Is(err, cause) {
		t.Fatal("wrapped cause should be reachable via errors.Is")
	}
}

func TestGetErrorCodeNilAndPlainError(t *testing.T) {
	if GetErrorCode(nil) != "" {
		t.Fatal("GetErrorCode(nil) should be empty")
	}
	if GetErrorCode(goerrors.New("plain")) != "" {
		t.Fatal("GetErrorCode of a plain error should be empty")
	}
}

func TestIsRetryableDefaultsFalse(t *testing.T) {
	if IsRetryable(nil) {
		t.Fatal("IsRetryable(nil) should be false")
	}
	if IsRetryable(NewErrHandleClosed(1)) {
		t.Fatal("a handle-closed error is not retryable")
	}
}
