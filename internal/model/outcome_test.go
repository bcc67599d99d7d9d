package model

import (
	"errors"
	"testing"
)

func TestNewSuccess(t *testing.T) {
	t.Parallel()

	findings := []Finding{NewFinding("missing_h1", CategoryContent, "no H1", "0 H1 elements")}
	o := NewSuccess("content", CategoryContent, findings)

	if o.Status != OutcomeSuccess || o.StatusText != "success" {
		t.Errorf("status = %v/%q, want success", o.Status, o.StatusText)
	}
	if len(o.Findings) != 1 {
		t.Errorf("findings = %d, want 1", len(o.Findings))
	}
	if !o.Usable() {
		t.Error("success outcome must be usable")
	}
}

func TestNewDegraded(t *testing.T) {
	t.Parallel()

	o := NewDegraded("image", CategoryImage, nil, "no input: page has no images")

	if o.Status != OutcomeDegraded || o.StatusText != "degraded" {
		t.Errorf("status = %v/%q, want degraded", o.Status, o.StatusText)
	}
	if o.Reason == "" {
		t.Error("degraded outcome must carry a reason")
	}
	if !o.Usable() {
		t.Error("degraded outcome must be usable")
	}
}

func TestNewFailed(t *testing.T) {
	t.Parallel()

	cause := errors.New("inference backend unavailable")
	o := NewFailed("keyword", CategoryKeyword, cause)

	if o.Status != OutcomeFailed || o.StatusText != "failed" {
		t.Errorf("status = %v/%q, want failed", o.Status, o.StatusText)
	}
	if !errors.Is(o.Err, cause) {
		t.Error("failed outcome must preserve the cause")
	}
	if o.ErrMessage != cause.Error() {
		t.Errorf("ErrMessage = %q, want %q", o.ErrMessage, cause.Error())
	}
	if o.Usable() {
		t.Error("failed outcome must not be usable")
	}
	if len(o.Findings) != 0 {
		t.Error("failed outcome must carry no findings")
	}
}

func TestOutcomeStatusString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status OutcomeStatus
		want   string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeDegraded, "degraded"},
		{OutcomeFailed, "failed"},
		{OutcomeStatus(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("OutcomeStatus(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}
