package faults

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	fault := New(Transform, "no reportable rows")
	if KindOf(fault) != Transform {
		t.Errorf("expected transform kind, got %s", KindOf(fault))
	}

	wrapped := fmt.Errorf("processing record: %w", fault)
	if KindOf(wrapped) != Transform {
		t.Errorf("kind lost through wrapping, got %s", KindOf(wrapped))
	}

	if KindOf(errors.New("some panic")) != Unknown {
		t.Errorf("untagged error should classify as unknown")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	fault := Wrap(Read, cause, "unable to fetch object")
	if !errors.Is(fault, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if !strings.Contains(fault.Error(), "connection reset") {
		t.Errorf("cause missing from message: %s", fault.Error())
	}
}

func TestContextInMessage(t *testing.T) {
	fault := New(Validation, "missing 'meta' field").
		With("bucket", "fhir-lca-persist").
		With("key", "inbound/file.json")

	msg := fault.Error()
	if !strings.Contains(msg, "bucket=fhir-lca-persist") || !strings.Contains(msg, "key=inbound/file.json") {
		t.Errorf("context missing from message: %s", msg)
	}
	if fault.Kind() != Validation {
		t.Errorf("kind changed by adding context: %s", fault.Kind())
	}
}
