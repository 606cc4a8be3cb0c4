package core

import (
	"errors"
	"testing"
)

func TestSelect_FirstAvailableInOrder(t *testing.T) {
	a := nativeCandidate("a", 30)
	b := nativeCandidate("b", 20)
	portable := portableCandidate()
	ordered := []TransportCandidate{a, b, portable}

	results := []ProbeResult{
		unavailableResult(a, NativeUnavailable("a", errors.New("missing"))),
		availableResult(b, "ok"),
	}
	selected, err := Select(ordered, results)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selected.ID() != "b" {
		t.Fatalf("expected b, got %q", selected.ID())
	}
	rejected := selected.Rejected()
	if len(rejected) != 1 || rejected[0].Candidate.ID != "a" {
		t.Fatalf("expected a to be recorded as rejected, got %+v", rejected)
	}
}

func TestSelect_NeverPicksUnavailable(t *testing.T) {
	a := nativeCandidate("a", 30)
	portable := portableCandidate()

	results := []ProbeResult{
		unavailableResult(a, errors.New("missing")),
		availableResult(portable, "fallback"),
	}
	selected, err := Select([]TransportCandidate{a, portable}, results)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selected.ID() != TransportPortable || !selected.IsFallback() {
		t.Fatalf("expected portable fallback, got %q", selected.ID())
	}
}

func TestSelect_SkipsUnprobedCandidates(t *testing.T) {
	a := nativeCandidate("a", 30)
	b := nativeCandidate("b", 20)

	selected, err := Select([]TransportCandidate{a, b}, []ProbeResult{availableResult(b, "ok")})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selected.ID() != "b" || len(selected.Rejected()) != 0 {
		t.Fatalf("unexpected selection %q rejected=%d", selected.ID(), len(selected.Rejected()))
	}
}

func TestSelect_NoWinner(t *testing.T) {
	a := nativeCandidate("a", 30)
	_, err := Select([]TransportCandidate{a}, []ProbeResult{unavailableResult(a, errors.New("missing"))})
	if !errors.Is(err, ErrNoUsableTransport) {
		t.Fatalf("expected no usable transport, got %v", err)
	}

	_, err = Select([]TransportCandidate{a}, nil)
	if !errors.Is(err, ErrNoUsableTransport) {
		t.Fatalf("expected no usable transport without results, got %v", err)
	}
}

func TestSelectedTransport_OpenEventLoopRequiresProvider(t *testing.T) {
	selected, err := Select([]TransportCandidate{portableCandidate()}, []ProbeResult{availableResult(portableCandidate(), "fallback")})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := selected.OpenEventLoop(); err == nil {
		t.Fatalf("expected an unbound selection to refuse opening a loop")
	}

	bound := selected.withProvider(PortableProvider{})
	handle, err := bound.OpenEventLoop()
	if err != nil {
		t.Fatalf("open event loop: %v", err)
	}
	if err := handle.Check(); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := handle.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
