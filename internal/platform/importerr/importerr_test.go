package importerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := AtLine(KindSchema, "normalize", 7, errors.New("empty hostname"))
	want := "schema_error (op=normalize) line 7: empty hostname"
	if err.Error() != want {
		t.Fatalf("Error: want=%q got=%q", want, err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("run: %w", New(KindConnectivity, "verify", cause))
	if !Is(wrapped, KindConnectivity) {
		t.Fatalf("Is: expected connectivity kind, got=%q", KindOf(wrapped))
	}
	if !errors.Is(wrapped, cause) {
		t.Fatalf("errors.Is: cause lost")
	}
	if Is(wrapped, KindStore) {
		t.Fatalf("Is: unexpected store kind")
	}
}

func TestRowScoped(t *testing.T) {
	if RowScoped(New(KindSchema, "header", errors.New("bad header"))) {
		t.Fatalf("header error must not be row scoped")
	}
	if !RowScoped(AtLine(KindSchema, "normalize", 3, errors.New("bad type"))) {
		t.Fatalf("line error must be row scoped")
	}
	if RowScoped(AtLine(KindStore, "count", 3, errors.New("boom"))) {
		t.Fatalf("store error must not be row scoped")
	}
	if got := LineOf(fmt.Errorf("wrapped: %w", AtLine(KindSchema, "normalize", 12, errors.New("x")))); got != 12 {
		t.Fatalf("LineOf: want=12 got=%d", got)
	}
	if RowScoped(nil) {
		t.Fatalf("nil must not be row scoped")
	}
}
