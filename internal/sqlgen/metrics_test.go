package sqlgen

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrument_CountsOutcomes(t *testing.T) {
	okBefore := testutil.ToFloat64(generationsTotal.WithLabelValues("stub-ok", modeGenerate, "ok"))
	errBefore := testutil.ToFloat64(generationsTotal.WithLabelValues("stub-err", modeDebug, "error"))

	g := Instrument(&stubGenerator{out: "SELECT 1;"}, "stub-ok")
	if got, err := g.Generate(testCtx(t), "p"); err != nil || got != "SELECT 1;" {
		t.Fatalf("generate = %q, %v", got, err)
	}
	bad := &stubGenerator{err: errBackend}
	g = Instrument(bad, "stub-err")
	if _, err := g.Debug(testCtx(t), "p"); !errors.Is(err, errBackend) {
		t.Fatalf("error must pass through unchanged: %v", err)
	}

	if d := testutil.ToFloat64(generationsTotal.WithLabelValues("stub-ok", modeGenerate, "ok")) - okBefore; d != 1 {
		t.Fatalf("ok counter delta=%v", d)
	}
	if d := testutil.ToFloat64(generationsTotal.WithLabelValues("stub-err", modeDebug, "error")) - errBefore; d != 1 {
		t.Fatalf("error counter delta=%v", d)
	}
	if err := g.Close(); err != nil || !bad.closed {
		t.Fatalf("close must reach the wrapped generator")
	}
}
