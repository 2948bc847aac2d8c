package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDiagnostics(t *testing.T, level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var out, errOut bytes.Buffer
	return NewDiagnosticSystem(level, &out, &errOut), &out, &errOut
}

func TestDiagnosticLevels(t *testing.T) {
	d, out, errOut := newTestDiagnostics(t, DiagnosticInfo)

	d.Info("scanning %d packages", 2)
	d.Verbose("hidden")
	d.Debug("hidden")
	d.Warn("careful")
	d.Error("broken")

	assert.Equal(t, "[INFO] scanning 2 packages\n", out.String())
	assert.Equal(t, "[WARN] careful\n[ERROR] broken\n", errOut.String())
}

func TestQuietDiagnostics(t *testing.T) {
	d, out, errOut := newTestDiagnostics(t, DiagnosticError)

	d.Section("weave")
	d.Success("done")
	d.Check(true, "matched")
	d.Error("broken")

	assert.Empty(t, out.String())
	assert.Equal(t, "[ERROR] broken\n", errOut.String())
}

func TestDiagnosticListsAndChecks(t *testing.T) {
	d, out, _ := newTestDiagnostics(t, DiagnosticInfo)

	d.Category("Bindings")
	d.Indent()
	d.List("log %s", "allOrder()")
	d.Check(true, "Hello")
	d.Check(false, "Internal")
	d.Unindent()
	d.Unindent()
	d.Summary("Done", map[string]interface{}{"types": 2, "methods": 5})

	assert.Equal(t, "\n[Bindings]\n"+
		"  - log allOrder()\n"+
		"  ✓ Hello\n"+
		"  ✗ Internal\n"+
		"\nDone\n"+
		"   methods: 5\n"+
		"   types: 2\n", out.String())
}
