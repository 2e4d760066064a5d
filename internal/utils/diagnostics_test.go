package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticSystem_LevelFiltering(t *testing.T) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticWarn).WithWriters(&out, &errOut).WithTimestamps(false)

	d.Error("boom")
	d.Warn("careful")
	d.Info("hello")
	d.Debug("details")

	assert.Equal(t, "[ERROR] boom\n", errOut.String())
	assert.Equal(t, "[WARN] careful\n", out.String())
}

func TestDiagnosticSystem_Fields(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticDebug).WithWriters(&out, &out).WithTimestamps(false)

	d.WarnWith(Fields{
		"strategy": "heuristic",
		"method":   "getUser",
		"file":     "UserController.java",
		"line":     12,
		"error":    "bad type",
	}, "skipping method")

	assert.Equal(t,
		"[WARN] skipping method file=UserController.java line=12 method=getUser error=\"bad type\" strategy=heuristic\n",
		out.String())
}

func TestDiagnosticSystem_HooksSeeFilteredRecords(t *testing.T) {
	var records []Record
	d := NewSilentDiagnostics()
	d.AddHook(func(r Record) { records = append(records, r) })

	d.DebugWith(Fields{"file": "A.java"}, "falling back to %s", "heuristic")
	d.ErrorWith(nil, "failed")

	if assert.Len(t, records, 2) {
		assert.Equal(t, DiagnosticDebug, records[0].Level)
		assert.Equal(t, "falling back to heuristic", records[0].Message)
		assert.Equal(t, "A.java", records[0].Fields["file"])
		assert.Equal(t, DiagnosticError, records[1].Level)
	}
}

func TestDiagnosticSystem_Summary(t *testing.T) {
	var out bytes.Buffer
	d := NewDiagnosticSystem(DiagnosticInfo).WithWriters(&out, &out)

	d.Summary("Extraction Summary", map[string]interface{}{"contracts": 3, "controllers": 1})

	assert.Equal(t, "\nExtraction Summary\n   contracts: 3\n   controllers: 1\n\n", out.String())
}

func TestDiagnosticLevel_String(t *testing.T) {
	assert.Equal(t, "ERROR", DiagnosticError.String())
	assert.Equal(t, "VERBOSE", DiagnosticVerbose.String())
	assert.Equal(t, "SILENT", DiagnosticSilent.String())
}
