package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	h := &harness{
		t:         t,
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
	code, _, stderr := h.run("init")
	require.Equal(t, exitSuccess, code, stderr)
	return h
}

func (h *harness) run(args ...string) (int, string, string) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config-dir", h.configDir, "--data-dir", h.dataDir}, args...)
	code := Run(full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func (h *harness) get(section, key string) string {
	h.t.Helper()
	code, out, stderr := h.run("get", section, key)
	require.Equal(h.t, exitSuccess, code, stderr)
	return strings.TrimSpace(out)
}

func TestInitSeedsAndWritesFiles(t *testing.T) {
	h := newHarness(t)

	assert.FileExists(t, filepath.Join(h.configDir, configFileExt))
	assert.FileExists(t, filepath.Join(h.configDir, "lang", "EN.yaml"))
	assert.FileExists(t, filepath.Join(h.dataDir, "definitions.jsonl"))

	code, out, _ := h.run("init")
	assert.Equal(t, exitSuccess, code)
	assert.NotContains(t, out, "seeded", "a second init leaves the store alone")
}

func TestGetSetScenarios(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "5", h.get("TestSection3", "TestIntWithRange"))

	code, out, _ := h.run("set", "TestSection3", "TestIntWithRange", "42")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "10", strings.TrimSpace(out), "range writes clamp")
	assert.Equal(t, "10", h.get("TestSection3", "TestIntWithRange"))

	code, _, stderr := h.run("set", "TestSection3", "TestIntWithList", "7")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "not in options")
	assert.Equal(t, "2", h.get("TestSection3", "TestIntWithList"))

	code, _, _ = h.run("set", "TestSection1", "TestInt", "abc")
	assert.Equal(t, exitUserError, code)

	code, _, _ = h.run("get", "TestSection1", "Missing")
	assert.Equal(t, exitUserError, code)
}

func TestResetRestoresDefault(t *testing.T) {
	h := newHarness(t)

	code, _, _ := h.run("set", "TestSection1", "TestString", "changed")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "changed", h.get("TestSection1", "TestString"))

	code, out, _ := h.run("reset", "TestSection1", "TestString")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "A String", strings.TrimSpace(out))
	assert.Equal(t, "A String", h.get("TestSection1", "TestString"))
}

func TestOptions(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("options", "TestSection3", "TestIntWithList")
	require.Equal(t, exitSuccess, code)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "  -1", lines[0])
	assert.Equal(t, "* 2", lines[2])

	code, out, _ = h.run("--json", "options", "TestSection1", "TestString")
	require.Equal(t, exitSuccess, code)
	var options []string
	require.NoError(t, json.Unmarshal([]byte(out), &options))
	assert.Empty(t, options, "free-form keys offer nothing")
}

func TestShowJSON(t *testing.T) {
	h := newHarness(t)

	code, out, stderr := h.run("--json", "show", "GUIProperties")
	require.Equal(t, exitSuccess, code, stderr)

	var entries []entryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 4)
	byKey := make(map[string]entryJSON)
	for _, e := range entries {
		byKey[e.Key] = e
	}
	assert.Equal(t, "slider", byKey["WidthRatio"].Kind)
	assert.Equal(t, "The width ratio of the entries to the window.", byKey["WidthRatio"].Tooltip)
	assert.Equal(t, "dropdown", byKey["EntryPointStyle"].Kind)
	assert.Equal(t, "MapTool", byKey["EntryPointStyle"].Value)

	code, _, _ = h.run("show", "NoSuchSection")
	assert.Equal(t, exitUserError, code)
}

func TestShowIsolatesBrokenKeys(t *testing.T) {
	h := newHarness(t)

	path := filepath.Join(h.dataDir, "definitions.jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"definition_id":"v1","section":"TestSection2","name":"TestVector","value_type":"vector3","value":"(0, 0, 0)","ordinal":99,"created_at":"2025-01-15T10:00:00Z","updated_at":"2025-01-15T10:00:00Z"}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	code, out, stderr := h.run("show")
	require.Equal(t, exitSuccess, code, stderr)
	assert.Contains(t, out, "TestVector (Error!)")
	assert.Contains(t, out, "TestKeyCode")

	code, _, _ = h.run("get", "TestSection2", "TestVector")
	assert.Equal(t, exitUserError, code)
}

func TestLocalizedLabels(t *testing.T) {
	h := newHarness(t)

	catalog := "TestInt:\n  text: Zahl\n  desc: Eine Zahl.\n"
	require.NoError(t, os.WriteFile(filepath.Join(h.configDir, "lang", "DE.yaml"), []byte(catalog), 0o644))

	code, out, _ := h.run("--lang", "de", "--json", "get", "TestSection1", "TestInt")
	require.Equal(t, exitSuccess, code)
	var e entryJSON
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, "Zahl", e.Name)
	assert.Equal(t, "Eine Zahl.", e.Tooltip)
}

func TestTypes(t *testing.T) {
	h := newHarness(t)

	code, out, _ := h.run("--json", "types")
	require.Equal(t, exitSuccess, code)
	var list []typeJSON
	require.NoError(t, json.Unmarshal([]byte(out), &list))

	names := make(map[string]typeJSON)
	for _, tj := range list {
		names[tj.Name] = tj
	}
	assert.Equal(t, "cycling", names["bool"].Render)
	assert.Equal(t, "keymap", names["KeyCode"].Render)
	assert.Equal(t, []string{"NoIcon", "Gear", "MapTool", "SelectBox", "System", "ToggleLog"}, names["EntryPointStyle"].Members)
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"version"}, &stdout, &stderr)
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout.String(), "knobs v"+Version)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitSysError, exitCode(sysError(os.ErrPermission)))
	assert.Equal(t, exitUserError, exitCode(userError(os.ErrNotExist)))
	assert.Equal(t, exitUserError, exitCode(os.ErrInvalid))
}
