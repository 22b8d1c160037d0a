package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotYAML = `
name: Bani Ahmad
is_public: true
persons:
  - id: r
    name: Ahmad
    sex: MALE
    generation: 0
    marriages:
      - husband_id: r
        wife_id: w
        order: 1
        active: true
  - id: w
    name: Siti
    sex: FEMALE
    alive: true
    generation: 0
  - id: b
    name: Budi
    sex: MALE
    alive: true
    generation: 1
    father_id: r
    mother_id: w
  - id: a
    name: Ani
    sex: FEMALE
    alive: true
    generation: 1
    father_id: r
    mother_id: w
  - id: c
    name: Cahya
    sex: MALE
    alive: true
    generation: 2
    father_id: b
    mother_id: ghost
`

func writeSnapshot(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestPrint_Tree(t *testing.T) {
	path := writeSnapshot(t, "bani.yaml", snapshotYAML)

	out, errOut, err := runCmd(t, "print", path)
	require.NoError(t, err)

	want := strings.Join([]string{
		"Ahmad [0] † = Siti",
		"├── Ani [1]",
		"└── Budi [1]",
		"    └── Cahya [2]",
		"",
	}, "\n")
	assert.Equal(t, want, out)
	assert.Contains(t, errOut, "dangling_parent")
}

func TestPrint_Collapsed(t *testing.T) {
	path := writeSnapshot(t, "bani.yaml", snapshotYAML)

	out, _, err := runCmd(t, "print", path, "--expand", "0", "--spouses=false")
	require.NoError(t, err)
	assert.Equal(t, "Ahmad [0] †\n├── Ani [1]\n└── Budi [1] …\n", out)
}

func TestPrint_Generation(t *testing.T) {
	path := writeSnapshot(t, "bani.yaml", snapshotYAML)

	out, _, err := runCmd(t, "print", path, "--generation", "2", "--parent", "b")
	require.NoError(t, err)
	assert.Equal(t, "Ahmad > Budi\nGeneration 2 (1)\n  Cahya\n", out)

	out, _, err = runCmd(t, "print", path, "--generation", "9")
	require.NoError(t, err)
	assert.Equal(t, "Generation 2 (1)\n  Cahya\n", out)
}

func TestPrint_JSONSnapshot(t *testing.T) {
	path := writeSnapshot(t, "bani.json", `{"name":"Bani X","persons":[{"id":"x","name":"Xena","sex":"FEMALE","generation":0}]}`)

	out, _, err := runCmd(t, "print", path)
	require.NoError(t, err)
	assert.Equal(t, "Xena [0] †\n", out)
}

func TestPrint_InvalidSnapshot(t *testing.T) {
	path := writeSnapshot(t, "bani.yaml", "persons:\n  - id: x\n    sex: ROBOT\n")
	_, _, err := runCmd(t, "print", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid person records")

	_, _, err = runCmd(t, "print", writeSnapshot(t, "bani.txt", "x"))
	assert.Error(t, err)

	_, _, err = runCmd(t, "print")
	assert.Error(t, err)
}
