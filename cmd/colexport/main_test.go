package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/colexport/pkg/config"
	"github.com/ajitpratap0/colexport/pkg/formats/arrowipc"
)

const peopleJSONL = `{"name": "Alice", "age": 35, "birthdate": "1989-03-14"}
{"name": "Bob", "age": null, "birthdate": "1991-07-01"}

["Carol", 29, null]
{"name": "Dan", "age": 41}
["Eve", 22, "2002-12-31"]
`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func exportArgs(input, output string, extra ...string) []string {
	args := []string{
		"export",
		"--input", input,
		"--column", "name:STRING",
		"--column", "age:INT64",
		"--column", "birthdate:DATE",
		"--output", output,
		"--log-level", "error",
	}
	return append(args, extra...)
}

func TestExportJSONLines(t *testing.T) {
	input := writeInput(t, peopleJSONL)
	output := filepath.Join(t.TempDir(), "people.arrows")

	_, err := runCLI(t, exportArgs(input, output, "--batch-capacity", "2")...)
	require.NoError(t, err)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	contents, err := arrowipc.ReadAll(f, mem)
	require.NoError(t, err)
	defer contents.Release()

	assert.Equal(t, arrowipc.Stream, contents.Format)
	assert.Equal(t, int64(5), contents.NumRows())
	require.Len(t, contents.Records, 3)
	assert.Equal(t, []int64{2, 2, 1}, []int64{
		contents.Records[0].NumRows(),
		contents.Records[1].NumRows(),
		contents.Records[2].NumRows(),
	})
	assert.Equal(t, "birthdate", contents.Schema.Field(2).Name)
	assert.Equal(t, 1, contents.Records[0].Column(1).NullN())
}

func TestExportCompressedFileThenInspect(t *testing.T) {
	input := writeInput(t, peopleJSONL)
	output := filepath.Join(t.TempDir(), "people.arrow.zst")

	_, err := runCLI(t, exportArgs(input, output,
		"--format", "file",
		"--ipc-compression", "lz4",
		"--compression", "zstd",
		"--batch-capacity", "4",
	)...)
	require.NoError(t, err)

	out, err := runCLI(t, "inspect", output)
	require.NoError(t, err)
	assert.Contains(t, out, "compression=zstd format=file columns=3 batches=2 rows=5")
	assert.Contains(t, out, "age: int64")
	assert.Contains(t, out, "birthdate: date32")
}

func TestExportEmptyInput(t *testing.T) {
	input := writeInput(t, "")
	output := filepath.Join(t.TempDir(), "empty.arrows")

	_, err := runCLI(t, exportArgs(input, output)...)
	require.NoError(t, err)

	out, err := runCLI(t, "inspect", output)
	require.NoError(t, err)
	assert.Contains(t, out, "columns=3 batches=1 rows=0")
}

func TestExportFailureRemovesOutput(t *testing.T) {
	input := writeInput(t, peopleJSONL+`{"name": "Zed", "age": "old"}`+"\n")
	output := filepath.Join(t.TempDir(), "people.arrows")

	_, err := runCLI(t, exportArgs(input, output, "--batch-capacity", "2")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export failed")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr), "partial output should be removed")
}

func TestExportInvalidConfig(t *testing.T) {
	input := writeInput(t, peopleJSONL)

	_, err := runCLI(t, exportArgs(input, filepath.Join(t.TempDir(), "x.arrows"), "--batch-capacity", "0")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_capacity")

	_, err = runCLI(t, "export", "--output", "x.arrows", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "colexport v"+version))
}

func TestApplyOverrides(t *testing.T) {
	v := viper.New()
	v.Set("source.input", "rows.jsonl")
	v.Set("source.columns", []string{"id:INT64", "seen:TIMESTAMP"})
	v.Set("export.batch_capacity", 64)
	v.Set("output.url", "gs://bucket/rows.arrows")

	cfg := config.NewDefaultConfig()
	cfg.Output.Format = "file"
	require.NoError(t, applyOverrides(v, cfg))

	assert.Equal(t, "rows.jsonl", cfg.Source.Input)
	assert.Equal(t, []config.ColumnConfig{{Name: "id", Type: "INT64"}, {Name: "seen", Type: "TIMESTAMP"}}, cfg.Source.Columns)
	assert.Equal(t, 64, cfg.Export.BatchCapacity)
	assert.Equal(t, "gs://bucket/rows.arrows", cfg.Output.URL)
	assert.Equal(t, "file", cfg.Output.Format, "unset keys keep their value")
	assert.NoError(t, cfg.Validate())
}

func TestParseColumns(t *testing.T) {
	cols, err := parseColumns([]string{"a:INT64", "b:varchar(20)"})
	require.NoError(t, err)
	assert.Equal(t, "varchar(20)", cols[1].Type)

	for _, bad := range []string{"a", ":INT64", "a:"} {
		_, err := parseColumns([]string{bad})
		assert.Error(t, err, bad)
	}
}
