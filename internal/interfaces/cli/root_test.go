package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"ID", "STATUS"},
		[][]string{
			{"p-1", "gap"},
			{"p-2-long-id", "answered"},
		},
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "---")
	// Columns align on the widest value.
	assert.Equal(t, strings.Index(lines[0], "STATUS"), strings.Index(lines[3], "answered"))
}

func TestFormatTable_Empty(t *testing.T) {
	assert.Equal(t, "", FormatTable(nil, nil))
	out := FormatTable([]string{"A"}, nil)
	assert.Contains(t, out, "A")
}

func TestFormatTable_ShortRows(t *testing.T) {
	out := FormatTable([]string{"A", "B"}, [][]string{{"only-a"}})
	assert.Contains(t, out, "only-a")
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcdef", padRight("abcdef", 3))
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)

	cmd.SetContext(context.Background())
	_, err = GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestGetCLIContext_Present(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	want := &CLIContext{OutputFormat: "json"}
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, want))

	got, err := GetCLIContext(cmd)
	require.NoError(t, err)
	assert.Same(t, want, got)
}

func TestPrintResult_JSON(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{},
		&CLIContext{OutputFormat: "json"}))

	require.NoError(t, PrintResult(cmd, map[string]string{"status": "gap"}))
	assert.Contains(t, buf.String(), `"status": "gap"`)
}

func TestPrintResult_Table(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{},
		&CLIContext{OutputFormat: "table"}))

	require.NoError(t, PrintResult(cmd, promptTable(nil)))
	assert.Contains(t, buf.String(), "STATUS")
}

func TestPrintError(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var buf bytes.Buffer
	cmd.SetErr(&buf)

	PrintError(cmd, assert.AnError)
	assert.Contains(t, buf.String(), "Error:")

	buf.Reset()
	PrintError(cmd, nil)
	assert.Empty(t, buf.String())
}

func TestNewRootCommand_Flags(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "gapintel", cmd.Use)
	for _, flag := range []string{"config", "log-level", "output", "verbose", "timeout", "server"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing persistent flag %s", flag)
	}

	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[sub.Name()] = true
	}
	assert.True(t, subs["prompts"])
	assert.True(t, subs["opportunities"])
	assert.True(t, subs["analyze"])
}
