package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"
)

const sampleCSV = `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
`

const sampleSummary = "client,available,held,total,locked\n" +
	"1,1.5000,0.0000,1.5000,false\n" +
	"2,2.0000,0.0000,2.0000,false\n"

const malformedCSV = `type,client,tx,amount
deposit,1,1,1.0
deposit,x,2,1.0
withdrawal,1,3,5.0
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// runCLI parses args like the simledger binary does and runs the selected
// command, capturing its output.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var cli Commands
	var stdout, stderr bytes.Buffer

	parser, err := kong.New(&cli,
		kong.Name("simledger"),
		kong.Writers(&stdout, &stderr),
		kong.Exit(func(int) {}),
		kong.Bind(&cli.Globals),
	)
	assert.NoError(t, err)

	ctx, err := parser.Parse(args)
	if err != nil {
		return stdout.String(), stderr.String(), err
	}

	err = ctx.Run()
	return stdout.String(), stderr.String(), err
}

func TestProcessCmd(t *testing.T) {
	input := writeFile(t, "transactions.csv", sampleCSV)

	t.Run("CSV", func(t *testing.T) {
		stdout, stderr, err := runCLI(t, "process", input)
		assert.NoError(t, err)
		assert.Equal(t, sampleSummary, stdout)
		assert.Equal(t, "", stderr)
	})

	t.Run("DefaultCommand", func(t *testing.T) {
		stdout, _, err := runCLI(t, input)
		assert.NoError(t, err)
		assert.Equal(t, sampleSummary, stdout)
	})

	t.Run("Table", func(t *testing.T) {
		stdout, _, err := runCLI(t, "process", "--format", "table", input)
		assert.NoError(t, err)
		assert.Equal(t, "client  available    held   total  locked\n"+
			"     1     1.5000  0.0000  1.5000  false\n"+
			"     2     2.0000  0.0000  2.0000  false\n", stdout)
	})

	t.Run("Sharded", func(t *testing.T) {
		stdout, _, err := runCLI(t, "process", "--shards", "4", input)
		assert.NoError(t, err)
		assert.Equal(t, sampleSummary, stdout)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, _, err := runCLI(t, "process", "--format", "xml", input)
		assert.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, _, err := runCLI(t, "process", filepath.Join(t.TempDir(), "missing.csv"))
		assert.Error(t, err)
	})
}

func TestProcessCmdMalformedRows(t *testing.T) {
	input := writeFile(t, "transactions.csv", malformedCSV)

	stdout, stderr, err := runCLI(t, "process", input)
	assert.NoError(t, err)
	assert.Equal(t, "client,available,held,total,locked\n1,1.0000,0.0000,1.0000,false\n", stdout)
	assert.Contains(t, stderr, "skipping malformed row")
	assert.Contains(t, stderr, `"field": "client"`)
	assert.Contains(t, stderr, "1 malformed row(s) skipped")
}

func TestProcessCmdLogLevel(t *testing.T) {
	input := writeFile(t, "transactions.csv", malformedCSV)

	t.Run("Debug", func(t *testing.T) {
		_, stderr, err := runCLI(t, "--log-level", "debug", "process", input)
		assert.NoError(t, err)
		assert.Contains(t, stderr, "transaction rejected")
		assert.Contains(t, stderr, `"reason": "insufficient_balance"`)
	})

	t.Run("Error", func(t *testing.T) {
		_, stderr, err := runCLI(t, "--log-level", "error", "process", input)
		assert.NoError(t, err)
		assert.NotContains(t, stderr, "skipping malformed row")
	})
}

func TestProcessCmdOutput(t *testing.T) {
	input := writeFile(t, "transactions.csv", sampleCSV)

	t.Run("NewFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out", "summary.csv")

		stdout, stderr, err := runCLI(t, "process", "--output", path, input)
		assert.NoError(t, err)
		assert.Equal(t, "", stdout)
		assert.Contains(t, stderr, "Wrote 2 account(s)")

		written, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, sampleSummary, string(written))
	})

	t.Run("ExistingFileWithoutForce", func(t *testing.T) {
		path := writeFile(t, "summary.csv", "keep me")

		// Tests do not run in a terminal, so the prompt answers no.
		_, _, err := runCLI(t, "process", "--output", path, input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "use --force to overwrite")

		written, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, "keep me", string(written))
	})

	t.Run("ExistingFileWithForce", func(t *testing.T) {
		path := writeFile(t, "summary.csv", "replace me")

		_, _, err := runCLI(t, "process", "--force", "--output", path, input)
		assert.NoError(t, err)

		written, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, sampleSummary, string(written))
	})
}

func TestProcessCmdOutputKeptOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.csv")
	assert.NoError(t, os.WriteFile(path, []byte(sampleSummary), 0600))
	input := writeFile(t, "transactions.csv", "type,tx\ndeposit,1\n")

	_, _, err := runCLI(t, "process", "--force", "--output", path, input)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `missing required column "client"`)

	written, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, sampleSummary, string(written))

	// No temporary file is left behind.
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(entries))
}

func TestProcessCmdTelemetry(t *testing.T) {
	input := writeFile(t, "transactions.csv", sampleCSV)

	stdout, stderr, err := runCLI(t, "--telemetry", "process", input)
	assert.NoError(t, err)
	assert.Equal(t, sampleSummary, stdout)
	assert.Contains(t, stderr, "process transactions.csv")
	assert.Contains(t, stderr, "loader.load transactions.csv")
	assert.Contains(t, stderr, "formatter.write (2 accounts)")
	assert.Contains(t, stderr, "rows.decoded")
}

func TestCheckCmd(t *testing.T) {
	t.Run("Passes", func(t *testing.T) {
		input := writeFile(t, "transactions.csv", sampleCSV)

		stdout, stderr, err := runCLI(t, "check", input)
		assert.NoError(t, err)
		assert.Contains(t, stdout, "5 row(s), 2 account(s), 4 transaction(s) applied")
		assert.Contains(t, stdout, "1 transaction(s) rejected (insufficient_balance: 1)")
		assert.Contains(t, stdout, "✓ Check passed")
		assert.Contains(t, stderr, "withdrawal 5 rejected for client 2: insufficient balance")
	})

	t.Run("MalformedRows", func(t *testing.T) {
		input := writeFile(t, "transactions.csv", malformedCSV)

		stdout, stderr, err := runCLI(t, "check", input)

		var cmdErr *CommandError
		assert.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, ExitMalformedRows, cmdErr.ExitCode())

		assert.Contains(t, stdout, "3 row(s), 1 account(s), 1 transaction(s) applied")
		assert.Contains(t, stderr, input+`:3:9: invalid client "x": invalid syntax`)
		assert.Contains(t, stderr, "   deposit,x,2,1.0\n           ^\n")
		assert.Contains(t, stderr, input+":4: withdrawal 3 rejected for client 1: insufficient balance")
		assert.Contains(t, stderr, "✗ 1 malformed row(s) found")
	})

	t.Run("Strict", func(t *testing.T) {
		input := writeFile(t, "transactions.csv", sampleCSV)

		_, stderr, err := runCLI(t, "check", "--strict", "--quiet", input)

		var cmdErr *CommandError
		assert.True(t, errors.As(err, &cmdErr))
		assert.Equal(t, ExitRejectedTransactions, cmdErr.ExitCode())
		assert.Contains(t, stderr, "✗ 1 transaction(s) rejected")
	})

	t.Run("Quiet", func(t *testing.T) {
		input := writeFile(t, "transactions.csv", malformedCSV)

		_, stderr, err := runCLI(t, "check", "--quiet", input)
		assert.Error(t, err)
		assert.NotContains(t, stderr, "invalid client")
		assert.Contains(t, stderr, "1 malformed row(s) found")
	})

	t.Run("MissingColumn", func(t *testing.T) {
		input := writeFile(t, "transactions.csv", "type,tx\ndeposit,1\n")

		_, _, err := runCLI(t, "check", input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), `missing required column "client"`)
	})
}

func TestDecodeCmd(t *testing.T) {
	input := writeFile(t, "transactions.csv", malformedCSV)

	stdout, stderr, err := runCLI(t, "doctor", "decode", input)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Equal(t, 2, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "2 "))
	assert.Contains(t, lines[0], "ledger.Transaction{")
	assert.Contains(t, lines[0], "Kind: ledger.TagKind(deposit)")
	assert.Contains(t, lines[0], "Amount: ledger.Amount(1.0000)")
	assert.True(t, strings.HasPrefix(lines[1], "4 "))
	assert.Contains(t, lines[1], "ID: 3")
	assert.Contains(t, stderr, `invalid client "x"`)
}

func TestFileOrStdinAbsoluteFilename(t *testing.T) {
	t.Chdir(t.TempDir())

	wd, err := os.Getwd()
	assert.NoError(t, err)

	file := &FileOrStdin{Filename: "transactions.csv"}
	assert.Equal(t, filepath.Join(wd, "transactions.csv"), file.GetAbsoluteFilename())

	stdin := &FileOrStdin{Filename: stdinFilename}
	assert.Equal(t, stdinFilename, stdin.GetAbsoluteFilename())
}

func TestGlobalsLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := (&Globals{}).logger(&buf)
	assert.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.Equal(t, "WARN\tshown\n", buf.String())

	_, err = newLogger("loud", &buf)
	assert.Error(t, err)
}
