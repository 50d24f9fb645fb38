package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ovenYAML = `strategy: factorial
variables:
  - name: Temp
    type: continuous
    min: 100
    max: 200
  - name: Catalyst
    type: categorical
    levels: [A, B]
`

const ovenLHSJSON = `{"strategy":"lhs","num_samples":6,"variables":[{"name":"Temp","type":"continuous","min":100,"max":200},{"name":"Time","type":"continuous","min":10,"max":20}]}`

// resetFlags restores every flag to its default between runs
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDesignCommand(t *testing.T) {
	t.Run("yaml to stdout", func(t *testing.T) {
		out, err := execute(t, "design", "--file", writeFile(t, "oven.yaml", ovenYAML))
		require.NoError(t, err)

		var m struct {
			Strategy string           `json:"strategy"`
			NumRuns  int              `json:"num_runs"`
			Columns  []string         `json:"columns"`
			Matrix   []map[string]any `json:"matrix"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &m))
		assert.Equal(t, "factorial", m.Strategy)
		assert.Equal(t, 4, m.NumRuns)
		assert.Equal(t, []string{"Temp", "Catalyst"}, m.Columns)
		assert.Len(t, m.Matrix, 4)
	})

	t.Run("seed makes output reproducible", func(t *testing.T) {
		path := writeFile(t, "lhs.json", ovenLHSJSON)
		first, err := execute(t, "design", "--file", path, "--seed", "7")
		require.NoError(t, err)
		second, err := execute(t, "design", "--file", path, "--seed", "7")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("flag overrides strategy", func(t *testing.T) {
		path := writeFile(t, "lhs.json", ovenLHSJSON)
		out, err := execute(t, "design", "--file", path, "--strategy", "random", "--samples", "3")
		require.NoError(t, err)
		assert.Contains(t, out, `"strategy": "random"`)
		assert.Contains(t, out, `"num_runs": 3`)
	})

	t.Run("csv export", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "runs.csv")
		out, err := execute(t, "design", "--file", writeFile(t, "oven.yaml", ovenYAML), "--out", dest)
		require.NoError(t, err)
		assert.Contains(t, out, "Wrote 4 runs x 2 columns")

		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "\ufeffRun,Temp,Catalyst\n"))
	})

	t.Run("xlsx export", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "runs.xlsx")
		_, err := execute(t, "design", "--file", writeFile(t, "oven.yaml", ovenYAML), "--out", dest)
		require.NoError(t, err)

		info, err := os.Stat(dest)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("unsupported export format", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "runs.pdf")
		_, err := execute(t, "design", "--file", writeFile(t, "oven.yaml", ovenYAML), "--out", dest)
		require.Error(t, err)
		assert.NoFileExists(t, dest)
	})

	t.Run("invalid design leaves no file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "runs.csv")
		bad := `{"strategy":"lhs","num_samples":4,"variables":[{"name":"x","type":"continuous","min":5,"max":1}]}`
		_, err := execute(t, "design", "--file", writeFile(t, "bad.json", bad), "--out", dest)
		require.Error(t, err)
		assert.NoFileExists(t, dest)
	})

	t.Run("unknown file type", func(t *testing.T) {
		_, err := execute(t, "design", "--file", writeFile(t, "oven.toml", "strategy = 'lhs'"))
		assert.ErrorContains(t, err, "unsupported design file")
	})

	t.Run("file is required", func(t *testing.T) {
		_, err := execute(t, "design")
		assert.ErrorContains(t, err, "file")
	})
}

func TestSPCCommand(t *testing.T) {
	csv := "thickness,defect\n1.0,Scratch\n2.0,Dent\n3.0,Scratch\n"
	path := writeFile(t, "line.csv", csv)

	out, err := execute(t, "spc", "--file", path, "--target", "thickness", "--factor", "defect")
	require.NoError(t, err)

	var res map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2.0, res["control_chart"]["mean"])
	assert.Equal(t, []any{"Scratch", "Dent"}, res["pareto"]["labels"])

	_, err = execute(t, "spc", "--file", writeFile(t, "line.pdf", csv), "--target", "thickness")
	assert.Error(t, err)
}

func TestStatisticsCommands(t *testing.T) {
	t.Run("estimate inline", func(t *testing.T) {
		out, err := execute(t, "estimate", "--data", "1,2,3,4,5")
		require.NoError(t, err)
		assert.Contains(t, out, `"mean": 3`)
		assert.Contains(t, out, `"confidence_level": 0.95`)
	})

	t.Run("estimate from file column", func(t *testing.T) {
		path := writeFile(t, "runs.csv", "run,yield\n1,10\n2,12\n3,14\n")
		out, err := execute(t, "estimate", "--file", path, "--column", "yield", "--confidence", "0.9")
		require.NoError(t, err)
		assert.Contains(t, out, `"mean": 12`)
		assert.Contains(t, out, `"confidence_level": 0.9`)
	})

	t.Run("estimate needs input", func(t *testing.T) {
		_, err := execute(t, "estimate")
		assert.ErrorContains(t, err, "--data or --file")
	})

	t.Run("estimate insufficient data", func(t *testing.T) {
		_, err := execute(t, "estimate", "--data", "4")
		assert.Error(t, err)
	})

	t.Run("effect size", func(t *testing.T) {
		out, err := execute(t, "effect-size", "--a", "1,2,3", "--b", "4,5,6")
		require.NoError(t, err)
		assert.Contains(t, out, `"cohens_d": -3`)
	})

	t.Run("advanced", func(t *testing.T) {
		out, err := execute(t, "advanced", "--data", "4.9,5.2,5.0,5.1", "--prior-mean", "5", "--prior-std", "0.5")
		require.NoError(t, err)

		var res map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Contains(t, res, "map_mean")
		assert.Len(t, res["kde_x"], 200)
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "DOE Lab v")
}

func TestParseSeries(t *testing.T) {
	tests := []struct {
		in      string
		want    []float64
		wantErr bool
	}{
		{"1,2,3", []float64{1, 2, 3}, false},
		{"1, 2.5 ,\t-3", []float64{1, 2.5, -3}, false},
		{"", []float64{}, false},
		{"1,x", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSeries(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
