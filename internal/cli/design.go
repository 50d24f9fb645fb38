package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"doelab/internal/doe"
	"doelab/internal/services"
)

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "Generate a design matrix",
	Long: `Generate a design matrix from a YAML or JSON design file.

The file holds strategy, num_samples, variables and an optional seed.
Flags override the file.

Examples:
  doelab design --file oven.yaml
  doelab design --file oven.yaml --strategy factorial --out runs.csv
  doelab design --file oven.json --seed 42 --out runs.xlsx`,
	RunE: runDesign,
}

// Flags
var (
	designFile     string
	designOut      string
	designStrategy string
	designSamples  int
	designSeed     uint64
)

func init() {
	rootCmd.AddCommand(designCmd)

	designCmd.Flags().StringVarP(&designFile, "file", "f", "", "Design file (.yaml, .yml or .json)")
	designCmd.Flags().StringVarP(&designOut, "out", "o", "", "Write the matrix to a .csv or .xlsx file instead of stdout")
	designCmd.Flags().StringVarP(&designStrategy, "strategy", "s", "", "Override the sampling strategy")
	designCmd.Flags().IntVarP(&designSamples, "samples", "n", 0, "Override num_samples")
	designCmd.Flags().Uint64Var(&designSeed, "seed", 0, "Seed for reproducible sampling")
	_ = designCmd.MarkFlagRequired("file")
}

func runDesign(cmd *cobra.Command, args []string) error {
	files := newFileValidator()
	if err := files.ValidateDesignFile(designFile); err != nil {
		return err
	}
	req, err := readDesignFile(designFile)
	if err != nil {
		return err
	}
	if designStrategy != "" {
		req.Strategy = doe.Strategy(designStrategy)
	}
	if designSamples > 0 {
		req.NumSamples = designSamples
	}
	if cmd.Flags().Changed("seed") {
		seed := designSeed
		req.Seed = &seed
	}

	ctx := commandContext(cmd)
	svc := services.NewDesignService(cfg.Analysis.MaxDesignRuns, nil, logger)

	if designOut == "" {
		m, err := svc.Generate(ctx, *req)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), m)
	}

	if err := files.ValidateOutputFile(designOut); err != nil {
		return err
	}
	format, err := services.ParseExportFormat(strings.TrimPrefix(filepath.Ext(designOut), "."))
	if err != nil {
		return err
	}
	f, err := os.Create(designOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", designOut, err)
	}
	m, err := svc.Export(ctx, *req, format, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(designOut)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d runs x %d columns to %s\n", m.NumRuns, len(m.Columns), designOut)
	return nil
}

// readDesignFile decodes a design request, choosing JSON or YAML by extension
func readDesignFile(path string) (*doe.DesignRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read design file: %w", err)
	}

	var req doe.DesignRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &req)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		return nil, fmt.Errorf("unsupported design file %q: use .yaml, .yml or .json", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse design file: %w", err)
	}
	return &req, nil
}
