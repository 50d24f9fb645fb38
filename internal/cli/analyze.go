package cli

import (
	"github.com/spf13/cobra"

	"doelab/internal/estimation"
	"doelab/internal/services"
	"doelab/internal/spc"
)

var spcCmd = &cobra.Command{
	Use:   "spc",
	Short: "Control chart, histogram and Pareto summary of a table",
	Long: `Run the process control report on a CSV or XLSX file.

Examples:
  doelab spc --file line3.csv --target thickness
  doelab spc --file line3.xlsx --target thickness --factor defect --sigma 2`,
	RunE: runSPC,
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Confidence interval of the mean",
	Long: `Estimate a t-based confidence interval of the mean.

Examples:
  doelab estimate --data 9.8,10.1,10.0,9.9
  doelab estimate --file runs.csv --column yield --confidence 0.99`,
	RunE: runEstimate,
}

var effectSizeCmd = &cobra.Command{
	Use:   "effect-size",
	Short: "Cohen's d between two groups",
	Long: `Compute Cohen's d with a pooled standard deviation.

Example:
  doelab effect-size --a 1,2,3,4 --b 3,4,5,6`,
	RunE: runEffectSize,
}

var advancedCmd = &cobra.Command{
	Use:   "advanced",
	Short: "MLE, MAP and kernel density estimates",
	Long: `Compute maximum likelihood and maximum a posteriori estimates of a
normal mean, plus a Gaussian kernel density curve.

Example:
  doelab advanced --data 4.9,5.2,5.0,5.1 --prior-mean 5 --prior-std 0.5`,
	RunE: runAdvanced,
}

// Flags
var (
	spcFile   string
	spcTarget string
	spcFactor string
	spcSigma  float64

	seriesData   string
	seriesFile   string
	seriesColumn string
	confidence   float64

	groupA string
	groupB string

	priorMean float64
	priorStd  float64
)

func init() {
	rootCmd.AddCommand(spcCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(effectSizeCmd)
	rootCmd.AddCommand(advancedCmd)

	spcCmd.Flags().StringVarP(&spcFile, "file", "f", "", "CSV or XLSX file with a header row")
	spcCmd.Flags().StringVarP(&spcTarget, "target", "t", "", "Numeric column for the control chart and histogram")
	spcCmd.Flags().StringVar(&spcFactor, "factor", "", "Categorical column for the Pareto chart")
	spcCmd.Flags().Float64Var(&spcSigma, "sigma", spc.DefaultSigma, "Control limit width in standard deviations")
	_ = spcCmd.MarkFlagRequired("file")
	_ = spcCmd.MarkFlagRequired("target")

	for _, c := range []*cobra.Command{estimateCmd, advancedCmd} {
		c.Flags().StringVarP(&seriesData, "data", "d", "", "Comma separated values")
		c.Flags().StringVarP(&seriesFile, "file", "f", "", "CSV or XLSX file to read values from")
		c.Flags().StringVar(&seriesColumn, "column", "", "Column of --file holding the values")
	}
	estimateCmd.Flags().Float64Var(&confidence, "confidence", estimation.DefaultConfidence, "Confidence level in (0, 1)")

	effectSizeCmd.Flags().StringVar(&groupA, "a", "", "Comma separated values of group A")
	effectSizeCmd.Flags().StringVar(&groupB, "b", "", "Comma separated values of group B")
	_ = effectSizeCmd.MarkFlagRequired("a")
	_ = effectSizeCmd.MarkFlagRequired("b")

	advancedCmd.Flags().Float64Var(&priorMean, "prior-mean", 0, "Mean of the normal prior")
	advancedCmd.Flags().Float64Var(&priorStd, "prior-std", 1, "Standard deviation of the normal prior")
}

func newStatisticsService() *services.StatisticsService {
	return services.NewStatisticsService(cfg.Analysis.MaxSampleSize, nil, logger)
}

func runSPC(cmd *cobra.Command, args []string) error {
	table, err := readTable(spcFile)
	if err != nil {
		return err
	}

	svc := services.NewSPCService(cfg.Analysis.MaxSampleSize, nil, logger)
	res, err := svc.Analyze(commandContext(cmd), spc.AnalysisRequest{
		Data:           table,
		TargetVariable: spcTarget,
		FactorVariable: spcFactor,
		Sigma:          spcSigma,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	data, err := loadSeries(seriesData, seriesFile, seriesColumn)
	if err != nil {
		return err
	}
	res, err := newStatisticsService().Interval(commandContext(cmd), data, confidence)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func runEffectSize(cmd *cobra.Command, args []string) error {
	a, err := parseSeries(groupA)
	if err != nil {
		return err
	}
	b, err := parseSeries(groupB)
	if err != nil {
		return err
	}
	res, err := newStatisticsService().EffectSize(commandContext(cmd), a, b)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func runAdvanced(cmd *cobra.Command, args []string) error {
	data, err := loadSeries(seriesData, seriesFile, seriesColumn)
	if err != nil {
		return err
	}
	res, err := newStatisticsService().Advanced(commandContext(cmd), data, priorMean, priorStd)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), res)
}
