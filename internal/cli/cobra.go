package cli

import (
	"fmt"
	"log/slog"
	"os"

	"phasepeak/internal/logging"
	"phasepeak/pkg/config"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root Cobra command
func NewRootCmd(cfg *config.Config, log *slog.Logger) *cobra.Command {
	root := NewRoot(cfg, log)

	rootCmd := &cobra.Command{
		Use:   "phasepeak",
		Short: "Phasepeak estimates image translations by phase correlation",
		Long: `Phasepeak correlates two equally sized images in the frequency domain and
reports the most likely translations of the moving image relative to the fixed
image, ranked by confidence and refined to sub-pixel precision.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newEstimateCmd(root))
	rootCmd.AddCommand(newConfigCmd(root))
	rootCmd.AddCommand(newVersionCmd(root))

	return rootCmd
}

func newEstimateCmd(root *Root) *cobra.Command {
	var (
		configPath      string
		count           int
		interpolation   string
		merge           int
		zeroSuppression float64
		tolerance       int
		cores           int
		saveDebug       bool
		debugDir        string
		format          string
		req             estimateRequest
	)

	cmd := &cobra.Command{
		Use:   "estimate <fixed> <moving>",
		Short: "Estimate the translation between two images",
		Long: `Estimate the translation of the moving image relative to the fixed image.
Both images must have the same size. Candidates are printed most confident first.
Flags override the values from the configuration file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *root.cfg
			log := root.log

			if configPath != "" {
				if _, err := os.Stat(configPath); err != nil {
					return fmt.Errorf("config file: %w", err)
				}
				loaded, err := config.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = *loaded
				log = logging.New(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
			}

			flags := cmd.Flags()
			if flags.Changed("count") {
				cfg.Estimator.OffsetCount = count
			}
			if flags.Changed("interpolation") {
				cfg.Estimator.Interpolation = interpolation
			}
			if flags.Changed("merge") {
				cfg.Estimator.MergePeaks = merge
			}
			if flags.Changed("zero-suppression") {
				cfg.Estimator.ZeroSuppression = zeroSuppression
			}
			if flags.Changed("tolerance") {
				cfg.Estimator.PixelDistanceTolerance = tolerance
			}
			if flags.Changed("cores") {
				cfg.Processing.NumCores = cores
			}
			if flags.Changed("save-intermediary") {
				cfg.Output.SaveIntermediaryResults = saveDebug
			}
			if flags.Changed("intermediary-dir") {
				cfg.Output.IntermediaryDir = debugDir
			}
			if flags.Changed("format") {
				cfg.Output.Format = format
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			req.fixedPath = args[0]
			req.movingPath = args[1]
			return runEstimate(&cfg, log, req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().IntVarP(&count, "count", "n", 4, "number of offset candidates to report")
	cmd.Flags().StringVarP(&interpolation, "interpolation", "i", "parabolic", "sub-pixel refinement (none|parabolic|cosine)")
	cmd.Flags().IntVar(&merge, "merge", 1, "merge maxima within this Chebyshev distance, 0 disables merging")
	cmd.Flags().Float64Var(&zeroSuppression, "zero-suppression", 5, "zero shift suppression aggressiveness (0-100), 0 disables it")
	cmd.Flags().IntVar(&tolerance, "tolerance", 0, "expected maximum translation in pixels, 0 derives it from the image size")
	cmd.Flags().IntVar(&cores, "cores", 0, "number of workers for the per-sample stages, 0 uses every CPU")
	cmd.Flags().Float64SliceVar(&req.fixedOrigin, "fixed-origin", nil, "physical origin of the fixed image, e.g. 0,0")
	cmd.Flags().Float64SliceVar(&req.movingOrigin, "moving-origin", nil, "physical origin of the moving image, e.g. 12.5,-3")
	cmd.Flags().Float64SliceVar(&req.spacing, "spacing", nil, "physical pixel spacing of both images, e.g. 0.5,0.5")
	cmd.Flags().BoolVar(&saveDebug, "save-intermediary", false, "write the adjusted correlation surfaces for debugging")
	cmd.Flags().StringVar(&debugDir, "intermediary-dir", "intermediary_results", "directory for intermediary surfaces")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "report format (text|json)")

	return cmd
}

func newConfigCmd(root *Root) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "phasepeak.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			root.log.Debug("wrote default configuration", "path", path)
			cmd.Printf("Wrote default configuration to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func newVersionCmd(root *Root) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("phasepeak v%s\n", Version)
		},
	}
}
