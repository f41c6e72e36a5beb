// AM Sweep - modulation index sweep for the AM simulator
// This program builds the configured signal once per modulation index in
// parallel and tabulates SNR and THD for each.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"am-simulator/internal/config"
	"am-simulator/internal/logging"
	"am-simulator/internal/sweep"
	"am-simulator/internal/version"
)

var (
	cfgFile     string // Configuration file path
	verbose     bool   // Enable verbose logging
	showVersion bool   // Show version information
)

var rootCmd = &cobra.Command{
	Use:   "am-sweep",
	Short: "Sweep the modulation index of a simulated AM signal",
	Long: `AM Sweep builds the signal described by the configuration file once for
every modulation index in [from, to] and reports SNR and THD for each.

Example usage:
  am-sweep --from 0 --to 2 --step 0.25
  am-sweep -c config.yaml --workers 8 --seed 42`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.Get("am-sweep"))
			return
		}

		if err := runSweep(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.DefaultConfig()

	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "./config.yaml", "config file (default is ./config.yaml)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")

	rootCmd.Flags().Float64("from", defaults.Sweep.From, "first modulation index")
	rootCmd.Flags().Float64("to", defaults.Sweep.To, "last modulation index")
	rootCmd.Flags().Float64("step", defaults.Sweep.Step, "modulation index step")
	rootCmd.Flags().IntP("workers", "j", defaults.Sweep.Workers, "concurrent builds")
	rootCmd.Flags().Int64("seed", defaults.Signal.Seed, "noise seed (0 seeds from the clock)")

	viper.BindPFlag("sweep.from", rootCmd.Flags().Lookup("from"))
	viper.BindPFlag("sweep.to", rootCmd.Flags().Lookup("to"))
	viper.BindPFlag("sweep.step", rootCmd.Flags().Lookup("step"))
	viper.BindPFlag("sweep.workers", rootCmd.Flags().Lookup("workers"))
	viper.BindPFlag("signal.seed", rootCmd.Flags().Lookup("seed"))
}

func initConfig() {
	viper.SetConfigFile(cfgFile)
	viper.SetEnvPrefix("AMSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func runSweep() error {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	logger, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	spec, err := cfg.Signal.Spec()
	if err != nil {
		return err
	}

	indices, err := sweep.Indices(cfg.Sweep.From, cfg.Sweep.To, cfg.Sweep.Step)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🔄 Sweeping %s modulation index %.2f to %.2f (%d builds, %d workers)\n",
		spec.Variant, cfg.Sweep.From, cfg.Sweep.To, len(indices), cfg.Sweep.Workers)

	start := time.Now()
	points, err := sweep.Run(ctx, spec, indices, cfg.Sweep.Workers, cfg.Signal.Seed)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	logger.Info("sweep complete",
		zap.Int("points", len(points)),
		zap.Duration("elapsed", time.Since(start)))

	fmt.Printf("\n%8s %12s %12s\n", "index", "SNR (dB)", "THD (%)")
	for _, p := range points {
		thd := "undefined"
		if p.Report.THDDefined {
			thd = fmt.Sprintf("%.4f", p.Report.THD.Percent)
		}
		fmt.Printf("%8.3f %12.2f %12s\n", p.Index, p.Report.SNR.DB, thd)
	}

	if best, ok := sweep.BestSNR(points); ok {
		fmt.Printf("\n✅ Best SNR %.2f dB at index %.3f\n", best.Report.SNR.DB, best.Index)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
