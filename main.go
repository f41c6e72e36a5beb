// AM Simulator - amplitude modulation signal simulation tool
// This program synthesizes a message, modulates it onto a carrier with one of
// five AM variants, optionally demodulates it and reports SNR and THD.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"am-simulator/internal/analysis"
	"am-simulator/internal/config"
	"am-simulator/internal/logging"
	"am-simulator/internal/pipeline"
	"am-simulator/internal/version"
)

// Command line flag variables
var (
	cfgFile     string // Configuration file path
	tones       string // Message tones as freq:amp pairs
	verbose     bool   // Enable verbose logging
	showVersion bool   // Show version information
	rows        int    // Number of sample rows to print
	force       bool   // Overwrite an existing config file
	merge       bool   // Fill missing fields of an existing config file
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "am-simulator",
	Short: "Amplitude modulation signal simulator",
	Long: `AM Simulator synthesizes a message signal, modulates it onto a cosine carrier
(DSB-AM, DSB-SC, SSB, VSB or QAM), optionally recovers it with coherent or
envelope demodulation and reports the spectrum peak, SNR and THD.

Example usage:
  am-simulator --variant DSB-AM --carrier 1000 --tones 100:1 --mod-index 0.5
  am-simulator --variant SSB --tones 100:1,250:0.5 --noise Gaussian --noise-amp 0.1 --seed 7
  am-simulator init-config ./config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.Get("am-simulator"))
			return
		}

		if err := runSimulator(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// initConfigCmd writes the default configuration to disk
var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the default configuration file",
	Long: `Write the default configuration file. An existing file is left alone unless
--force replaces it with the defaults or --merge fills in the fields it lacks.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "./config.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		action, err := writeConfigFile(path, force, merge)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("📝 %s configuration %s\n", action, path)
	},
}

// writeConfigFile creates path from the defaults. With merge, an existing
// file is loaded over the defaults and written back; with force it is
// replaced. It returns what was done.
func writeConfigFile(path string, force, merge bool) (string, error) {
	cfg := config.DefaultConfig()
	action := "Wrote default"

	if _, err := os.Stat(path); err == nil {
		switch {
		case merge:
			existing, err := config.Load(path)
			if err != nil {
				return "", err
			}
			if _, err := existing.Signal.Spec(); err != nil {
				return "", fmt.Errorf("%s: %w", path, err)
			}
			cfg = existing
			action = "Merged defaults into"
		case force:
			action = "Overwrote"
		default:
			return "", fmt.Errorf("%s already exists (use --force to overwrite or --merge to fill in defaults)", path)
		}
	}

	if err := config.Write(path, cfg); err != nil {
		return "", err
	}
	return action, nil
}

// init initializes the CLI flags and configuration
func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.DefaultConfig()
	sig := defaults.Signal

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "./config.yaml", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "show version information")

	// Signal flags
	rootCmd.Flags().String("variant", sig.Variant, "modulation variant (DSB-AM, DSB-SC, SSB, VSB, QAM)")
	rootCmd.Flags().Float64("carrier", sig.CarrierFrequency, "carrier frequency (Hz, 50-5000)")
	rootCmd.Flags().StringVarP(&tones, "tones", "t", "100:1", "message tones as freq:amp pairs (e.g. '100:1,250:0.5')")
	rootCmd.Flags().Float64P("mod-index", "k", sig.ModulationIndex, "modulation index (0-2)")
	rootCmd.Flags().Float64("phase", sig.PhaseShift, "QAM phase shift (degrees, 0-360)")
	rootCmd.Flags().StringP("waveform", "w", sig.Waveform, "message waveform (Sine, Square, Triangle, Sawtooth, Pulse)")
	rootCmd.Flags().Float64("duty", sig.DutyCycle, fmt.Sprintf("pulse duty cycle (percent, 0-%g)", pipeline.MaxDutyCycle))
	rootCmd.Flags().String("noise", sig.Noise, "noise type (None, White, Gaussian, Pink)")
	rootCmd.Flags().Float64("noise-amp", sig.NoiseAmplitude, "noise amplitude (0-1)")
	rootCmd.Flags().StringP("demod", "d", sig.Demodulation, "demodulation (None, Coherent, Non-Coherent)")
	rootCmd.Flags().IntP("samples", "n", sig.Samples, "number of samples (1024-16384)")
	rootCmd.Flags().Float64("duration", sig.Duration, "signal duration (s, 0.01-1)")
	rootCmd.Flags().Float64("alpha", sig.FilterAlpha, "low-pass filter smoothing factor (0.01-1)")
	rootCmd.Flags().Int64("seed", sig.Seed, "noise seed (0 seeds from the clock)")

	// Output flags
	rootCmd.Flags().Bool("sliding", defaults.Analysis.Sliding, "report the peak of every sliding analysis window")
	rootCmd.Flags().IntVar(&rows, "rows", 5, "number of sample rows to print")

	initConfigCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initConfigCmd.Flags().BoolVar(&merge, "merge", false, "fill missing fields of an existing file with defaults")
	rootCmd.AddCommand(initConfigCmd)

	// Bind command line flags to viper configuration keys
	viper.BindPFlag("signal.variant", rootCmd.Flags().Lookup("variant"))
	viper.BindPFlag("signal.carrier_frequency", rootCmd.Flags().Lookup("carrier"))
	viper.BindPFlag("signal.modulation_index", rootCmd.Flags().Lookup("mod-index"))
	viper.BindPFlag("signal.phase_shift", rootCmd.Flags().Lookup("phase"))
	viper.BindPFlag("signal.waveform", rootCmd.Flags().Lookup("waveform"))
	viper.BindPFlag("signal.duty_cycle", rootCmd.Flags().Lookup("duty"))
	viper.BindPFlag("signal.noise", rootCmd.Flags().Lookup("noise"))
	viper.BindPFlag("signal.noise_amplitude", rootCmd.Flags().Lookup("noise-amp"))
	viper.BindPFlag("signal.demodulation", rootCmd.Flags().Lookup("demod"))
	viper.BindPFlag("signal.samples", rootCmd.Flags().Lookup("samples"))
	viper.BindPFlag("signal.duration", rootCmd.Flags().Lookup("duration"))
	viper.BindPFlag("signal.filter_alpha", rootCmd.Flags().Lookup("alpha"))
	viper.BindPFlag("signal.seed", rootCmd.Flags().Lookup("seed"))
	viper.BindPFlag("analysis.sliding", rootCmd.Flags().Lookup("sliding"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	// AMSIM_SIGNAL_VARIANT overrides signal.variant, and so on
	viper.SetEnvPrefix("AMSIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers config file, environment and flags over the defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Tones live in two config lists but are given as pairs on the command line
	if cmd.Flags().Changed("tones") {
		freqs, amps, err := parseTones(tones)
		if err != nil {
			return nil, err
		}
		cfg.Signal.ToneFrequencies = freqs
		cfg.Signal.ToneAmplitudes = amps
	}
	return cfg, nil
}

// parseTones splits "100:1,250:0.5" into frequencies and amplitudes. A tone
// without an amplitude defaults to 1.
func parseTones(s string) ([]float64, []float64, error) {
	var freqs, amps []float64
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		freqText, ampText, hasAmp := strings.Cut(pair, ":")
		freq, err := strconv.ParseFloat(strings.TrimSpace(freqText), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid tone frequency %q: %w", freqText, err)
		}

		amp := 1.0
		if hasAmp {
			amp, err = strconv.ParseFloat(strings.TrimSpace(ampText), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid tone amplitude %q: %w", ampText, err)
			}
		}

		freqs = append(freqs, freq)
		amps = append(amps, amp)
	}

	if len(freqs) == 0 {
		return nil, nil, errors.New("no tones given")
	}
	return freqs, amps, nil
}

// runSimulator is the main application logic
func runSimulator(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
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

	fmt.Printf("📡 AM Simulator\n")
	fmt.Printf("Variant: %s\n", spec.Variant)
	fmt.Printf("Carrier: %.1f Hz\n", float64(spec.CarrierFrequency))
	for _, tone := range spec.Tones {
		fmt.Printf("Tone: %.1f Hz x %.3f (%s)\n", float64(tone.Frequency), tone.Amplitude, spec.Shape)
	}
	fmt.Printf("Modulation index: %.2f\n", spec.ModulationIndex)
	fmt.Printf("Noise: %s (amplitude %.3f)\n", spec.Noise, spec.NoiseAmplitude)
	fmt.Printf("Demodulation: %s\n", spec.Demodulation)
	fmt.Printf("Samples: %d over %.3f s (%.0f samples/s)\n", spec.Samples, spec.Duration, spec.SampleRate())

	start := time.Now()
	res, err := pipeline.NewBuilder(cfg.Signal.Options()...).Build(spec)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	logger.Debug("signal built",
		zap.Stringer("variant", spec.Variant),
		zap.Int("samples", res.Len()),
		zap.Duration("elapsed", time.Since(start)))

	if len(res.Frequency) > 1 {
		fmt.Printf("Bin width: %.2f Hz (%d bins)\n", res.Frequency[1]-res.Frequency[0], len(res.Frequency))
	}
	if _, ok := res.Demodulation(); ok {
		fmt.Printf("✅ Demodulated signal recovered\n")
	}

	printRows(res, rows)

	if !cfg.Analysis.Enabled {
		return nil
	}

	report, err := analysis.Analyze(res)
	if err != nil {
		logger.Warn("analysis skipped", zap.Error(err))
		fmt.Printf("⚠️  Analysis skipped: %v\n", err)
		return nil
	}
	printReport(report)

	if cfg.Analysis.Sliding {
		frames, err := analysis.SlidingSpectra(res.Modulated, res.SampleRate)
		if err != nil {
			return fmt.Errorf("sliding analysis failed: %w", err)
		}
		fmt.Printf("\n🔍 Sliding windows (%d samples, hop %d):\n", analysis.WindowSize, analysis.HopSize)
		for _, frame := range frames {
			snr := analysis.SNRFromSpectrum(frame.Spectrum)
			fmt.Printf("  t=%.4fs  carrier %.1f Hz  SNR %.2f dB\n", frame.Time, snr.CarrierFrequency, snr.DB)
		}
	}

	logger.Info("simulation complete",
		zap.Float64("snr_db", report.SNR.DB),
		zap.Bool("thd_defined", report.THDDefined),
		zap.Float64("thd_percent", report.THD.Percent))
	return nil
}

// printRows prints the first n time-domain samples
func printRows(res *pipeline.Result, n int) {
	if n <= 0 {
		return
	}
	if n > res.Len() {
		n = res.Len()
	}

	_, demodulated := res.Demodulation()
	fmt.Printf("\n%-12s %10s %10s %10s", "time", "message", "carrier", "modulated")
	if demodulated {
		fmt.Printf(" %12s", "demodulated")
	}
	fmt.Println()

	for i := 0; i < n; i++ {
		row := res.Row(i)
		fmt.Printf("%-12.6f %10.4f %10.4f %10.4f", row[0], row[1], row[2], row[3])
		if demodulated {
			fmt.Printf(" %12.4f", row[4])
		}
		fmt.Println()
	}
}

// printReport prints the metrics of one simulation
func printReport(r analysis.Report) {
	fmt.Printf("\n📊 Analysis:\n")
	fmt.Printf("  Spectrum peak: %.1f Hz (magnitude %.4f)\n", r.PeakFrequency, r.PeakMagnitude)
	fmt.Printf("  SNR: %.2f dB (carrier %.1f Hz)\n", r.SNR.DB, r.SNR.CarrierFrequency)
	if r.THDDefined {
		fmt.Printf("  THD: %.4f%% (fundamental %.1f Hz)\n", r.THD.Percent, r.THD.Fundamental)
	} else {
		fmt.Printf("  THD: undefined (no fundamental between 10 Hz and 5 kHz)\n")
	}
}

// main is the entry point of the application
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
