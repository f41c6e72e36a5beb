package analysis

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"am-simulator/internal/pipeline"
)

// Report gathers every metric for one pipeline result.
type Report struct {
	SNR SNRResult

	// THD is only meaningful when THDDefined is true.
	THD        THDResult
	THDDefined bool

	// Strongest bin of the full-length spectrum.
	PeakFrequency float64
	PeakMagnitude float64
}

// Analyze measures res. Only a signal too short to analyze is an error; a
// missing THD fundamental is reported through THDDefined.
func Analyze(res *pipeline.Result) (Report, error) {
	var report Report

	snr, err := SNR(res.Modulated, res.SampleRate)
	if err != nil {
		return Report{}, fmt.Errorf("SNR analysis failed: %w", err)
	}
	report.SNR = snr

	thd, err := THD(res.Modulated, res.SampleRate)
	switch {
	case err == nil:
		report.THD = thd
		report.THDDefined = true
	case errors.Is(err, ErrNoFundamental):
	default:
		return Report{}, fmt.Errorf("THD analysis failed: %w", err)
	}

	if len(res.Spectrum) > 0 {
		peak := floats.MaxIdx(res.Spectrum)
		report.PeakFrequency = res.Frequency[peak]
		report.PeakMagnitude = res.Spectrum[peak]
	}

	return report, nil
}
