package models

import "math"

// ahiTolerance absorbs float rounding when AHI was computed elsewhere.
const ahiTolerance = 1e-6

// Validate checks the invariants every stored result must satisfy.
func (r *AnalysisResult) Validate() error {
	if r.DurationHours < 0 || math.IsNaN(r.DurationHours) {
		return errNegativeField.Fmt("durationHours")
	}

	if r.SnoringEvents < 0 {
		return errNegativeField.Fmt("snoringEvents")
	}

	if r.ApneaEvents < 0 {
		return errNegativeField.Fmt("apneaEvents")
	}

	if r.SnoringPercentage < 0 || r.SnoringPercentage > 100 {
		return errOutOfRange.Fmt("snoringPercentage", r.SnoringPercentage)
	}

	want := ComputeAHI(r.ApneaEvents, r.DurationHours)
	if math.Abs(r.AHI-want) > ahiTolerance {
		return errAHIMismatch.Fmt(r.AHI, want)
	}

	if r.Severity != SeverityFor(r.AHI) {
		return errSeverityMismatch.Fmt(r.Severity, r.AHI)
	}

	if err := r.validateVideo(); err != nil {
		return err
	}

	if err := r.validateWearable(); err != nil {
		return err
	}

	if r.SleepEfficiency != nil &&
		(*r.SleepEfficiency < 0 || *r.SleepEfficiency > 100) {
		return errOutOfRange.Fmt("sleepEfficiency", *r.SleepEfficiency)
	}

	return nil
}

func (r *AnalysisResult) validateVideo() error {
	if !r.VideoEnabled {
		if r.HasVideoSection() {
			return errSectionWithoutFlag.Fmt("video")
		}

		return nil
	}

	if r.SleepPositions == nil {
		return errFlagWithoutSection.Fmt("video")
	}

	p := r.SleepPositions
	if p.Back < 0 || p.Side < 0 || p.Stomach < 0 ||
		p.Back+p.Side+p.Stomach != 100 {
		return errPositionsSum.Fmt(p.Back, p.Side, p.Stomach)
	}

	if r.RestlessnessScore < 0 || r.RestlessnessScore > 100 {
		return errOutOfRange.Fmt("restlessnessScore", float64(r.RestlessnessScore))
	}

	return nil
}

func (r *AnalysisResult) validateWearable() error {
	if !r.WearableEnabled {
		if r.HasWearableSection() {
			return errSectionWithoutFlag.Fmt("wearable")
		}

		return nil
	}

	if r.HeartRate == nil || r.BloodOxygen == nil {
		return errFlagWithoutSection.Fmt("wearable")
	}

	return nil
}
