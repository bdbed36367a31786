// Package reports validates incoming telemetry reports.
package reports

import (
	"fmt"

	"github.com/and161185/sysfs-stats/internal/errs"
	"github.com/and161185/sysfs-stats/model"
)

// CheckReport verifies that a decoded report carries the payload its
// kind requires.
func CheckReport(r *model.Report) error {
	switch r.Kind {
	case model.ChargeCycles:
		// An empty histogram is valid: the kernel may expose no bins yet.
		return nil
	case model.HardwareFailure:
		if r.Hardware == "" {
			return fmt.Errorf("hardware failure report without component")
		}
		if r.SubIndex == nil || r.Code == nil {
			return fmt.Errorf("incomplete hardware failure report [%s]", r.Hardware)
		}
	case model.SlowIO:
		if !validIoOperation(r.Operation) {
			return fmt.Errorf("invalid slow-io operation %q", r.Operation)
		}
		if r.Count == nil || *r.Count <= 0 {
			return fmt.Errorf("slow-io report without positive count [%s]", r.Operation)
		}
	case model.SpeakerImpedance:
		if r.Channel == nil || r.Value == nil {
			return fmt.Errorf("incomplete speaker impedance report")
		}
		if *r.Channel != 0 && *r.Channel != 1 {
			return fmt.Errorf("invalid speaker channel %d", *r.Channel)
		}
	default:
		return fmt.Errorf("%w: %q", errs.ErrUnknownReportKind, r.Kind)
	}
	return nil
}

func validIoOperation(op model.IoOperation) bool {
	switch op {
	case model.IoRead, model.IoWrite, model.IoUnmap, model.IoSync:
		return true
	}
	return false
}
