// Package model contains core data types for the project.
package model

// ReportKind defines the kind of a telemetry report.
type ReportKind string

const (
	ChargeCycles     ReportKind = "charge_cycles"     // Battery charge-cycle histogram.
	HardwareFailure  ReportKind = "hardware_failure"  // Detected hardware failure event.
	SlowIO           ReportKind = "slow_io"           // Storage slow-I/O counter.
	SpeakerImpedance ReportKind = "speaker_impedance" // Per-channel speaker impedance.
)

// IoOperation identifies the storage operation a slow-I/O counter tracks.
type IoOperation string

const (
	IoRead  IoOperation = "read"
	IoWrite IoOperation = "write"
	IoUnmap IoOperation = "unmap"
	IoSync  IoOperation = "sync"
)

// HardwareType identifies the component a failure report refers to.
type HardwareType string

const (
	HardwareCodec HardwareType = "codec" // Audio codec.
)

// HardwareErrorComplete marks a component that failed entirely.
const HardwareErrorComplete = 0

// Report represents a single telemetry report with its kind and payload.
// Only the fields belonging to the kind are populated.
type Report struct {
	Kind      ReportKind   `json:"kind"`
	Histogram string       `json:"histogram,omitempty"` // charge_cycles: normalized comma-separated bins.
	Hardware  HardwareType `json:"hardware,omitempty"`  // hardware_failure: failed component.
	SubIndex  *int         `json:"sub_index,omitempty"` // hardware_failure: sub-device index.
	Code      *int         `json:"code,omitempty"`      // hardware_failure: error code.
	Operation IoOperation  `json:"operation,omitempty"` // slow_io: operation kind.
	Count     *int         `json:"count,omitempty"`     // slow_io: event count.
	Channel   *int         `json:"channel,omitempty"`   // speaker_impedance: channel index.
	Value     *float64     `json:"value,omitempty"`     // speaker_impedance: milliohms.
}
