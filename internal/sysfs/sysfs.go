// Package sysfs reads file-backed hardware counters and reports the
// parsed values to the telemetry collector.
//
// Each monitored counter is one Source in a fixed table: a sysfs path
// bound to a parsing rule and a report shape. Adding a counter is one
// table entry; adding a new kind of counter is one parsing rule.
package sysfs

import (
	"context"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/sysfs-stats/model"
)

// Sink receives the parsed values for one collection cycle. Report
// calls are fire-and-forget: errors are logged by the collector and
// never retried or retracted.
type Sink interface {
	ReportChargeCycles(ctx context.Context, histogram string) error
	ReportHardwareFailed(ctx context.Context, hw model.HardwareType, subIndex, code int) error
	ReportSlowIO(ctx context.Context, op model.IoOperation, count int) error
	ReportSpeakerImpedance(ctx context.Context, channel int, milliohms float64) error
}

// Rule selects the parsing rule applied to one source file.
type Rule int

const (
	RuleHistogram Rule = iota // whitespace-separated ints, normalized to comma-separated
	RuleBoolFlag              // "0" is healthy, anything else is a failure
	RuleCounter               // base-10 counter, cleared after a successful parse
	RuleFloatPair             // two floats, one report per channel
)

// Source binds one sysfs path to a parsing rule and a report shape.
// The table is immutable for the process lifetime.
type Source struct {
	Name           string
	Path           string
	Rule           Rule
	IoOp           model.IoOperation // set for RuleCounter sources
	ClearAfterRead bool
}

const (
	slowioReadCntPath  = "/sys/devices/platform/soc/1d84000.ufshc/slowio_read_cnt"
	slowioWriteCntPath = "/sys/devices/platform/soc/1d84000.ufshc/slowio_write_cnt"
	slowioUnmapCntPath = "/sys/devices/platform/soc/1d84000.ufshc/slowio_unmap_cnt"
	slowioSyncCntPath  = "/sys/devices/platform/soc/1d84000.ufshc/slowio_sync_cnt"

	cycleCountBinsPath = "/sys/class/power_supply/maxfg/cycle_counts_bins"

	impedancePath = "/sys/class/misc/msm_cirrus_playback/resistance_left_right"
	codecPath     = "/sys/devices/platform/soc/171c0000.slim/tavil-slim-pgd/tavil_codec/codec_state"
)

// impedanceScale converts the driver's ohms to reported milliohms.
const impedanceScale = 1000

// DefaultSources returns the fixed table of monitored counters in
// reporting order.
func DefaultSources() []Source {
	return []Source{
		{Name: "battery_charge_cycles", Path: cycleCountBinsPath, Rule: RuleHistogram},
		{Name: "codec_state", Path: codecPath, Rule: RuleBoolFlag},
		{Name: "slowio_read", Path: slowioReadCntPath, Rule: RuleCounter, IoOp: model.IoRead, ClearAfterRead: true},
		{Name: "slowio_write", Path: slowioWriteCntPath, Rule: RuleCounter, IoOp: model.IoWrite, ClearAfterRead: true},
		{Name: "slowio_unmap", Path: slowioUnmapCntPath, Rule: RuleCounter, IoOp: model.IoUnmap, ClearAfterRead: true},
		{Name: "slowio_sync", Path: slowioSyncCntPath, Rule: RuleCounter, IoOp: model.IoSync, ClearAfterRead: true},
		{Name: "speaker_impedance", Path: impedancePath, Rule: RuleFloatPair},
	}
}

// Collector applies each source's parsing rule and forwards the parsed
// values to the sink.
type Collector struct {
	sources []Source
	logger  *zap.SugaredLogger
}

// NewCollector creates a collector over the given source table.
func NewCollector(sources []Source, logger *zap.SugaredLogger) *Collector {
	return &Collector{sources: sources, logger: logger}
}

// Collect runs one pass over all sources in table order. A failing
// source is logged and skipped; it never blocks the remaining sources.
func (c *Collector) Collect(ctx context.Context, sink Sink) {
	for _, src := range c.sources {
		c.collectSource(ctx, sink, src)
	}
}

func (c *Collector) collectSource(ctx context.Context, sink Sink, src Source) {
	raw, err := os.ReadFile(src.Path)
	if err != nil {
		c.logger.Errorf("unable to read %s [%s]: %v", src.Name, src.Path, err)
		return
	}

	switch src.Rule {
	case RuleHistogram:
		c.reportHistogram(ctx, sink, string(raw))
	case RuleBoolFlag:
		c.reportFlag(ctx, sink, string(raw))
	case RuleCounter:
		c.reportCounter(ctx, sink, src, string(raw))
	case RuleFloatPair:
		c.reportFloatPair(ctx, sink, src, string(raw))
	}
}

// reportHistogram normalizes runs of whitespace to single commas and
// forwards the result verbatim.
func (c *Collector) reportHistogram(ctx context.Context, sink Sink, raw string) {
	hist := strings.Join(strings.Fields(raw), ",")
	if err := sink.ReportChargeCycles(ctx, hist); err != nil {
		c.logger.Errorf("report charge cycles: %v", err)
	}
}

// reportFlag reports a codec failure unless the state file reads "0".
func (c *Collector) reportFlag(ctx context.Context, sink Sink, raw string) {
	if strings.TrimSpace(raw) == "0" {
		return
	}
	if err := sink.ReportHardwareFailed(ctx, model.HardwareCodec, 0, model.HardwareErrorComplete); err != nil {
		c.logger.Errorf("report hardware failure [%s]: %v", model.HardwareCodec, err)
	}
}

// reportCounter parses a slow-I/O counter and, for clear-after-read
// sources, resets the file to "0" after any successful parse. The reset
// happens even when the parsed value is zero: the write normalizes the
// source file so the next cycle reports only newly accumulated events.
func (c *Collector) reportCounter(ctx context.Context, sink Sink, src Source, raw string) {
	text := strings.TrimSpace(raw)
	count, err := strconv.Atoi(text)
	if err != nil {
		c.logger.Errorf("unable to parse %q from file %s to int: %v", text, src.Path, err)
		return
	}

	if count > 0 {
		if err := sink.ReportSlowIO(ctx, src.IoOp, count); err != nil {
			c.logger.Errorf("report slow io [%s]: %v", src.IoOp, err)
		}
	}

	if src.ClearAfterRead {
		if err := os.WriteFile(src.Path, []byte("0"), 0o644); err != nil {
			c.logger.Errorf("unable to clear %s [%s]: %v", src.Name, src.Path, err)
		}
	}
}

// reportFloatPair parses a dual-channel reading and reports each channel
// independently, scaled to milliohms. If either value fails to parse the
// source is skipped entirely; a partial pair is never reported.
func (c *Collector) reportFloatPair(ctx context.Context, sink Sink, src Source, raw string) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(parts) != 2 {
		c.logger.Errorf("unable to parse %s reading %q from %s", src.Name, strings.TrimSpace(raw), src.Path)
		return
	}

	left, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		c.logger.Errorf("unable to parse %s value %q from %s: %v", src.Name, parts[0], src.Path, err)
		return
	}
	right, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		c.logger.Errorf("unable to parse %s value %q from %s: %v", src.Name, parts[1], src.Path, err)
		return
	}

	if err := sink.ReportSpeakerImpedance(ctx, 0, left*impedanceScale); err != nil {
		c.logger.Errorf("report speaker impedance [channel 0]: %v", err)
	}
	if err := sink.ReportSpeakerImpedance(ctx, 1, right*impedanceScale); err != nil {
		c.logger.Errorf("report speaker impedance [channel 1]: %v", err)
	}
}
