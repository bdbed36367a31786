package sysfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/sysfs-stats/model"
)

type recordedCall struct {
	kind      model.ReportKind
	histogram string
	hardware  model.HardwareType
	subIndex  int
	code      int
	op        model.IoOperation
	count     int
	channel   int
	value     float64
}

type fakeSink struct {
	calls []recordedCall
}

func (f *fakeSink) ReportChargeCycles(_ context.Context, histogram string) error {
	f.calls = append(f.calls, recordedCall{kind: model.ChargeCycles, histogram: histogram})
	return nil
}

func (f *fakeSink) ReportHardwareFailed(_ context.Context, hw model.HardwareType, subIndex, code int) error {
	f.calls = append(f.calls, recordedCall{kind: model.HardwareFailure, hardware: hw, subIndex: subIndex, code: code})
	return nil
}

func (f *fakeSink) ReportSlowIO(_ context.Context, op model.IoOperation, count int) error {
	f.calls = append(f.calls, recordedCall{kind: model.SlowIO, op: op, count: count})
	return nil
}

func (f *fakeSink) ReportSpeakerImpedance(_ context.Context, channel int, milliohms float64) error {
	f.calls = append(f.calls, recordedCall{kind: model.SpeakerImpedance, channel: channel, value: milliohms})
	return nil
}

func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func collectOne(t *testing.T, src Source) *fakeSink {
	t.Helper()
	sink := &fakeSink{}
	c := NewCollector([]Source{src}, zap.NewNop().Sugar())
	c.Collect(context.Background(), sink)
	return sink
}

func TestHistogram_NormalizesWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single spaces", "1 2 3", "1,2,3"},
		{"trailing whitespace", "1 2 3 \n", "1,2,3"},
		{"runs of whitespace", " 10\t20   30\n", "10,20,30"},
		{"single bin", "7\n", "7"},
		{"empty file", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSourceFile(t, tt.input)
			sink := collectOne(t, Source{Name: "battery_charge_cycles", Path: path, Rule: RuleHistogram})

			require.Len(t, sink.calls, 1)
			require.Equal(t, model.ChargeCycles, sink.calls[0].kind)
			require.Equal(t, tt.want, sink.calls[0].histogram)
		})
	}
}

func TestBoolFlag(t *testing.T) {
	t.Run("healthy state yields no report", func(t *testing.T) {
		path := writeSourceFile(t, "0\n")
		sink := collectOne(t, Source{Name: "codec_state", Path: path, Rule: RuleBoolFlag})
		require.Empty(t, sink.calls)
	})

	for _, input := range []string{"1", "3", "error"} {
		t.Run("state "+input+" yields one failure report", func(t *testing.T) {
			path := writeSourceFile(t, input)
			sink := collectOne(t, Source{Name: "codec_state", Path: path, Rule: RuleBoolFlag})

			require.Len(t, sink.calls, 1)
			call := sink.calls[0]
			require.Equal(t, model.HardwareFailure, call.kind)
			require.Equal(t, model.HardwareCodec, call.hardware)
			require.Equal(t, 0, call.subIndex)
			require.Equal(t, model.HardwareErrorComplete, call.code)
		})
	}
}

func TestCounter_PositiveValueReportedAndCleared(t *testing.T) {
	path := writeSourceFile(t, "5\n")
	sink := collectOne(t, Source{Name: "slowio_read", Path: path, Rule: RuleCounter, IoOp: model.IoRead, ClearAfterRead: true})

	require.Len(t, sink.calls, 1)
	require.Equal(t, model.SlowIO, sink.calls[0].kind)
	require.Equal(t, model.IoRead, sink.calls[0].op)
	require.Equal(t, 5, sink.calls[0].count)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "0", string(content), "counter must be reset after a successful parse")
}

func TestCounter_ZeroValueStillCleared(t *testing.T) {
	path := writeSourceFile(t, "0\n")
	sink := collectOne(t, Source{Name: "slowio_sync", Path: path, Rule: RuleCounter, IoOp: model.IoSync, ClearAfterRead: true})

	require.Empty(t, sink.calls, "zero count yields no report")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "0", string(content), "reset write normalizes the file even for zero")
}

func TestCounter_ParseFailureSkipsReportAndReset(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core).Sugar()

	path := writeSourceFile(t, "abc")
	sink := &fakeSink{}
	c := NewCollector([]Source{{Name: "slowio_write", Path: path, Rule: RuleCounter, IoOp: model.IoWrite, ClearAfterRead: true}}, logger)
	c.Collect(context.Background(), sink)

	require.Empty(t, sink.calls)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "abc", string(content), "parse failure must not trigger the reset write")

	require.Equal(t, 1, logs.Len(), "parse failure must be logged")
	require.Contains(t, logs.All()[0].Message, "abc")
	require.Contains(t, logs.All()[0].Message, path)
}

func TestFloatPair(t *testing.T) {
	t.Run("comma separated", func(t *testing.T) {
		path := writeSourceFile(t, "4.5,5.25\n")
		sink := collectOne(t, Source{Name: "speaker_impedance", Path: path, Rule: RuleFloatPair})

		require.Len(t, sink.calls, 2)
		require.Equal(t, model.SpeakerImpedance, sink.calls[0].kind)
		require.Equal(t, 0, sink.calls[0].channel)
		require.InDelta(t, 4500.0, sink.calls[0].value, 1e-9)
		require.Equal(t, 1, sink.calls[1].channel)
		require.InDelta(t, 5250.0, sink.calls[1].value, 1e-9)
	})

	t.Run("space separated", func(t *testing.T) {
		path := writeSourceFile(t, "4.5 5.25")
		sink := collectOne(t, Source{Name: "speaker_impedance", Path: path, Rule: RuleFloatPair})
		require.Len(t, sink.calls, 2)
	})

	t.Run("single value yields no reports", func(t *testing.T) {
		path := writeSourceFile(t, "4.5")
		sink := collectOne(t, Source{Name: "speaker_impedance", Path: path, Rule: RuleFloatPair})
		require.Empty(t, sink.calls)
	})

	t.Run("malformed second value yields no reports", func(t *testing.T) {
		path := writeSourceFile(t, "4.5,abc")
		sink := collectOne(t, Source{Name: "speaker_impedance", Path: path, Rule: RuleFloatPair})
		require.Empty(t, sink.calls, "a partial pair must never be reported")
	})
}

func TestCollect_MissingSourceDoesNotBlockOthers(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	logger := zap.New(core).Sugar()

	missing := filepath.Join(t.TempDir(), "does-not-exist")
	counter := writeSourceFile(t, "5")

	sink := &fakeSink{}
	c := NewCollector([]Source{
		{Name: "battery_charge_cycles", Path: missing, Rule: RuleHistogram},
		{Name: "slowio_read", Path: counter, Rule: RuleCounter, IoOp: model.IoRead, ClearAfterRead: true},
	}, logger)
	c.Collect(context.Background(), sink)

	require.Len(t, sink.calls, 1, "remaining sources must still report")
	require.Equal(t, model.SlowIO, sink.calls[0].kind)
	require.Equal(t, 1, logs.Len(), "unreadable source must be logged")
}

func TestCollect_SourcesReportedInTableOrder(t *testing.T) {
	hist := writeSourceFile(t, "1 2")
	flag := writeSourceFile(t, "1")
	counter := writeSourceFile(t, "3")
	pair := writeSourceFile(t, "1.0,2.0")

	sink := &fakeSink{}
	c := NewCollector([]Source{
		{Name: "battery_charge_cycles", Path: hist, Rule: RuleHistogram},
		{Name: "codec_state", Path: flag, Rule: RuleBoolFlag},
		{Name: "slowio_read", Path: counter, Rule: RuleCounter, IoOp: model.IoRead, ClearAfterRead: true},
		{Name: "speaker_impedance", Path: pair, Rule: RuleFloatPair},
	}, zap.NewNop().Sugar())
	c.Collect(context.Background(), sink)

	require.Len(t, sink.calls, 5)
	require.Equal(t, model.ChargeCycles, sink.calls[0].kind)
	require.Equal(t, model.HardwareFailure, sink.calls[1].kind)
	require.Equal(t, model.SlowIO, sink.calls[2].kind)
	require.Equal(t, model.SpeakerImpedance, sink.calls[3].kind)
	require.Equal(t, model.SpeakerImpedance, sink.calls[4].kind)
}

func TestDefaultSources_TableOrder(t *testing.T) {
	sources := DefaultSources()
	require.Len(t, sources, 7)

	require.Equal(t, RuleHistogram, sources[0].Rule)
	require.Equal(t, RuleBoolFlag, sources[1].Rule)

	wantOps := []model.IoOperation{model.IoRead, model.IoWrite, model.IoUnmap, model.IoSync}
	for i, op := range wantOps {
		src := sources[2+i]
		require.Equal(t, RuleCounter, src.Rule)
		require.Equal(t, op, src.IoOp)
		require.True(t, src.ClearAfterRead)
	}

	require.Equal(t, RuleFloatPair, sources[6].Rule)
}
