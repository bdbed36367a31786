package reports

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/sysfs-stats/internal/errs"
	"github.com/and161185/sysfs-stats/internal/utils"
	"github.com/and161185/sysfs-stats/model"
)

func TestCheckReport(t *testing.T) {
	tests := []struct {
		name    string
		report  model.Report
		wantErr bool
	}{
		{
			name:   "charge cycles",
			report: model.Report{Kind: model.ChargeCycles, Histogram: "1,2,3"},
		},
		{
			name:   "charge cycles empty histogram",
			report: model.Report{Kind: model.ChargeCycles},
		},
		{
			name: "hardware failure",
			report: model.Report{
				Kind:     model.HardwareFailure,
				Hardware: model.HardwareCodec,
				SubIndex: utils.IntPtr(0),
				Code:     utils.IntPtr(model.HardwareErrorComplete),
			},
		},
		{
			name:    "hardware failure without component",
			report:  model.Report{Kind: model.HardwareFailure, SubIndex: utils.IntPtr(0), Code: utils.IntPtr(0)},
			wantErr: true,
		},
		{
			name:    "hardware failure without code",
			report:  model.Report{Kind: model.HardwareFailure, Hardware: model.HardwareCodec, SubIndex: utils.IntPtr(0)},
			wantErr: true,
		},
		{
			name:   "slow io",
			report: model.Report{Kind: model.SlowIO, Operation: model.IoUnmap, Count: utils.IntPtr(3)},
		},
		{
			name:    "slow io unknown operation",
			report:  model.Report{Kind: model.SlowIO, Operation: "defrag", Count: utils.IntPtr(3)},
			wantErr: true,
		},
		{
			name:    "slow io zero count",
			report:  model.Report{Kind: model.SlowIO, Operation: model.IoRead, Count: utils.IntPtr(0)},
			wantErr: true,
		},
		{
			name:    "slow io missing count",
			report:  model.Report{Kind: model.SlowIO, Operation: model.IoRead},
			wantErr: true,
		},
		{
			name:   "speaker impedance",
			report: model.Report{Kind: model.SpeakerImpedance, Channel: utils.IntPtr(1), Value: utils.F64Ptr(5250)},
		},
		{
			name:    "speaker impedance bad channel",
			report:  model.Report{Kind: model.SpeakerImpedance, Channel: utils.IntPtr(2), Value: utils.F64Ptr(1)},
			wantErr: true,
		},
		{
			name:    "speaker impedance missing value",
			report:  model.Report{Kind: model.SpeakerImpedance, Channel: utils.IntPtr(0)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckReport(&tt.report)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCheckReport_UnknownKind(t *testing.T) {
	err := CheckReport(&model.Report{Kind: "temperature"})
	require.ErrorIs(t, err, errs.ErrUnknownReportKind)
}
