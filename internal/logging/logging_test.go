package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLogFormat_Decode(t *testing.T) {
	tests := []struct {
		in      string
		want    LogFormat
		wantErr bool
	}{
		{in: "text", want: FormatText},
		{in: "", want: FormatText},
		{in: " JSON ", want: FormatJSON},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f LogFormat
			err := f.Decode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, f)
		})
	}
}

func TestNewLogger(t *testing.T) {
	_, ok := NewLogger(FormatJSON).Formatter.(*logrus.JSONFormatter)
	require.True(t, ok)

	_, ok = NewLogger(FormatText).Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
}
