package util

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals int
		want     string
		wantErr  bool
	}{
		{name: "whole USDC", amount: "100", decimals: 6, want: "100000000"},
		{name: "fractional USDC", amount: "10.5", decimals: 6, want: "10500000"},
		{name: "truncates extra digits", amount: "0.1234567", decimals: 6, want: "123456"},
		{name: "18 decimals", amount: "50", decimals: 18, want: "50000000000000000000"},
		{name: "surrounding spaces", amount: " 1.0 ", decimals: 2, want: "100"},
		{name: "negative", amount: "-1.5", decimals: 1, want: "-15"},
		{name: "empty", amount: "", decimals: 6, wantErr: true},
		{name: "garbage", amount: "1.2.3", decimals: 6, wantErr: true},
		{name: "letters", amount: "ten", decimals: 6, wantErr: true},
		{name: "negative decimals", amount: "1", decimals: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.amount, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got.String())
		})
	}
}

func TestFromBaseUnits(t *testing.T) {
	tests := []struct {
		amount   *big.Int
		decimals int
		want     string
	}{
		{big.NewInt(10_000000), 6, "10"},
		{big.NewInt(10_500000), 6, "10.5"},
		{big.NewInt(1), 6, "0.000001"},
		{big.NewInt(-15), 1, "-1.5"},
		{nil, 6, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, FromBaseUnits(tt.amount, tt.decimals))
		})
	}
}
