package chart

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/guttosm/assetbeta/internal/regression"
)

func TestRenderCoefficients(t *testing.T) {
	cases := []struct {
		name    string
		coefs   []regression.Coefficient
		wantErr bool
	}{
		{name: "mixed signs", coefs: []regression.Coefficient{{Asset: "Bitcoin", Value: 0.05}, {Asset: "S&P 500", Value: -0.3}}},
		{name: "single bar", coefs: []regression.Coefficient{{Asset: "Bitcoin", Value: 0.42}}},
		{name: "all zero", coefs: []regression.Coefficient{{Asset: "A", Value: 0}, {Asset: "B", Value: 0}}},
		{name: "many bars", coefs: manyBars(9)},
		{name: "empty", coefs: nil, wantErr: true},
		{name: "not finite", coefs: []regression.Coefficient{{Asset: "A", Value: math.NaN()}}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := RenderCoefficients(Title(2020, "Gold"), tc.coefs)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			if img.Bounds().Empty() {
				t.Fatalf("unexpected size %v", img.Bounds())
			}
		})
	}
}

func manyBars(n int) []regression.Coefficient {
	out := make([]regression.Coefficient, n)
	for i := range out {
		out[i] = regression.Coefficient{Asset: string(rune('A' + i)), Value: float64(i + 1)}
	}
	return out
}

func TestTitle(t *testing.T) {
	if got := Title(2020, "Gold"); got != "Regression coefficients for Gold (2020)" {
		t.Fatalf("Title=%q", got)
	}
}
