package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/ising/internal/sweep"
)

func curve() []sweep.Record {
	return []sweep.Record{
		{Temperature: 1.0, Energy: -1.99, Magnetization: 0.99, SpecificHeat: 0.02},
		{Temperature: 2.27, Energy: -1.4, Magnetization: 0.6, SpecificHeat: 1.8},
		{Temperature: 4.0, Energy: -0.57, Magnetization: 0.06, SpecificHeat: 0.15},
	}
}

func TestFormatFor(t *testing.T) {
	if FormatFor("a/b.SVG") != SVG || FormatFor("out.png") != PNG || FormatFor("out") != PNG {
		t.Error("unexpected format detection")
	}
}

func TestChartPNG(t *testing.T) {
	var buf bytes.Buffer
	if err := Chart(&buf, curve(), 2, PNG); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestChartSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := Chart(&buf, curve(), 0, SVG); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("output is not an SVG")
	}
}

func TestChartNeedsTwoPoints(t *testing.T) {
	var buf bytes.Buffer
	if err := Chart(&buf, curve()[:1], 0, PNG); err == nil {
		t.Error("expected error for a single point")
	}
}

func TestWriteCharts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "sweep.svg")
	paths, err := WriteCharts(base, curve())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 charts, got %d", len(paths))
	}
	for _, p := range paths {
		if filepath.Ext(p) != ".svg" {
			t.Errorf("unexpected extension: %s", p)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}
	if !strings.HasSuffix(paths[2], "sweep_capacity.svg") {
		t.Errorf("unexpected name %s", paths[2])
	}
}
