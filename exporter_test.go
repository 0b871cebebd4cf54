package kalman

import (
	"os"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestImplementsExporter(t *testing.T) {
	implements := func(Exporter) {}
	implements(new(CSVExporter))
}

func TestCSVExportFail(t *testing.T) {
	_, err := NewCSVExporter([]string{"position", "velocity"}, "/noNoNoNo/", "temp.csv")
	if err == nil {
		t.Fatal("no issue when trying to create a file on root")
	}
}

func TestCSVExport(t *testing.T) {
	dir := t.TempDir()
	ce, err := NewCSVExporter([]string{"position", "velocity", "acceleration"}, dir, "temp.csv")
	if err != nil {
		t.Fatalf("could not create file %s", err)
	}
	est := Estimate{state: mat.NewVecDense(3, []float64{0, 0.35, 0}), covar: ScaledIdentity(3, 10)}
	if err = ce.Write(est); err != nil {
		t.Fatalf("could not write estimate to file %s", err)
	}
	if err = ce.Close(); err != nil {
		t.Fatalf("could not close file %s", err)
	}

	contents, err := os.ReadFile(ce.hdlr.Name())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected header, column names and one estimate, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "position+2s") {
		t.Fatalf("missing ±2σ column headers: %s", lines[1])
	}
	if !strings.HasPrefix(lines[2], "0.000000,") {
		t.Fatalf("unexpected estimate row: %s", lines[2])
	}
}
