package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAnalyze_Aggregations(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	p := filepath.Join(dir, "sales.csv")
	csv := "city,price,sold\nA,100,2021-01-05\nA,300,2021-01-20\nB,200,2021-02-01\nB,,2021-02-03\n"
	if err := os.WriteFile(p, []byte(csv), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := runCmd(t, "analyze", p, "--count-by", "city", "--median", "price", "--by", "sold", "--over", "sold")
	mustContain(t, out,
		"[DATASET SUMMARY]",
		"Rows: 4",
		"[COUNT BY CITY]",
		"[MEDIAN PRICE BY SOLD]",
		"| 2021-01 | 200 |",
		"[COUNT PER MONTH OF SOLD]",
	)

	outFile := filepath.Join(dir, "out", "sales.md")
	runCmd(t, "analyze", p, "-o", outFile)
	if _, err := os.Stat(outFile); err != nil {
		t.Fatalf("missing analysis output: %v", err)
	}

	if _, err := execute(t, "analyze", p, "--median", "price"); err == nil {
		t.Fatalf("expected error for --median without --by")
	}
	if _, err := execute(t, "analyze", p, "--decimal", "comma", "--thousands", ","); err == nil {
		t.Fatalf("expected error for identical separators")
	}
}

func TestAnalyzeBatch_OutDirAndSuppressSamples(t *testing.T) {
	home := isolateHome(t)

	// Prepare two CSV files with the same basename in different directories
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	if err := os.MkdirAll(d1, 0o755); err != nil {
		t.Fatalf("mkdir d1: %v", err)
	}
	if err := os.MkdirAll(d2, 0o755); err != nil {
		t.Fatalf("mkdir d2: %v", err)
	}
	csv := "col1,col2\nA,1\nB,2\nC,3\n"
	p1 := filepath.Join(d1, "metrics.csv")
	p2 := filepath.Join(d2, "metrics.csv")
	if err := os.WriteFile(p1, []byte(csv), 0o644); err != nil {
		t.Fatalf("write p1: %v", err)
	}
	if err := os.WriteFile(p2, []byte(csv), 0o644); err != nil {
		t.Fatalf("write p2: %v", err)
	}

	outDir := filepath.Join(home, "summaries")
	runCmd(t, "analyze-batch", filepath.Join(home, "d*", "metrics.csv"), "--out-dir", outDir, "--sample-rows", "0")

	// Verify files written with collision suffix
	b1 := filepath.Join(outDir, "metrics.summary.md")
	b2 := filepath.Join(outDir, "metrics__2.summary.md")
	for _, p := range []string{b1, b2} {
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing summary: %v", err)
		}
		if strings.Contains(string(body), "[HEAD AND SAMPLE ROWS]") {
			t.Fatalf("expected no sample rows in %s", p)
		}
		if !strings.Contains(string(body), "Rows: 3") {
			t.Fatalf("unexpected summary in %s:\n%s", p, body)
		}
	}

	if _, err := execute(t, "analyze-batch", filepath.Join(home, "nothing*.csv")); err == nil {
		t.Fatalf("expected error when no files match")
	}
}
