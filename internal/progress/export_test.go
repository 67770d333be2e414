package progress_test

import (
	"bytes"
	"testing"

	"github.com/Auroshikaa/AI-Study-Buddy/internal/progress"
	"github.com/xuri/excelize/v2"
)

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	log := []progress.Entry{
		{Topic: "Photosynthesis", Score: 3},
		{Topic: "Cells", Score: 5},
	}
	notes := map[string]string{
		"Photosynthesis": "- **ATP**",
		"Cells":          "- **Nucleus**",
	}

	if err := progress.ExportXLSX(&buf, log, notes); err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Progress")
	if err != nil {
		t.Fatalf("GetRows(Progress) error = %v", err)
	}
	want := [][]string{
		{"Topic", "Score", "Out Of"},
		{"Photosynthesis", "3", "5"},
		{"Cells", "5", "5"},
	}
	assertRows(t, rows, want)

	rows, err = f.GetRows("Saved Notes")
	if err != nil {
		t.Fatalf("GetRows(Saved Notes) error = %v", err)
	}
	want = [][]string{
		{"Title", "Summary"},
		{"Cells", "- **Nucleus**"},
		{"Photosynthesis", "- **ATP**"},
	}
	assertRows(t, rows, want)
}

func TestExportXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := progress.ExportXLSX(&buf, nil, nil); err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 2 || got[0] != "Progress" || got[1] != "Saved Notes" {
		t.Errorf("GetSheetList() = %v", got)
	}
}

func assertRows(t *testing.T, got, want [][]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Errorf("row %d = %v, want %v", i, got[i], want[i])
			continue
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("cell [%d][%d] = %q, want %q", i, j, got[i][j], want[i][j])
			}
		}
	}
}
