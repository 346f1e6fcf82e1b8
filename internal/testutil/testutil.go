// Package testutil provides testing utilities for marbles tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	dataframe "github.com/rocketlaunchr/dataframe-go"
)

// TempCSV creates a temporary CSV file and returns its path.
// The file is automatically cleaned up when the test finishes.
func TempCSV(t *testing.T, content string) string {
	t.Helper()
	return TempFile(t, content, ".csv")
}

// TempFile creates a temporary file with the given content and extension.
func TempFile(t *testing.T, content, ext string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test"+ext)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// CountdownProgram clears R0 one unit at a time and stops.
func CountdownProgram() string {
	return `
start: test(0);
       stop();
       remove(0);
       jump(start);
`
}

// AddProgram moves R1 into R0 (R0 = R0 + R1, R1 = 0) one unit at a time.
func AddProgram() string {
	return `
loop: test(1);
      stop();
      remove(1);
      add(0);
      jump(loop);
`
}

// DivergingProgram never terminates.
func DivergingProgram() string {
	return "spin: jump(spin);"
}

// InputsCSV returns CSV content with three input vectors.
func InputsCSV() string {
	return `r0,r1,r2
3,0,5
0,0,0
1,2,0`
}

// MakeInputsFrame creates a frame holding the same vectors as InputsCSV.
func MakeInputsFrame() *dataframe.DataFrame {
	return dataframe.NewDataFrame(
		dataframe.NewSeriesInt64("r0", nil, 3, 0, 1),
		dataframe.NewSeriesInt64("r1", nil, 0, 0, 2),
		dataframe.NewSeriesInt64("r2", nil, 5, 0, 0),
	)
}
