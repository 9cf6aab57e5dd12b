package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// goldenTest runs a .fl file and compares its output to a .expected file.
func goldenTest(t *testing.T, name string) {
	t.Helper()

	flPath := filepath.Join("..", "..", "testdata", name+".fl")
	expectedPath := filepath.Join("..", "..", "testdata", name+".expected")

	source, err := os.ReadFile(flPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", flPath, err)
	}

	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	got, runErr := runSource(t, string(source))
	if runErr != nil {
		t.Fatalf("runtime error: %v", runErr)
	}

	expectedStr := strings.TrimRight(string(expected), "\n")
	gotStr := strings.TrimRight(got, "\n")

	if gotStr != expectedStr {
		expectedLines := strings.Split(expectedStr, "\n")
		gotLines := strings.Split(gotStr, "\n")

		t.Errorf("output mismatch for %s", name)
		maxLines := len(expectedLines)
		if len(gotLines) > maxLines {
			maxLines = len(gotLines)
		}
		for i := 0; i < maxLines; i++ {
			var exp, g string
			if i < len(expectedLines) {
				exp = expectedLines[i]
			} else {
				exp = "<missing>"
			}
			if i < len(gotLines) {
				g = gotLines[i]
			} else {
				g = "<missing>"
			}
			prefix := "  "
			if exp != g {
				prefix = "! "
			}
			t.Logf("%sline %d: expected=%q got=%q", prefix, i+1, exp, g)
		}
	}
}

func TestGoldenFib(t *testing.T) {
	goldenTest(t, "golden_fib")
}

func TestGoldenClasses(t *testing.T) {
	goldenTest(t, "golden_classes")
}

func TestGoldenClosures(t *testing.T) {
	goldenTest(t, "golden_closures")
}

func TestGoldenLoops(t *testing.T) {
	goldenTest(t, "golden_loops")
}
