package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/stroke-crossings/internal/config"
	"github.com/ironsheep/stroke-crossings/internal/detection"
	"github.com/ironsheep/stroke-crossings/internal/imaging"
	"github.com/ironsheep/stroke-crossings/internal/logging"
)

// writePlus writes a 21x21 white PNG with a one pixel wide black plus
// centred at (10,10) and returns its path.
func writePlus(t *testing.T) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 21, 21))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for i := 0; i < 21; i++ {
		img.SetGray(i, 10, color.Gray{Y: 0})
		img.SetGray(10, i, color.Gray{Y: 0})
	}

	path := filepath.Join(t.TempDir(), "plus.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.DepthLimit = 5
	cfg.LineWidth = 1
	cfg.LogLevel = logging.LevelError
	return cfg
}

func expectedCount(t *testing.T, path string, cfg *config.Config) int {
	t.Helper()
	mask, err := imaging.LoadMask(path, cfg.WhiteLevel)
	require.NoError(t, err)
	s, err := detection.NewScanner(cfg.DetectionOptions())
	require.NoError(t, err)
	return s.Count(mask)
}

func TestRun_PrintsCount(t *testing.T) {
	path := writePlus(t)
	cfg := testConfig()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(path+"\n"), &stdout, &stderr, cfg)

	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())
	want := expectedCount(t, path, cfg)
	assert.Positive(t, want)
	assert.Equal(t, fmt.Sprintf("Enter image name: \n%d\n", want), stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRun_DefaultsOnPlus(t *testing.T) {
	// The plus has 41 pixels, so a depth of 40 drains it from every origin.
	path := writePlus(t)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(path), &stdout, &stderr, config.Default())

	require.Equal(t, exitOK, code)
	assert.Equal(t, "Enter image name: \n0\n", stdout.String())
}

func TestRun_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader("/nonexistent/strokes.png"), &stdout, &stderr, testConfig())

	assert.Equal(t, exitLoadFailed, code)
	assert.Equal(t, "Enter image name: \n", stdout.String(), "no count on failure")
	assert.Contains(t, stderr.String(), "Could not open or find the frame")
}

func TestRun_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG garbage"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(path), &stdout, &stderr, testConfig())

	assert.Equal(t, exitLoadFailed, code)
	assert.NotContains(t, stdout.String(), "0\n")
}

func TestRun_NoInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(""), &stdout, &stderr, testConfig())

	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "failed to read image name")
}

func TestRun_InvalidOptions(t *testing.T) {
	cfg := testConfig()
	cfg.LineWidth = 0

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(writePlus(t)), &stdout, &stderr, cfg)
	assert.Equal(t, exitFailure, code)
}

func TestRun_CancelledScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, strings.NewReader(writePlus(t)), &stdout, &stderr, testConfig())

	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Enter image name: \n", stdout.String())
	assert.Contains(t, stderr.String(), "scan failed")
}

func TestRun_Annotate(t *testing.T) {
	path := writePlus(t)
	cfg := testConfig()
	cfg.AnnotatePath = filepath.Join(t.TempDir(), "annotated.png")
	cfg.MarkerColor = "#00FF00"

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), strings.NewReader(path), &stdout, &stderr, cfg)
	require.Equal(t, exitOK, code, "stderr: %s", stderr.String())

	assert.Equal(t, fmt.Sprintf("Enter image name: \n%d\n", expectedCount(t, path, cfg)), stdout.String())

	f, err := os.Open(cfg.AnnotatePath)
	require.NoError(t, err)
	defer f.Close()
	out, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 21, 21), out.Bounds())

	// The centre is a crossing; its marker outline passes through (9,9).
	r, g, b, _ := out.At(9, 9).RGBA()
	assert.Equal(t, []uint32{0, 0xffff, 0}, []uint32{r, g, b})
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf)
	assert.Contains(t, buf.String(), "CROSSINGS_DEPTH")
	assert.Contains(t, buf.String(), "Usage: crossings")
}
