package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/ironsheep/stroke-crossings/internal/config"
	"github.com/ironsheep/stroke-crossings/internal/detection"
	"github.com/ironsheep/stroke-crossings/internal/imaging"
	"github.com/ironsheep/stroke-crossings/internal/logging"
	"github.com/ironsheep/stroke-crossings/internal/raster"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit statuses.
const (
	exitOK         = 0
	exitFailure    = 1
	exitLoadFailed = 2
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("crossings %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp(os.Stdout)
			return
		}
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := config.LoadEnvFile(".env"); err != nil {
		log.Printf("Ignoring .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "crossings: %v\n", err)
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Stdin, os.Stdout, os.Stderr, cfg)
	stop()
	os.Exit(code)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "crossings - count stroke crossings in a black-on-white image")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: crossings [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "The image path is read from standard input after the prompt.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (also read from ./.env):")
	fmt.Fprintln(w, "  CROSSINGS_DEPTH=40            Search depth limit")
	fmt.Fprintln(w, "  CROSSINGS_LINE_WIDTH=6        Expected stroke width in pixels")
	fmt.Fprintln(w, "  CROSSINGS_DEPTH_METRIC=dequeue  Depth metric: dequeue or level")
	fmt.Fprintln(w, "  CROSSINGS_WHITE_LEVEL=255     Gray level treated as paper")
	fmt.Fprintln(w, "  CROSSINGS_WORKERS=1           Goroutines scanning rows")
	fmt.Fprintln(w, "  CROSSINGS_ANNOTATE=path.png   Write an image with crossings marked")
	fmt.Fprintln(w, "  CROSSINGS_MARKER_COLOR=#FF0000  Marker colour for the annotated image")
	fmt.Fprintln(w, "  CROSSINGS_LOG_LEVEL=debug     Enable debug logging")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit status: 0 on success, 1 on bad input or configuration,")
	fmt.Fprintln(w, "2 when the image cannot be opened or decoded.")
}

// run prompts for an image path on stdin, scans the image and prints the
// crossing count on stdout. Diagnostics go to stderr. It returns the process
// exit status. Cancelling ctx abandons the scan.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cfg *config.Config) int {
	logger := logging.New(stderr, "crossings", cfg.LogLevel)

	fmt.Fprint(stdout, "Enter image name: ")
	var name string
	if _, err := fmt.Fscan(stdin, &name); err != nil {
		fmt.Fprintln(stdout)
		logger.Error("failed to read image name", "error", err)
		return exitFailure
	}
	fmt.Fprintln(stdout)

	scanner, err := detection.NewScanner(cfg.DetectionOptions())
	if err != nil {
		logger.Error("invalid detection options", "error", err)
		return exitFailure
	}

	gray, err := imaging.LoadGray(name, cfg.WhiteLevel)
	if err != nil {
		fmt.Fprintf(stderr, "Could not open or find the frame: %v\n", err)
		if errors.Is(err, imaging.ErrImageLoad) {
			return exitLoadFailed
		}
		return exitFailure
	}

	mask := raster.FromGray(gray)
	logger.Debug("scanning image",
		"path", name,
		"width", mask.Width(),
		"height", mask.Height(),
		"foreground", mask.ForegroundCount(),
		"depth", cfg.DepthLimit,
		"metric", cfg.DepthMetric,
		"line_width", cfg.LineWidth,
		"workers", cfg.Workers)

	start := time.Now()
	var found []detection.Crossing
	count := 0
	if cfg.AnnotatePath == "" {
		count, err = scanner.CountContext(ctx, mask)
	} else {
		found, err = scanner.Find(ctx, mask)
		count = len(found)
	}
	if err != nil {
		logger.Error("scan failed", "error", err)
		return exitFailure
	}
	logger.Debug("scan complete", "crossings", count, "elapsed", time.Since(start))

	fmt.Fprintln(stdout, count)

	if cfg.AnnotatePath != "" {
		points := make([]image.Point, len(found))
		for i, c := range found {
			points[i] = image.Point{X: c.X, Y: c.Y}
		}
		if err := imaging.SaveAnnotated(cfg.AnnotatePath, gray, points, cfg.MarkerColor, cfg.LineWidth); err != nil {
			logger.Error("failed to write annotated image", "path", cfg.AnnotatePath, "error", err)
			return exitFailure
		}
		logger.Debug("annotated image written", "path", cfg.AnnotatePath)
	}

	return exitOK
}
