package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/CodingBot000/miracle3day-sub001/internal/capture"
	"github.com/CodingBot000/miracle3day-sub001/internal/clock"
	"github.com/CodingBot000/miracle3day-sub001/internal/config"
	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
	"github.com/CodingBot000/miracle3day-sub001/internal/log"
	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

// tickTimeout bounds how long replay waits for one simulated tick
const tickTimeout = 5 * time.Second

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

var hideProgress bool

// ScoreStats summarizes one score over a replay
type ScoreStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// ReplaySummary describes a finished replay
type ReplaySummary struct {
	Frames       int            `json:"frames"`
	Published    int            `json:"published"`
	Failed       int            `json:"failed"`
	Ready        int            `json:"ready"`
	FirstReady   int            `json:"first_ready"` // frame index, -1 if never ready
	Messages     map[string]int `json:"messages"`
	Position     ScoreStats     `json:"position"`
	Lighting     ScoreStats     `json:"lighting"`
	Straightness ScoreStats     `json:"straightness"`
}

var replayCmd = &cobra.Command{
	Use:   "replay <dir>",
	Short: "Play a directory of frames through a capture session on a simulated clock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := replayDir(cmd.Context(), cfg, args[0], cmd.OutOrStdout(), !hideProgress)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

// listFrames returns the image files of dir in name order
func listFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// replayDir feeds each frame to a session and advances a mock clock by one
// tick interval per frame, so debounce behaves as it would live
func replayDir(ctx context.Context, cfg *config.Config, dir string, w io.Writer, progress bool) (ReplaySummary, error) {
	summary := ReplaySummary{FirstReady: -1, Messages: make(map[string]int)}

	paths, err := listFrames(dir)
	if err != nil {
		return summary, err
	}
	if len(paths) == 0 {
		return summary, fmt.Errorf("no images found in %s", dir)
	}

	mc := clock.NewMock(time.Unix(0, 0).UTC())
	frames := capture.NewLatestFrame()
	snaps := make(chan capture.Snapshot, 1)
	source := quality.NewHeuristicSource(cfg.Quality.Thresholds, quality.NewRandomCoin(cfg.Quality.Seed))

	session := capture.NewSession(cfg.Capture, source, cfg.Guidance, frames,
		capture.WithClock(mc),
		capture.WithID("replay"),
		capture.WithPublisher(capture.PublisherFunc(func(s capture.Snapshot) {
			select {
			case snaps <- s:
			default:
			}
		})),
	)
	if err := session.Start(ctx); err != nil {
		return summary, fmt.Errorf("failed to start session: %w", err)
	}
	defer session.Stop()

	barWriter := io.Writer(os.Stderr)
	if !progress {
		barWriter = io.Discard
	}
	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Replaying"),
		progressbar.OptionSetWriter(barWriter),
		progressbar.OptionShowCount(),
	)

	var position, lighting, straightness []float64
	for i, path := range paths {
		summary.Frames++
		_ = bar.Add(1)

		buf, _, err := frame.Load(path, cfg.Frame.MaxDimension)
		if err != nil {
			summary.Failed++
			log.Warnf("Skipping %s: %v", path, err)
			continue
		}
		frames.Put(buf)
		mc.Advance(cfg.Capture.TickInterval)

		var snap capture.Snapshot
		select {
		case snap = <-snaps:
		case <-time.After(tickTimeout):
			summary.Failed++
			log.Warnf("No snapshot for %s", path)
			continue
		case <-ctx.Done():
			return summary, ctx.Err()
		}

		summary.Published++
		summary.Messages[snap.Guidance.Message]++
		if snap.Guidance.CanCapture {
			summary.Ready++
			if summary.FirstReady < 0 {
				summary.FirstReady = i
			}
		}
		position = append(position, snap.Scores.Position)
		lighting = append(lighting, snap.Scores.Lighting)
		straightness = append(straightness, snap.Scores.Straightness)

		fmt.Fprintf(w, "%4d  %-32s  %-8s  %-5t  %s\n", i, filepath.Base(path),
			snap.Guidance.Severity, snap.Guidance.CanCapture, snap.Guidance.Message)
	}
	_ = bar.Finish()

	summary.Position = scoreStats(position)
	summary.Lighting = scoreStats(lighting)
	summary.Straightness = scoreStats(straightness)
	return summary, nil
}

func scoreStats(xs []float64) ScoreStats {
	switch len(xs) {
	case 0:
		return ScoreStats{}
	case 1:
		return ScoreStats{Mean: xs[0]}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return ScoreStats{Mean: mean, StdDev: std}
}

func printSummary(w io.Writer, s ReplaySummary) {
	fmt.Fprintf(w, "\n%d frames, %d published, %d failed, %d ready", s.Frames, s.Published, s.Failed, s.Ready)
	if s.FirstReady >= 0 {
		fmt.Fprintf(w, " (first at frame %d)", s.FirstReady)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "position     %6.1f ± %5.1f\n", s.Position.Mean, s.Position.StdDev)
	fmt.Fprintf(w, "lighting     %6.1f ± %5.1f\n", s.Lighting.Mean, s.Lighting.StdDev)
	fmt.Fprintf(w, "straightness %6.1f ± %5.1f\n", s.Straightness.Mean, s.Straightness.StdDev)

	messages := make([]string, 0, len(s.Messages))
	for m := range s.Messages {
		messages = append(messages, m)
	}
	sort.Strings(messages)
	for _, m := range messages {
		fmt.Fprintf(w, "  %4d  %s\n", s.Messages[m], m)
	}
}

func init() {
	replayCmd.Flags().BoolVar(&hideProgress, "no-progress", false, "hide the progress bar")
	rootCmd.AddCommand(replayCmd)
}
