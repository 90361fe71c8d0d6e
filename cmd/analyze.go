package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/CodingBot000/miracle3day-sub001/internal/config"
	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
	"github.com/CodingBot000/miracle3day-sub001/internal/guidance"
	"github.com/CodingBot000/miracle3day-sub001/internal/log"
	"github.com/CodingBot000/miracle3day-sub001/internal/quality"
)

var cropDir string

// AnalyzeResult is the JSON document printed for one image
type AnalyzeResult struct {
	File     string            `json:"file"`
	Metadata *frame.Metadata   `json:"metadata,omitempty"`
	Analysis *quality.Analysis `json:"analysis,omitempty"`
	Guidance *guidance.State   `json:"guidance,omitempty"`
	Crop     string            `json:"crop,omitempty"`
	Error    string            `json:"error,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>...",
	Short: "Analyze still images and print metrics, classification and guidance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyzeFiles(cfg, args, cropDir, cmd.OutOrStdout())
	},
}

// analyzeFiles prints one AnalyzeResult per path. Unreadable images are
// reported and skipped; the error counts them.
func analyzeFiles(cfg *config.Config, paths []string, crops string, w io.Writer) error {
	source := quality.NewHeuristicSource(cfg.Quality.Thresholds, quality.NewRandomCoin(cfg.Quality.Seed))

	failed := 0
	for _, path := range paths {
		res := analyzeFile(cfg, source, path, crops)
		if res.Error != "" {
			failed++
			log.Warnf("Failed to analyze %s: %s", path, res.Error)
		}

		data, err := jsoniter.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result for %s: %w", path, err)
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}

func analyzeFile(cfg *config.Config, source *quality.HeuristicSource, path, crops string) AnalyzeResult {
	res := AnalyzeResult{File: path}

	buf, meta, err := frame.Load(path, cfg.Frame.MaxDimension)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Metadata = &meta

	analysis, err := source.Analyze(buf)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Analysis = &analysis

	state := guidance.Decide(cfg.Guidance, guidance.InputFrom(analysis))
	res.Guidance = &state

	if crops != "" && analysis.Metrics.HasFace && !analysis.Metrics.FaceBounds.Empty() {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + "_face.jpg"
		out := filepath.Join(crops, name)
		if err := frame.SaveCrop(buf, analysis.Metrics.FaceBounds, out); err != nil {
			log.Warnf("Failed to save crop for %s: %v", path, err)
		} else {
			res.Crop = out
		}
	}
	return res
}

func init() {
	analyzeCmd.Flags().StringVar(&cropDir, "crops", "", "write the detected face region of each image to this directory")
	rootCmd.AddCommand(analyzeCmd)
}
