package quality

import "math"

// unbounded is the open upper end of a RangeBand. MaxFloat64 rather than
// +Inf keeps the table JSON-encodable.
const unbounded = math.MaxFloat64

// RangeBand awards Score when Min <= v <= Max. Bands are evaluated in
// order and the first match wins.
type RangeBand struct {
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
	Score float64 `yaml:"score" json:"score"`
}

// StepBand awards Score when a value crosses Limit. Whether "crosses"
// means below or above depends on the scoring function using it.
type StepBand struct {
	Limit float64 `yaml:"limit" json:"limit"`
	Score float64 `yaml:"score" json:"score"`
}

// SkinRule is a per-channel skin-tone test. Pixels match when every
// channel lies strictly inside its bounds, |r-g| < MaxRGDiff and, if
// RequireRAboveB, r > b.
type SkinRule struct {
	MinR           int  `yaml:"min_r" json:"min_r"`
	MinG           int  `yaml:"min_g" json:"min_g"`
	MinB           int  `yaml:"min_b" json:"min_b"`
	MaxR           int  `yaml:"max_r" json:"max_r"`
	MaxG           int  `yaml:"max_g" json:"max_g"`
	MaxB           int  `yaml:"max_b" json:"max_b"`
	MaxRGDiff      int  `yaml:"max_rg_diff" json:"max_rg_diff"`
	RequireRAboveB bool `yaml:"require_r_above_b" json:"require_r_above_b"`
}

// Match applies the rule to one pixel
func (s SkinRule) Match(r, g, b int) bool {
	if r <= s.MinR || g <= s.MinG || b <= s.MinB {
		return false
	}
	if r >= s.MaxR || g >= s.MaxG || b >= s.MaxB {
		return false
	}
	if s.RequireRAboveB && r <= b {
		return false
	}
	d := r - g
	if d < 0 {
		d = -d
	}
	return d < s.MaxRGDiff
}

// SamplingThresholds controls scan cost. Changing a stride shifts every
// downstream score band.
type SamplingThresholds struct {
	Stride                 int     `yaml:"stride" json:"stride" validate:"gte=1"`
	FallbackStride         int     `yaml:"fallback_stride" json:"fallback_stride" validate:"gte=1"`
	SymmetryStride         int     `yaml:"symmetry_stride" json:"symmetry_stride" validate:"gte=1"`
	RegionFraction         float64 `yaml:"region_fraction" json:"region_fraction" validate:"gt=0,lte=1"`
	FaceSearchFraction     float64 `yaml:"face_search_fraction" json:"face_search_fraction" validate:"gt=0,lte=1"`
	SymmetryRegionFraction float64 `yaml:"symmetry_region_fraction" json:"symmetry_region_fraction" validate:"gt=0,lte=1"`
	EdgeGradient           int     `yaml:"edge_gradient" json:"edge_gradient"`
}

// DetectionThresholds are the six conditions that must all hold for a
// frame to count as containing a face.
type DetectionThresholds struct {
	MinSkinRatio  float64 `yaml:"min_skin_ratio" json:"min_skin_ratio"`
	MaxSkinRatio  float64 `yaml:"max_skin_ratio" json:"max_skin_ratio"`
	MinVariance   float64 `yaml:"min_variance" json:"min_variance"`
	MinEdgeRatio  float64 `yaml:"min_edge_ratio" json:"min_edge_ratio"`
	MinBrightness float64 `yaml:"min_brightness" json:"min_brightness"`
	MaxBrightness float64 `yaml:"max_brightness" json:"max_brightness"`
	MinSkinPixels int     `yaml:"min_skin_pixels" json:"min_skin_pixels"`
}

// BoundsThresholds governs the face bounding box pass
type BoundsThresholds struct {
	MinSkinPixels int     `yaml:"min_skin_pixels" json:"min_skin_pixels"`
	MinSizePct    float64 `yaml:"min_size_pct" json:"min_size_pct"`
	MaxSizePct    float64 `yaml:"max_size_pct" json:"max_size_pct"`
}

// FallbackThresholds governs the 3x3 densest-cell search
type FallbackThresholds struct {
	GridSize     int `yaml:"grid_size" json:"grid_size" validate:"gte=1"`
	MinCellCount int `yaml:"min_cell_count" json:"min_cell_count"`
}

// LightingThresholds scores exposure
type LightingThresholds struct {
	Brightness []RangeBand `yaml:"brightness" json:"brightness"`
	Variance   []RangeBand `yaml:"variance" json:"variance"`
}

// StraightnessThresholds scores edge density and left/right, top/bottom
// symmetry.
type StraightnessThresholds struct {
	Edge               []RangeBand `yaml:"edge" json:"edge"`
	HorizontalMargin   int         `yaml:"horizontal_margin" json:"horizontal_margin"`
	VerticalMargin     int         `yaml:"vertical_margin" json:"vertical_margin"`
	MinSidePixels      int         `yaml:"min_side_pixels" json:"min_side_pixels"`
	HorizontalSymmetry []StepBand  `yaml:"horizontal_symmetry" json:"horizontal_symmetry"` // above
	VerticalBalance    []StepBand  `yaml:"vertical_balance" json:"vertical_balance"`       // above
	NoBufferHorizontal []StepBand  `yaml:"no_buffer_horizontal" json:"no_buffer_horizontal"`
	NoBufferVertical   []StepBand  `yaml:"no_buffer_vertical" json:"no_buffer_vertical"`
}

// PositionThresholds scores size and centering
type PositionThresholds struct {
	Size       []RangeBand `yaml:"size" json:"size"`
	Horizontal []StepBand  `yaml:"horizontal" json:"horizontal"` // below
	Vertical   []StepBand  `yaml:"vertical" json:"vertical"`     // below

	// Multiplier floors applied by straightness bucket
	LowStraightness float64 `yaml:"low_straightness" json:"low_straightness"`
	MidStraightness float64 `yaml:"mid_straightness" json:"mid_straightness"`
	LowFloor        float64 `yaml:"low_floor" json:"low_floor"`
	MidFloor        float64 `yaml:"mid_floor" json:"mid_floor"`
	HighFloor       float64 `yaml:"high_floor" json:"high_floor"`
}

// ClassifierThresholds maps metrics into the discrete FaceQuality buckets
type ClassifierThresholds struct {
	TooSmallBelow       float64 `yaml:"too_small_below" json:"too_small_below"`
	GoodAreaMin         float64 `yaml:"good_area_min" json:"good_area_min"`
	GoodAreaMax         float64 `yaml:"good_area_max" json:"good_area_max"`
	FrontalMaxDeviation float64 `yaml:"frontal_max_deviation" json:"frontal_max_deviation"`

	GoodLightMin      float64 `yaml:"good_light_min" json:"good_light_min"`
	GoodLightMax      float64 `yaml:"good_light_max" json:"good_light_max"`
	GoodLightVariance float64 `yaml:"good_light_variance" json:"good_light_variance"`
	OKLightMin        float64 `yaml:"ok_light_min" json:"ok_light_min"`
	OKLightMax        float64 `yaml:"ok_light_max" json:"ok_light_max"`
	OKLightVariance   float64 `yaml:"ok_light_variance" json:"ok_light_variance"`

	AngleVerticalDeviation   float64 `yaml:"angle_vertical_deviation" json:"angle_vertical_deviation"`
	AngleHorizontalDeviation float64 `yaml:"angle_horizontal_deviation" json:"angle_horizontal_deviation"`
	TiltMaxEdgeRatio         float64 `yaml:"tilt_max_edge_ratio" json:"tilt_max_edge_ratio"`
}

// Thresholds is the single table of every tunable constant the pipeline
// uses
type Thresholds struct {
	Sampling     SamplingThresholds     `yaml:"sampling" json:"sampling"`
	Skin         SkinRule               `yaml:"skin" json:"skin"`
	LooseSkin    SkinRule               `yaml:"loose_skin" json:"loose_skin"`
	Detection    DetectionThresholds    `yaml:"detection" json:"detection"`
	Bounds       BoundsThresholds       `yaml:"bounds" json:"bounds"`
	Fallback     FallbackThresholds     `yaml:"fallback" json:"fallback"`
	Lighting     LightingThresholds     `yaml:"lighting" json:"lighting"`
	Straightness StraightnessThresholds `yaml:"straightness" json:"straightness"`
	Position     PositionThresholds     `yaml:"position" json:"position"`
	Classifier   ClassifierThresholds   `yaml:"classifier" json:"classifier"`
}

// noLimit disables an upper channel bound in a SkinRule
const noLimit = 256

// Face size range reported by the bounds pass, in percent of the shorter
// frame side
const (
	minFaceSizePct = 5
	maxFaceSizePct = 80
)

// DefaultThresholds returns the production tuning
func DefaultThresholds() Thresholds {
	return Thresholds{
		Sampling: SamplingThresholds{
			Stride:                 2,
			FallbackStride:         4,
			SymmetryStride:         2,
			RegionFraction:         0.4,
			FaceSearchFraction:     0.8,
			SymmetryRegionFraction: 0.3,
			EdgeGradient:           30,
		},
		Skin: SkinRule{
			MinR: 60, MinG: 40, MinB: 20,
			MaxR: 220, MaxG: 200, MaxB: 180,
			MaxRGDiff:      50,
			RequireRAboveB: true,
		},
		LooseSkin: SkinRule{
			MinR: 50, MinG: 30, MinB: 15,
			MaxR: 240, MaxG: noLimit, MaxB: noLimit,
			MaxRGDiff:      noLimit,
			RequireRAboveB: true,
		},
		Detection: DetectionThresholds{
			MinSkinRatio:  0.25,
			MaxSkinRatio:  0.75,
			MinVariance:   40,
			MinEdgeRatio:  0.08,
			MinBrightness: 90,
			MaxBrightness: 190,
			MinSkinPixels: 2000,
		},
		Bounds: BoundsThresholds{
			MinSkinPixels: 100,
			MinSizePct:    minFaceSizePct,
			MaxSizePct:    maxFaceSizePct,
		},
		Fallback: FallbackThresholds{
			GridSize:     3,
			MinCellCount: 10,
		},
		Lighting: LightingThresholds{
			Brightness: []RangeBand{
				{Min: 80, Max: 180, Score: 60},
				{Min: 60, Max: 200, Score: 40},
				{Min: 40, Max: 220, Score: 20},
			},
			Variance: []RangeBand{
				{Min: 20, Max: 60, Score: 40},
				{Min: 15, Max: 80, Score: 25},
				{Min: 10, Max: unbounded, Score: 10},
			},
		},
		Straightness: StraightnessThresholds{
			Edge: []RangeBand{
				{Min: 0.05, Max: 0.15, Score: 30},
				{Min: 0.03, Max: 0.2, Score: 20},
				{Min: 0.01, Max: unbounded, Score: 10},
			},
			HorizontalMargin: 10,
			VerticalMargin:   5,
			MinSidePixels:    10,
			HorizontalSymmetry: []StepBand{
				{Limit: 0.85, Score: 40},
				{Limit: 0.75, Score: 25},
				{Limit: 0.6, Score: 10},
			},
			VerticalBalance: []StepBand{
				{Limit: 0.8, Score: 30},
				{Limit: 0.7, Score: 20},
				{Limit: 0.5, Score: 10},
			},
			NoBufferHorizontal: []StepBand{
				{Limit: 0.05, Score: 20},
				{Limit: 0.1, Score: 15},
				{Limit: 0.15, Score: 10},
			},
			NoBufferVertical: []StepBand{
				{Limit: 0.08, Score: 20},
				{Limit: 0.15, Score: 10},
			},
		},
		Position: PositionThresholds{
			Size: []RangeBand{
				{Min: 60, Max: 90, Score: 40},
				{Min: 40, Max: 95, Score: 35},
				{Min: 25, Max: 100, Score: 30},
				{Min: 15, Max: 25, Score: 20},
				{Min: 10, Max: 15, Score: 10},
				{Min: 5, Max: 10, Score: 5},
			},
			Horizontal: []StepBand{
				{Limit: 0.05, Score: 30},
				{Limit: 0.1, Score: 25},
				{Limit: 0.15, Score: 15},
				{Limit: 0.2, Score: 5},
			},
			Vertical: []StepBand{
				{Limit: 0.05, Score: 30},
				{Limit: 0.1, Score: 25},
				{Limit: 0.12, Score: 15},
				{Limit: 0.15, Score: 5},
			},
			LowStraightness: 50,
			MidStraightness: 70,
			LowFloor:        0.4,
			MidFloor:        0.6,
			HighFloor:       0.85,
		},
		Classifier: ClassifierThresholds{
			TooSmallBelow:       10,
			GoodAreaMin:         15,
			GoodAreaMax:         75,
			FrontalMaxDeviation: 0.15,

			GoodLightMin:      80,
			GoodLightMax:      180,
			GoodLightVariance: 60,
			OKLightMin:        60,
			OKLightMax:        200,
			OKLightVariance:   80,

			AngleVerticalDeviation:   0.2,
			AngleHorizontalDeviation: 0.2,
			TiltMaxEdgeRatio:         0.02,
		},
	}
}

// scoreRange returns the score of the first band containing v
func scoreRange(v float64, bands []RangeBand) float64 {
	for _, b := range bands {
		if v >= b.Min && v <= b.Max {
			return b.Score
		}
	}
	return 0
}

// scoreBelow returns the score of the first band whose limit v is under
func scoreBelow(v float64, bands []StepBand) float64 {
	for _, b := range bands {
		if v < b.Limit {
			return b.Score
		}
	}
	return 0
}

// scoreAbove returns the score of the first band whose limit v exceeds
func scoreAbove(v float64, bands []StepBand) float64 {
	for _, b := range bands {
		if v > b.Limit {
			return b.Score
		}
	}
	return 0
}
