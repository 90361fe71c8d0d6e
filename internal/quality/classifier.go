package quality

import (
	"math/rand/v2"
	"sync"

	"github.com/CodingBot000/miracle3day-sub001/pkg/utils"
)

// Coin decides the tilt direction when a face shows too few edges to tell
// pose. The heuristic has no signal for the direction, so it is a flip.
type Coin interface {
	Heads() bool
}

// RandomCoin is a seeded, goroutine-safe Coin
type RandomCoin struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomCoin creates a coin from a fixed seed
func NewRandomCoin(seed uint64) *RandomCoin {
	return &RandomCoin{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Heads flips the coin
func (c *RandomCoin) Heads() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(2) == 0
}

// FixedCoin always lands the same way
type FixedCoin bool

// Heads returns the fixed value
func (c FixedCoin) Heads() bool {
	return bool(c)
}

// Classifier maps metrics and scores into the discrete FaceQuality
// taxonomy
type Classifier struct {
	th   ClassifierThresholds
	coin Coin
}

// NewClassifier creates a classifier. A nil coin defaults to a
// RandomCoin seeded with 1.
func NewClassifier(th ClassifierThresholds, coin Coin) *Classifier {
	if coin == nil {
		coin = NewRandomCoin(1)
	}
	return &Classifier{th: th, coin: coin}
}

// Classify builds the FaceQuality for one frame. Scores are accepted so
// alternate sources can classify from the same inputs, but the buckets are
// defined on raw metrics.
func (c *Classifier) Classify(m FrameMetrics, _ QualityScores) FaceQuality {
	hdev := utils.Deviation(m.FaceCenterX, m.FrameWidth)

	return FaceQuality{
		HasFace:   m.HasFace,
		Area:      c.area(m),
		Frontal:   c.frontal(m.HasFace, hdev),
		Lighting:  c.lighting(m.AvgBrightness, m.BrightnessVariance),
		FaceAngle: c.angle(m),
		NakedEye:  NakedEyeGood,
	}
}

func (c *Classifier) area(m FrameMetrics) Area {
	switch {
	case !m.HasFace:
		return AreaOutOfBoundary
	case m.FaceSizePercent < c.th.TooSmallBelow:
		return AreaTooSmall
	case utils.InRange(m.FaceSizePercent, c.th.GoodAreaMin, c.th.GoodAreaMax):
		return AreaGood
	default:
		return AreaNotGood
	}
}

func (c *Classifier) frontal(hasFace bool, hdev float64) Frontal {
	if hasFace && hdev < c.th.FrontalMaxDeviation {
		return FrontalGood
	}
	return FrontalNotGood
}

func (c *Classifier) lighting(avg, variance float64) Lighting {
	switch {
	case utils.InRange(avg, c.th.GoodLightMin, c.th.GoodLightMax) && variance <= c.th.GoodLightVariance:
		return LightingGood
	case utils.InRange(avg, c.th.OKLightMin, c.th.OKLightMax) && variance <= c.th.OKLightVariance:
		return LightingOK
	default:
		return LightingNotGood
	}
}

func (c *Classifier) angle(m FrameMetrics) FaceAngle {
	if !m.HasFace {
		return AngleNotGood
	}

	dx := utils.SignedOffset(m.FaceCenterX, m.FrameWidth)
	dy := utils.SignedOffset(m.FaceCenterY, m.FrameHeight)

	switch {
	case dy < -c.th.AngleVerticalDeviation:
		return AngleUpward
	case dy > c.th.AngleVerticalDeviation:
		return AngleDownward
	case dx < -c.th.AngleHorizontalDeviation:
		return AngleLeftward
	case dx > c.th.AngleHorizontalDeviation:
		return AngleRightward
	case m.EdgeRatio < c.th.TiltMaxEdgeRatio:
		if c.coin.Heads() {
			return AngleLeftTilt
		}
		return AngleRightTilt
	default:
		return AngleGood
	}
}
