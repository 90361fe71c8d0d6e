package quality

import (
	"github.com/CodingBot000/miracle3day-sub001/internal/frame"
)

// FindFallbackCenter partitions the whole frame into a grid and returns the
// center of the cell with the most loosely skin-like pixels. When no cell
// is dense enough the frame center is returned.
func (e *Extractor) FindFallbackCenter(buf *frame.PixelBuffer) (float64, float64) {
	if buf.Validate() != nil {
		return 0, 0
	}
	cx, cy := buf.CenterX(), buf.CenterY()

	grid := e.th.Fallback.GridSize
	stride := e.th.Sampling.FallbackStride
	cellW := buf.Width / grid
	cellH := buf.Height / grid
	if cellW == 0 || cellH == 0 {
		return cx, cy
	}

	bestCount := 0
	var best frame.Region

	for row := 0; row < grid; row++ {
		for col := 0; col < grid; col++ {
			cell := frame.Region{
				StartX: col * cellW,
				EndX:   (col + 1) * cellW,
				StartY: row * cellH,
				EndY:   (row + 1) * cellH,
			}
			// The last row and column take the remainder
			if col == grid-1 {
				cell.EndX = buf.Width
			}
			if row == grid-1 {
				cell.EndY = buf.Height
			}
			count := e.countLooseSkin(buf, cell, stride)
			if count > bestCount {
				bestCount = count
				best = cell
			}
		}
	}

	if bestCount <= e.th.Fallback.MinCellCount {
		return cx, cy
	}
	return float64(best.StartX+best.EndX) / 2, float64(best.StartY+best.EndY) / 2
}

func (e *Extractor) countLooseSkin(buf *frame.PixelBuffer, cell frame.Region, stride int) int {
	count := 0
	for y := cell.StartY; y < cell.EndY; y += stride {
		for x := cell.StartX; x < cell.EndX; x += stride {
			r, g, b := buf.RGB(x, y)
			if e.th.LooseSkin.Match(r, g, b) {
				count++
			}
		}
	}
	return count
}
