// internal/vision/coords.go
package vision

// MapBox converts a box from the model's 0-1000 per-axis space to a clamped
// pixel-space rectangle for the given image dimensions. Each axis scales by
// dimension/1000, the origin is the min corner, width/height the absolute
// span, everything truncated to integers and clamped so the box stays
// within the image.
func MapBox(box Box, imgWidth, imgHeight int) PixelBox {
	sx := float64(imgWidth) / ModelSpaceMax
	sy := float64(imgHeight) / ModelSpaceMax

	x1, y1, x2, y2 := box[0]*sx, box[1]*sy, box[2]*sx, box[3]*sy
	return clampBox(PixelBox{
		X:      int(minf(x1, x2)),
		Y:      int(minf(y1, y2)),
		Width:  int(absf(x2 - x1)),
		Height: int(absf(y2 - y1)),
	}, imgWidth, imgHeight)
}

// DirectBox converts a box that is already in pixel coordinates (the remove
// pass convention) to a rectangle without applying any scaling. The two
// scan modes use different coordinate conventions on purpose.
func DirectBox(box Box) PixelBox {
	return PixelBox{
		X:      int(minf(box[0], box[2])),
		Y:      int(minf(box[1], box[3])),
		Width:  int(absf(box[2] - box[0])),
		Height: int(absf(box[3] - box[1])),
	}
}

// ApplyPixelBoxes maps every model-space box of every item, keeping the
// successfully converted boxes as bboxes with the first one as bbox, and
// forces the quantity to the box count whenever boxes exist. Boxes are
// authoritative over any claimed count.
func ApplyPixelBoxes(items []Item, imgWidth, imgHeight int) {
	for i := range items {
		if len(items[i].Coordinates) == 0 {
			continue
		}
		boxes := make([]PixelBox, 0, len(items[i].Coordinates))
		for _, box := range items[i].Coordinates {
			boxes = append(boxes, MapBox(box, imgWidth, imgHeight))
		}
		items[i].Bboxes = boxes
		items[i].Bbox = &boxes[0]
		items[i].Quantity = len(boxes)
	}
}

func clampBox(b PixelBox, imgWidth, imgHeight int) PixelBox {
	b.X = clampInt(b.X, 0, imgWidth)
	b.Y = clampInt(b.Y, 0, imgHeight)
	b.Width = clampInt(b.Width, 0, imgWidth-b.X)
	b.Height = clampInt(b.Height, 0, imgHeight-b.Y)
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
