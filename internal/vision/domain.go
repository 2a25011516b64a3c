// internal/vision/domain.go
package vision

// DefaultText is the placeholder the vision model is instructed to use for
// any text field it cannot fill.
const DefaultText = "unknown"

// ModelSpaceMax is the upper bound of the model's normalized coordinate
// space. Add-scan boxes arrive as [x1,y1,x2,y2] in [0,1000] per axis and
// must be scaled to image pixels; remove-scan boxes are already pixels.
const ModelSpaceMax = 1000.0

// Box is a detection rectangle as the model reports it: [x1,y1,x2,y2].
type Box [4]float64

// PixelBox is a rectangle in image pixel space.
type PixelBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Item is a single normalized detection. Name keeps the case the model
// reported; lookups against inventory are always by lowercased name.
type Item struct {
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Quantity      int        `json:"quantity"`
	Condition     string     `json:"condition"`
	Coordinates   []Box      `json:"coordinates,omitempty"`
	Bbox          *PixelBox  `json:"bbox,omitempty"`
	Bboxes        []PixelBox `json:"bboxes,omitempty"`
	ImageFilename string     `json:"image_filename,omitempty"`
}

// Object is one entry of the canonical deep-scan shape
// {"image_analysis":{"objects":[...]}} after sanitization.
type Object struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Coordinates []Box  `json:"coordinates"`
	Condition   string `json:"condition"`
}

// Analysis is the canonical result of one deep-scan pass.
type Analysis struct {
	Objects []Object `json:"objects"`
}
