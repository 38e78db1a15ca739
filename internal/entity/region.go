package entity

// Region is a rectangular selection in page-pixel coordinates.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Clamp shrinks the region so it is fully contained in [0,imgW) x [0,imgH).
// A request extending past the image bounds is cut to fit rather than rejected.
func (r Region) Clamp(imgW, imgH int) Region {
	c := r
	if c.X < 0 {
		c.Width += c.X
		c.X = 0
	}
	if c.Y < 0 {
		c.Height += c.Y
		c.Y = 0
	}
	if c.X > imgW {
		c.X = imgW
	}
	if c.Y > imgH {
		c.Y = imgH
	}
	if c.X+c.Width > imgW {
		c.Width = imgW - c.X
	}
	if c.Y+c.Height > imgH {
		c.Height = imgH - c.Y
	}
	if c.Width < 0 {
		c.Width = 0
	}
	if c.Height < 0 {
		c.Height = 0
	}
	return c
}

// Empty reports whether the region has zero area.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}
