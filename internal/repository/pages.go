package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/amrelsisy2023/HiLyte-sub000/internal/common"
)

// PageFiles resolves per-page rasters on disk. The upload pipeline writes
// each drawing's pages as <root>/<drawingID>/pages/page.<n>.png.
type PageFiles struct {
	root string
}

func NewPageFiles(root string) *PageFiles {
	return &PageFiles{root: root}
}

// GetPageImagePath returns the raster path for a page, or ErrNotFound when
// that page was never rasterized (cover pages, failed conversions).
func (p *PageFiles) GetPageImagePath(drawingID string, page int) (string, error) {
	path := filepath.Join(p.root, drawingID, "pages", fmt.Sprintf("page.%d.png", page))
	if _, err := os.Stat(path); err != nil {
		return "", common.NewAppError("PAGE_RASTER_MISSING",
			fmt.Sprintf("no raster for drawing %s page %d", drawingID, page), common.ErrNotFound)
	}
	return path, nil
}
