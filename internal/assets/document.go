package assets

import "image"

// PageImage is one embedded raster image from a page's resource listing,
// decoded to a pixel buffer. Width and Height come from the listing, before
// any color-space conversion the extractor may apply on save.
type PageImage struct {
	Width  int
	Height int
	Image  image.Image
}

// Document is a parsed reference PDF. Pages are addressed 1-based and
// implementations must tolerate pages with no embedded images.
type Document interface {
	// NumPages returns the page count.
	NumPages() int

	// PageText returns the plain text of the given page.
	PageText(page int) (string, error)

	// PageImages returns the page's embedded raster images in listing
	// order. Implementations may return both images and an error: a stream
	// that cannot be decoded keeps its slot with a nil Image so sibling
	// images stay at their listing positions, and the failure is reported
	// through the error.
	PageImages(page int) ([]PageImage, error)

	// Close releases the underlying document handle.
	Close() error
}

// OpenFunc opens a Document. The production implementation is OpenDocument;
// tests substitute fixtures.
type OpenFunc func(path string) (Document, error)
