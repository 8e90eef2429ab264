package types

// Slide is one generated slide as returned by the generation service. Beyond
// the response being a non-empty JSON array, slide objects are not validated;
// they are passed to the renderer as-is.
type Slide struct {
	// Title is the slide's main title.
	Title string `json:"title" yaml:"title"`

	// Body is the slide content: Markdown-flavored bullets and paragraphs.
	Body string `json:"body" yaml:"body"`

	// ImageRefs lists catalog ids of extracted figures to show on the slide.
	ImageRefs []string `json:"image_refs,omitempty" yaml:"image_refs,omitempty"`
}

// CatalogEntry describes one raster image extracted from the reference PDF.
// Entries are keyed by a deterministic id of the form
// "page-<3-digit page>-image-<2-digit index>", so lexicographic id order
// equals extraction order.
type CatalogEntry struct {
	// Path is the extracted PNG file, slash-separated for use in HTML.
	Path string `json:"src" yaml:"src"`

	// Page is the 1-based source page number.
	Page int `json:"page" yaml:"page"`

	// Width and Height are the pixel dimensions of the image as listed in
	// the document, before any color-space conversion.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// Context is a whitespace-collapsed excerpt of the page's text,
	// truncated with an ellipsis, offered to the model as figure context.
	Context string `json:"context" yaml:"context"`
}
