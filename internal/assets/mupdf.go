// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sort"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// pdfDocument combines MuPDF (page text) with pdfcpu (embedded image
// streams). The image listing is materialized once at open; pixel buffers are
// decoded only when the page is visited, so peak memory stays at roughly one
// page's images.
type pdfDocument struct {
	doc    *fitz.Document
	pages  int
	images map[int][]rawImage // page number → listing order
}

// rawImage is one undecoded embedded image stream.
type rawImage struct {
	objNr int
	name  string
	data  []byte
}

// OpenDocument opens the PDF at path for text and image extraction.
func OpenDocument(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	images, err := listEmbeddedImages(path)
	if err != nil {
		doc.Close()
		return nil, err
	}

	return &pdfDocument{doc: doc, pages: doc.NumPage(), images: images}, nil
}

// listEmbeddedImages walks the document's page resources and groups the
// embedded image streams by page, ordered by object number within a page.
func listEmbeddedImages(path string) (map[int][]rawImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pageMaps, err := api.ExtractImagesRaw(f, nil, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("listing embedded images: %w", err)
	}

	images := make(map[int][]rawImage)
	for _, pageMap := range pageMaps {
		for objNr, img := range pageMap {
			data, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("reading image object %d: %w", objNr, err)
			}
			images[img.PageNr] = append(images[img.PageNr], rawImage{
				objNr: objNr,
				name:  img.Name,
				data:  data,
			})
		}
	}
	for _, list := range images {
		sort.Slice(list, func(i, j int) bool { return list[i].objNr < list[j].objNr })
	}
	return images, nil
}

func (d *pdfDocument) NumPages() int {
	return d.pages
}

func (d *pdfDocument) PageText(page int) (string, error) {
	return d.doc.Text(page - 1)
}

// PageImages decodes the page's embedded streams. Streams that fail to decode
// leave a nil-Image placeholder in their listing slot, so sibling images keep
// their positions; the failures are reported joined as the error alongside the
// successful decodes.
func (d *pdfDocument) PageImages(page int) ([]PageImage, error) {
	raws := d.images[page]
	out := make([]PageImage, len(raws))
	var errs []error
	for i, ri := range raws {
		img, _, err := image.Decode(bytes.NewReader(ri.data))
		if err != nil {
			errs = append(errs, fmt.Errorf("decoding image %s on page %d: %w", ri.name, page, err))
			continue
		}
		bounds := img.Bounds()
		out[i] = PageImage{Width: bounds.Dx(), Height: bounds.Dy(), Image: img}
	}
	return out, errors.Join(errs...)
}

func (d *pdfDocument) Close() error {
	d.images = nil
	return d.doc.Close()
}
