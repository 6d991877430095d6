package document

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// Loader parses documents. The viewer depends on this instead of Load so
// tests can substitute a fake.
type Loader interface {
	Load(ctx context.Context, name string, data []byte) (*Document, error)
}

// PDFLoader is the Loader backed by ledongthuc/pdf.
type PDFLoader struct {
	Workers int
}

// Load implements Loader.
func (l PDFLoader) Load(ctx context.Context, name string, data []byte) (*Document, error) {
	return Load(ctx, name, data, l.Workers)
}

// Load parses data into a Document. Pages are extracted by up to workers
// goroutines, each with its own reader over the shared bytes. A page whose
// text cannot be extracted is kept blank.
func Load(ctx context.Context, name string, data []byte, workers int) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	reader, err := openReader(data)
	if err != nil {
		return nil, err
	}
	total, err := countPages(reader)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrEmpty
	}
	if workers < 1 {
		workers = 1
	}
	if workers > total {
		workers = total
	}

	pages := make([]Page, total)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			r := reader
			if w > 0 {
				own, err := openReader(data)
				if err != nil {
					return err
				}
				r = own
			}
			for n := w + 1; n <= total; n += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				pages[n-1] = extractPage(r, n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Document{Name: name, Pages: pages}, nil
}

func openReader(data []byte) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("%w: %v", ErrCorrupt, rec)
		}
	}()
	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return r, nil
}

func countPages(r *pdf.Reader) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrCorrupt, rec)
		}
	}()
	return r.NumPage(), nil
}

func extractPage(r *pdf.Reader, n int) (page Page) {
	page = Page{Number: n, Width: letterWidth, Height: letterHeight}
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[document] page %d: text extraction panicked: %v", n, rec)
			page.Runs = nil
		}
	}()

	p := r.Page(n)
	if p.V.IsNull() {
		return page
	}
	llx, lly, width, height := mediaBox(p.V)
	page.Width, page.Height = width, height

	rows, err := p.GetTextByRow()
	if err != nil {
		log.Printf("[document] page %d: text extraction failed: %v", n, err)
		return page
	}
	for _, row := range rows {
		for _, text := range row.Content {
			if text.S == "" {
				continue
			}
			page.Runs = append(page.Runs, Run{X: text.X - llx, Y: text.Y - lly, Text: text.S})
		}
	}
	return page
}

// mediaBox returns the page box origin and size, following inheritance
// through the page tree.
func mediaBox(v pdf.Value) (llx, lly, width, height float64) {
	for node, depth := v, 0; !node.IsNull() && depth < 32; node, depth = node.Key("Parent"), depth+1 {
		box := node.Key("MediaBox")
		if box.Len() != 4 {
			continue
		}
		llx, lly = box.Index(0).Float64(), box.Index(1).Float64()
		width = box.Index(2).Float64() - llx
		height = box.Index(3).Float64() - lly
		if width > 0 && height > 0 {
			return llx, lly, width, height
		}
	}
	return 0, 0, letterWidth, letterHeight
}
