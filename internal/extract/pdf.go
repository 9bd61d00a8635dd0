// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns downloaded PDFs into plain text and isolates the
// abstract within that text.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/papercrawl/internal/container"
	"github.com/pdiddy/papercrawl/pkg/types"
)

// DefaultMaxPages is how many leading pages are read when no limit is configured.
const DefaultMaxPages = 5

// ErrNoText is returned when a PDF parses but yields no text.
var ErrNoText = errors.New("no text in PDF")

// Extractor reads the leading pages of a PDF and returns their plain text.
// Any error means the caller should treat the text as absent.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// DefaultImage is the poppler image used by the container backend.
const DefaultImage = "minidocks/poppler:latest"

// New returns the extractor selected by cfg.Extractor. The container
// backend needs a working docker or podman and the image pulled locally.
func New(ctx context.Context, cfg types.CrawlConfig) (Extractor, error) {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	switch cfg.Extractor {
	case "", types.ExtractorNative:
		return &NativeExtractor{MaxPages: maxPages}, nil
	case types.ExtractorPdftotext:
		return &PdftotextExtractor{MaxPages: maxPages}, nil
	case types.ExtractorContainer:
		image := cfg.ExtractorImage
		if image == "" {
			image = DefaultImage
		}
		rt, err := container.DetectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		if err := rt.ImageExists(ctx, image); err != nil {
			return nil, fmt.Errorf("%w (pull it with: %s pull %s)", err, rt.Name(), image)
		}
		return &ContainerExtractor{Runtime: rt, Image: image, MaxPages: maxPages}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", cfg.Extractor)
	}
}

// NativeExtractor parses PDFs in-process with ledongthuc/pdf.
type NativeExtractor struct {
	MaxPages int
}

// Extract returns the text of the first MaxPages pages. The PDF parser
// panics on some malformed inputs; those panics come back as errors.
func (e *NativeExtractor) Extract(_ context.Context, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	return readPages(pdfPages{r}, e.MaxPages)
}

// pageSource is the slice of the PDF reader that readPages needs.
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type pdfPages struct {
	r *pdf.Reader
}

func (p pdfPages) NumPage() int { return p.r.NumPage() }

func (p pdfPages) PageText(i int) (string, error) {
	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// readPages concatenates pages 1..maxPages, one newline between pages.
func readPages(src pageSource, maxPages int) (string, error) {
	n := src.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		text, err := src.PageText(i)
		if err != nil {
			return "", fmt.Errorf("reading page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", ErrNoText
	}
	return b.String(), nil
}

// PdftotextExtractor shells out to poppler's pdftotext, feeding the PDF on
// stdin and reading text from stdout.
type PdftotextExtractor struct {
	MaxPages int

	// Binary overrides the executable name; empty means "pdftotext".
	Binary string
}

// Extract runs pdftotext over the first MaxPages pages.
func (e *PdftotextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	bin := e.Binary
	if bin == "" {
		bin = "pdftotext"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, pdftotextArgs(e.MaxPages)...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s: %w: %s", bin, err, strings.TrimSpace(stderr.String()))
	}

	if strings.TrimSpace(stdout.String()) == "" {
		return "", ErrNoText
	}
	return stdout.String(), nil
}

// pdftotextArgs reads the PDF from stdin and writes text to stdout.
func pdftotextArgs(maxPages int) []string {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return []string{"-l", strconv.Itoa(maxPages), "-", "-"}
}

// ContainerExtractor runs pdftotext inside a container image, for hosts
// without poppler installed. The container gets no network.
type ContainerExtractor struct {
	Runtime  container.Runtime
	Image    string
	MaxPages int
}

// Extract pipes data through pdftotext in the container.
func (e *ContainerExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	var stdout bytes.Buffer
	command := append([]string{"pdftotext"}, pdftotextArgs(e.MaxPages)...)
	if err := e.Runtime.Run(ctx, e.Image, command, bytes.NewReader(data), &stdout); err != nil {
		return "", err
	}
	if strings.TrimSpace(stdout.String()) == "" {
		return "", ErrNoText
	}
	return stdout.String(), nil
}
