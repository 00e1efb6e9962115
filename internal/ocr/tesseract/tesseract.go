// Package tesseract implements ocr.Engine with the Tesseract library through gosseract.
package tesseract

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/chinesepdfparser/internal/ocr"
	"github.com/otiai10/gosseract/v2"
)

// Engine runs each recognition on its own gosseract client, so it is safe to
// call from several goroutines.
type Engine struct {
	tessdataPrefix string
	clientFactory  func() *gosseract.Client
}

// New returns a Tesseract engine. An empty tessdataPrefix uses the library default.
func New(tessdataPrefix string) *Engine {
	return &Engine{tessdataPrefix: tessdataPrefix, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Recognize runs OCR on a single page image.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c := e.clientFactory()
	defer c.Close()

	if e.tessdataPrefix != "" {
		if err := c.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return ocr.Result{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(in.PageSegMode)); err != nil {
			return ocr.Result{}, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable("user_defined_dpi", fmt.Sprint(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	if err := c.SetImageFromBytes(in.PNG); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize page %d: %w", in.Page, err)
	}

	var confidence float64
	if boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD); err == nil {
		confidence = meanConfidence(boxes)
	}
	return ocr.Result{Text: text, Confidence: confidence}, nil
}

// meanConfidence averages word confidences, ignoring Tesseract's negative
// "no confidence" markers.
func meanConfidence(boxes []gosseract.BoundingBox) float64 {
	var sum float64
	var n int
	for _, b := range boxes {
		if b.Confidence < 0 {
			continue
		}
		sum += b.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
