package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	CANVAS_SIZE       = 1080
	HEADLINE_BAND     = 360
	SEPARATOR_HEIGHT  = 8
	IMAGE_BAND_TOP    = HEADLINE_BAND + SEPARATOR_HEIGHT
	BAND_PADDING      = 48
	LINE_SPACING      = 1.25
	HIGHLIGHT_PAD_X   = 10
	HIGHLIGHT_PAD_Y   = 4
	LOGO_SIZE         = 140
	LOGO_MARGIN       = 24
	BRAND_FONT_SIZE   = 28
	BRAND_MARGIN_X    = 24
	BRAND_BASELINE_UP = 36
	// Headlines that overflow the band at their FontSize are shrunk in
	// FIT_STEP increments down to MIN_HEADLINE_SIZE.
	FIT_STEP          = 4
	MIN_HEADLINE_SIZE = 32
)

var ErrHeadlineTooLong = errors.New("headline does not fit the headline band")

var (
	bandColor      = color.RGBA{R: 0x10, G: 0x1c, B: 0x2c, A: 0xff}
	textColor      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	highlightColor = color.RGBA{R: 0xff, G: 0xd1, B: 0x66, A: 0xff}
	highlightText  = bandColor
	separatorColor = color.RGBA{R: 0xe6, G: 0x39, B: 0x46, A: 0xff}
)

// Assets are the fixed resources every graphic is drawn with.
type Assets struct {
	Regular *opentype.Font
	Bold    *opentype.Font
	Frame   image.Image
	Logo    image.Image
}

// Layout builds the display list for one graphic. The headline is set in the
// bold face, wrapped and centered in the top band; photo covers the image band.
func Layout(a *Assets, headline string, phrases []string, photo image.Image, brand string) ([]Op, error) {
	if a == nil || a.Regular == nil || a.Bold == nil || a.Frame == nil || a.Logo == nil {
		return nil, errors.New("[Compose] missing assets")
	}
	if photo == nil || photo.Bounds().Empty() {
		return nil, errors.New("[Compose] empty photo")
	}

	ops := []Op{FillOp{Rect: image.Rect(0, 0, CANVAS_SIZE, CANVAS_SIZE), Color: bandColor}}

	headlineOps, err := layoutHeadline(a.Bold, headline, phrases)
	if err != nil {
		return nil, err
	}
	ops = append(ops, headlineOps...)

	ops = append(ops, FillOp{
		Rect:  image.Rect(0, HEADLINE_BAND, CANVAS_SIZE, IMAGE_BAND_TOP),
		Color: separatorColor,
	})

	band := image.Rect(0, IMAGE_BAND_TOP, CANVAS_SIZE, CANVAS_SIZE)
	ops = append(ops, ImageOp{Rect: band, Image: photo, Src: coverCrop(photo.Bounds(), band.Dx(), band.Dy())})

	ops = append(ops,
		ImageOp{Rect: image.Rect(0, 0, CANVAS_SIZE, CANVAS_SIZE), Image: a.Frame},
		ImageOp{Rect: image.Rect(
			LOGO_MARGIN, CANVAS_SIZE-LOGO_SIZE-LOGO_MARGIN,
			LOGO_MARGIN+LOGO_SIZE, CANVAS_SIZE-LOGO_MARGIN,
		), Image: a.Logo},
	)

	if brand != "" {
		face, err := newFace(a.Regular, BRAND_FONT_SIZE)
		if err != nil {
			return nil, err
		}
		width := font.MeasureString(face, brand)
		ops = append(ops, TextOp{
			Text:  brand,
			Face:  face,
			Color: textColor,
			Dot:   fixed.Point26_6{X: fixed.I(CANVAS_SIZE-BRAND_MARGIN_X) - width, Y: fixed.I(CANVAS_SIZE - BRAND_BASELINE_UP)},
		})
	}
	return ops, nil
}

type piece struct {
	text        string
	highlighted bool
}

// word is a run of pieces with no whitespace between them. A phrase match can
// end inside a word, so one word may mix highlighted and plain pieces.
type word []piece

func layoutHeadline(f *opentype.Font, headline string, phrases []string) ([]Op, error) {
	words := splitWords(Segments(headline, phrases))
	if len(words) == 0 {
		return nil, nil
	}
	size, face, lines, err := fitHeadline(f, words, FontSize(headline))
	if err != nil {
		return nil, err
	}

	metrics := face.Metrics()
	space := font.MeasureString(face, " ")
	lineHeight := fixed.Int26_6(size * LINE_SPACING * 64)
	top := (fixed.I(HEADLINE_BAND) - lineHeight*fixed.Int26_6(len(lines))) / 2

	var fills, texts []Op
	for i, line := range lines {
		x := (fixed.I(CANVAS_SIZE) - lineWidth(face, line, space)) / 2
		baseline := top + lineHeight*fixed.Int26_6(i) + (lineHeight+metrics.Ascent-metrics.Descent)/2

		highlight := func(start, end fixed.Int26_6) {
			fills = append(fills, FillOp{
				Rect: image.Rect(
					start.Floor()-HIGHLIGHT_PAD_X, (baseline-metrics.Ascent).Floor()-HIGHLIGHT_PAD_Y,
					end.Ceil()+HIGHLIGHT_PAD_X, (baseline+metrics.Descent).Ceil()+HIGHLIGHT_PAD_Y,
				),
				Color: highlightColor,
			})
		}

		open := false
		var spanStart, spanEnd fixed.Int26_6
		for wi, w := range line {
			if wi > 0 {
				x += space
			}
			for _, p := range w {
				width := font.MeasureString(face, p.text)
				switch {
				case p.highlighted && !open:
					open, spanStart = true, x
					spanEnd = x + width
				case p.highlighted:
					spanEnd = x + width
				case open:
					highlight(spanStart, spanEnd)
					open = false
				}

				c := textColor
				if p.highlighted {
					c = highlightText
				}
				texts = append(texts, TextOp{Text: p.text, Face: face, Color: c, Dot: fixed.Point26_6{X: x, Y: baseline}})
				x += width
			}
		}
		if open {
			highlight(spanStart, spanEnd)
		}
	}

	return append(fills, texts...), nil
}

// fitHeadline wraps words at the largest size, starting from size, at which
// every line fits the band width and all lines fit the band height.
func fitHeadline(f *opentype.Font, words []word, size float64) (float64, font.Face, [][]word, error) {
	maxWidth := fixed.I(CANVAS_SIZE - 2*BAND_PADDING)
	for ; size >= MIN_HEADLINE_SIZE; size -= FIT_STEP {
		face, err := newFace(f, size)
		if err != nil {
			return 0, nil, nil, err
		}
		lines := wrap(face, words, maxWidth)
		if fits(face, lines, size, maxWidth) {
			return size, face, lines, nil
		}
	}
	return 0, nil, nil, fmt.Errorf("[Compose] %w at %dpx", ErrHeadlineTooLong, MIN_HEADLINE_SIZE)
}

func fits(face font.Face, lines [][]word, size float64, maxWidth fixed.Int26_6) bool {
	lineHeight := fixed.Int26_6(size * LINE_SPACING * 64)
	if lineHeight*fixed.Int26_6(len(lines)) > fixed.I(HEADLINE_BAND) {
		return false
	}
	space := font.MeasureString(face, " ")
	for _, line := range lines {
		if lineWidth(face, line, space) > maxWidth {
			return false
		}
	}
	return true
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("[Compose] font face at %.0fpx: %w", size, err)
	}
	return face, nil
}

func splitWords(segments []Segment) []word {
	var words []word
	var cur word
	for _, s := range segments {
		text := s.Text
		for text != "" {
			i := strings.IndexFunc(text, unicode.IsSpace)
			if i == 0 {
				if len(cur) > 0 {
					words = append(words, cur)
					cur = nil
				}
				text = strings.TrimLeftFunc(text, unicode.IsSpace)
				continue
			}
			if i < 0 {
				i = len(text)
			}
			cur = append(cur, piece{text: text[:i], highlighted: s.Highlighted})
			text = text[i:]
		}
	}
	if len(cur) > 0 {
		words = append(words, cur)
	}
	return words
}

// wrap fills lines greedily. A word wider than maxWidth gets a line of its own.
func wrap(face font.Face, words []word, maxWidth fixed.Int26_6) [][]word {
	space := font.MeasureString(face, " ")
	var lines [][]word
	var line []word
	var width fixed.Int26_6
	for _, w := range words {
		ww := wordWidth(face, w)
		if len(line) > 0 && width+space+ww > maxWidth {
			lines = append(lines, line)
			line, width = nil, 0
		}
		if len(line) > 0 {
			width += space
		}
		line = append(line, w)
		width += ww
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

func wordWidth(face font.Face, w word) fixed.Int26_6 {
	var width fixed.Int26_6
	for _, p := range w {
		width += font.MeasureString(face, p.text)
	}
	return width
}

func lineWidth(face font.Face, line []word, space fixed.Int26_6) fixed.Int26_6 {
	width := space * fixed.Int26_6(len(line)-1)
	for _, w := range line {
		width += wordWidth(face, w)
	}
	return width
}

// coverCrop returns the centered part of src with the aspect ratio of a w×h
// target, so scaling it fills the target without letterboxing.
func coverCrop(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw*h > w*sh {
		cw := sh * w / h
		x0 := src.Min.X + (sw-cw)/2
		return image.Rect(x0, src.Min.Y, x0+cw, src.Max.Y)
	}
	ch := sw * h / w
	y0 := src.Min.Y + (sh-ch)/2
	return image.Rect(src.Min.X, y0, src.Max.X, y0+ch)
}
