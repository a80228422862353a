package compose

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/spacesedan/newscard/internal/models"
	"github.com/stretchr/testify/require"
)

var testURLs = AssetURLs{
	FontRegular: "https://cdn.example.com/regular.ttf",
	FontBold:    "https://cdn.example.com/bold.ttf",
	Frame:       "https://cdn.example.com/frame.png",
	Logo:        "https://cdn.example.com/logo.png",
}

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(_ context.Context, url string) ([]byte, string, error) {
	data, ok := m[url]
	if !ok {
		return nil, "", errors.New("not found: " + url)
	}
	return data, "", nil
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func assetFetcher(t *testing.T) mapFetcher {
	return mapFetcher{
		testURLs.FontRegular: goregular.TTF,
		testURLs.FontBold:    gobold.TTF,
		testURLs.Frame:       encodePNG(t, image.NewNRGBA(image.Rect(0, 0, CANVAS_SIZE, CANVAS_SIZE))),
		testURLs.Logo:        encodePNG(t, solid(20, 20, color.RGBA{B: 0xff, A: 0xff})),
	}
}

func testAssets(t *testing.T) *Assets {
	t.Helper()
	a, err := LoadAssets(context.Background(), assetFetcher(t), testURLs)
	require.NoError(t, err)
	return a
}

func TestLayout_DhakaHeadline(t *testing.T) {
	photo := solid(400, 300, color.RGBA{G: 0xff, A: 0xff})
	ops, err := Layout(testAssets(t), "Dhaka Port Expansion Begins", []string{"Port Expansion"}, photo, "newscard")
	require.NoError(t, err)

	var highlights []FillOp
	var texts []string
	var images []ImageOp
	for _, op := range ops {
		switch o := op.(type) {
		case FillOp:
			if o.Color == highlightColor {
				highlights = append(highlights, o)
			}
		case TextOp:
			texts = append(texts, o.Text)
		case ImageOp:
			images = append(images, o)
		}
	}

	require.NotEmpty(t, highlights)
	for _, h := range highlights {
		require.True(t, h.Rect.In(image.Rect(0, 0, CANVAS_SIZE, HEADLINE_BAND)))
	}
	require.Equal(t, []string{"Dhaka", "Port", "Expansion", "Begins", "newscard"}, texts)

	require.Len(t, images, 3)
	require.Equal(t, image.Rect(0, IMAGE_BAND_TOP, CANVAS_SIZE, CANVAS_SIZE), images[0].Rect)
	require.Equal(t, image.Rect(0, 0, CANVAS_SIZE, CANVAS_SIZE), images[1].Rect)
	require.Equal(t, image.Rect(24, 916, 164, 1056), images[2].Rect)
}

func TestLayout_LongHeadlineWrapsInsideBand(t *testing.T) {
	headline := "Government announces sweeping new measures to stabilise rice prices ahead of the monsoon season across all divisions"
	ops, err := Layout(testAssets(t), headline, []string{"rice prices"}, solid(10, 10, color.White), "")
	require.NoError(t, err)

	baselines := map[fixed.Int26_6]bool{}
	for _, op := range ops {
		if o, ok := op.(TextOp); ok {
			baselines[o.Dot.Y] = true
			require.GreaterOrEqual(t, o.Dot.X, fixed.I(BAND_PADDING))
			require.Less(t, o.Dot.Y, fixed.I(HEADLINE_BAND))
			require.Greater(t, o.Dot.Y, fixed.I(0))
		}
	}
	require.Greater(t, len(baselines), 1)
}

func TestLayout_OverlongHeadlineShrinksToFit(t *testing.T) {
	headline := "Government announces sweeping new measures to stabilise rice prices ahead of the monsoon season " +
		"across all divisions while opposition leaders demand a full parliamentary inquiry into import licences, " +
		"warehouse hoarding and the delayed release of emergency stocks held by the food ministry since January"
	require.Greater(t, len(headline), 280)

	ops, err := Layout(testAssets(t), headline, []string{"rice prices"}, solid(10, 10, color.White), "")
	require.NoError(t, err)

	band := image.Rect(0, 0, CANVAS_SIZE, HEADLINE_BAND)
	var texts int
	for _, op := range ops {
		switch o := op.(type) {
		case TextOp:
			texts++
			m := o.Face.Metrics()
			require.GreaterOrEqual(t, o.Dot.Y-m.Ascent, fixed.I(0))
			require.LessOrEqual(t, o.Dot.Y+m.Descent, fixed.I(HEADLINE_BAND))
		case FillOp:
			if o.Color == highlightColor {
				require.True(t, o.Rect.In(band), "highlight %v outside band", o.Rect)
			}
		}
	}
	require.Equal(t, len(strings.Fields(headline)), texts)
}

func TestLayout_HeadlineTooLongFails(t *testing.T) {
	headline := strings.Repeat("WWWWWWWWWW ", 100)
	_, err := Layout(testAssets(t), headline, nil, solid(10, 10, color.White), "")
	require.ErrorIs(t, err, ErrHeadlineTooLong)
}

func TestFitHeadline_KeepsSizeWhenItFits(t *testing.T) {
	f, err := opentype.Parse(gobold.TTF)
	require.NoError(t, err)

	size, _, lines, err := fitHeadline(f, splitWords(Segments("Dhaka Port Expansion Begins", nil)), 72)
	require.NoError(t, err)
	require.Equal(t, float64(72), size)
	require.NotEmpty(t, lines)
}

func TestLayout_MissingAssets(t *testing.T) {
	_, err := Layout(&Assets{}, "h", nil, solid(1, 1, color.White), "")
	require.Error(t, err)
}

func TestWrap_RespectsWidth(t *testing.T) {
	f, err := opentype.Parse(gobold.TTF)
	require.NoError(t, err)
	face, err := newFace(f, 62)
	require.NoError(t, err)

	words := splitWords([]Segment{{Text: "one two three four five six seven eight nine ten eleven twelve"}})
	require.Len(t, words, 12)

	max := fixed.I(400)
	lines := wrap(face, words, max)
	require.Greater(t, len(lines), 1)
	total := 0
	space := wordWidth(face, word{{text: " "}})
	for _, line := range lines {
		total += len(line)
		if len(line) > 1 {
			require.LessOrEqual(t, lineWidth(face, line, space), max)
		}
	}
	require.Equal(t, 12, total)
}

func TestSplitWords_KeepsPartialHighlights(t *testing.T) {
	words := splitWords(Segments("Portland port", []string{"Port"}))
	require.Equal(t, []word{
		{{text: "Port", highlighted: true}, {text: "land"}},
		{{text: "port", highlighted: true}},
	}, words)
}

func TestCoverCrop(t *testing.T) {
	require.Equal(t, image.Rect(119, 0, 1672, 1024), coverCrop(image.Rect(0, 0, 1792, 1024), 1080, 712))
	require.Equal(t, image.Rect(0, 368, 400, 631), coverCrop(image.Rect(0, 0, 400, 1000), 1080, 712))
}

func TestCompose_RendersSquarePNG(t *testing.T) {
	photo := models.ImagePayload{MIMEType: "image/png", Data: encodePNG(t, solid(400, 300, color.RGBA{G: 0xff, A: 0xff}))}

	out, err := NewComposer(assetFetcher(t), testURLs, "newscard").
		Compose(context.Background(), "Dhaka Port Expansion Begins", []string{"Port Expansion"}, photo)
	require.NoError(t, err)
	require.Equal(t, "image/png", out.MIMEType)

	img, err := png.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, CANVAS_SIZE, CANVAS_SIZE), img.Bounds())

	r, g, b, _ := img.At(540, 800).RGBA()
	require.Greater(t, g, uint32(0xf000))
	require.Less(t, r, uint32(0x1000))
	require.Less(t, b, uint32(0x1000))

	sr, sg, sb, _ := img.At(540, HEADLINE_BAND+4).RGBA()
	er, eg, eb, _ := separatorColor.RGBA()
	require.Equal(t, []uint32{er, eg, eb}, []uint32{sr, sg, sb})
}

func TestCompose_MissingAssetFails(t *testing.T) {
	fetcher := assetFetcher(t)
	delete(fetcher, testURLs.FontBold)
	photo := models.ImagePayload{MIMEType: "image/png", Data: encodePNG(t, solid(4, 4, color.White))}

	_, err := NewComposer(fetcher, testURLs, "").Compose(context.Background(), "h", nil, photo)
	require.ErrorContains(t, err, "bold.ttf")
}

func TestCompose_InvalidFontFails(t *testing.T) {
	fetcher := assetFetcher(t)
	fetcher[testURLs.FontRegular] = []byte("not a font")
	photo := models.ImagePayload{MIMEType: "image/png", Data: encodePNG(t, solid(4, 4, color.White))}

	_, err := NewComposer(fetcher, testURLs, "").Compose(context.Background(), "h", nil, photo)
	require.Error(t, err)
}

func TestCompose_InvalidPhotoFails(t *testing.T) {
	_, err := NewComposer(assetFetcher(t), testURLs, "").
		Compose(context.Background(), "h", nil, models.ImagePayload{MIMEType: "image/jpeg", Data: []byte("nope")})
	require.ErrorContains(t, err, "invalid photo")
}
