package imagery

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spacesedan/newscard/internal/clients"
	"github.com/spacesedan/newscard/internal/models"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeGenerator struct {
	images []models.ImagePayload
	err    error
	prompt string
	calls  int
}

func (g *fakeGenerator) GenerateImage(_ context.Context, prompt string) ([]models.ImagePayload, error) {
	g.calls++
	g.prompt = prompt
	return g.images, g.err
}

func TestDataURIRoundTrip(t *testing.T) {
	p := models.ImagePayload{MIMEType: "image/png", Data: pngBytes(t)}
	uri := DataURI(p)
	require.Contains(t, uri, "data:image/png;base64,")

	back, err := ParseDataURI(uri)
	require.NoError(t, err)
	require.Equal(t, p, back)

	img, err := Decode(back)
	require.NoError(t, err)
	require.Equal(t, 4, img.Bounds().Dx())
}

func TestParseDataURI_Invalid(t *testing.T) {
	for _, s := range []string{"http://x", "data:image/png,abc", "data:image/png;base64", "data:image/png;base64,@@@"} {
		_, err := ParseDataURI(s)
		require.ErrorIs(t, err, ErrInvalidDataURI, s)
	}
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(models.ImagePayload{MIMEType: "image/png", Data: []byte("not an image")})
	require.Error(t, err)
	_, err = Decode(models.ImagePayload{})
	require.Error(t, err)
}

func imageServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html>forbidden</html>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve_UsesArticleImage(t *testing.T) {
	body := pngBytes(t)
	srv := imageServer(t, body)
	gen := &fakeGenerator{}

	p, err := NewResolver(clients.NewMediaClient(), gen).
		Resolve(context.Background(), models.Article{ImageURL: srv.URL + "/ok.png"}, "prompt")
	require.NoError(t, err)
	require.Equal(t, "image/png", p.MIMEType)
	require.Equal(t, body, p.Data)
	require.Zero(t, gen.calls)
}

func TestResolve_404FallsBackToGeneration(t *testing.T) {
	srv := imageServer(t, nil)
	generated := models.ImagePayload{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	gen := &fakeGenerator{images: []models.ImagePayload{generated}}

	p, err := NewResolver(clients.NewMediaClient(), gen).
		Resolve(context.Background(), models.Article{ImageURL: srv.URL + "/missing.jpg"}, "cranes at dawn")
	require.NoError(t, err)
	require.Equal(t, generated, p)
	require.Equal(t, 1, gen.calls)
	require.Equal(t, "cranes at dawn", gen.prompt)
}

func TestResolve_NonImageResponseFallsBack(t *testing.T) {
	srv := imageServer(t, nil)
	gen := &fakeGenerator{images: []models.ImagePayload{{MIMEType: "image/jpeg", Data: []byte{1}}}}

	_, err := NewResolver(clients.NewMediaClient(), gen).
		Resolve(context.Background(), models.Article{ImageURL: srv.URL + "/page"}, "p")
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)
}

func TestResolve_ZeroGeneratedImagesIsUnavailable(t *testing.T) {
	srv := imageServer(t, nil)
	_, err := NewResolver(clients.NewMediaClient(), &fakeGenerator{}).
		Resolve(context.Background(), models.Article{ImageURL: srv.URL + "/missing.jpg"}, "p")
	require.ErrorIs(t, err, ErrImageUnavailable)
}

func TestResolve_GenerationErrorPropagates(t *testing.T) {
	boom := errors.New("quota")
	_, err := NewResolver(clients.NewMediaClient(), &fakeGenerator{err: boom}).
		Resolve(context.Background(), models.Article{}, "p")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrImageUnavailable)
}
