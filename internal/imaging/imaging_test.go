package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func twoPixelStrip() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, red)
	img.Set(1, 0, blue)
	return img
}

func TestRotate90Clockwise(t *testing.T) {
	out := Rotate90(twoPixelStrip())

	require.Equal(t, image.Rect(0, 0, 1, 2), out.Bounds())
	// The left pixel ends up on top.
	assert.Equal(t, red, out.At(0, 0))
	assert.Equal(t, blue, out.At(0, 1))
}

func TestRotate270CounterClockwise(t *testing.T) {
	out := Rotate270(twoPixelStrip())

	require.Equal(t, image.Rect(0, 0, 1, 2), out.Bounds())
	// The left pixel ends up at the bottom.
	assert.Equal(t, blue, out.At(0, 0))
	assert.Equal(t, red, out.At(0, 1))
}

func TestFourQuarterTurnsAreIdentity(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, red)
	src.Set(2, 1, blue)

	out := Rotate90(Rotate90(Rotate90(Rotate90(src))))

	require.Equal(t, src.Bounds(), out.Bounds())
	assert.Equal(t, red, out.At(0, 0))
	assert.Equal(t, blue, out.At(2, 1))
}

func TestRotateHandlesOffsetBounds(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 4, 4))
	base.Set(1, 1, red)
	base.Set(2, 1, blue)
	sub := base.SubImage(image.Rect(1, 1, 3, 2))

	out := Rotate90(sub)

	require.Equal(t, image.Rect(0, 0, 1, 2), out.Bounds())
	assert.Equal(t, red, out.At(0, 0))
	assert.Equal(t, blue, out.At(0, 1))
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	data, err := EncodePNG(img, 1<<20)
	require.NoError(t, err)
	require.True(t, len(data) > 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])

	_, err = EncodePNG(img, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")

	// Zero disables the cap.
	_, err = EncodePNG(img, 0)
	require.NoError(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 6, 4))
	img.Set(3, 2, red)

	for _, name := range []string{"card.png", "card.jpg", "card.bmp", "card.gif"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, Save(path, img))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 6, loaded.Bounds().Dx())
			assert.Equal(t, 4, loaded.Bounds().Dy())
		})
	}
}

func TestSaveUnsupportedExtension(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "card.tiff"), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported extension")
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "gone.png"))
	require.Error(t, err)
}

func TestLoadDecodesPNGWrittenElsewhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 5, 5))))
	require.NoError(t, f.Close())

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())
}
