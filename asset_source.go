package globe

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// AssetSource fetches one texture image. Fetch should give up when ctx ends.
type AssetSource interface {
	Fetch(ctx context.Context, key TextureKey) (image.Image, error)
}

// DefaultTextureFiles are the file names the texture download script writes.
var DefaultTextureFiles = map[TextureKey]string{
	TextureDay:      "earth_daymap.jpg",
	TextureNight:    "earth_nightmap.jpg",
	TextureBump:     "earth_bump.jpg",
	TextureSpecular: "earth_specular.jpg",
	TextureNormal:   "earth_normal.jpg",
	TextureClouds:   "earth_clouds.png",
	TextureNebula:   "nebula.jpg",
}

// FSSource reads textures from a file system. Any format registered with the
// image package decodes: jpeg, png, webp and bmp are linked in.
type FSSource struct {
	FS    fs.FS
	Files map[TextureKey]string
}

func NewFSSource(fsys fs.FS) *FSSource {
	files := make(map[TextureKey]string, len(DefaultTextureFiles))
	for k, v := range DefaultTextureFiles {
		files[k] = v
	}
	return &FSSource{FS: fsys, Files: files}
}

// Path is the file a key maps to, or "" when unmapped.
func (s *FSSource) Path(key TextureKey) string {
	return s.Files[key]
}

func (s *FSSource) Fetch(ctx context.Context, key TextureKey) (image.Image, error) {
	path, ok := s.Files[key]
	if !ok {
		return nil, fmt.Errorf("no file configured for texture %q", key)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.FS.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, ctx.Err()
}

// pathOf asks src for the location of key if it can tell.
func pathOf(src AssetSource, key TextureKey) string {
	if p, ok := src.(interface{ Path(TextureKey) string }); ok {
		return p.Path(key)
	}
	return ""
}

// normalize converts img to RGBA with its origin at (0,0), scaling it down to
// fit within maxW×maxH when it is larger.
func normalize(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxW > 0 && maxH > 0 && (w > maxW || h > maxH) {
		scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
		dw := max(int(float64(w)*scale), 1)
		dh := max(int(float64(h)*scale), 1)
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
		return dst
	}

	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}
