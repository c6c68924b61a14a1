package globe

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/gekko3d/globe/scene"
	"github.com/google/uuid"
)

type AssetId string

// TextureKey names one of the globe's textures.
type TextureKey string

const (
	TextureDay      TextureKey = "day"
	TextureBump     TextureKey = "bump"
	TextureSpecular TextureKey = "specular"
	TextureNormal   TextureKey = "normal"
	TextureNight    TextureKey = "night"
	TextureClouds   TextureKey = "clouds"
	TextureNebula   TextureKey = "nebula"
)

// AllTextures is every key in load order.
var AllTextures = []TextureKey{
	TextureDay, TextureBump, TextureSpecular, TextureNormal,
	TextureNight, TextureClouds, TextureNebula,
}

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultMaxWidth     = 2048
	DefaultMaxHeight    = 1024
	PlaceholderSize     = 2
)

// AssetLoadError reports a texture that could not be fetched or decoded. It is
// never fatal: the texture is replaced by a flat placeholder.
type AssetLoadError struct {
	Key  TextureKey
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load texture %s (%s): %v", e.Key, e.Path, e.Err)
	}
	return fmt.Sprintf("load texture %s: %v", e.Key, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

type TextureAsset struct {
	Id       AssetId
	Key      TextureKey
	Image    *image.RGBA
	Fallback bool
	Err      *AssetLoadError
}

// Texture converts the asset for use in a material.
func (a TextureAsset) Texture() *scene.Texture {
	return &scene.Texture{
		ID:       string(a.Id),
		Key:      string(a.Key),
		Image:    a.Image,
		Fallback: a.Fallback,
	}
}

// LoadProgress counts finished fetches, failed ones included.
type LoadProgress struct {
	Done  int
	Total int
}

func (p LoadProgress) Percent() float64 {
	if p.Total == 0 {
		return 100
	}
	return float64(p.Done) * 100 / float64(p.Total)
}

// Message is the loading screen line for this much progress.
func (p LoadProgress) Message() string {
	switch pct := p.Percent(); {
	case pct < 25:
		return "Loading terrain data..."
	case pct < 50:
		return "Generating atmosphere..."
	case pct < 75:
		return "Adding cloud layers..."
	default:
		return "Almost ready..."
	}
}

var placeholderColors = map[TextureKey]color.RGBA{
	TextureDay:      {0x22, 0x33, 0xff, 0xff},
	TextureBump:     {0x80, 0x80, 0x80, 0xff},
	TextureSpecular: {0x00, 0x00, 0x00, 0xff},
	TextureNormal:   {0x80, 0x80, 0xff, 0xff},
	TextureNight:    {0x00, 0x00, 0x00, 0xff},
	TextureClouds:   {0x00, 0x00, 0x00, 0x00},
	TextureNebula:   {0x00, 0x00, 0x00, 0xff},
}

// Placeholder returns the flat 2×2 stand-in for key.
func Placeholder(key TextureKey) *image.RGBA {
	c, ok := placeholderColors[key]
	if !ok {
		c = color.RGBA{0x80, 0x80, 0x80, 0xff}
	}
	img := image.NewRGBA(image.Rect(0, 0, PlaceholderSize, PlaceholderSize))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// AssetServer loads and keeps the scene's textures.
type AssetServer struct {
	Source     AssetSource
	Workers    int
	Timeout    time.Duration
	MaxWidth   int
	MaxHeight  int
	OnProgress func(LoadProgress)

	mu       sync.Mutex
	textures map[TextureKey]TextureAsset
}

func NewAssetServer(source AssetSource) *AssetServer {
	return &AssetServer{
		Source:    source,
		Workers:   max(runtime.NumCPU()-1, 1),
		Timeout:   DefaultFetchTimeout,
		MaxWidth:  DefaultMaxWidth,
		MaxHeight: DefaultMaxHeight,
		textures:  make(map[TextureKey]TextureAsset),
	}
}

// LoadTextures fetches every key in parallel and returns once all of them
// have finished or timed out. The result is in request order. Keys that fail
// get a placeholder with Fallback set and Err describing the failure.
func (s *AssetServer) LoadTextures(ctx context.Context, keys []TextureKey) []TextureAsset {
	results := make([]TextureAsset, len(keys))
	if len(keys) == 0 {
		return results
	}

	pool := worker.NewDynamicWorkerPool(max(s.Workers, 1), len(keys), time.Second)

	var (
		wg       sync.WaitGroup
		progMu   sync.Mutex
		progress = LoadProgress{Total: len(keys)}
	)
	for i, key := range keys {
		wg.Add(1)
		id := i
		k := key
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				results[id] = s.load(ctx, k)

				progMu.Lock()
				progress.Done++
				p := progress
				if s.OnProgress != nil {
					s.OnProgress(p)
				}
				progMu.Unlock()
				return nil, nil
			},
		})
	}
	wg.Wait()

	s.mu.Lock()
	for _, a := range results {
		s.textures[a.Key] = a
	}
	s.mu.Unlock()
	return results
}

func (s *AssetServer) load(ctx context.Context, key TextureKey) TextureAsset {
	img, err := s.fetch(ctx, key)
	if err != nil {
		return TextureAsset{
			Id:       makeAssetId(),
			Key:      key,
			Image:    Placeholder(key),
			Fallback: true,
			Err:      &AssetLoadError{Key: key, Path: pathOf(s.Source, key), Err: err},
		}
	}
	return TextureAsset{
		Id:    makeAssetId(),
		Key:   key,
		Image: normalize(img, s.MaxWidth, s.MaxHeight),
	}
}

// fetch runs one Source.Fetch under the per-fetch timeout. A source that
// ignores its context is abandoned when the timeout fires.
func (s *AssetServer) fetch(ctx context.Context, key TextureKey) (image.Image, error) {
	if s.Source == nil {
		return nil, fmt.Errorf("no texture source configured")
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, err := s.Source.Fetch(ctx, key)
		done <- result{img, err}
	}()

	select {
	case r := <-done:
		if r.err == nil && r.img == nil {
			r.err = fmt.Errorf("source returned no image")
		}
		return r.img, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Texture returns the loaded asset for key.
func (s *AssetServer) Texture(key TextureKey) (TextureAsset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.textures[key]
	return a, ok
}

// TextureOrPlaceholder never fails: a key that was never loaded gets a
// placeholder.
func (s *AssetServer) TextureOrPlaceholder(key TextureKey) TextureAsset {
	if s != nil {
		if a, ok := s.Texture(key); ok {
			return a
		}
	}
	return TextureAsset{Id: makeAssetId(), Key: key, Image: Placeholder(key), Fallback: true}
}

// AssetServerModule loads the textures while the app is built, so the globe
// module installed after it finds them ready.
type AssetServerModule struct {
	Source  AssetSource
	Keys    []TextureKey
	Workers int
	Timeout time.Duration
}

func (m AssetServerModule) Install(app *App, cmd *Commands) error {
	server := NewAssetServer(m.Source)
	if m.Workers > 0 {
		server.Workers = m.Workers
	}
	if m.Timeout > 0 {
		server.Timeout = m.Timeout
	}
	keys := m.Keys
	if keys == nil {
		keys = AllTextures
	}

	log := app.Logger()
	server.OnProgress = func(p LoadProgress) {
		log.Debugf("%s (%.0f%%)", p.Message(), p.Percent())
	}

	start := time.Now()
	fallbacks := 0
	for _, a := range server.LoadTextures(context.Background(), keys) {
		if a.Fallback {
			fallbacks++
			log.Warnf("%v; using placeholder", a.Err)
		}
	}
	server.OnProgress = nil
	log.Infof("Loaded %d textures (%d placeholders) in %v", len(keys), fallbacks, time.Since(start).Round(time.Millisecond))

	cmd.AddResources(server)
	return nil
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
