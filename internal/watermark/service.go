package watermark

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
	"github.com/ironsheep/watermark-tools-mcp/internal/config"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
)

// ErrSamePath is returned when an embed would overwrite its own input.
var ErrSamePath = errors.New("output path equals input path")

// Service runs the codec over files.
type Service struct {
	profiles *config.Profiles
	cache    *imaging.ImageCache
	debug    bool
}

// Option configures a Service.
type Option func(*Service)

// WithDebug enables diagnostic logging of degraded decodes and failures.
func WithDebug(debug bool) Option {
	return func(s *Service) { s.debug = debug }
}

// WithCache shares an image cache with other components.
func WithCache(cache *imaging.ImageCache) Option {
	return func(s *Service) { s.cache = cache }
}

// NewService creates a Service over the given profiles. A nil profile set
// uses the built-in profiles.
func NewService(profiles *config.Profiles, opts ...Option) *Service {
	if profiles == nil {
		profiles = config.Builtin()
	}
	s := &Service{profiles: profiles}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = imaging.NewImageCache()
	}
	return s
}

// Profiles returns the service's profile set.
func (s *Service) Profiles() *config.Profiles {
	return s.profiles
}

func (s *Service) debugf(format string, args ...interface{}) {
	if s.debug {
		log.Printf(format, args...)
	}
}

// profileFor picks the named profile, or the default for kind when name is
// empty: raster for rasters, the set's default otherwise.
func (s *Service) profileFor(name string, kind imaging.Kind) (string, *codec.Codec, error) {
	if name == "" {
		name = s.profiles.DefaultName()
		if kind == imaging.KindRaster {
			name = config.ProfileRaster
		}
	}
	cfg, err := s.profiles.Get(name)
	if err != nil {
		return "", nil, err
	}
	c, err := codec.New(cfg)
	if err != nil {
		return "", nil, fmt.Errorf("profile %q: %w", name, err)
	}
	return name, c, nil
}

// carrier is a decoded file reduced to the sample grid the codec works on.
type carrier struct {
	kind    imaging.Kind
	samples *codec.Carrier
	source  image.Image
	plane   *imaging.LumaPlane
	raster  *imaging.Raster
}

func (s *Service) load(path string) (*carrier, error) {
	kind, err := imaging.RequireSupported(path)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return fromImage(kind, img)
}

func fromImage(kind imaging.Kind, img image.Image) (*carrier, error) {
	c := &carrier{kind: kind, source: img}
	if kind == imaging.KindRaster {
		r, err := imaging.RasterFromImage(img)
		if err != nil {
			return nil, err
		}
		c.raster, c.samples = r, r.Carrier
		return c, nil
	}
	plane, err := imaging.SplitLuma(img)
	if err != nil {
		return nil, err
	}
	c.plane, c.samples = plane, plane.Carrier
	return c, nil
}

// render writes marked samples back into an image of the carrier's kind.
func (c *carrier) render(marked *codec.Carrier) (image.Image, error) {
	if c.kind == imaging.KindRaster {
		return c.raster.Image(marked)
	}
	return c.plane.Merge(marked)
}

// peak is the largest representable sample, used for PSNR.
func (c *carrier) peak() float64 {
	if c.kind == imaging.KindRaster {
		return c.raster.MaxValue()
	}
	return 255
}

// quality compares the carrier's source with a rendered output.
func (c *carrier) quality(out image.Image) (*imaging.QualityReport, error) {
	if c.kind == imaging.KindRaster {
		back, err := imaging.RasterFromImage(out)
		if err != nil {
			return nil, err
		}
		return imaging.CompareCarriers(c.samples, back.Carrier, c.peak())
	}
	return imaging.Compare(c.source, out)
}
