package watermark

import (
	"context"
	"fmt"
	"time"

	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
	"github.com/ironsheep/watermark-tools-mcp/internal/imaging"
)

// ProfileCapacity is the capacity of a file under one profile.
type ProfileCapacity struct {
	Profile     string                `json:"profile"`
	Fingerprint string                `json:"fingerprint"`
	Capacity    *codec.CapacityReport `json:"capacity"`
}

// Info describes a carrier file and how much each profile can hide in it.
type Info struct {
	File        *imaging.ImageInfo `json:"file"`
	Grid        codec.BlockGrid    `json:"grid"`
	Recommended string             `json:"recommended_profile"`
	Profiles    []ProfileCapacity  `json:"profiles"`
}

// Info reports file metadata and per-profile capacity for path.
func (s *Service) Info(ctx context.Context, path string) (*Info, error) {
	meta, err := imaging.LoadImageInfo(s.cache, path)
	if err != nil {
		return nil, err
	}
	src, err := s.load(path)
	if err != nil {
		return nil, err
	}
	recommended, _, err := s.profileFor("", src.kind)
	if err != nil {
		return nil, err
	}

	info := &Info{File: meta, Recommended: recommended}
	for _, name := range s.profiles.Names() {
		_, c, err := s.profileFor(name, src.kind)
		if err != nil {
			return nil, err
		}
		report, err := c.Capacity(ctx, src.samples)
		if err != nil {
			return nil, err
		}
		if name == recommended {
			info.Grid = report.Grid
		}
		info.Profiles = append(info.Profiles, ProfileCapacity{
			Profile:     name,
			Fingerprint: c.Fingerprint(),
			Capacity:    report,
		})
	}
	return info, nil
}

// Capacity reports the capacity of path under a single profile.
func (s *Service) Capacity(ctx context.Context, path, profile string) (*ProfileCapacity, error) {
	src, err := s.load(path)
	if err != nil {
		return nil, err
	}
	name, c, err := s.profileFor(profile, src.kind)
	if err != nil {
		return nil, err
	}
	report, err := c.Capacity(ctx, src.samples)
	if err != nil {
		return nil, err
	}
	return &ProfileCapacity{Profile: name, Fingerprint: c.Fingerprint(), Capacity: report}, nil
}

// QualityResult compares an original file with its watermarked copy.
type QualityResult struct {
	OriginalPath string                 `json:"original_path"`
	MarkedPath   string                 `json:"marked_path"`
	Kind         imaging.Kind           `json:"kind"`
	Quality      *imaging.QualityReport `json:"quality"`
	ProcessingMS int64                  `json:"processing_ms"`
}

// Quality measures the distortion between two files of the same kind and
// size.
func (s *Service) Quality(originalPath, markedPath string) (*QualityResult, error) {
	start := time.Now()
	a, err := s.load(originalPath)
	if err != nil {
		return nil, err
	}
	b, err := s.load(markedPath)
	if err != nil {
		return nil, err
	}
	if a.kind != b.kind {
		return nil, fmt.Errorf("cannot compare %s with %s", a.kind, b.kind)
	}

	var report *imaging.QualityReport
	if a.kind == imaging.KindRaster {
		report, err = imaging.CompareCarriers(a.samples, b.samples, a.peak())
	} else {
		report, err = imaging.Compare(a.source, b.source)
	}
	if err != nil {
		return nil, err
	}
	return &QualityResult{
		OriginalPath: originalPath,
		MarkedPath:   markedPath,
		Kind:         a.kind,
		Quality:      report,
		ProcessingMS: time.Since(start).Milliseconds(),
	}, nil
}
