package imaging

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/watermark-tools-mcp/internal/codec"
)

func TestLuma(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    float64
	}{
		{0, 0, 0, 0},
		{255, 255, 255, 255},
		{255, 0, 0, 76.245},
		{0, 255, 0, 149.685},
		{0, 0, 255, 29.07},
	}
	for _, tt := range tests {
		if got := Luma(tt.r, tt.g, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Luma(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestSplitMergeIdentity(t *testing.T) {
	img := smoothImage(40, 24)
	plane, err := SplitLuma(img)
	if err != nil {
		t.Fatalf("SplitLuma: %v", err)
	}
	if plane.Carrier.Width() != 40 || plane.Carrier.Height() != 24 {
		t.Fatalf("carrier %dx%d, want 40x24", plane.Carrier.Width(), plane.Carrier.Height())
	}
	out, err := plane.Merge(plane.Carrier)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	for i := range out.Pix {
		if out.Pix[i] != img.Pix[i] {
			t.Fatalf("unchanged luma altered pixel byte %d", i)
		}
	}
}

func TestMergeAddsLumaChangeToAllChannels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{100, 150, 200, 255})
	img.SetNRGBA(1, 0, color.NRGBA{250, 10, 128, 40})

	plane, err := SplitLuma(img)
	if err != nil {
		t.Fatalf("SplitLuma: %v", err)
	}
	marked := plane.Carrier.Clone()
	marked.Set(0, 0, marked.At(0, 0)+3.4)
	marked.Set(1, 0, marked.At(1, 0)+10)

	out, err := plane.Merge(marked)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got, want := out.NRGBAAt(0, 0), (color.NRGBA{103, 153, 203, 255}); got != want {
		t.Errorf("pixel 0 = %v, want %v", got, want)
	}
	// red clamps at 255, alpha is preserved
	if got, want := out.NRGBAAt(1, 0), (color.NRGBA{255, 20, 138, 40}); got != want {
		t.Errorf("pixel 1 = %v, want %v", got, want)
	}
}

func TestMergeSizeMismatch(t *testing.T) {
	plane, err := SplitLuma(smoothImage(16, 16))
	if err != nil {
		t.Fatalf("SplitLuma: %v", err)
	}
	other, _ := codec.NewCarrier(8, 16)
	if _, err := plane.Merge(other); !errors.Is(err, codec.ErrInvalidCarrier) {
		t.Errorf("Merge(8x16) = %v, want ErrInvalidCarrier", err)
	}
	if _, err := SplitLuma(nil); !errors.Is(err, codec.ErrInvalidCarrier) {
		t.Errorf("SplitLuma(nil) = %v, want ErrInvalidCarrier", err)
	}
}

func TestLumaWatermarkSurvivesRounding(t *testing.T) {
	ctx := context.Background()
	c, err := codec.New(codec.DefaultConfig())
	if err != nil {
		t.Fatalf("codec.New: %v", err)
	}

	plane, err := SplitLuma(smoothImage(256, 256))
	if err != nil {
		t.Fatalf("SplitLuma: %v", err)
	}
	marked, _, err := c.Embed(ctx, plane.Carrier, "测试123")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	out, err := plane.Merge(marked)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	// the merged image holds 8-bit channels; re-derive luma from them
	reread, err := LumaCarrier(out)
	if err != nil {
		t.Fatalf("LumaCarrier: %v", err)
	}
	res, err := c.Extract(ctx, reread, 5)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "测试123" {
		t.Errorf("Extract = %q, want %q", res.Text, "测试123")
	}
}
