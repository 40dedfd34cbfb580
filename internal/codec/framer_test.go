package codec

import (
	"strings"
	"testing"
)

func TestFramerEncodeLayout(t *testing.T) {
	f := Framer{Repetition: 3, MaxLength: 200, BytesPerChar: 2.5}
	bits, truncated := f.Encode([]byte("A"))
	if truncated {
		t.Fatal("single byte reported as truncated")
	}
	if len(bits) != 3*8*2 {
		t.Fatalf("len(bits) = %d, want %d", len(bits), 48)
	}

	// length 1 = 00000001, 'A' = 0x41 = 01000001, each bit three times
	want := "000000000000000000000111" + "000111000000000000000111"
	var got strings.Builder
	for _, b := range bits {
		got.WriteByte('0' + b)
	}
	if got.String() != want {
		t.Errorf("bits = %s\nwant   %s", got.String(), want)
	}
}

func TestFramerEncodeTruncates(t *testing.T) {
	f := Framer{Repetition: 1, MaxLength: 255, BytesPerChar: 1}
	bits, truncated := f.Encode([]byte(strings.Repeat("x", 300)))
	if !truncated {
		t.Error("300-byte payload not reported as truncated")
	}
	if len(bits) != f.FrameBits(255) {
		t.Errorf("len(bits) = %d, want %d", len(bits), f.FrameBits(255))
	}
	if got := f.majorityByte(bits, 0); got != 255 {
		t.Errorf("length prefix = %d, want 255", got)
	}
}

func TestFramerRoundTrip(t *testing.T) {
	f := Framer{Repetition: 7, MaxLength: 200, BytesPerChar: 2.5}
	for _, text := range []string{"Hello", "你好", "测试123", "TEST123", "a"} {
		bits, _ := f.Encode([]byte(text))
		got := f.Decode(bits, 0)
		if got.Text != text {
			t.Errorf("Decode(Encode(%q)) = %q", text, got.Text)
		}
		if got.LengthEstimated {
			t.Errorf("%q: length unexpectedly estimated", text)
		}
		if !got.ValidUTF8 {
			t.Errorf("%q: reported invalid UTF-8", text)
		}
	}
}

func TestFramerToleratesMinorityFlips(t *testing.T) {
	const r = 7
	f := Framer{Repetition: r, MaxLength: 200, BytesPerChar: 2.5}
	bits, _ := f.Encode([]byte("OK"))

	// flip floor(R/2) copies of every logical bit
	for start := 0; start < len(bits); start += r {
		for k := 0; k < r/2; k++ {
			bits[start+k] ^= 1
		}
	}
	if got := f.Decode(bits, 0).Text; got != "OK" {
		t.Errorf("Decode after minority flips = %q, want %q", got, "OK")
	}
}

func TestFramerDecodeShortStream(t *testing.T) {
	f := Framer{Repetition: 3, MaxLength: 200, BytesPerChar: 2.5}
	got := f.Decode(make([]byte, 10), 5)
	if got.Text != "" || got.Length != 0 {
		t.Errorf("short stream decoded to %+v", got)
	}
}

func TestFramerDecodeImplausibleLength(t *testing.T) {
	f := Framer{Repetition: 1, MaxLength: 10, BytesPerChar: 1}
	bits, _ := f.Encode([]byte("abcdefghijklmnopqrstuvwxyz"))

	got := f.Decode(bits, 4)
	if !got.LengthEstimated {
		t.Fatal("length 26 above ceiling 10 was not estimated")
	}
	if got.HeaderLength != 26 {
		t.Errorf("HeaderLength = %d, want 26", got.HeaderLength)
	}
	if got.Text != "abcd" {
		t.Errorf("Text = %q, want %q", got.Text, "abcd")
	}
}

func TestFramerDecodeClampsToAvailable(t *testing.T) {
	f := Framer{Repetition: 1, MaxLength: 200, BytesPerChar: 1}
	bits, _ := f.Encode([]byte("hello world"))
	got := f.Decode(bits[:8*6], 0)
	if got.Length != 5 || got.Text != "hello" {
		t.Errorf("Decode of cut stream = %+v, want 5 bytes %q", got, "hello")
	}
}

func TestFramerDecodeDiscardsGarbage(t *testing.T) {
	f := Framer{Repetition: 1, MaxLength: 200, BytesPerChar: 1}

	tests := []struct {
		name    string
		payload []byte
		want    string
		valid   bool
	}{
		{"control characters", []byte{0x01, 0x02, 0x03, 'a'}, "", true},
		{"invalid utf8 dropped", []byte{'o', 0xff, 'k'}, "ok", false},
		{"only invalid bytes", []byte{0xff, 0xfe}, "", false},
		{"whitespace kept", []byte("a\tb\n"), "a\tb\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bits, _ := f.Encode(tt.payload)
			got := f.Decode(bits, 0)
			if got.Text != tt.want {
				t.Errorf("Text = %q, want %q", got.Text, tt.want)
			}
			if got.ValidUTF8 != tt.valid {
				t.Errorf("ValidUTF8 = %v, want %v", got.ValidUTF8, tt.valid)
			}
		})
	}
}

func TestEstimateBitBudget(t *testing.T) {
	f := Framer{Repetition: 7, MaxLength: 200, BytesPerChar: 2.5}
	tests := []struct {
		chars int
		want  int
	}{
		{0, 0},
		{-3, 0},
		{1, 7 * 8 * (1 + 3)},
		{7, 7 * 8 * (1 + 18)},
		{1000, 7 * 8 * (1 + 255)},
	}
	for _, tt := range tests {
		if got := f.EstimateBitBudget(tt.chars); got != tt.want {
			t.Errorf("EstimateBitBudget(%d) = %d, want %d", tt.chars, got, tt.want)
		}
	}
}

func TestMajorityBitMissingCopies(t *testing.T) {
	f := Framer{Repetition: 5}
	if got := f.MajorityBit([]byte{1, 1}, 0); got != 0 {
		t.Errorf("two of five copies present = %d, want 0", got)
	}
	if got := f.MajorityBit([]byte{1, 1, 1}, 0); got != 1 {
		t.Errorf("three of five copies = %d, want 1", got)
	}
}
