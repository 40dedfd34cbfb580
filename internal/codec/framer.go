package codec

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxPayloadBytes is the largest length an 8-bit prefix can carry.
const maxPayloadBytes = 255

// Framer converts payload bytes to and from the repetition-coded bitstream:
//
//	length (8 bits, MSB first) || data[0] || ... || data[length-1]
//
// with every bit written Repetition times in a row. Bits are stored one per
// byte, each 0 or 1.
type Framer struct {
	Repetition   int
	MaxLength    int
	BytesPerChar float64
}

// NewFramer takes the framing parameters from cfg.
func NewFramer(cfg Config) Framer {
	return Framer{
		Repetition:   cfg.RepetitionCount,
		MaxLength:    cfg.MaxFrameLength,
		BytesPerChar: cfg.BytesPerChar,
	}
}

// Encode frames payload. Payloads longer than 255 bytes are cut to 255 and
// truncated is reported; the cut may split a multi-byte character.
func (f Framer) Encode(payload []byte) (bits []byte, truncated bool) {
	length := len(payload)
	if length > maxPayloadBytes {
		length = maxPayloadBytes
		truncated = true
	}
	bits = make([]byte, 0, f.FrameBits(length))
	bits = f.appendByte(bits, byte(length))
	for _, b := range payload[:length] {
		bits = f.appendByte(bits, b)
	}
	return bits, truncated
}

// FrameBits is the stream length for a payload of n bytes.
func (f Framer) FrameBits(n int) int {
	return f.Repetition * 8 * (1 + n)
}

func (f Framer) appendByte(bits []byte, b byte) []byte {
	for i := 7; i >= 0; i-- {
		bit := (b >> uint(i)) & 1
		for r := 0; r < f.Repetition; r++ {
			bits = append(bits, bit)
		}
	}
	return bits
}

// Decoded is the outcome of a best-effort frame decode.
type Decoded struct {
	Text string `json:"text"`

	// HeaderLength is the majority-decoded length prefix as read.
	HeaderLength int `json:"header_length"`

	// Length is the number of data bytes actually decoded after
	// plausibility checks and clamping to the available bits.
	Length int `json:"length"`

	// LengthEstimated is set when the prefix was implausible and the length
	// was estimated from the bits on hand instead.
	LengthEstimated bool `json:"length_estimated"`

	// ValidUTF8 is false when invalid sequences had to be dropped.
	ValidUTF8 bool `json:"valid_utf8"`
}

// Decode majority-decodes a frame. It never fails: an unreadable frame
// yields empty text.
//
// expectedChars bounds the estimated length when the prefix is implausible;
// zero or less leaves the estimate bounded only by the available bits.
func (f Framer) Decode(bits []byte, expectedChars int) Decoded {
	var out Decoded
	header := 8 * f.Repetition
	if f.Repetition < 1 || len(bits) < header {
		return out
	}

	out.HeaderLength = int(f.majorityByte(bits, 0))
	available := (len(bits) - header) / header

	length := out.HeaderLength
	if length < 1 || length > f.MaxLength {
		length = available
		if expectedChars > 0 && expectedChars < length {
			length = expectedChars
		}
		out.LengthEstimated = true
	}
	if length > available {
		length = available
	}
	if length <= 0 {
		return out
	}

	data := make([]byte, length)
	for i := range data {
		data[i] = f.majorityByte(bits, header+i*header)
	}
	out.Length = length
	out.Text, out.ValidUTF8 = interpretText(data)
	return out
}

// MajorityBit decodes one logical bit from its Repetition physical copies
// starting at offset. Missing copies count as zeros.
func (f Framer) MajorityBit(bits []byte, offset int) byte {
	ones := 0
	for r := 0; r < f.Repetition; r++ {
		if i := offset + r; i < len(bits) && bits[i] != 0 {
			ones++
		}
	}
	if ones > f.Repetition/2 {
		return 1
	}
	return 0
}

func (f Framer) majorityByte(bits []byte, offset int) byte {
	var b byte
	for i := 0; i < 8; i++ {
		b = b<<1 | f.MajorityBit(bits, offset+i*f.Repetition)
	}
	return b
}

// EstimateBitBudget bounds how many bits an extractor has to read for a
// payload of expectedChars characters. It is a work cap, not a guarantee:
// the character-to-byte ratio of UTF-8 text is only known after decoding.
// Zero or fewer characters yield zero, meaning no cap.
func (f Framer) EstimateBitBudget(expectedChars int) int {
	if expectedChars <= 0 {
		return 0
	}
	n := int(math.Ceil(float64(expectedChars) * f.BytesPerChar))
	if n > maxPayloadBytes {
		n = maxPayloadBytes
	}
	return f.FrameBits(n)
}

// interpretText turns decoded bytes into text. Invalid UTF-8 sequences are
// dropped; text dominated by control characters is discarded entirely.
func interpretText(data []byte) (string, bool) {
	text := string(data)
	valid := utf8.ValidString(text)
	if !valid {
		text = strings.ToValidUTF8(text, "")
	}
	if controlDominated(text) {
		return "", valid
	}
	return text, valid
}

func controlDominated(s string) bool {
	total, control := 0, 0
	for _, r := range s {
		total++
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			control++
		}
	}
	return total == 0 || control*2 > total
}
