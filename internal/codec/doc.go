// Package codec hides short UTF-8 text in a single-channel sample grid by
// perturbing mid-frequency DCT coefficients of non-overlapping N×N blocks.
//
// The payload is framed as an 8-bit length followed by the data bytes, MSB
// first, and every bit is repeated RepetitionCount times. Each suitable
// block, visited in row-major order, carries exactly one physical bit.
// Extraction needs no side information beyond the Config used to embed and
// an estimate of the payload's character count.
//
//	c, err := codec.New(codec.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	marked, stats, err := c.Embed(ctx, carrier, "TEST123")
//	...
//	res, err := c.Extract(ctx, marked, 7)
//
// The codec is deterministic: the same carrier, text and Config always
// produce the same output regardless of the worker count.
package codec
