package pcfg

// Token is a single element of the input sequence handed to Parser. It
// is opaque to this package: terminals decide what a token means via
// Terminal.Matches. Callers typically use a string, a rune, or a small
// struct carrying a surface form plus tags.
type Token interface{}

// Tokens is an ordered, finite, restartable sequence of tokens. A plain
// slice already satisfies every property the parser needs (ordered,
// finite, re-readable at any index), so Tokens is just a named slice
// type rather than an interface with Next/Reset methods.
type Tokens []Token

// ScanProbability is an optional hook consulted once per token during
// scan, representing confidence in the i-th token (e.g. from an
// upstream recognizer). It returns a semiring-encoded value; a NaN
// return leaves the scan score unmodified (see scan.go). When absent,
// scan behaves as though this always returned the semiring's One().
type ScanProbability func(position int, tok Token) float64
