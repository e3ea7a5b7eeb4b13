package ccxp

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"
)

// Scanner limits; the challenge marker sits near the top of the login page.
const (
	DefaultMaxRunes  = 10000
	DefaultKeepRunes = 5000
)

// Scanner decodes a Big5 byte stream chunk by chunk and looks for the first
// match of a pattern. The decoded text is bounded: once it grows past
// maxRunes only the last keepRunes runes are retained. Bytes of a multi-byte
// character split across chunks are carried over to the next Feed.
type Scanner struct {
	re        *regexp.Regexp
	dec       *encoding.Decoder
	pending   []byte
	text      []byte
	runes     int
	maxRunes  int
	keepRunes int
	dst       [4096]byte
}

// NewScanner returns a Scanner for re with the default limits. re should
// have one capture group; its value is what Feed returns.
func NewScanner(re *regexp.Regexp) *Scanner {
	return NewScannerSize(re, DefaultMaxRunes, DefaultKeepRunes)
}

// NewScannerSize is NewScanner with explicit limits.
func NewScannerSize(re *regexp.Regexp, maxRunes, keepRunes int) *Scanner {
	if keepRunes > maxRunes {
		keepRunes = maxRunes
	}
	return &Scanner{
		re:        re,
		dec:       traditionalchinese.Big5.NewDecoder(),
		maxRunes:  maxRunes,
		keepRunes: keepRunes,
	}
}

// Feed decodes p and reports the first capture of the pattern if the text
// seen so far contains it. A match that reaches the end of the decoded text
// is not reported yet, since the next chunk may extend it.
func (s *Scanner) Feed(p []byte) (string, bool) {
	s.pending = append(s.pending, p...)
	s.decode(false)
	return s.match(false)
}

// Close flushes trailing bytes as end of stream and makes a final match.
func (s *Scanner) Close() (string, bool) {
	s.decode(true)
	return s.match(true)
}

// Buffered reports how many decoded runes are currently retained.
func (s *Scanner) Buffered() int { return s.runes }

func (s *Scanner) decode(atEOF bool) {
	for len(s.pending) > 0 {
		nDst, nSrc, err := s.dec.Transform(s.dst[:], s.pending, atEOF)
		s.text = append(s.text, s.dst[:nDst]...)
		s.runes += utf8.RuneCount(s.dst[:nDst])
		s.pending = s.pending[nSrc:]

		if errors.Is(err, transform.ErrShortDst) {
			continue
		}
		if err != nil || nSrc == 0 {
			// ErrShortSrc: wait for the rest of the character
			break
		}
	}
	if atEOF {
		s.pending = nil
	}
}

func (s *Scanner) match(final bool) (string, bool) {
	loc := s.re.FindSubmatchIndex(s.text)
	if loc == nil {
		s.trim()
		return "", false
	}
	if !final && loc[1] == len(s.text) {
		// may still grow
		return "", false
	}
	if len(loc) >= 4 && loc[2] >= 0 {
		return string(s.text[loc[2]:loc[3]]), true
	}
	return string(s.text[loc[0]:loc[1]]), true
}

func (s *Scanner) trim() {
	if s.runes <= s.maxRunes {
		return
	}
	i := len(s.text)
	for k := 0; k < s.keepRunes && i > 0; k++ {
		_, size := utf8.DecodeLastRune(s.text[:i])
		i -= size
	}
	s.text = append(s.text[:0], s.text[i:]...)
	s.runes = s.keepRunes
}
