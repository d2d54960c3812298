// Package decode picks a text encoding for a raw chat export by trying an
// ordered list of candidates and keeping the first one that decodes the
// whole stream without error.
package decode

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncodings is the candidate order used when the config names none.
// latin1 maps every byte, so cp1252 is only reached when latin1 is removed.
var DefaultEncodings = []string{"utf-8-sig", "utf-8", "latin1", "cp1252"}

// ErrNoEncoding is returned when every candidate fails.
var ErrNoEncoding = errors.New("no candidate encoding decoded the stream")

const maxLineSize = 10 * 1024 * 1024 // 10MB

// Candidate is one named decoding strategy.
type Candidate struct {
	Name string
	enc  encoding.Encoding
	utf8 bool
}

// Lookup resolves an encoding name. Common Python-style aliases are
// handled here; anything else goes through the IANA registry.
func Lookup(name string) (Candidate, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "utf-8", "utf8":
		return Candidate{Name: key, enc: unicode.UTF8, utf8: true}, nil
	case "utf-8-sig", "utf8-sig":
		return Candidate{Name: key, enc: unicode.UTF8BOM, utf8: true}, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return Candidate{Name: key, enc: charmap.ISO8859_1}, nil
	case "cp1252", "windows-1252":
		return Candidate{Name: key, enc: charmap.Windows1252}, nil
	}

	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil {
		return Candidate{}, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return Candidate{}, fmt.Errorf("unsupported encoding %q", name)
	}
	return Candidate{Name: key, enc: enc, utf8: enc == unicode.UTF8}, nil
}

// decode returns the full text of data or an error on the first byte
// the candidate cannot map.
func (c Candidate) decode(data []byte) (string, error) {
	if c.utf8 {
		// x/text replaces invalid sequences instead of failing
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: invalid byte sequence", c.Name)
		}
	}
	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Name, err)
	}
	if !c.utf8 && hasReplacement(out, data) {
		return "", fmt.Errorf("%s: unmapped byte", c.Name)
	}
	return string(out), nil
}

// hasReplacement reports whether decoding produced U+FFFD that was not
// already spelled out in the input.
func hasReplacement(out, in []byte) bool {
	return strings.ContainsRune(string(out), utf8.RuneError) &&
		!strings.Contains(string(in), string(utf8.RuneError))
}

// Decoded is the outcome of a successful Decode.
type Decoded struct {
	Encoding string
	Lines    []string
}

// Resolver tries its candidates in order.
type Resolver struct {
	candidates []Candidate
	log        zerolog.Logger
}

// NewResolver resolves every name up front; an unknown name is an error.
func NewResolver(names []string, log zerolog.Logger) (*Resolver, error) {
	if len(names) == 0 {
		names = DefaultEncodings
	}
	r := &Resolver{log: log}
	for _, n := range names {
		c, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		r.candidates = append(r.candidates, c)
	}
	return r, nil
}

// Names returns the candidate names in try order.
func (r *Resolver) Names() []string {
	names := make([]string, len(r.candidates))
	for i, c := range r.candidates {
		names[i] = c.Name
	}
	return names
}

// Decode returns the lines of the first candidate that decodes data in
// full. Later candidates are not tried once one succeeds.
func (r *Resolver) Decode(source string, data []byte) (Decoded, error) {
	for _, c := range r.candidates {
		text, err := c.decode(data)
		if err != nil {
			r.log.Debug().Str("source", source).Str("encoding", c.Name).Err(err).Msg("encoding rejected")
			continue
		}
		r.log.Info().Str("source", source).Str("encoding", c.Name).Msg("decoded chat")
		return Decoded{Encoding: c.Name, Lines: SplitLines(text)}, nil
	}

	ev := r.log.Warn().Str("source", source).Strs("tried", r.Names())
	if guess := Guess(data); guess != "" {
		ev = ev.Str("detected", guess)
	}
	ev.Msg("could not decode chat with any encoding")
	return Decoded{}, fmt.Errorf("%s: %w", source, ErrNoEncoding)
}

// Guess returns the most likely charset of data, or "" when detection
// fails. It is only a hint for diagnostics.
func Guess(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res == nil {
		return ""
	}
	return res.Charset
}

// SplitLines splits text on newlines. A trailing carriage return is
// dropped from each line; nothing else is trimmed.
func SplitLines(text string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if sc.Err() != nil {
		// a single line above maxLineSize: fall back to a plain split
		lines = strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}
	}
	return lines
}
