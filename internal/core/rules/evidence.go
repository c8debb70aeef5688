package rules

import (
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Evidence kinds referenced from rules.json
const (
	EvidenceNone      = "none"
	EvidenceJWT       = "jwt"
	EvidenceJSON      = "json"
	EvidenceUUID      = "uuid"
	EvidenceHexDigest = "hexdigest"
	EvidenceEpoch     = "epoch"
	EvidenceXML       = "xml"
	EvidencePercent   = "percent"
	EvidenceURL       = "url"
	EvidenceCron      = "cron"
	EvidenceBase64    = "base64"
)

// evidenceFunc runs after the rule pattern matched and decides the confidence variant
// a parse failure must degrade to a weaker variant or a non-match, never an error
type evidenceFunc func(text string) (Match, bool)

var evidenceKinds = map[string]evidenceFunc{
	EvidenceNone:      func(string) (Match, bool) { return Match{}, true },
	EvidenceJWT:       jwtEvidence,
	EvidenceJSON:      jsonEvidence,
	EvidenceUUID:      uuidEvidence,
	EvidenceHexDigest: hexDigestEvidence,
	EvidenceEpoch:     epochEvidence,
	EvidenceXML:       xmlEvidence,
	EvidencePercent:   percentEvidence,
	EvidenceURL:       urlEvidence,
	EvidenceCron:      cronEvidence,
	EvidenceBase64:    base64Evidence,
}

// EvidenceKinds lists the evidence names a rules file may use
func EvidenceKinds() []string {
	out := make([]string, 0, len(evidenceKinds))
	for k := range evidenceKinds {
		out = append(out, k)
	}
	return out
}

var jwtParser = jwt.NewParser()

// jwtEvidence decodes header and claims without verifying the signature
func jwtEvidence(text string) (Match, bool) {
	tok, _, err := jwtParser.ParseUnverified(text, jwt.MapClaims{})
	if err != nil || tok == nil {
		return Match{Variant: "shape"}, true
	}
	if alg, ok := tok.Header["alg"].(string); ok && alg != "" {
		return Match{Detail: " (" + alg + ")"}, true
	}
	return Match{}, true
}

// loosePair catches object-ish text such as {a: 1} or {'a': 1}
var loosePair = regexp.MustCompile(`[{,]\s*["']?[A-Za-z_$][\w$-]*["']?\s*:`)

func jsonEvidence(text string) (Match, bool) {
	if json.Valid([]byte(text)) {
		if strings.HasPrefix(text, "[") {
			return Match{Detail: "Valid JSON array"}, true
		}
		return Match{Detail: "Valid JSON object"}, true
	}
	if loosePair.MatchString(text) {
		return Match{Variant: "loose", Detail: "Looks like JSON but does not parse"}, true
	}
	return Match{}, false
}

func uuidEvidence(text string) (Match, bool) {
	id, err := uuid.Parse(text)
	if err != nil {
		return Match{}, false
	}
	if v := id.Version(); v >= 1 && v <= 8 {
		return Match{Detail: " (v" + strconv.Itoa(int(v)) + ")"}, true
	}
	return Match{}, true
}

// digests are checked longest first so a SHA-512 value is never reported as MD5
var digests = []struct {
	hexLen  int
	variant string
	label   string
}{
	{128, "sha512", "SHA-512"},
	{64, "sha256", "SHA-256"},
	{40, "sha1", "SHA-1"},
	{32, "md5", "MD5"},
}

func hexDigestEvidence(text string) (Match, bool) {
	n := len(text)
	for _, d := range digests {
		if n == d.hexLen {
			return Match{Variant: d.variant, Detail: d.label}, true
		}
	}
	return Match{}, false
}

var (
	epochMin = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	epochMax = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

func epochEvidence(text string) (Match, bool) {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Match{}, false
	}
	var ts time.Time
	unit := " (seconds)"
	if len(text) == 13 {
		ts = time.UnixMilli(n).UTC()
		unit = " (milliseconds)"
	} else {
		ts = time.Unix(n, 0).UTC()
	}
	if ts.Before(epochMin) || !ts.Before(epochMax) {
		return Match{Variant: "out_of_range", Detail: unit}, true
	}
	return Match{Detail: unit}, true
}

func xmlEvidence(text string) (Match, bool) {
	if wellFormedXML(text) {
		return Match{Detail: "Well-formed XML document"}, true
	}
	if strings.Contains(text, "</") || strings.Contains(text, "/>") {
		return Match{Variant: "loose", Detail: "Looks like XML markup"}, true
	}
	return Match{}, false
}

func wellFormedXML(text string) bool {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = true
	depth, elements := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return elements > 0 && depth == 0
		}
		if err != nil {
			return false
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
			elements++
		case xml.EndElement:
			depth--
		}
	}
}

func percentEvidence(text string) (Match, bool) {
	if dec, err := url.QueryUnescape(text); err == nil && dec != text {
		return Match{}, true
	}
	if dec, err := url.PathUnescape(text); err == nil && dec != text {
		return Match{}, true
	}
	return Match{}, false
}

func urlEvidence(text string) (Match, bool) {
	u, err := url.Parse(text)
	if err != nil || u.Host == "" {
		return Match{}, false
	}
	return Match{Detail: " (" + u.Hostname() + ")"}, true
}

var cronField = regexp.MustCompile(`^(\*|\?|[0-9]+|[A-Za-z]{3})([-/,](\*|[0-9]+|[A-Za-z]{3}))*[LW]?(#[0-9])?$`)

func cronEvidence(text string) (Match, bool) {
	fields := strings.Fields(text)
	if len(fields) != 5 && len(fields) != 6 {
		return Match{}, false
	}
	numeric := false
	for _, f := range fields {
		if !cronField.MatchString(f) {
			return Match{}, false
		}
		if strings.ContainsAny(f, "*0123456789") {
			numeric = true
		}
	}
	return Match{}, numeric
}

// minBase64 keeps short words and numbers out of the base64 rule
const minBase64 = 20

// minBase64Segment rejects dotted hostnames and file names, whose last part is short
const minBase64Segment = 6

// base64Evidence accepts one base64 run or dot-joined base64url segments
// (token formats such as JWT), decoding each segment in turn
func base64Evidence(text string) (Match, bool) {
	if len(text) < minBase64 {
		return Match{}, false
	}
	segs := strings.Split(text, ".")
	var raw []byte
	for _, seg := range segs {
		if len(segs) > 1 && len(strings.TrimRight(seg, "=")) < minBase64Segment {
			return Match{}, false
		}
		b, ok := decodeBase64(seg)
		if !ok {
			return Match{}, false
		}
		raw = append(raw, b...)
	}
	if printableText(raw) {
		return Match{Detail: "text"}, true
	}
	return Match{Variant: "binary", Detail: "binary data"}, true
}

func decodeBase64(text string) ([]byte, bool) {
	urlSafe := strings.ContainsAny(text, "-_")
	padded := strings.HasSuffix(text, "=") || len(text)%4 == 0

	var enc *base64.Encoding
	switch {
	case urlSafe && padded:
		enc = base64.URLEncoding
	case urlSafe:
		enc = base64.RawURLEncoding
	case padded:
		enc = base64.StdEncoding
	default:
		enc = base64.RawStdEncoding
	}
	raw, err := enc.DecodeString(text)
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

func printableText(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
