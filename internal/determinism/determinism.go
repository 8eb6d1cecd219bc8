// Package determinism derives stable hashes and identifiers from semantic
// content. Re-processing identical input must never produce different
// identifiers: resource IDs in generated bundles are pure functions of the
// measurement data, so downstream systems can upsert safely and regeneration
// is byte-identical.
//
// All functions here are total over well-typed input and side-effect free.
// Callers normalize case and whitespace before deriving identifiers; the
// kernel never applies normalization policy itself.
package determinism

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// idHashLength is the number of hex digits kept from the component hash.
// 16 digits (64 bits) keeps identifiers short while making accidental
// collisions within one installation implausible.
const idHashLength = 16

// componentSeparator joins canonicalized components before hashing. A pipe
// never appears in canonicalized values (analytes and units are normalized,
// timestamps and numbers have fixed alphabets), so joined tuples are
// unambiguous.
const componentSeparator = "|"

// ContentHash returns the lowercase hex SHA-256 of raw document bytes. Used
// by the dedup gate and as an identity component for derived resource IDs.
func ContentHash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// DeterministicID derives a stable identifier from an ordered component
// tuple. Components are canonicalized, joined with a pipe, hashed with
// SHA-256, truncated to 16 hex digits, and tagged with the given prefix:
//
//	DeterministicID("obs", a, b) == "obs-" + sha256(a + "|" + b)[:16]
//
// For a fixed component tuple the output is identical across runs and
// processes.
func DeterministicID(prefix string, components ...any) string {
	parts := make([]string, len(components))
	for i, c := range components {
		parts[i] = Canonicalize(c)
	}
	joined := strings.Join(parts, componentSeparator)
	sum := sha256.Sum256([]byte(joined))
	return prefix + "-" + hex.EncodeToString(sum[:])[:idHashLength]
}

// Canonicalize renders one identifier component as its canonical string:
//
//   - nil (and nil typed pointers) render as "null"
//   - timestamps render as ISO-8601 with an explicit numeric offset
//   - numbers render as plain decimal strings, no locale formatting;
//     integral floats keep a trailing ".0" so 95.0 and "95" stay distinct
//   - strings pass through unchanged
//
// Normalization of case and whitespace is the caller's responsibility.
func Canonicalize(c any) string {
	switch v := c.(type) {
	case nil:
		return "null"
	case string:
		return v
	case time.Time:
		return canonicalTimestamp(v)
	case *time.Time:
		if v == nil {
			return "null"
		}
		return canonicalTimestamp(*v)
	case float64:
		return canonicalFloat(v)
	case float32:
		return canonicalFloat(float64(v))
	case *float64:
		if v == nil {
			return "null"
		}
		return canonicalFloat(*v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// canonicalTimestamp renders with second precision, microseconds only when
// non-zero, and an explicit numeric offset (UTC renders "+00:00", never "Z").
func canonicalTimestamp(t time.Time) string {
	var b strings.Builder
	b.WriteString(t.Format("2006-01-02T15:04:05"))
	if us := t.Nanosecond() / 1000; us != 0 {
		fmt.Fprintf(&b, ".%06d", us)
	}
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	fmt.Fprintf(&b, "%s%02d:%02d", sign, offset/3600, (offset%3600)/60)
	return b.String()
}

// canonicalFloat renders the shortest round-trip decimal form, keeping a
// trailing ".0" on integral values. Lab measurement magnitudes never reach
// the exponent range, so scientific notation does not occur.
func canonicalFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ObservationID derives the identifier for one measurement observation.
// Components, in order: owning subject ID, collection timestamp, normalized
// analyte name, measurement value (float64 for numeric kinds, string for
// qualitative), normalized unit. An empty unit is an absent component and
// renders as "null", so unit-less measurements keep the same identity across
// implementations. The caller must pass the analyte and unit already
// normalized; deriving from raw strings silently forks identity.
func ObservationID(subjectID string, collected time.Time, normalizedAnalyte string, value any, normalizedUnit string) string {
	var unit any
	if normalizedUnit != "" {
		unit = normalizedUnit
	}
	return DeterministicID("obs", subjectID, collected, normalizedAnalyte, value, unit)
}

// DiagnosticReportID derives the identifier for the aggregate report record.
// contentHash is the full document hash; only its first 16 digits enter the
// component tuple.
func DiagnosticReportID(subjectID string, reportTime time.Time, contentHash string) string {
	return DeterministicID("diag", subjectID, reportTime, hashPrefix(contentHash))
}

// DocumentReferenceID derives the identifier for the source-document
// reference directly from the content hash, without re-hashing: identical
// bytes always yield the identical document identity.
func DocumentReferenceID(contentHash string) string {
	return "doc-" + hashPrefix(contentHash)
}

func hashPrefix(hash string) string {
	if len(hash) > idHashLength {
		return hash[:idHashLength]
	}
	return hash
}

// HexToBase64 converts a hex digest into its base64 form, as required by
// attachment hash fields in generated documents.
func HexToBase64(hexStr string) (string, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", fmt.Errorf("decode hex digest: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
