package models

import (
	"fmt"
	"strings"
)

// Policy is the global rule deciding, per file, whether to transcode or copy verbatim.
type Policy string

const (
	ConvertAll            Policy = "convert-all"
	ConvertNone           Policy = "convert-none"
	ConvertIfExtDiffers   Policy = "convert-if-extension-differs"
	ConvertOnlyIfLossless Policy = "convert-only-if-lossless"
)

// Policies lists every valid [Policy] in documentation order.
var Policies = []Policy{ConvertAll, ConvertNone, ConvertIfExtDiffers, ConvertOnlyIfLossless}

// policyAliases maps accepted spellings (lowercased) to their canonical [Policy].
var policyAliases = map[string]Policy{
	"convert-all":                  ConvertAll,
	"all":                          ConvertAll,
	"convert-none":                 ConvertNone,
	"none":                         ConvertNone,
	"convert-if-extension-differs": ConvertIfExtDiffers,
	"ifnotsame":                    ConvertIfExtDiffers,
	"if-not-same":                  ConvertIfExtDiffers,
	"convert-only-if-lossless":     ConvertOnlyIfLossless,
	"onlylossless":                 ConvertOnlyIfLossless,
	"only-lossless":                ConvertOnlyIfLossless,
}

// ParsePolicy resolves s to a [Policy], accepting both the kebab-case names and the legacy
// CamelCase names (All, None, IfNotSame, OnlyLossless) in any letter case.
func ParsePolicy(s string) (Policy, error) {
	if p, ok := policyAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown conversion policy %q", s)
}

// Valid reports whether p is one of the four known policies.
func (p Policy) Valid() bool {
	switch p {
	case ConvertAll, ConvertNone, ConvertIfExtDiffers, ConvertOnlyIfLossless:
		return true
	}
	return false
}

// Converts reports whether p may transcode at all.
func (p Policy) Converts() bool {
	return p != ConvertNone
}

func (p Policy) String() string { return string(p) }

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// Decision is the operation chosen for a single file.
type Decision int

const (
	CopyVerbatim Decision = iota
	Transcode
)

func (d Decision) String() string {
	switch d {
	case CopyVerbatim:
		return "copy"
	case Transcode:
		return "transcode"
	default:
		return ""
	}
}

// Decide applies policy to file. It only reads file and is safe to call concurrently.
//
//	convert-all                   always Transcode
//	convert-none                  always CopyVerbatim
//	convert-if-extension-differs  Transcode iff source extension != destination extension
//	convert-only-if-lossless      Transcode iff the source is lossless
func Decide(policy Policy, file *AudioFile) Decision {
	switch policy {
	case ConvertAll:
		return Transcode
	case ConvertIfExtDiffers:
		if !strings.EqualFold(file.SourceExtension(), file.Extension) {
			return Transcode
		}
	case ConvertOnlyIfLossless:
		if file.Lossless {
			return Transcode
		}
	}
	return CopyVerbatim
}

// ParseDecision is the inverse of [Decision.String].
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "copy":
		return CopyVerbatim, nil
	case "transcode":
		return Transcode, nil
	}
	return 0, fmt.Errorf("unknown decision %q", s)
}
