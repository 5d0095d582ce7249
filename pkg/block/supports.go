package block

import (
	"encoding/json"

	"github.com/goliatone/go-blockgen/pkg/header"
)

// Supports lists the optional editor features a block opts into. Nil fields
// were not declared in the template and keep the host defaults.
type Supports struct {
	Align        *AlignSupport `json:"align,omitempty"`
	Anchor       *bool         `json:"anchor,omitempty"`
	Mode         *bool         `json:"mode,omitempty"`
	JSX          *bool         `json:"jsx,omitempty"`
	AlignText    *bool         `json:"align_text,omitempty"`
	AlignContent *bool         `json:"align_content,omitempty"`
	Multiple     *bool         `json:"multiple,omitempty"`
}

// AlignSupport is either a toggle or an explicit list of allowed alignments.
type AlignSupport struct {
	Enabled bool
	Values  []string
}

// MarshalJSON encodes the list when present and the toggle otherwise.
func (a AlignSupport) MarshalJSON() ([]byte, error) {
	if a.Values != nil {
		return json.Marshal(a.Values)
	}
	return json.Marshal(a.Enabled)
}

// UnmarshalJSON accepts either a boolean or a list of alignments.
func (a *AlignSupport) UnmarshalJSON(data []byte) error {
	var enabled bool
	if err := json.Unmarshal(data, &enabled); err == nil {
		*a = AlignSupport{Enabled: enabled}
		return nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*a = AlignSupport{Enabled: len(values) > 0, Values: values}
	return nil
}

// Empty reports whether no flag was declared.
func (s *Supports) Empty() bool {
	return s == nil || (s.Align == nil && s.Anchor == nil && s.Mode == nil && s.JSX == nil &&
		s.AlignText == nil && s.AlignContent == nil && s.Multiple == nil)
}

// Enabled reports the value of a boolean flag, false when it was not declared.
func Enabled(flag *bool) bool {
	return flag != nil && *flag
}

func supportsFromHeaders(set header.Set) *Supports {
	s := &Supports{
		Align:        alignFromHeader(set.Get(header.SupportsAlign)),
		Anchor:       boolFromHeader(set, header.SupportsAnchor),
		Mode:         boolFromHeader(set, header.SupportsMode),
		JSX:          boolFromHeader(set, header.SupportsJSX),
		AlignText:    boolFromHeader(set, header.SupportsAlignText),
		AlignContent: boolFromHeader(set, header.SupportsAlignContent),
		Multiple:     boolFromHeader(set, header.SupportsMultiple),
	}
	if s.Empty() {
		return nil
	}
	return s
}

func boolFromHeader(set header.Set, key header.Key) *bool {
	if !set.Has(key) {
		return nil
	}
	value := set.Bool(key)
	return &value
}

func alignFromHeader(raw string) *AlignSupport {
	switch raw {
	case "":
		return nil
	case "true":
		return &AlignSupport{Enabled: true}
	case "false":
		return &AlignSupport{Enabled: false}
	}
	values := header.Set{header.SupportsAlign: raw}.List(header.SupportsAlign)
	return &AlignSupport{Enabled: len(values) > 0, Values: values}
}
