package models

import "math"

// Input is the session-scoped set of values a user types into the calculator.
// Counters are kept in [0, MaxCounter] by the setters and Apply/Clamp; the role
// calculator assumes that and never clamps on its own.
type Input struct {
	GeneralMessages  int64 `json:"general_messages"`
	CountingMessages int64 `json:"counting_messages"`
	SecretArea       bool  `json:"secret_area"`

	// NegaciesConverted is a one-time conversion between the two currencies.
	// With LegacyToNegacy false (the default) negacies were turned into legacies.
	NegaciesConverted int64 `json:"negacies_converted"`
	LegacyToNegacy    bool  `json:"legacy_to_negacy"`

	NegaciesEarned int64 `json:"negacies_earned"`
	Quacks         int64 `json:"quacks"`
}

// Patch carries a partial update from a form or JSON body. Nil fields are left alone.
type Patch struct {
	GeneralMessages   *int64 `json:"general_messages,omitempty"`
	CountingMessages  *int64 `json:"counting_messages,omitempty"`
	SecretArea        *bool  `json:"secret_area,omitempty"`
	NegaciesConverted *int64 `json:"negacies_converted,omitempty"`
	LegacyToNegacy    *bool  `json:"legacy_to_negacy,omitempty"`
	NegaciesEarned    *int64 `json:"negacies_earned,omitempty"`
	Quacks            *int64 `json:"quacks,omitempty"`
}

// MaxCounter is the largest value any counter is stored with. Larger values
// are capped so role arithmetic stays far from int64 overflow.
const MaxCounter = math.MaxInt32

func clamp(v int64) int64 {
	switch {
	case v < 0:
		return 0
	case v > MaxCounter:
		return MaxCounter
	}
	return v
}

func (in *Input) SetGeneralMessages(v int64)   { in.GeneralMessages = clamp(v) }
func (in *Input) SetCountingMessages(v int64)  { in.CountingMessages = clamp(v) }
func (in *Input) SetQuacks(v int64)            { in.Quacks = clamp(v) }
func (in *Input) SetNegaciesConverted(v int64) { in.NegaciesConverted = clamp(v) }
func (in *Input) SetNegaciesEarned(v int64)    { in.NegaciesEarned = clamp(v) }
func (in *Input) SetSecretArea(v bool)         { in.SecretArea = v }
func (in *Input) SetLegacyToNegacy(v bool)     { in.LegacyToNegacy = v }

// Apply writes every non-nil field of p through the clamping setters.
func (in *Input) Apply(p Patch) {
	if p.GeneralMessages != nil {
		in.SetGeneralMessages(*p.GeneralMessages)
	}
	if p.CountingMessages != nil {
		in.SetCountingMessages(*p.CountingMessages)
	}
	if p.SecretArea != nil {
		in.SetSecretArea(*p.SecretArea)
	}
	if p.NegaciesConverted != nil {
		in.SetNegaciesConverted(*p.NegaciesConverted)
	}
	if p.LegacyToNegacy != nil {
		in.SetLegacyToNegacy(*p.LegacyToNegacy)
	}
	if p.NegaciesEarned != nil {
		in.SetNegaciesEarned(*p.NegaciesEarned)
	}
	if p.Quacks != nil {
		in.SetQuacks(*p.Quacks)
	}
}

// Clamp normalises a struct that was filled without the setters (e.g. json.Decode).
func (in Input) Clamp() Input {
	in.GeneralMessages = clamp(in.GeneralMessages)
	in.CountingMessages = clamp(in.CountingMessages)
	in.Quacks = clamp(in.Quacks)
	in.NegaciesConverted = clamp(in.NegaciesConverted)
	in.NegaciesEarned = clamp(in.NegaciesEarned)
	return in
}

// ConversionLabel describes what NegaciesConverted means for the current direction.
func (in Input) ConversionLabel() string {
	if in.LegacyToNegacy {
		return "Legacy roles you converted into negacy ones (you can only do that once you max out your legacy roles)"
	}
	return "Negacy roles you converted into legacy ones (you can only do that once you max out your negacy roles)"
}
