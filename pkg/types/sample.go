// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"math"
	"strconv"
)

// Sample is a real value that may be undefined. Non-finite results
// (±Inf, NaN) are stored as undefined so that JSON and YAML consumers see an
// explicit null instead of a numeric literal they cannot parse.
type Sample struct {
	value   float64
	defined bool
}

// SampleOf wraps v, marking it undefined when it is not finite.
func SampleOf(v float64) Sample {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Sample{}
	}
	return Sample{value: v, defined: true}
}

// Undefined returns the undefined marker.
func Undefined() Sample { return Sample{} }

// Float64 returns the value and whether it is defined.
func (s Sample) Float64() (float64, bool) { return s.value, s.defined }

// Defined reports whether the sample holds a finite value.
func (s Sample) Defined() bool { return s.defined }

func (s Sample) String() string {
	if !s.defined {
		return "undefined"
	}
	return strconv.FormatFloat(s.value, 'g', -1, 64)
}

func (s Sample) MarshalJSON() ([]byte, error) {
	if !s.defined {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

func (s *Sample) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Sample{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = SampleOf(v)
	return nil
}

// MarshalYAML encodes an undefined sample as a YAML null.
func (s Sample) MarshalYAML() (any, error) {
	if !s.defined {
		return nil, nil
	}
	return s.value, nil
}

// UnmarshalYAML decodes a YAML null or number.
func (s *Sample) UnmarshalYAML(unmarshal func(any) error) error {
	var v *float64
	if err := unmarshal(&v); err != nil {
		return err
	}
	if v == nil {
		*s = Sample{}
		return nil
	}
	*s = SampleOf(*v)
	return nil
}

// Samples sanitizes a slice of raw values.
func Samples(values []float64) []Sample {
	out := make([]Sample, len(values))
	for i, v := range values {
		out[i] = SampleOf(v)
	}
	return out
}
