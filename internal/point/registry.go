/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package point

import "fmt"

type enum interface{ ~int }

// entry maps a script keyword onto an enumeration value.
type entry[T enum] struct {
	name  string
	value T
}

// Lookup tables. The first entry of each table is the fallback for unknown names.
var (
	textAlignTable = []entry[TextAlign]{
		{"left", AlignLeft},
		{"center", AlignCenter},
		{"right", AlignRight},
	}
	gravityTable = []entry[Gravity]{
		{"center", GravityCenter},
		{"top", GravityNorth},
		{"bottom", GravitySouth},
		{"left", GravityWest},
		{"right", GravityEast},
		{"top-left", GravityNorthWest},
		{"top-right", GravityNorthEast},
		{"bottom-left", GravitySouthWest},
		{"bottom-right", GravitySouthEast},
	}
	scaleTable = []entry[BackgroundScale]{
		{"fill", ScaleFill},
		{"fit", ScaleFit},
		{"stretch", ScaleStretch},
		{"unscaled", ScaleUnscaled},
	}
	kindTable = []entry[BackgroundKind]{
		{"none", BackgroundNone},
		{"color", BackgroundColor},
		{"image", BackgroundImage},
		{"video", BackgroundVideo},
		{"svg", BackgroundSVG},
		{"camera", BackgroundCamera},
	}
)

// lookup returns the value for name (exact, case-sensitive) or the first entry.
func lookup[T enum](table []entry[T], name string) T {
	v, _ := find(table, name)
	return v
}

func find[T enum](table []entry[T], name string) (T, bool) {
	for _, e := range table {
		if e.name == name {
			return e.value, true
		}
	}
	return table[0].value, false
}

func nameOf[T enum](table []entry[T], v T) (string, bool) {
	for _, e := range table {
		if e.value == v {
			return e.name, true
		}
	}
	return "", false
}

// LookupTextAlign resolves an alignment name, falling back to left.
func LookupTextAlign(name string) TextAlign { return lookup(textAlignTable, name) }

// LookupGravity resolves a gravity keyword, falling back to center.
func LookupGravity(name string) Gravity { return lookup(gravityTable, name) }

// LookupScale resolves a background scale keyword, falling back to fill.
func LookupScale(name string) BackgroundScale { return lookup(scaleTable, name) }

func (a TextAlign) String() string       { return enumString(textAlignTable, a) }
func (g Gravity) String() string         { return enumString(gravityTable, g) }
func (s BackgroundScale) String() string { return enumString(scaleTable, s) }
func (k BackgroundKind) String() string  { return enumString(kindTable, k) }

func enumString[T enum](table []entry[T], v T) string {
	if n, ok := nameOf(table, v); ok {
		return n
	}
	return fmt.Sprintf("enum(%d)", int(v))
}

func (a TextAlign) MarshalText() ([]byte, error)       { return marshalEnum(textAlignTable, a) }
func (g Gravity) MarshalText() ([]byte, error)         { return marshalEnum(gravityTable, g) }
func (s BackgroundScale) MarshalText() ([]byte, error) { return marshalEnum(scaleTable, s) }
func (k BackgroundKind) MarshalText() ([]byte, error)  { return marshalEnum(kindTable, k) }

func (a *TextAlign) UnmarshalText(b []byte) error       { return unmarshalEnum(textAlignTable, b, a) }
func (g *Gravity) UnmarshalText(b []byte) error         { return unmarshalEnum(gravityTable, b, g) }
func (s *BackgroundScale) UnmarshalText(b []byte) error { return unmarshalEnum(scaleTable, b, s) }
func (k *BackgroundKind) UnmarshalText(b []byte) error  { return unmarshalEnum(kindTable, b, k) }

func marshalEnum[T enum](table []entry[T], v T) ([]byte, error) {
	n, ok := nameOf(table, v)
	if !ok {
		return nil, fmt.Errorf("invalid enum value %d", int(v))
	}
	return []byte(n), nil
}

func unmarshalEnum[T enum](table []entry[T], b []byte, dst *T) error {
	v, ok := find(table, string(b))
	if !ok {
		return fmt.Errorf("unknown value %q", string(b))
	}
	*dst = v
	return nil
}
