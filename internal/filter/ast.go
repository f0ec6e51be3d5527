package filter

import (
	"fmt"
)

// PredicateKind names one of the supported predicate forms.
type PredicateKind string

const (
	KindEquals          PredicateKind = "equals"
	KindAttributeExists PredicateKind = "attribute_exists"
	KindContains        PredicateKind = "contains"
	KindBeginsWith      PredicateKind = "begins_with"
)

// Predicate is a parsed filter expression.
type Predicate interface {
	Kind() PredicateKind
	// Template renders the predicate using the given placeholders.
	Template(name, val string) string
	Attribute() string
	// Value returns the compared value and whether the predicate has one.
	Value() (interface{}, bool)
}

// Equals is `attribute = value`.
type Equals struct {
	Name string
	Val  interface{}
}

func (p Equals) Kind() PredicateKind              { return KindEquals }
func (p Equals) Attribute() string                { return p.Name }
func (p Equals) Value() (interface{}, bool)       { return p.Val, true }
func (p Equals) Template(name, val string) string { return fmt.Sprintf("%s = %s", name, val) }

// AttributeExists is `attribute_exists(attribute)`.
type AttributeExists struct {
	Name string
}

func (p AttributeExists) Kind() PredicateKind        { return KindAttributeExists }
func (p AttributeExists) Attribute() string          { return p.Name }
func (p AttributeExists) Value() (interface{}, bool) { return nil, false }
func (p AttributeExists) Template(name, _ string) string {
	return fmt.Sprintf("attribute_exists(%s)", name)
}

// Contains is `contains(attribute, value)`.
type Contains struct {
	Name string
	Val  interface{}
}

func (p Contains) Kind() PredicateKind        { return KindContains }
func (p Contains) Attribute() string          { return p.Name }
func (p Contains) Value() (interface{}, bool) { return p.Val, true }
func (p Contains) Template(name, val string) string {
	return fmt.Sprintf("contains(%s, %s)", name, val)
}

// BeginsWith is `begins_with(attribute, value)`.
type BeginsWith struct {
	Name string
	Val  interface{}
}

func (p BeginsWith) Kind() PredicateKind        { return KindBeginsWith }
func (p BeginsWith) Attribute() string          { return p.Name }
func (p BeginsWith) Value() (interface{}, bool) { return p.Val, true }
func (p BeginsWith) Template(name, val string) string {
	return fmt.Sprintf("begins_with(%s, %s)", name, val)
}
