package task

import (
	"fmt"
	"sort"
	"strconv"
)

// ValueType tags the variant held by a Value.
type ValueType uint8

const (
	ValueInvalid ValueType = iota
	ValueString
	ValueInt
	ValueFloat
	ValueBool
	ValueEnum
	// ValueOpaque holds an arbitrary Go value for executors that need one.
	// Opaque values are never written to task records.
	ValueOpaque
)

// Value is a provider-specific option value: a small tagged union over
// string, int, float, bool, and enum, plus an opaque escape hatch.
type Value struct {
	typ      ValueType
	str      string
	num      int64
	float    float64
	flag     bool
	enumType string
	opaque   any
}

func StringValue(v string) Value { return Value{typ: ValueString, str: v} }
func IntValue(v int64) Value     { return Value{typ: ValueInt, num: v} }
func FloatValue(v float64) Value { return Value{typ: ValueFloat, float: v} }
func BoolValue(v bool) Value     { return Value{typ: ValueBool, flag: v} }

// EnumValue stores a named enumeration member. typeName identifies the
// enumeration, e.g. "quality".
func EnumValue(typeName, member string) Value {
	return Value{typ: ValueEnum, enumType: typeName, str: member}
}

// EnumOf stores any string-backed enum constant, using its Go type name as
// the enumeration name.
func EnumOf[T ~string](member T) Value {
	return EnumValue(fmt.Sprintf("%T", member), string(member))
}

// OpaqueValue stores an arbitrary value. It survives in the option bag but is
// dropped when options are flattened for a record.
func OpaqueValue(v any) Value { return Value{typ: ValueOpaque, opaque: v} }

func (v Value) Type() ValueType { return v.typ }

func (v Value) AsString() (string, bool) { return v.str, v.typ == ValueString }
func (v Value) AsInt() (int64, bool)     { return v.num, v.typ == ValueInt }
func (v Value) AsBool() (bool, bool)     { return v.flag, v.typ == ValueBool }
func (v Value) AsOpaque() (any, bool)    { return v.opaque, v.typ == ValueOpaque }

// AsFloat returns float values, and int values widened to float.
func (v Value) AsFloat() (float64, bool) {
	switch v.typ {
	case ValueFloat:
		return v.float, true
	case ValueInt:
		return float64(v.num), true
	}
	return 0, false
}

// AsEnum returns the enumeration name and member.
func (v Value) AsEnum() (typeName, member string, ok bool) {
	return v.enumType, v.str, v.typ == ValueEnum
}

// Flatten renders the value as a string for serialization. Opaque and
// invalid values report false.
func (v Value) Flatten() (string, bool) {
	switch v.typ {
	case ValueString, ValueEnum:
		return v.str, true
	case ValueInt:
		return strconv.FormatInt(v.num, 10), true
	case ValueFloat:
		return strconv.FormatFloat(v.float, 'f', -1, 64), true
	case ValueBool:
		return strconv.FormatBool(v.flag), true
	}
	return "", false
}

// Options is the provider-specific option bag carried by every descriptor.
// The zero value is an empty, usable bag.
type Options struct {
	values map[string]Value
}

// Set stores v under key, replacing any previous value.
func (o *Options) Set(key string, v Value) {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	o.values[key] = v
}

// Get returns the raw value stored under key.
func (o Options) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o Options) String(key string) (string, bool) {
	v, ok := o.values[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (o Options) Int(key string) (int64, bool) {
	v, ok := o.values[key]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

func (o Options) Float(key string) (float64, bool) {
	v, ok := o.values[key]
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

func (o Options) Bool(key string) (bool, bool) {
	v, ok := o.values[key]
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// Enum returns the member of an enum option.
func (o Options) Enum(key string) (string, bool) {
	v, ok := o.values[key]
	if !ok {
		return "", false
	}
	_, member, isEnum := v.AsEnum()
	return member, isEnum
}

// Len returns the number of stored options.
func (o Options) Len() int { return len(o.values) }

// Keys returns the option keys in sorted order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for key := range o.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Flatten renders every serializable option as a string. Opaque values are
// silently dropped.
func (o Options) Flatten() map[string]string {
	flat := make(map[string]string, len(o.values))
	for key, v := range o.values {
		if s, ok := v.Flatten(); ok {
			flat[key] = s
		}
	}
	return flat
}

// Clone returns an independent copy of the bag.
func (o Options) Clone() Options {
	if o.values == nil {
		return Options{}
	}
	values := make(map[string]Value, len(o.values))
	for key, v := range o.values {
		values[key] = v
	}
	return Options{values: values}
}
