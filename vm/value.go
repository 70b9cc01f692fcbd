package vm

import (
	"fmt"
	"math"
)

// Value represents a script value using NaN-boxing.
//
// All values are represented as 64-bit IEEE 754 doubles. Non-float values
// are encoded in the NaN (Not-a-Number) space using the quiet NaN prefix
// and tag bits to distinguish types.
//
// Encoding scheme:
//   - Float: Native IEEE 754 double (if not a NaN, it's a float)
//   - SmallInt: Quiet NaN + tagInt + 48-bit signed payload
//   - Object: Quiet NaN + tagObject + 32-bit arena index + 16-bit generation
//   - String: Quiet NaN + tagString + heap string table ID
//   - Special: Quiet NaN + tagSpecial + special value ID (undefined/null/true/false)
//
// Object values carry a Handle, not a pointer, so two values are equal
// exactly when they name the same allocation.
type Value uint64

// NaN-boxing constants
const (
	// Quiet NaN prefix: exponent all 1s, quiet bit set, sign bit 0
	// 0x7FF8_0000_0000_0000
	nanBits uint64 = 0x7FF8000000000000

	// Tag mask: 3 bits within the NaN mantissa space
	// 0x0007_0000_0000_0000
	tagMask uint64 = 0x0007000000000000

	// Payload mask: 48 bits for handle/int/id
	// 0x0000_FFFF_FFFF_FFFF
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	// Tag values (shifted into position)
	tagObject  uint64 = 0x0001000000000000 // Arena handle
	tagInt     uint64 = 0x0002000000000000 // 48-bit signed integer
	tagSpecial uint64 = 0x0003000000000000 // undefined, null, true, false
	tagString  uint64 = 0x0004000000000000 // Interned string ID

	// Sign bit for 48-bit integer sign extension
	intSignBit uint64 = 0x0000800000000000

	// Mask for sign extension
	intSignExtend uint64 = 0xFFFF000000000000
)

// Special value payloads
const (
	specialUndefined uint64 = 0
	specialNull      uint64 = 1
	specialTrue      uint64 = 2
	specialFalse     uint64 = 3
)

// Pre-defined special values
const (
	// Undefined is the distinguished "no value" result. Reading a property
	// that was never installed yields Undefined, not an error.
	Undefined Value = Value(nanBits | tagSpecial | specialUndefined)
	Null      Value = Value(nanBits | tagSpecial | specialNull)
	True      Value = Value(nanBits | tagSpecial | specialTrue)
	False     Value = Value(nanBits | tagSpecial | specialFalse)
)

// SmallInt range (48-bit signed)
const (
	MaxSmallInt int64 = (1 << 47) - 1
	MinSmallInt int64 = -(1 << 47)
)

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsFloat returns true if v represents a float64 value.
// A value is a float if it's not one of our tagged NaN values.
// This includes regular numbers, infinities, and "real" NaN values.
func (v Value) IsFloat() bool {
	bits := uint64(v)

	if (bits & 0x7FF0000000000000) != 0x7FF0000000000000 {
		return true
	}

	// Infinity has mantissa == 0 (ignoring sign bit)
	if bits&0x000FFFFFFFFFFFFF == 0 {
		return true
	}

	// Signaling NaN, treat as float
	if (bits & nanBits) != nanBits {
		return true
	}

	// Untagged quiet NaN is a real NaN
	return bits&tagMask == 0
}

// IsSmallInt returns true if v represents a small integer.
func (v Value) IsSmallInt() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagInt)
}

// IsObject returns true if v references a heap object.
func (v Value) IsObject() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagObject)
}

// IsString returns true if v is an interned string.
func (v Value) IsString() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagString)
}

// IsUndefined returns true if v is the "no value" variant.
func (v Value) IsUndefined() bool {
	return v == Undefined
}

// IsNull returns true if v is null.
func (v Value) IsNull() bool {
	return v == Null
}

// IsBool returns true if v is true or false.
func (v Value) IsBool() bool {
	return v == True || v == False
}

// IsSpecial returns true if v is undefined, null, true, or false.
func (v Value) IsSpecial() bool {
	return (uint64(v) & (nanBits | tagMask)) == (nanBits | tagSpecial)
}

// ---------------------------------------------------------------------------
// Float operations
// ---------------------------------------------------------------------------

// Float64 returns v as a float64.
// Panics if v is not a float.
func (v Value) Float64() float64 {
	if !v.IsFloat() {
		panic("Value.Float64: not a float")
	}
	return math.Float64frombits(uint64(v))
}

// FromFloat64 creates a Value from a float64.
func FromFloat64(f float64) Value {
	return Value(math.Float64bits(f))
}

// ---------------------------------------------------------------------------
// SmallInt operations
// ---------------------------------------------------------------------------

// SmallInt returns v as an int64.
// Panics if v is not a small integer.
func (v Value) SmallInt() int64 {
	if !v.IsSmallInt() {
		panic("Value.SmallInt: not a small integer")
	}
	payload := uint64(v) & payloadMask

	if (payload & intSignBit) != 0 {
		payload |= intSignExtend
	}
	return int64(payload)
}

// FromSmallInt creates a Value from an int64.
// Panics if n is outside the SmallInt range.
func FromSmallInt(n int64) Value {
	if n > MaxSmallInt || n < MinSmallInt {
		panic("FromSmallInt: value out of range")
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask))
}

// TryFromSmallInt creates a Value from an int64, returning false if out of range.
func TryFromSmallInt(n int64) (Value, bool) {
	if n > MaxSmallInt || n < MinSmallInt {
		return Undefined, false
	}
	return Value(nanBits | tagInt | (uint64(n) & payloadMask)), true
}

// ---------------------------------------------------------------------------
// Object handle operations
// ---------------------------------------------------------------------------

// Handle returns the arena handle referenced by v.
// Panics if v is not an object.
func (v Value) Handle() Handle {
	if !v.IsObject() {
		panic("Value.Handle: not an object")
	}
	return handleFromBits(uint64(v) & payloadMask)
}

// FromHandle creates an object Value from an arena handle.
func FromHandle(h Handle) Value {
	return Value(nanBits | tagObject | h.bits())
}

// ---------------------------------------------------------------------------
// String operations
// ---------------------------------------------------------------------------

// StringID returns the string table ID encoded in v.
// Panics if v is not a string.
func (v Value) StringID() uint32 {
	if !v.IsString() {
		panic("Value.StringID: not a string")
	}
	return uint32(uint64(v) & payloadMask)
}

// FromStringID creates a Value from a string table ID.
func FromStringID(id uint32) Value {
	return Value(nanBits | tagString | uint64(id))
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// Bool returns v as a bool.
// Panics if v is not true or false.
func (v Value) Bool() bool {
	switch v {
	case True:
		return true
	case False:
		return false
	default:
		panic("Value.Bool: not a boolean")
	}
}

// FromBool creates a Value from a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// ---------------------------------------------------------------------------
// Debugging
// ---------------------------------------------------------------------------

// TypeName returns a short name for the value's variant.
func (v Value) TypeName() string {
	switch {
	case v == Undefined:
		return "Undefined"
	case v == Null:
		return "Null"
	case v.IsBool():
		return "Boolean"
	case v.IsSmallInt():
		return "SmallInt"
	case v.IsObject():
		return "Object"
	case v.IsString():
		return "String"
	case v.IsFloat():
		return "Float"
	default:
		return "?"
	}
}

// String renders v without consulting a heap. Strings and objects print
// their IDs; use Inspector for a heap-aware rendering.
func (v Value) String() string {
	switch {
	case v == Undefined:
		return "undefined"
	case v == Null:
		return "null"
	case v == True:
		return "true"
	case v == False:
		return "false"
	case v.IsSmallInt():
		return fmt.Sprintf("%d", v.SmallInt())
	case v.IsObject():
		return fmt.Sprintf("object#%s", v.Handle())
	case v.IsString():
		return fmt.Sprintf("string#%d", v.StringID())
	case v.IsFloat():
		return fmt.Sprintf("%g", v.Float64())
	default:
		return fmt.Sprintf("Value(%#x)", uint64(v))
	}
}
