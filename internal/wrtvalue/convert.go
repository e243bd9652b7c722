package wrtvalue

import (
	"math"

	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// TruncF32ToS32 implements i32.trunc_f32_s: trapping float-to-int
// conversion, per spec §4.3/§4.5 ("non-representable float-to-int
// conversions trap").
func TruncF32ToS32(v float32) (int32, error) {
	if math.IsNaN(float64(v)) {
		return 0, wrterror.Trap(wrterror.CodeInvalidConversionToInteger, "trunc of NaN")
	}
	if v < math.MinInt32 || v >= math.MaxInt32+1 {
		return 0, wrterror.Trap(wrterror.CodeInvalidConversionToInteger, "trunc out of i32 range")
	}
	return int32(v), nil
}

// TruncSatF32ToS32 implements i32.trunc_sat_f32_s: saturating conversion,
// never traps — NaN saturates to 0, out-of-range saturates to the nearest
// representable bound.
func TruncSatF32ToS32(v float32) int32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	if v >= math.MaxInt32+1 {
		return math.MaxInt32
	}
	return int32(v)
}

// TruncF64ToS64 implements i64.trunc_f64_s.
func TruncF64ToS64(v float64) (int64, error) {
	if math.IsNaN(v) {
		return 0, wrterror.Trap(wrterror.CodeInvalidConversionToInteger, "trunc of NaN")
	}
	if v < math.MinInt64 || v >= math.MaxInt64 {
		return 0, wrterror.Trap(wrterror.CodeInvalidConversionToInteger, "trunc out of i64 range")
	}
	return int64(v), nil
}

// TruncSatF64ToS64 implements i64.trunc_sat_f64_s.
func TruncSatF64ToS64(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < math.MinInt64 {
		return math.MinInt64
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// TruncF64ToU32 implements i32.trunc_f64_u.
func TruncF64ToU32(v float64) (uint32, error) {
	if math.IsNaN(v) {
		return 0, wrterror.Trap(wrterror.CodeInvalidConversionToInteger, "trunc of NaN")
	}
	if v < 0 || v >= math.MaxUint32+1 {
		return 0, wrterror.Trap(wrterror.CodeInvalidConversionToInteger, "trunc out of u32 range")
	}
	return uint32(v), nil
}

// TruncSatF64ToU32 implements i32.trunc_sat_f64_u.
func TruncSatF64ToU32(v float64) uint32 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= math.MaxUint32+1 {
		return math.MaxUint32
	}
	return uint32(v)
}

// DivS32 implements i32.div_s, trapping on division by zero and on the
// INT_MIN / -1 overflow case per spec §4.5.
func DivS32(a, b int32) (int32, error) {
	if b == 0 {
		return 0, wrterror.Trap(wrterror.CodeIntegerDivideByZero, "i32 division by zero")
	}
	if a == math.MinInt32 && b == -1 {
		return 0, wrterror.Trap(wrterror.CodeIntegerOverflow, "i32 division overflow")
	}
	return a / b, nil
}

// DivS64 implements i64.div_s.
func DivS64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, wrterror.Trap(wrterror.CodeIntegerDivideByZero, "i64 division by zero")
	}
	if a == math.MinInt64 && b == -1 {
		return 0, wrterror.Trap(wrterror.CodeIntegerOverflow, "i64 division overflow")
	}
	return a / b, nil
}

// RemS32 implements i32.rem_s: traps only on divide by zero; the INT_MIN/-1
// case is well-defined (remainder 0) and does not overflow.
func RemS32(a, b int32) (int32, error) {
	if b == 0 {
		return 0, wrterror.Trap(wrterror.CodeIntegerDivideByZero, "i32 remainder by zero")
	}
	if a == math.MinInt32 && b == -1 {
		return 0, nil
	}
	return a % b, nil
}
