package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumber_Coercions(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want float64
	}{
		{"undefined", Undef(), math.NaN()},
		{"null", Null_(), 0},
		{"true", Bool(true), 1},
		{"false", Bool(false), 0},
		{"emptyString", Str(""), 0},
		{"whitespaceString", Str("   "), 0},
		{"numericString", Str("  42  "), 42},
		{"hexString", Str("0x1A"), 26},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ToNumber(c.v)
			require.NoError(t, err)
			if math.IsNaN(c.want) {
				assert.True(t, math.IsNaN(got))
				return
			}
			assert.Equal(t, c.want, got)
		})
	}
}

func TestToInt32_WrapsModulo2To32(t *testing.T) {
	got, err := ToInt32(Num(4294967296 + 5))
	require.NoError(t, err)
	assert.Equal(t, int32(5), got)
}

func TestToUint32_NegativeWraps(t *testing.T) {
	got, err := ToUint32(Num(-1))
	require.NoError(t, err)
	assert.Equal(t, uint32(4294967295), got)
}

func TestToLength_ClampsNegativeToZero(t *testing.T) {
	got, err := ToLength(Num(-5))
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func TestToLength_ClampsAboveMaxSafeInteger(t *testing.T) {
	got, err := ToLength(Num(1e300))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<53-1), got)
}

func TestToPropertyKey_NumberBecomesString(t *testing.T) {
	got, err := ToPropertyKey(Num(42))
	require.NoError(t, err)
	assert.True(t, got.IsString())
	assert.Equal(t, "42", got.AsString())
}

func TestToString_RejectsBigInt(t *testing.T) {
	big := BigIntRef("opaque-bigint-cell")
	_, err := ToString(big)
	assert.Error(t, err)
	assert.Equal(t, "TypeError", ScriptErrorKind(err))
}

func TestToNumber_RejectsBigInt(t *testing.T) {
	big := BigIntRef("opaque-bigint-cell")
	_, err := ToNumber(big)
	assert.Error(t, err)
}
