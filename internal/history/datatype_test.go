package history

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeCheck(t *testing.T) {

	accepted := map[DataType][]any{
		Number:  {float64(1.5), float32(2), int(-3), int64(8306623063), uint8(255)},
		String:  {"", "hello"},
		Integer: {big.NewInt(0), new(big.Int).Lsh(big.NewInt(1), 100)},
		Boolean: {true, false},
		Opaque:  {Symbol("token"), Symbol("")},
		Object:  {map[string]int{"a": 1}, struct{ X int }{1}, []int{1, 2}, &struct{}{}},
	}

	rejected := map[DataType][]any{
		Number:  {"1.5", true, big.NewInt(1), Symbol("s"), map[string]int{}},
		String:  {1.5, Symbol("not a plain string"), nil},
		Integer: {int64(1), 1.0, (*big.Int)(nil), "1"},
		Boolean: {0, 1, "true", nil},
		Opaque:  {"plain string", 1, struct{}{}},
		Object:  {nil, 1.0, "s", true, big.NewInt(1), Symbol("s"), (*struct{})(nil), map[string]int(nil)},
	}

	for dataType, values := range accepted {
		for _, v := range values {
			t.Run(string(dataType)+" accepts", func(t *testing.T) {
				b, err := New[any](2, dataType)
				require.NoError(t, err)
				got, err := b.Commit(v)
				assert.NoError(t, err)
				assert.Equal(t, v, got)
			})
		}
	}

	for dataType, values := range rejected {
		for _, v := range values {
			t.Run(string(dataType)+" rejects", func(t *testing.T) {
				b, err := New[any](2, dataType)
				require.NoError(t, err)
				_, err = b.Commit(v)
				assert.ErrorIs(t, err, ErrTypeMismatch)
			})
		}
	}
}

func TestParseDataType(t *testing.T) {

	t.Run("accepts the six recognized tags", func(t *testing.T) {
		for _, s := range []string{"number", "string", "integer", "boolean", "opaque", "object"} {
			dataType, err := ParseDataType(s)
			assert.NoError(t, err)
			assert.Equal(t, s, dataType.String())
			assert.True(t, dataType.Valid())
		}
	})

	t.Run("rejects anything else", func(t *testing.T) {
		for _, s := range []string{"", "Number", "float", "bigint"} {
			_, err := ParseDataType(s)
			assert.ErrorIs(t, err, ErrInvalidDataType)
		}
	})
}
