package quote

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueNil(t *testing.T) {
	s, err := Value(nil, MySQL)
	require.NoError(t, err)
	require.Equal(t, "null", s)
}

func TestValueBool(t *testing.T) {
	s, err := Value(true, MySQL)
	require.NoError(t, err)
	require.Equal(t, "1", s)

	s, err = Value(false, MySQL)
	require.NoError(t, err)
	require.Equal(t, "0", s)
}

func TestValueString(t *testing.T) {
	s, err := Value("it's", MySQL)
	require.NoError(t, err)
	require.Equal(t, `'it\'s'`, s)
}

func TestValueKeyword(t *testing.T) {
	s, err := Value(Null, MySQL)
	require.NoError(t, err)
	require.Equal(t, "null", s)

	s, err = Value(Default, MySQL)
	require.NoError(t, err)
	require.Equal(t, "default", s)
}

func TestValueEmptySequenceIsNull(t *testing.T) {
	s, err := Value([]any{}, MySQL)
	require.NoError(t, err)
	require.Equal(t, "null", s)
}

func TestValueSequenceJoins(t *testing.T) {
	s, err := Value([]any{1, 2, 3}, MySQL)
	require.NoError(t, err)
	require.Equal(t, "1,2,3", s)
}

func TestValueUnsupportedType(t *testing.T) {
	_, err := Value(struct{ X int }{1}, MySQL)
	require.Error(t, err)
}

func TestIdentifierReservedWordIsQuoted(t *testing.T) {
	require.Equal(t, "`Order`", Identifier("Order", MySQL))
}

func TestIdentifierNonReservedPassesThrough(t *testing.T) {
	require.Equal(t, "col", Identifier("col", MySQL))
}

func TestIdentifierAlreadyBackquoted(t *testing.T) {
	require.Equal(t, "`weird name`", Identifier("`weird name`", MySQL))
}

func TestIdentifierSplitsOnDot(t *testing.T) {
	require.Equal(t, "`Order`.col", Identifier("Order.col", MySQL))
}
