package bytecode

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/uscript/internal/diag"
)

func pushIntCode(v int64) []byte {
	code := []byte{byte(PushInt)}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	code = append(code, buf[:]...)
	code = append(code, byte(Return))
	return code
}

func simpleProgram() *Program {
	return &Program{
		Strings: []string{"hi"},
		Funcs: []FuncEntry{
			{Arity: 0, Captures: 0, Code: pushIntCode(42)},
		},
		EntryFn: 0,
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := simpleProgram()
	encoded := Encode(p)
	got, err := Decode(encoded, 0)
	require.NoError(t, err)
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("decoded program does not match original (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := []byte("XXXX")
	_, err := Decode(data, 0)
	require.Error(t, err)
	derr, ok := err.(*DecodeError)
	require.True(t, ok)
	assert.Equal(t, diag.E4101, derr.Code)
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	_, err := Decode([]byte("MU"), 0)
	require.Error(t, err)
	derr, ok := err.(*DecodeError)
	require.True(t, ok)
	assert.Equal(t, diag.E4101, derr.Code)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	encoded := Encode(simpleProgram())
	encoded = append(encoded, 0xFF)
	_, err := Decode(encoded, 0)
	require.Error(t, err)
	assert.Equal(t, diag.E4109, err.(*DecodeError).Code)
}

func TestDecodeRejectsOutOfRangeEntryFn(t *testing.T) {
	p := simpleProgram()
	p.EntryFn = 5
	encoded := Encode(p)
	_, err := Decode(encoded, 0)
	require.Error(t, err)
	assert.Equal(t, diag.E4106, err.(*DecodeError).Code)
}

func TestDecodeRejectsUnknownOpcode(t *testing.T) {
	p := simpleProgram()
	p.Funcs[0].Code = []byte{0xEE}
	encoded := Encode(p)
	_, err := Decode(encoded, 0)
	require.Error(t, err)
	assert.Equal(t, diag.E4104, err.(*DecodeError).Code)
}

func TestDecodeRejectsOutOfRangeStringIndex(t *testing.T) {
	p := simpleProgram()
	code := []byte{byte(PushString)}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], 99)
	code = append(code, buf[:]...)
	code = append(code, byte(Return))
	p.Funcs[0].Code = code
	encoded := Encode(p)
	_, err := Decode(encoded, 0)
	require.Error(t, err)
	assert.Equal(t, diag.E4105, err.(*DecodeError).Code)
}

func TestDecodeRejectsUnknownBuiltinID(t *testing.T) {
	p := simpleProgram()
	code := []byte{byte(CallBuiltin), 5, 0, byte(Return)}
	p.Funcs[0].Code = code
	encoded := Encode(p)
	_, err := Decode(encoded, 3)
	require.Error(t, err)
	assert.Equal(t, diag.E4108, err.(*DecodeError).Code)
}

func TestDecodeAcceptsKnownBuiltinID(t *testing.T) {
	p := simpleProgram()
	code := []byte{byte(CallBuiltin), 2, 0, byte(Return)}
	p.Funcs[0].Code = code
	encoded := Encode(p)
	_, err := Decode(encoded, 3)
	require.NoError(t, err)
}

func TestOperandWidthsUnknownOpcodeReturnsFalse(t *testing.T) {
	_, ok := OperandWidths(Op(200))
	assert.False(t, ok)
}

func TestOpStringFallsBackToNumericForUnknown(t *testing.T) {
	assert.Equal(t, "OP(200)", Op(200).String())
	assert.Equal(t, "PUSH_INT", PushInt.String())
}
