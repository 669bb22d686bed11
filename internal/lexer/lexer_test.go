package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/uscript/internal/diag"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizePunctuation(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize("(){}[],;:@$|^?.", "t.mu", bag)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []Kind{
		LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET,
		COMMA, SEMI, COLON, AT, DOLLAR, PIPE, CARET, QUESTION, DOT, EOF,
	}, kinds(toks))
}

func TestTokenizeArrowsVsBangAndEquals(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize("-> => = !", "t.mu", bag)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []Kind{ARROW, FARROW, EQUALS, BANG, EOF}, kinds(toks))
}

func TestTokenizeIdentBoolUnderscore(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize("foo t f _ bar_2", "t.mu", bag)
	require.False(t, bag.HasErrors())
	require.Len(t, toks, 6)
	assert.Equal(t, IDENT, toks[0].Kind)
	assert.Equal(t, BOOL, toks[1].Kind)
	assert.Equal(t, BOOL, toks[2].Kind)
	assert.Equal(t, USCORE, toks[3].Kind)
	assert.Equal(t, IDENT, toks[4].Kind)
	assert.Equal(t, "bar_2", toks[4].Literal)
}

func TestTokenizeIntLiteral(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize("0 42 7", "t.mu", bag)
	require.False(t, bag.HasErrors())
	require.Len(t, toks, 4)
	for i, want := range []string{"0", "42", "7"} {
		assert.Equal(t, INT, toks[i].Kind)
		assert.Equal(t, want, toks[i].Literal)
	}
}

func TestLeadingZeroIsIllegal(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize("007", "t.mu", bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, ILLEGAL, toks[0].Kind)
	assert.Equal(t, diag.E1001, bag.Items()[0].Code)
}

func TestSymRef(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize("#3", "t.mu", bag)
	require.False(t, bag.HasErrors())
	assert.Equal(t, SYMREF, toks[0].Kind)
	assert.Equal(t, "3", toks[0].Literal)
}

func TestSymRefWithoutDigitsIsIllegal(t *testing.T) {
	bag := diag.NewBag()
	Tokenize("# x", "t.mu", bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.E1001, bag.Items()[0].Code)
}

func TestStringEscapes(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize(`"a\nb\tc\\d\"e"`, "t.mu", bag)
	require.False(t, bag.HasErrors())
	require.Len(t, toks, 2)
	assert.Equal(t, STRING, toks[0].Kind)
	assert.Equal(t, "a\nb\tc\\d\"e", toks[0].Literal)
}

func TestUnterminatedStringReportsE1002(t *testing.T) {
	bag := diag.NewBag()
	Tokenize(`"abc`, "t.mu", bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.E1002, bag.Items()[0].Code)
}

func TestRawNewlineInStringReportsE1005(t *testing.T) {
	bag := diag.NewBag()
	Tokenize("\"abc\ndef\"", "t.mu", bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.E1005, bag.Items()[0].Code)
}

func TestInvalidEscapeReportsE1003ButContinues(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize(`"a\qb"`, "t.mu", bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.E1003, bag.Items()[0].Code)
	// lexing continues past the bad escape rather than aborting the token
	require.Len(t, toks, 2)
	assert.Equal(t, STRING, toks[0].Kind)
}

func TestLineCommentIsSkipped(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize("1 // trailing comment\n2", "t.mu", bag)
	require.False(t, bag.HasErrors())
	require.Len(t, toks, 3)
	assert.Equal(t, "1", toks[0].Literal)
	assert.Equal(t, "2", toks[1].Literal)
}

func TestUnterminatedBlockCommentReportsE1004(t *testing.T) {
	bag := diag.NewBag()
	Tokenize("/* never closed", "t.mu", bag)
	require.True(t, bag.HasErrors())
	assert.Equal(t, diag.E1004, bag.Items()[0].Code)
}

func TestResyncAfterMalformedTokenKeepsLexing(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize("- 1", "t.mu", bag)
	require.True(t, bag.HasErrors())
	require.Len(t, toks, 3)
	assert.Equal(t, ILLEGAL, toks[0].Kind)
	assert.Equal(t, INT, toks[1].Kind)
}

func TestSpanTracksLineAndColumn(t *testing.T) {
	bag := diag.NewBag()
	toks := Tokenize("ab\ncd", "t.mu", bag)
	require.False(t, bag.HasErrors())
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Span.StartLine)
	assert.Equal(t, 2, toks[1].Span.StartLine)
}
