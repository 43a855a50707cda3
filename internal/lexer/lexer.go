// Package lexer implements the scanner (lexical analyzer) of spec §4.1: a
// deterministic finite-state machine that turns a byte stream into a stream
// of internal/token.Token values, or reports the first lexical error it
// finds.
//
// State naming and transition shape are ported from the original compiler's
// lexer.c (states START, ID-OR-KEY, STRING, ESC-SEQ, HEX-NUM, ZERO,
// INTEGER, FLOAT, EXPONENT*, FWD-SLASH, COMMENT, Q-MARK, bracket/MULTI-OP
// handling, IMPORT). The reader itself is adapted from the teacher's
// preference for io.Reader-based streaming plus upfront UTF-8 BOM handling
// (golang.org/x/text/encoding/unicode), since the scanner here consumes
// arbitrary files rather than a fixed in-memory tunascript string.
package lexer

import (
	"bufio"
	"fmt"
	"io"

	xunicode "golang.org/x/text/encoding/unicode"

	"github.com/ifj24/ifjc/internal/ifjerr"
	"github.com/ifj24/ifjc/internal/token"
)

type state int

const (
	stateStart state = iota
	stateIDOrKey
	stateString
	stateEscSeq
	stateHexNum
	stateZero
	stateInteger
	stateFloat
	stateExponent
	stateExponentSign
	stateExponentDigits
	stateFwdSlash
	stateComment
	stateQMark
	stateLSqBracket
	stateRSqBracket
	stateMultiOp
	stateImport
	stateUnderscore
)

// asciiSingle maps a byte to the Token Kind it produces deterministically,
// when it is not part of any multi-character construct. This is the Go
// analogue of the original compiler's ascii_lookup table.
var asciiSingle = map[byte]token.Kind{
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'.': token.Dot,
	',': token.Comma,
	':': token.Colon,
	';': token.Semicolon,
	'|': token.Pipe,
}

// Lexer is a deterministic finite-state scanner over a byte stream. Tokens
// are produced on demand by Next; the Lexer holds no buffered lookahead
// beyond the single pushed-back byte needed by the MULTI-OP and ID-OR-KEY
// transitions.
type Lexer struct {
	r        *bufio.Reader
	line     int
	col      int
	pending  []byte // pushed-back byte(s), consumed before r
	eofSeen  bool
	lineText string // current physical line, for diagnostics
	ch       *ifjerr.Channel
	hexDigits []byte // accumulator for the HEX-NUM state
}

// New wraps r in a Lexer. BOM bytes, if present, are stripped via
// golang.org/x/text/encoding/unicode's BOM-aware UTF-8 decoder before
// scanning begins, so a source file saved with a leading BOM by an editor
// does not confuse the START state's character classification.
func New(r io.Reader, ch *ifjerr.Channel) *Lexer {
	bomAware := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
	cleaned := bomAware.Reader(r)
	return &Lexer{
		r:    bufio.NewReader(cleaned),
		line: 1,
		col:  0,
		ch:   ch,
	}
}

func (l *Lexer) readByte() (byte, bool) {
	if len(l.pending) > 0 {
		b := l.pending[len(l.pending)-1]
		l.pending = l.pending[:len(l.pending)-1]
		l.advancePos(b)
		return b, true
	}
	b, err := l.r.ReadByte()
	if err != nil {
		l.eofSeen = true
		return 0, false
	}
	l.advancePos(b)
	return b, true
}

func (l *Lexer) advancePos(b byte) {
	if b == '\n' {
		l.line++
		l.col = 0
		l.lineText = ""
	} else {
		l.col++
		l.lineText += string(b)
	}
}

func (l *Lexer) unread(b byte) {
	l.pending = append(l.pending, b)
	if b == '\n' {
		l.line--
	} else {
		l.col--
	}
}

func (l *Lexer) lexErr(format string, a ...any) {
	l.ch.Set(ifjerr.Newf(ifjerr.Lexical, format, a...).At(l.line, l.col, l.lineText))
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
func isAlnum(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Next returns the next token in the stream. Once EOF has been reached it
// continues to return an EOF token on every subsequent call. On a lexical
// error it sets ch to ifjerr.Lexical and returns a zero Token; callers must
// check ch.Failed() after every call.
func (l *Lexer) Next() token.Token {
	if l.ch.Failed() {
		return token.Token{Kind: token.EOF}
	}

	st := stateStart
	var lexeme []byte
	startLine, startCol := l.line, l.col+1

	emit := func(k token.Kind) token.Token {
		return token.Token{Kind: k, Lexeme: string(lexeme), Line: startLine, Col: startCol}
	}

	for {
		b, ok := l.readByte()
		if !ok {
			return l.finishAtEOF(st, lexeme, startLine, startCol)
		}

		switch st {
		case stateStart:
			startLine, startCol = l.line, l.col
			switch {
			case b == ' ' || b == '\t' || b == '\n' || b == '\r':
				continue
			case b == '/':
				st = stateFwdSlash
			case b == '"':
				st = stateString
				lexeme = nil
			case b == '0':
				st = stateZero
				lexeme = append(lexeme, b)
			case b == '?':
				return token.Token{Kind: token.Question, Line: startLine, Col: startCol}
			case b == '[':
				st = stateLSqBracket
			case b == '<' || b == '>' || b == '!' || b == '=':
				st = stateMultiOp
				lexeme = append(lexeme, b)
			case b == '@':
				st = stateImport
				lexeme = nil
			case b == '_':
				st = stateUnderscore
				lexeme = append(lexeme, b)
			case isAlpha(b):
				st = stateIDOrKey
				lexeme = append(lexeme, b)
			case b >= '1' && b <= '9':
				st = stateInteger
				lexeme = append(lexeme, b)
			default:
				if k, ok := asciiSingle[b]; ok {
					return token.Token{Kind: k, Lexeme: string(b), Line: startLine, Col: startCol}
				}
				l.lexErr("unexpected character %q", rune(b))
				return token.Token{}
			}

		case stateIDOrKey:
			if isAlnum(b) || b == '_' {
				lexeme = append(lexeme, b)
				continue
			}
			l.unread(b)
			name := string(lexeme)
			if kw, ok := token.LookupKeyword(name); ok {
				return token.Token{Kind: kw, Lexeme: name, Line: startLine, Col: startCol}
			}
			return emit(token.Identifier)

		case stateUnderscore:
			if b == '_' {
				lexeme = append(lexeme, b)
				continue
			}
			if isAlnum(b) {
				lexeme = append(lexeme, b)
				st = stateIDOrKey
				continue
			}
			l.unread(b)
			return emit(token.Identifier)

		case stateZero:
			if b == '.' {
				lexeme = append(lexeme, b)
				st = stateFloat
				continue
			}
			if isDigit(b) {
				// leading zero followed by another digit is not a valid
				// integer literal per spec grammar 0 | [1-9][0-9]*
				l.lexErr("integer literal may not have a leading zero")
				return token.Token{}
			}
			l.unread(b)
			return emit(token.IntLit)

		case stateInteger:
			if isDigit(b) {
				lexeme = append(lexeme, b)
				continue
			}
			if b == '.' {
				lexeme = append(lexeme, b)
				st = stateFloat
				continue
			}
			if b == 'e' || b == 'E' {
				lexeme = append(lexeme, b)
				st = stateExponent
				continue
			}
			l.unread(b)
			return emit(token.IntLit)

		case stateFloat:
			if isDigit(b) {
				lexeme = append(lexeme, b)
				continue
			}
			if b == 'e' || b == 'E' {
				lexeme = append(lexeme, b)
				st = stateExponent
				continue
			}
			l.unread(b)
			return emit(token.FloatLit)

		case stateExponent:
			if b == '+' || b == '-' {
				lexeme = append(lexeme, b)
				st = stateExponentSign
				continue
			}
			if isDigit(b) {
				lexeme = append(lexeme, b)
				st = stateExponentDigits
				continue
			}
			l.lexErr("malformed exponent in numeric literal")
			return token.Token{}

		case stateExponentSign:
			if isDigit(b) {
				lexeme = append(lexeme, b)
				st = stateExponentDigits
				continue
			}
			l.lexErr("exponent sign must be followed by at least one digit")
			return token.Token{}

		case stateExponentDigits:
			if isDigit(b) {
				lexeme = append(lexeme, b)
				continue
			}
			l.unread(b)
			return emit(token.FloatLit)

		case stateString:
			switch b {
			case '"':
				return emit(token.StringLit)
			case '\\':
				st = stateEscSeq
			case '\n':
				l.lexErr("newline is not allowed inside a string literal")
				return token.Token{}
			default:
				lexeme = append(lexeme, b)
			}

		case stateEscSeq:
			switch b {
			case 'n':
				lexeme = append(lexeme, '\n')
				st = stateString
			case 't':
				lexeme = append(lexeme, '\t')
				st = stateString
			case 'r':
				lexeme = append(lexeme, '\r')
				st = stateString
			case '"':
				lexeme = append(lexeme, '"')
				st = stateString
			case '\\':
				lexeme = append(lexeme, '\\')
				st = stateString
			case 'x':
				st = stateHexNum
				l.hexDigits = nil
			default:
				l.lexErr("unrecognized escape sequence '\\%c'", b)
				return token.Token{}
			}

		case stateHexNum:
			if isHex(b) && len(l.hexDigits) < 2 {
				l.hexDigits = append(l.hexDigits, b)
				if len(l.hexDigits) == 2 {
					var v int
					fmt.Sscanf(string(l.hexDigits), "%x", &v)
					lexeme = append(lexeme, byte(v))
					st = stateString
				}
				continue
			}
			l.lexErr("\\x escape requires exactly two hex digits")
			return token.Token{}

		case stateFwdSlash:
			if b == '/' {
				st = stateComment
				continue
			}
			l.unread(b)
			return token.Token{Kind: token.OpSlash, Lexeme: "/", Line: startLine, Col: startCol}

		case stateComment:
			if b == '\n' {
				st = stateStart
			}
			continue

		case stateQMark:
			// unreachable: '?' is emitted directly from stateStart.

		case stateLSqBracket:
			if b == ']' {
				return token.Token{Kind: token.LBracket, Lexeme: "[]", Line: startLine, Col: startCol}
			}
			l.lexErr("expected ']' to close '[' (only the slice-type marker '[]' is supported)")
			return token.Token{}

		case stateMultiOp:
			first := lexeme[0]
			if b == '=' {
				switch first {
				case '<':
					return token.Token{Kind: token.OpLessEq, Lexeme: "<=", Line: startLine, Col: startCol}
				case '>':
					return token.Token{Kind: token.OpGreaterEq, Lexeme: ">=", Line: startLine, Col: startCol}
				case '!':
					return token.Token{Kind: token.OpNotEq, Lexeme: "!=", Line: startLine, Col: startCol}
				case '=':
					return token.Token{Kind: token.OpEq, Lexeme: "==", Line: startLine, Col: startCol}
				}
			}
			l.unread(b)
			switch first {
			case '<':
				return token.Token{Kind: token.OpLess, Lexeme: "<", Line: startLine, Col: startCol}
			case '>':
				return token.Token{Kind: token.OpGreater, Lexeme: ">", Line: startLine, Col: startCol}
			case '=':
				return token.Token{Kind: token.OpAssign, Lexeme: "=", Line: startLine, Col: startCol}
			case '!':
				l.lexErr("'!' is only valid as part of '!='")
				return token.Token{}
			}

		case stateImport:
			lexeme = append(lexeme, b)
			if len(lexeme) == 6 {
				if string(lexeme) != "import" {
					l.lexErr("expected '@import', got '@%s'", string(lexeme))
					return token.Token{}
				}
				return token.Token{Kind: token.Import, Lexeme: "@import", Line: startLine, Col: startCol}
			}
		}
	}
}

// finishAtEOF handles a read hitting end-of-stream while mid-token: some
// states have a valid token to emit at EOF (e.g. an integer literal that is
// the very last thing in the file), others are an error (unterminated
// string, dangling escape, etc.), and the START state simply means "no more
// tokens", which Next represents as a Kind EOF token on this and every
// subsequent call.
func (l *Lexer) finishAtEOF(st state, lexeme []byte, line, col int) token.Token {
	switch st {
	case stateStart, stateComment:
		return token.Token{Kind: token.EOF, Line: l.line, Col: l.col}
	case stateIDOrKey, stateUnderscore:
		name := string(lexeme)
		if kw, ok := token.LookupKeyword(name); ok {
			return token.Token{Kind: kw, Lexeme: name, Line: line, Col: col}
		}
		return token.Token{Kind: token.Identifier, Lexeme: name, Line: line, Col: col}
	case stateZero:
		return token.Token{Kind: token.IntLit, Lexeme: string(lexeme), Line: line, Col: col}
	case stateInteger:
		return token.Token{Kind: token.IntLit, Lexeme: string(lexeme), Line: line, Col: col}
	case stateFloat, stateExponentDigits:
		return token.Token{Kind: token.FloatLit, Lexeme: string(lexeme), Line: line, Col: col}
	case stateFwdSlash:
		return token.Token{Kind: token.OpSlash, Lexeme: "/", Line: line, Col: col}
	case stateMultiOp:
		first := lexeme[0]
		switch first {
		case '<':
			return token.Token{Kind: token.OpLess, Lexeme: "<", Line: line, Col: col}
		case '>':
			return token.Token{Kind: token.OpGreater, Lexeme: ">", Line: line, Col: col}
		case '=':
			return token.Token{Kind: token.OpAssign, Lexeme: "=", Line: line, Col: col}
		}
		l.lexErr("unexpected end of input after '%c'", first)
		return token.Token{}
	default:
		l.lexErr("unexpected end of input")
		return token.Token{}
	}
}

