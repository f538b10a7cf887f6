// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package strparse provides facilities for parsing strings, intended for use in
// tests and debug input.
package strparse

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Parser splits a string into tokens and consumes them, like
// exectrace.ParseNode does for debug trace nodes.
//
// Tokens are separated by whitespace; in addition every separator rune is a
// token of its own. With the separators `[]=,` the string `[3] FORK 4,5`
// results in tokens `[`, `3`, `]`, `FORK`, `4`, `,`, `5`.
//
// Parser methods panic instead of returning errors. Callers recover the
// panic and convert it to an error.
type Parser struct {
	original  string
	tokens    []string
	lastToken string
}

// MakeParser constructs a Parser for input that splits out every rune in
// separators as a separate token.
func MakeParser(separators string, input string) Parser {
	p := Parser{original: input}
	isSep := func(r rune) bool { return strings.ContainsRune(separators, r) }
	for _, field := range strings.Fields(input) {
		for field != "" {
			n := strings.IndexFunc(field, isSep)
			switch n {
			case -1:
				n = len(field)
			case 0:
				_, n = utf8.DecodeRuneInString(field)
			}
			p.tokens = append(p.tokens, field[:n])
			field = field[n:]
		}
	}
	return p
}

// Done returns true if there are no more tokens.
func (p *Parser) Done() bool {
	return len(p.tokens) == 0
}

// Next consumes and returns the next token, or "" if there are no more
// tokens.
func (p *Parser) Next() string {
	if p.Done() {
		p.lastToken = ""
		return ""
	}
	p.lastToken = p.tokens[0]
	p.tokens = p.tokens[1:]
	return p.lastToken
}

// Remaining consumes the remaining tokens and returns them separated by
// spaces.
func (p *Parser) Remaining() string {
	s := strings.Join(p.tokens, " ")
	p.tokens = nil
	return s
}

// Expect consumes the next tokens, verifying that they exactly match the
// arguments.
func (p *Parser) Expect(tokens ...string) {
	for _, tok := range tokens {
		if res := p.Next(); res != tok {
			p.Errf("expected %q, got %q", tok, res)
		}
	}
}

// Uint32 parses the next token as an uint32.
func (p *Parser) Uint32() uint32 {
	x, err := strconv.ParseUint(p.Next(), 10, 32)
	if err != nil {
		p.Errf("cannot parse number: %v", err)
	}
	return uint32(x)
}

// Hex parses the next token as a "0x"-prefixed hexadecimal byte string. A
// bare "0x" is an empty (non-nil) byte slice.
func (p *Parser) Hex() []byte {
	tok := p.Next()
	if !strings.HasPrefix(tok, "0x") {
		p.Errf("expected 0x-prefixed bytes, got %q", tok)
	}
	b, err := hex.DecodeString(tok[2:])
	if err != nil {
		p.Errf("cannot parse bytes: %v", err)
	}
	if b == nil {
		b = []byte{}
	}
	return b
}

// Word consumes the next token, verifying that it is a non-empty run of
// letters, digits and underscores.
func (p *Parser) Word() string {
	tok := p.Next()
	if tok == "" {
		p.Errf("expected a word")
	}
	for _, r := range tok {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			p.Errf("unexpected %q in word %q", r, tok)
		}
	}
	return tok
}

// Errf panics with an error which includes the original string and the last
// token.
func (p *Parser) Errf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	panic(errors.Errorf("error parsing %q at token %q: %s", p.original, p.lastToken, msg))
}
