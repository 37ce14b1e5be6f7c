package keyvalues

// Build constructs a tree from a token sequence. Nested blocks are built by
// recursing over index ranges of the same slice; nothing is copied. The first
// error aborts the build and is returned unchanged, whatever its depth.
func Build(tokens []Token) (*KeyValues, error) {
	b := &builder{tokens: tokens}
	return b.block(0, b.terminalIndex())
}

// BuildSequence constructs one tree per anonymous top-level block, the
// layout of a BSP entity lump: { k v ... } { k v ... }
func BuildSequence(tokens []Token) ([]*KeyValues, error) {
	b := &builder{tokens: tokens}
	end := b.terminalIndex()

	var blocks []*KeyValues
	for i := 0; i < end; {
		t := b.tokens[i]
		if t.Kind != LeftBrace {
			return nil, newError(UnexpectedToken, t)
		}

		closing, ok := b.matchingBrace(i+1, end)
		if !ok {
			return nil, newError(NoMatchingRightBrace, t)
		}

		kv, err := b.block(i+1, closing)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, kv)
		i = closing + 1
	}

	return blocks, nil
}

type builder struct {
	tokens []Token
}

// block builds the pairs in tokens[start:end]. tokens[end] is the token that
// terminates the level: the matching right brace of a subkey block, or the
// EndOfInput of the document.
func (b *builder) block(start, end int) (*KeyValues, error) {
	kv := New()

	for i := start; i < end; {
		key := b.tokens[i]
		if key.Kind != StringLiteral {
			return nil, newError(UnexpectedToken, key)
		}
		i++

		next := b.at(i, end)
		switch next.Kind {
		case StringLiteral:
			kv.AddValue(key.Text, next.Text)
			i++

		case LeftBrace:
			closing, ok := b.matchingBrace(i+1, end)
			if !ok {
				return nil, newError(NoMatchingRightBrace, next)
			}

			child, err := b.block(i+1, closing)
			if err != nil {
				return nil, err
			}
			kv.setSubkey(key.Text, child)
			i = closing + 1

		case RightBrace:
			return nil, newError(UnexpectedToken, next)

		default:
			return nil, newError(UnexpectedEOF, next)
		}
	}

	return kv, nil
}

// matchingBrace scans tokens[from:end] for the right brace closing a block
// whose left brace sits just before from
func (b *builder) matchingBrace(from, end int) (int, bool) {
	depth := 0
	for i := from; i < end; i++ {
		switch b.tokens[i].Kind {
		case LeftBrace:
			depth++
		case RightBrace:
			if depth == 0 {
				return i, true
			}
			depth--
		}
	}
	return 0, false
}

// at returns tokens[i] inside the level, or the level's terminal token
func (b *builder) at(i, end int) Token {
	if i < end {
		return b.tokens[i]
	}
	return b.terminal(end)
}

func (b *builder) terminal(end int) Token {
	if end < len(b.tokens) {
		return b.tokens[end]
	}

	// hand-built sequences may omit EndOfInput
	if n := len(b.tokens); n > 0 {
		last := b.tokens[n-1]
		return Token{Kind: EndOfInput, Line: last.Line, Column: last.Column}
	}
	return Token{Kind: EndOfInput, Line: 1, Column: 1}
}

// terminalIndex is the index of the first EndOfInput token, or len(tokens)
func (b *builder) terminalIndex() int {
	for i, t := range b.tokens {
		if t.Kind == EndOfInput {
			return i
		}
	}
	return len(b.tokens)
}
