// Copyright 2025 Lumenframe Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package token

import (
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/lumenframe/cliplens/core"
)

const (
	// DefaultEncoding is the reference tokenizer encoding.
	DefaultEncoding = "cl100k_base"

	// CharsPerToken is the character-ratio estimate used when the tokenizer
	// is unavailable.
	CharsPerToken = 4
)

// Budgeter counts tokens and truncates text to a token budget.
// It is safe for concurrent use; the encoding is initialized once on first use.
type Budgeter struct {
	encodingName string
	logger       *slog.Logger

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// Option configures a Budgeter.
type Option func(*Budgeter)

// WithEncoding sets the tiktoken encoding name.
// Default is DefaultEncoding.
func WithEncoding(name string) Option {
	return func(b *Budgeter) {
		if name != "" {
			b.encodingName = name
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Budgeter) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// NewBudgeter creates a budgeter for the reference encoding.
func NewBudgeter(opts ...Option) *Budgeter {
	b := &Budgeter{
		encodingName: DefaultEncoding,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// encoding returns the tiktoken encoding, or nil if it could not be loaded.
// The load is attempted once; a nil result switches all operations to the
// character-ratio fallback.
func (b *Budgeter) encoding() *tiktoken.Tiktoken {
	b.once.Do(func() {
		enc, err := tiktoken.GetEncoding(b.encodingName)
		if err != nil {
			b.logger.Warn("tokenizer unavailable, using character estimate",
				"encoding", b.encodingName, "err", err)
			return
		}
		b.enc = enc
	})
	return b.enc
}

// Count returns the deterministic token count of text.
// On tokenizer failure it falls back to len(text)/CharsPerToken; it never fails.
func (b *Budgeter) Count(text string) int {
	if text == "" {
		return 0
	}
	enc := b.encoding()
	if enc == nil {
		return len(text) / CharsPerToken
	}
	return len(enc.Encode(text, nil, nil))
}

// Truncate cuts text to at most maxTokens tokens and reports how.
//
// If the text already fits, it is returned unchanged with TruncationNone.
// Otherwise the first maxTokens tokens are kept (TruncationFirstNTokens).
// When the tokenizer is unavailable the cut is maxTokens*CharsPerToken bytes,
// clamped back to a rune boundary (TruncationCharEstimate).
func (b *Budgeter) Truncate(text string, maxTokens int) (string, core.TruncationMethod) {
	if maxTokens < 0 {
		maxTokens = 0
	}

	enc := b.encoding()
	if enc == nil {
		maxChars := maxTokens * CharsPerToken
		if len(text) <= maxChars {
			return text, core.TruncationNone
		}
		for maxChars > 0 && !utf8.RuneStart(text[maxChars]) {
			maxChars--
		}
		return text[:maxChars], core.TruncationCharEstimate
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, core.TruncationNone
	}
	return enc.Decode(tokens[:maxTokens]), core.TruncationFirstNTokens
}
