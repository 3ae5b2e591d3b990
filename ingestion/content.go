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


package ingestion

import (
	"strings"

	"github.com/lumenframe/cliplens/core"
	"github.com/lumenframe/cliplens/token"
)

const (
	// TokenBudget is the per-channel embedding content limit. It matches the
	// ceiling the store enforces on records.
	TokenBudget = core.MaxTokenBudget

	// TranscriptBuffer is the minimum headroom that must remain after the
	// summary block before any transcript text is admitted.
	TranscriptBuffer = 100

	// MaxEntities caps the entities included in the summary channel.
	MaxEntities = 10

	// MaxActivities caps the activities included in the summary channel.
	MaxActivities = 5
)

// ContentSignals are the clip analysis fields the preparer draws from.
type ContentSignals struct {
	Summary    string
	Transcript string
	Keywords   []string
	Entities   []string
	Activities []string
}

// SignalsFromDocument extracts content signals from a stored clip document.
// Tags feed the keyword channel.
func SignalsFromDocument(doc *core.ClipDocument) ContentSignals {
	return ContentSignals{
		Summary:    doc.Summary,
		Transcript: doc.Transcript,
		Keywords:   doc.Tags,
		Entities:   doc.Entities,
		Activities: doc.Activities,
	}
}

// ContentMetadata is the audit trail of one preparation run: what each
// channel looked like before the budget was applied, what survived, and how
// it was reduced.
type ContentMetadata struct {
	SummaryOriginalContent    string
	SummaryOriginalTokenCount int
	SummaryTokenCount         int
	SummaryTruncation         core.TruncationMethod

	KeywordOriginalContent    string
	KeywordOriginalTokenCount int
	KeywordTokenCount         int
	KeywordTruncation         core.TruncationMethod

	// TranscriptIncluded reports whether any transcript text made it into
	// the summary channel.
	TranscriptIncluded bool

	// TranscriptChars is the original transcript length, diagnostic only.
	TranscriptChars int
}

// Preparer assembles embedding channel content under the token budget.
// Output is a pure function of the input signals.
type Preparer struct {
	budgeter *token.Budgeter
}

// NewPreparer creates a Preparer on the given budgeter.
// A nil budgeter gets the default encoding.
func NewPreparer(budgeter *token.Budgeter) *Preparer {
	if budgeter == nil {
		budgeter = token.NewBudgeter()
	}
	return &Preparer{budgeter: budgeter}
}

// PrepareContent builds the summary and keyword channel texts for a clip.
//
// The summary channel concatenates, in fixed order, the summary, the top
// entities, and the top activities, then absorbs as much transcript as the
// remaining budget allows. The keyword channel is the space-joined keyword
// list. Both channels are independently truncated to the budget as a safety
// net, and every reduction is recorded in the returned metadata.
func (p *Preparer) PrepareContent(signals ContentSignals) (string, string, ContentMetadata) {
	meta := ContentMetadata{
		SummaryTruncation: core.TruncationNone,
		KeywordTruncation: core.TruncationNone,
		TranscriptChars:   len(signals.Transcript),
	}

	var parts []string
	if signals.Summary != "" {
		parts = append(parts, "Summary: "+signals.Summary)
	}
	if len(signals.Entities) > 0 {
		parts = append(parts, "Entities: "+strings.Join(capList(signals.Entities, MaxEntities), ", "))
	}
	if len(signals.Activities) > 0 {
		parts = append(parts, "Activities: "+strings.Join(capList(signals.Activities, MaxActivities), ", "))
	}
	summaryContent := strings.Join(parts, " ")

	meta.SummaryOriginalContent = summaryContent
	if signals.Transcript != "" {
		meta.SummaryOriginalContent = summaryContent + " Transcript: " + signals.Transcript

		// Short summaries absorb more transcript, long summaries less
		remaining := TokenBudget - p.budgeter.Count(summaryContent)
		if remaining > TranscriptBuffer {
			excerpt, method := p.budgeter.Truncate(signals.Transcript, remaining)
			summaryContent += " Transcript: " + excerpt
			meta.TranscriptIncluded = true
			if method != core.TruncationNone {
				meta.SummaryTruncation = method
			}
		}
	}
	meta.SummaryOriginalTokenCount = p.budgeter.Count(meta.SummaryOriginalContent)

	if capped, method := p.budgeter.Truncate(summaryContent, TokenBudget); method != core.TruncationNone {
		summaryContent = capped
		meta.SummaryTruncation = method
	}
	meta.SummaryTokenCount = p.budgeter.Count(summaryContent)

	keywordContent := strings.Join(signals.Keywords, " ")
	meta.KeywordOriginalContent = keywordContent
	meta.KeywordOriginalTokenCount = p.budgeter.Count(keywordContent)
	if capped, method := p.budgeter.Truncate(keywordContent, TokenBudget); method != core.TruncationNone {
		keywordContent = capped
		meta.KeywordTruncation = method
	}
	meta.KeywordTokenCount = p.budgeter.Count(keywordContent)

	return summaryContent, keywordContent, meta
}

func capList(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}
