package translate

import (
	"context"
	"fmt"

	"github.com/mgpai22/subedit/internal/logging"
)

// Texts adapts a Translator to work on plain string slices, keeping order.
type Texts struct {
	translator  Translator
	concurrency int
	log         *logging.Logger
}

func NewTexts(tr Translator, concurrency int, log *logging.Logger) *Texts {
	if log == nil {
		log = logging.NewNop()
	}
	return &Texts{translator: tr, concurrency: concurrency, log: log}
}

// TranslateTexts translates every text and returns them in input order.
func (t *Texts) TranslateTexts(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	items := make([]TranslationItem, len(texts))
	for i, text := range texts {
		items[i] = TranslationItem{Index: i, Text: text}
	}

	var results []TranslationResult
	var err error
	if ct, ok := t.translator.(ConcurrentTranslator); ok {
		t.log.Debugw("translating", "items", len(items), "concurrency", t.concurrency)
		results, err = ct.TranslateWithConcurrency(ctx, items, t.concurrency)
	} else {
		t.log.Debugw("translating", "items", len(items))
		results, err = t.translator.Translate(ctx, items)
	}
	if err != nil {
		return nil, err
	}

	out := make([]string, len(texts))
	seen := make([]bool, len(texts))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(texts) {
			return nil, fmt.Errorf("translation returned unknown index %d", r.Index)
		}
		if seen[r.Index] {
			return nil, fmt.Errorf("translation returned index %d twice", r.Index)
		}
		seen[r.Index] = true
		out[r.Index] = r.Text
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("translation is missing index %d", i)
		}
	}
	return out, nil
}
