package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/naturespot/naturespot/backend/internal/models"
)

// Translator is the pipeline entry point PostTranslator fans out to.
type Translator interface {
	Translate(ctx context.Context, req models.TranslationRequest) (*models.TranslationResult, error)
}

// PostTranslator translates the text fields of a post.
type PostTranslator struct {
	translator Translator
}

func NewPostTranslator(translator Translator) *PostTranslator {
	return &PostTranslator{translator: translator}
}

// TranslatePost translates species name, description and caption concurrently.
//
// The result is post with every field that produced a translation (provider,
// cache or mock) overwritten; fields that failed or were skipped keep their
// original text. When no field was translated the result is nil.
func (t *PostTranslator) TranslatePost(ctx context.Context, post models.PostContent, targetLanguage, callerID string) *models.PostContent {
	fields := []string{post.SpeciesName, post.Description, post.Caption}
	translated := make([]string, len(fields))
	ok := make([]bool, len(fields))

	// Each goroutine writes only its own slot; errors are absorbed per field
	var g errgroup.Group
	for i, text := range fields {
		if text == "" {
			continue
		}
		g.Go(func() error {
			result, err := t.translator.Translate(ctx, models.TranslationRequest{
				Text:           text,
				TargetLanguage: targetLanguage,
				CallerID:       callerID,
			})
			if err != nil {
				debugLog("Post field translation failed", zap.Int("field", i), zap.Error(err))
				return nil
			}
			if result == nil || result.Service == models.ServiceNone {
				return nil
			}
			translated[i] = result.TranslatedText
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if !ok[0] && !ok[1] && !ok[2] {
		return nil
	}
	merged := post
	targets := []*string{&merged.SpeciesName, &merged.Description, &merged.Caption}
	for i, dst := range targets {
		if ok[i] {
			*dst = translated[i]
		}
	}
	return &merged
}
