// Package preparation turns an already-parsed execute request into a
// canonical provider request: validate, load history, enrich, build.
package preparation

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"promptlab/internal/config"
	"promptlab/internal/domain"
	llmSvc "promptlab/internal/domain/services/llm"
)

// notBlank rejects strings that are empty after trimming whitespace
var notBlank = validation.By(func(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// positive rejects a set *int that is not above zero. validation.Min skips
// zero values, so it cannot express this.
var positive = validation.By(func(value any) error {
	if n, ok := value.(*int); ok && n != nil && *n <= 0 {
		return errors.New("must be greater than zero")
	}
	return nil
})

// ValidatePromptInput checks the prompt text and context-file references.
// No I/O.
func ValidatePromptInput(prompt string, fileIDs []string) error {
	input := struct {
		Prompt         string   `json:"prompt"`
		ContextFileIDs []string `json:"context_file_ids"`
	}{prompt, fileIDs}

	err := validation.ValidateStruct(&input,
		validation.Field(&input.Prompt,
			validation.Required,
			notBlank,
			validation.RuneLength(1, config.MaxPromptLength),
		),
		validation.Field(&input.ContextFileIDs,
			validation.Length(0, config.MaxContextFiles),
			validation.Each(notBlank),
		),
	)
	return asValidationError(err)
}

// ValidateRequest checks an execute request: the prompt input plus the
// optional generation parameters
func ValidateRequest(req *llmSvc.ExecuteRequest) error {
	if req == nil {
		return domain.NewValidationError("request is required")
	}
	if err := ValidatePromptInput(req.Prompt, req.ContextFileIDs); err != nil {
		return err
	}

	err := validation.ValidateStruct(req,
		validation.Field(&req.Temperature, validation.Min(0.0), validation.Max(config.MaxTemperature)),
		validation.Field(&req.MaxTokens, positive),
	)
	return asValidationError(err)
}

func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	return &domain.ValidationError{Message: err.Error()}
}
