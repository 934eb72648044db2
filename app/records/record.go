package records

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrReadFile        = errors.New("read source file")
	ErrParse           = errors.New("parse source file")
	ErrMalformedRecord = errors.New("malformed record")
)

// Record is one importable question.
type Record struct {
	FileSource string
	Answer     string
	Question   string
	Category   string
}

// Properties is the property layout of the Question class.
func (r Record) Properties() map[string]any {
	return map[string]any{
		"fileSource": r.FileSource,
		"answer":     r.Answer,
		"question":   r.Question,
		"category":   r.Category,
	}
}

// raw mirrors one element of a source file. A nil field was absent or null.
type raw struct {
	Answer   *string `validate:"required"`
	Question *string `validate:"required"`
	Category *string `validate:"required"`
}

// ValidationError reports an element of a source file missing required fields.
type ValidationError struct {
	File   string
	Index  int
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s[%d]: missing %s", e.File, e.Index, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrMalformedRecord
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (r raw) toRecord(file string, index int) (Record, error) {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Record{}, err
		}
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fe.Field()
		}
		return Record{}, &ValidationError{File: file, Index: index, Fields: fields}
	}
	return Record{
		FileSource: file,
		Answer:     *r.Answer,
		Question:   *r.Question,
		Category:   *r.Category,
	}, nil
}
