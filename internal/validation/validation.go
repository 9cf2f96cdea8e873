/*
 * Copyright 2026 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package validation validates values and structs with go-playground
// validator tags and translates the violations.
package validation

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/rs/xid"
)

const (
	// markRegexString restricts formatting flags to lower-case identifiers
	// such as "bold" or "font-mono".
	markRegexString = `^[a-z][a-z0-9_-]*$`
)

var (
	markRegex = regexp.MustCompile(markRegexString)
)

var (
	// defaultValidator checks the authors, marks and configuration handed
	// over by the host editor.
	defaultValidator = validator.New()

	// trans translates the messages of failed rules into English.
	defaultEn = en.New()
	uni       = ut.New(defaultEn, defaultEn)
	trans, _  = uni.GetTranslator(defaultEn.Locale())
)

// FieldLevel is the field level interface.
type FieldLevel = validator.FieldLevel

// Violation is a failed rule of a value or of a field of a struct.
type Violation struct {
	Tag   string
	Field string
	Err   error

	// Description is the translated message of the failed rule.
	Description string
}

// Error returns the translated message, or the message of the validator when
// no translation is registered for the tag.
func (e Violation) Error() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Err.Error()
}

// StructError is the error returned by ValidateStruct. It holds one
// violation per failed field.
type StructError struct {
	Violations []Violation
}

// Error returns the messages of the violations, one per line.
func (s *StructError) Error() string {
	messages := make([]string, 0, len(s.Violations))
	for _, v := range s.Violations {
		messages = append(messages, v.Error())
	}
	return strings.Join(messages, "\n")
}

// RegisterValidation registers a custom rule under the given tag. It is
// meant to be called from init functions.
func RegisterValidation(tag string, fn validator.Func) error {
	if err := defaultValidator.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("register validation %s: %w", tag, err)
	}
	return nil
}

// RegisterTranslation registers the message of the given tag. {0} in the
// message is replaced by the name of the field.
func RegisterTranslation(tag, msg string) error {
	register := func(translator ut.Translator) error {
		return translator.Add(tag, msg, true)
	}
	translate := func(translator ut.Translator, fe validator.FieldError) string {
		t, _ := translator.T(tag, fe.Field())
		return t
	}

	if err := defaultValidator.RegisterTranslation(tag, trans, register, translate); err != nil {
		return fmt.Errorf("register translation %s: %w", tag, err)
	}
	return nil
}

func violationOf(fe validator.FieldError) Violation {
	return Violation{
		Tag:         fe.Tag(),
		Field:       fe.StructField(),
		Err:         fe,
		Description: fe.Translate(trans),
	}
}

// ValidateValue validates the given value with the given tags, e.g.
// "required,mark". It returns the first Violation.
func ValidateValue(v interface{}, tag string) error {
	err := defaultValidator.Var(v, tag)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	return violationOf(errs[0])
}

// ValidateStruct validates the fields of the given struct with their
// `validate` tags. It returns a *StructError.
func ValidateStruct(s interface{}) error {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	structError := &StructError{}
	for _, fe := range errs {
		structError.Violations = append(structError.Violations, violationOf(fe))
	}
	return structError
}

func mustRegister(tag, msg string, fn validator.Func) {
	if err := RegisterValidation(tag, fn); err != nil {
		fmt.Fprintf(os.Stderr, "validation %s: %v\n", tag, err)
		os.Exit(1)
	}
	if err := RegisterTranslation(tag, msg); err != nil {
		fmt.Fprintf(os.Stderr, "validation %s: %v\n", tag, err)
		os.Exit(1)
	}
}

func init() {
	if err := entranslations.RegisterDefaultTranslations(defaultValidator, trans); err != nil {
		fmt.Fprintf(os.Stderr, "validation register default translations: %v\n", err)
		os.Exit(1)
	}

	mustRegister("mark", "{0} must be a lower-case formatting flag", func(level validator.FieldLevel) bool {
		return markRegex.MatchString(level.Field().String())
	})

	mustRegister("revision_id", "{0} must be a valid revision id", func(level validator.FieldLevel) bool {
		_, err := xid.FromString(level.Field().String())
		return err == nil
	})
}
