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

package validation

import (
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
)

func TestValidation(t *testing.T) {
	t.Run("ValidateValue test", func(t *testing.T) {
		assert.Nil(t, ValidateValue("bold", "mark"))
		assert.Nil(t, ValidateValue("font-mono", "mark"))

		err := ValidateValue("Bold", "mark")
		assert.Equal(t, "mark", err.(Violation).Tag)

		assert.Nil(t, ValidateValue(xid.New().String(), "revision_id"))
		err = ValidateValue("rev-1", "revision_id")
		assert.Equal(t, "revision_id", err.(Violation).Tag)
	})

	t.Run("ValidateStruct test", func(t *testing.T) {
		type Author struct {
			ID    string `validate:"required"`
			Email string `validate:"omitempty,email"`
			Color string `validate:"omitempty,hexcolor"`
		}

		assert.Nil(t, ValidateStruct(Author{ID: "alice", Color: "#ff0000"}))

		err := ValidateStruct(Author{Email: "not-an-email", Color: "red"})
		structError := err.(*StructError)
		assert.Len(t, structError.Violations, 3)
		assert.Equal(t, "ID", structError.Violations[0].Field)
		assert.Equal(t, "ID is a required field", structError.Violations[0].Description)
	})

	t.Run("custom rule test", func(t *testing.T) {
		_ = RegisterValidation("block_type", func(v FieldLevel) bool {
			return v.Field().String() == "p"
		})
		_ = RegisterTranslation("block_type", "{0} must be a paragraph")

		err := ValidateValue("h1", "required,block_type")
		assert.Equal(t, "block_type", err.(Violation).Tag)
		assert.Nil(t, ValidateValue("p", "required,block_type"))
	})
}
