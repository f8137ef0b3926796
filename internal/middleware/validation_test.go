package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contactForm mirrors the shape of the order contact endpoint: two
// required text fields plus a required URL.
type contactForm struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Website  string `json:"website" validate:"required,url"`
}

func decodeContact(t *testing.T, body map[string]interface{}) error {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("PUT", "/api/orders/abc/contact", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	var form contactForm
	return DecodeAndValidate(req, &form)
}

func TestDecodeAndValidate_Contact(t *testing.T) {
	valid := map[string]interface{}{
		"full_name": "Ada Lovelace",
		"email":     "ada@example.com",
		"website":   "https://example.com",
	}
	require.NoError(t, decodeContact(t, valid))

	tests := []struct {
		name  string
		field string
		value interface{}
	}{
		{"empty full name", "full_name", ""},
		{"malformed email", "email", "not-an-email"},
		{"malformed website", "website", "not a url"},
		{"missing website", "website", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]interface{}{}
			for k, v := range valid {
				body[k] = v
			}
			if tt.value == nil {
				delete(body, tt.field)
			} else {
				body[tt.field] = tt.value
			}

			err := decodeContact(t, body)
			require.Error(t, err)

			formatted := FormatValidationErrors(err)
			require.NotEmpty(t, formatted)
			assert.Equal(t, tt.field, formatted[0].Field)
			assert.NotEmpty(t, formatted[0].Message)
		})
	}
}

func TestDecodeJSON_RejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest("PUT", "/api/orders/abc/quantity", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	var form contactForm
	assert.Error(t, DecodeJSON(req, &form))
}

// Property: the form passes validation exactly when every required
// field is present
func TestProperty_RequiredFieldsGateValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation passes iff all required fields are present", prop.ForAll(
		func(includeName, includeEmail, includeWebsite bool) bool {
			body := map[string]interface{}{}
			if includeName {
				body["full_name"] = "Ada Lovelace"
			}
			if includeEmail {
				body["email"] = "ada@example.com"
			}
			if includeWebsite {
				body["website"] = "https://example.com"
			}

			err := decodeContact(t, body)
			if includeName && includeEmail && includeWebsite {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: every formatted validation error names its field
func TestProperty_FormattedErrorsNameTheirFields(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("formatted errors carry field and message", prop.ForAll(
		func(email string) bool {
			body := map[string]interface{}{
				"full_name": "Ada Lovelace",
				"email":     email, // plain alpha strings are never valid emails
				"website":   "https://example.com",
			}

			err := decodeContact(t, body)
			if err == nil {
				return false
			}

			for _, ve := range FormatValidationErrors(err) {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}
			return true
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
