package schema

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/types"
)

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)

	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestDecodeNewStudent(t *testing.T) {
	body := `{"name":"John","age":20,"address":{"city":"NYC","country":"USA"}}`

	s, err := DecodeNewStudent(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, types.Student{
		Name:    "John",
		Age:     20,
		Address: types.Address{City: "NYC", Country: "USA"},
	}, s.Student())
}

func TestDecodeNewStudentAcceptsZeroAge(t *testing.T) {
	body := `{"name":"Baby","age":0,"address":{"city":"Oslo","country":"Norway"}}`

	s, err := DecodeNewStudent(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 0, *s.Age)
}

func TestDecodeNewStudentRejects(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		fields []string
	}{
		{
			name:   "empty body",
			body:   ``,
			fields: []string{"body"},
		},
		{
			name:   "malformed json",
			body:   `{"name":`,
			fields: []string{"body"},
		},
		{
			name:   "missing everything",
			body:   `{}`,
			fields: []string{"name", "age", "address"},
		},
		{
			name:   "negative age",
			body:   `{"name":"John","age":-1,"address":{"city":"NYC","country":"USA"}}`,
			fields: []string{"age"},
		},
		{
			name:   "age wrong type",
			body:   `{"name":"John","age":"twenty","address":{"city":"NYC","country":"USA"}}`,
			fields: []string{"age"},
		},
		{
			name:   "partial address",
			body:   `{"name":"John","age":20,"address":{"city":"NYC"}}`,
			fields: []string{"address.country"},
		},
		{
			name:   "array body",
			body:   `[]`,
			fields: []string{"body"},
		},
		{
			name:   "trailing data",
			body:   `{"name":"John","age":20,"address":{"city":"NYC","country":"USA"}} {"oops"`,
			fields: []string{"body"},
		},
		{
			name:   "second document",
			body:   `{"name":"John","age":20,"address":{"city":"NYC","country":"USA"}} {}`,
			fields: []string{"body"},
		},
		{
			name:   "every wrong type",
			body:   `{"name":1,"age":"x","address":{"city":2,"country":3}}`,
			fields: []string{"name", "age", "address.city", "address.country"},
		},
		{
			name:   "wrong type and missing field",
			body:   `{"name":"John","age":"x"}`,
			fields: []string{"age", "address"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeNewStudent(strings.NewReader(tc.body))
			assert.Equal(t, tc.fields, fieldsOf(t, err))
		})
	}
}

func TestDecodeUpdate(t *testing.T) {
	t.Run("only provided fields", func(t *testing.T) {
		u, err := DecodeUpdate(strings.NewReader(`{"age":21}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{types.FieldAge: 21}, u.Fields())
	})

	t.Run("empty object", func(t *testing.T) {
		u, err := DecodeUpdate(strings.NewReader(`{}`))
		require.NoError(t, err)
		assert.True(t, u.IsEmpty())
	})

	t.Run("null is absent", func(t *testing.T) {
		u, err := DecodeUpdate(strings.NewReader(`{"name":null,"age":30}`))
		require.NoError(t, err)
		assert.Nil(t, u.Name)
		assert.Equal(t, map[string]any{types.FieldAge: 30}, u.Fields())
	})

	t.Run("full address", func(t *testing.T) {
		u, err := DecodeUpdate(strings.NewReader(`{"address":{"city":"Paris","country":"France"}}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			types.FieldAddress: types.Address{City: "Paris", Country: "France"},
		}, u.Fields())
	})
}

func TestDecodeUpdateRejects(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		fields []string
	}{
		{"negative age", `{"age":-5}`, []string{"age"}},
		{"partial address", `{"address":{"country":"USA"}}`, []string{"address.city"}},
		{"empty name", `{"name":""}`, []string{"name"}},
		{"wrong type", `{"name":42}`, []string{"name"}},
		{"empty body", ``, []string{"body"}},
		{"trailing data", `{"age":21} {"oops"`, []string{"body"}},
		{"address not an object", `{"address":"NYC"}`, []string{"address"}},
		{"fractional age", `{"age":20.5,"name":7}`, []string{"name", "age"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeUpdate(strings.NewReader(tc.body))
			assert.Equal(t, tc.fields, fieldsOf(t, err))
		})
	}
}

func TestTypeErrorReasons(t *testing.T) {
	cases := []struct {
		body   string
		reason string
	}{
		{`[]`, "must be a JSON object"},
		{`"John"`, "must be a JSON object"},
		{`{"age":"x"}`, "must be an integer"},
		{`{"name":1}`, "must be a string"},
		{`{"address":[]}`, "must be a JSON object"},
	}

	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			_, err := DecodeUpdate(strings.NewReader(tc.body))

			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tc.reason, verr.Fields[0].Reason)
			assert.NotContains(t, err.Error(), "types.")
		})
	}
}

func TestDecodeRejectsOversizedBody(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", 64) + `","age":20,"address":{"city":"NYC","country":"USA"}}`

	_, err := DecodeNewStudent(http.MaxBytesReader(nil, io.NopCloser(strings.NewReader(body)), 32))

	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []types.FieldError{{Field: "body", Reason: "must not exceed 32 bytes"}}, verr.Fields)
}

func TestValidationErrorMessage(t *testing.T) {
	_, err := DecodeNewStudent(strings.NewReader(`{"name":"John","age":-1,"address":{"city":"NYC","country":"USA"}}`))
	require.Error(t, err)
	assert.Equal(t, "field age must be greater than or equal to 0", err.Error())
}
