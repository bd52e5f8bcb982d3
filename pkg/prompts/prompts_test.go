package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	s, err := Defaults()
	require.NoError(t, err)

	var keys []string
	for _, tmpl := range s.List() {
		keys = append(keys, tmpl.Key)
	}
	assert.Equal(t, []string{"customer_service", "financial_analysis", "json_formatter"}, keys)

	tests := []struct {
		key         string
		name        string
		placeholder string
	}{
		{"customer_service", "Customer Service Response", "query"},
		{"financial_analysis", "Financial Analysis", "data"},
		{"json_formatter", "JSON Formatter", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			tmpl, err := s.Get(tt.key)
			require.NoError(t, err)

			assert.Equal(t, tt.name, tmpl.Name)
			assert.NotEmpty(t, tmpl.Description)
			assert.NotEmpty(t, tmpl.ExampleInput)
			assert.NotEmpty(t, tmpl.ExampleOutput)
			assert.Equal(t, []string{tt.placeholder}, tmpl.Placeholders())
			assert.False(t, strings.HasSuffix(tmpl.Template, "\n"))
		})
	}
}

func TestDefaults_CustomerServiceText(t *testing.T) {
	s, err := Defaults()
	require.NoError(t, err)

	got, err := s.Render("customer_service", map[string]string{"query": "Where is my order?"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "You are a customer service representative."))
	assert.Contains(t, got, "\n\nCustomer Query: Where is my order?\n\n")
	assert.True(t, strings.HasSuffix(got, "3. Maintains a professional and friendly tone"))
}

func TestDefaults_JSONExampleOutput(t *testing.T) {
	s, err := Defaults()
	require.NoError(t, err)

	tmpl, err := s.Get("json_formatter")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "John Doe", "age": 30, "occupation": "Engineer"}`, tmpl.ExampleOutput)
}

func TestDefaults_ExtraOverridesAndAdds(t *testing.T) {
	s, err := Defaults(
		Template{Key: "json_formatter", Name: "JSON", Template: "To JSON: {text}"},
		Template{Key: "translate", Template: "Translate {text} into {language}"},
	)
	require.NoError(t, err)

	assert.Len(t, s.List(), 4)

	tmpl, err := s.Get("json_formatter")
	require.NoError(t, err)
	assert.Equal(t, "JSON", tmpl.Name)

	tmpl, err = s.Get("translate")
	require.NoError(t, err)
	assert.Equal(t, "translate", tmpl.Name)
	assert.Equal(t, []string{"text", "language"}, tmpl.Placeholders())
}

func TestStore_Get_Unknown(t *testing.T) {
	s, err := Defaults()
	require.NoError(t, err)

	_, err = s.Get("poem")
	require.ErrorIs(t, err, ErrUnknownTemplate)
	assert.EqualError(t, err, "unknown prompt type: poem")

	_, err = s.Render("poem", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestStore_Render_Missing(t *testing.T) {
	s, err := Defaults()
	require.NoError(t, err)

	_, err = s.Render("financial_analysis", map[string]string{})

	var missing *MissingVariableError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "data", missing.Name)
}

func TestStore_List_SortedByKey(t *testing.T) {
	s, err := NewStore(
		Template{Key: "zeta", Template: "z"},
		Template{Key: "alpha", Template: "a"},
	)
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Key)
	assert.Equal(t, "zeta", list[1].Key)
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(Template{Template: "x"})
	assert.ErrorContains(t, err, "template key is required")

	_, err = NewStore(Template{Key: "k", Template: "  "})
	assert.ErrorContains(t, err, "format string is required")

	_, err = NewStore(Template{Key: "k", Template: "bad {"})
	assert.ErrorIs(t, err, ErrMalformedTemplate)
}
