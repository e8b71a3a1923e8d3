package categorizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-insights/models"
)

const testEndpoint = "https://textgen.test/v1/chat/completions"

func newMockedClient(t *testing.T) *Client {
	t.Helper()
	hc := &http.Client{}
	httpmock.ActivateNonDefault(hc)
	t.Cleanup(httpmock.DeactivateAndReset)

	c, err := NewClient(Config{Endpoint: testEndpoint, APIKey: "secret", Model: "test-model", HTTPClient: hc})
	require.NoError(t, err)
	return c
}

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{Endpoint: testEndpoint})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewClient(Config{APIKey: "secret"})
	assert.Error(t, err)

	c, err := NewClient(Config{Endpoint: testEndpoint, APIKey: "secret"})
	require.NoError(t, err)
	assert.NotNil(t, c.http)
}

func TestCategorize(t *testing.T) {
	c := newMockedClient(t)

	var got chatRequest
	httpmock.RegisterResponder(http.MethodPost, testEndpoint, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}
		return httpmock.NewJsonResponse(http.StatusOK, completion("1. Footwear > Sneakers\n2. Apparel > Hoodies"))
	})

	results, err := c.Categorize(context.Background(), []string{"Trail Runner", "Zip Hoodie"})
	require.NoError(t, err)

	assert.Equal(t, []models.CategoryResult{
		{Main: "Footwear", Sub: "Sneakers"},
		{Main: "Apparel", Sub: "Hoodies"},
	}, results)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "1. Trail Runner\n2. Zip Hoodie")
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestCategorizeErrors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		isBad     bool
	}{
		{"server error", httpmock.NewStringResponder(http.StatusTooManyRequests, "slow down"), false},
		{"not json", httpmock.NewStringResponder(http.StatusOK, "<html>"), true},
		{"no choices", httpmock.NewStringResponder(http.StatusOK, `{"choices":[]}`), true},
		{"transport", httpmock.NewErrorResponder(errors.New("connection reset")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newMockedClient(t)
			httpmock.RegisterResponder(http.MethodPost, testEndpoint, tt.responder)

			_, err := c.Categorize(context.Background(), []string{"Thing"})
			require.Error(t, err)
			assert.Equal(t, tt.isBad, errors.Is(err, ErrBadResponse))
		})
	}
}

func TestCategorizeNoTitles(t *testing.T) {
	c := newMockedClient(t)
	results, err := c.Categorize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestParseCategories(t *testing.T) {
	text := strings.Join([]string{
		"Here you go:",
		"1. Footwear > Sneakers",
		"3) **Bags** > Totes",
		"  2 - Apparel",
		"4. Uncategorized",
		"9. Out > Of Range",
		"5: > Nothing",
	}, "\n")

	got := ParseCategories(text, 5)
	assert.Equal(t, []models.CategoryResult{
		{Main: "Footwear", Sub: "Sneakers"},
		{Main: "Apparel", Sub: ""},
		{Main: "Bags", Sub: "Totes"},
		{Main: models.Uncategorized},
		{Main: models.Uncategorized},
	}, got)

	assert.True(t, got[3].IsUncategorized())
	assert.Len(t, ParseCategories("", 3), 3)
}
