package wiki

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetArticleMCP(t *testing.T) {
	ft := &fakeTransport{handler: func(n int, req *Request) (*RawResponse, map[string]any, error) {
		return jsonReply(map[string]any{"query": map[string]any{"pages": map[string]any{
			"1": map[string]any{"revisions": []any{map[string]any{"*": "hello"}}},
		}}})
	}}
	s := createTestSession(t, ft)

	result, err := s.GetArticleMCP(context.Background(), GetArticleArgs{Title: "Greeting"})
	require.NoError(t, err)
	assert.Equal(t, GetArticleResult{Title: "Greeting", Content: "hello", Found: true, Length: 5}, result)

	_, err = s.GetArticleMCP(context.Background(), GetArticleArgs{Title: "  "})
	var ue *UsageError
	assert.ErrorAs(t, err, &ue)
	assert.Equal(t, 1, ft.count())
}

func TestGetArticleMCP_EmptyAndMissingPages(t *testing.T) {
	tests := []struct {
		name  string
		pages map[string]any
		found bool
	}{
		{
			name:  "existing empty page",
			pages: map[string]any{"7": map[string]any{"revisions": []any{map[string]any{"*": ""}}}},
			found: true,
		},
		{
			name:  "missing page",
			pages: map[string]any{"-1": map[string]any{"title": "Nope", "missing": ""}},
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeTransport{handler: func(n int, req *Request) (*RawResponse, map[string]any, error) {
				return jsonReply(map[string]any{"query": map[string]any{"pages": tt.pages}})
			}}
			s := createTestSession(t, ft)

			result, err := s.GetArticleMCP(context.Background(), GetArticleArgs{Title: "Page"})
			require.NoError(t, err)
			assert.Empty(t, result.Content)
			assert.Equal(t, 0, result.Length)
			assert.Equal(t, tt.found, result.Found)
		})
	}
}

func TestCategoryMembersMCP(t *testing.T) {
	ft := &fakeTransport{handler: func(n int, req *Request) (*RawResponse, map[string]any, error) {
		return jsonReply(map[string]any{"query": map[string]any{"categorymembers": []any{
			map[string]any{"pageid": float64(3), "ns": float64(0), "title": "Gamma"},
		}}})
	}}
	s := createTestSession(t, ft)

	result, err := s.CategoryMembersMCP(context.Background(), CategoryMembersArgs{
		Category:     "Letters",
		Type:         "page",
		Limit:        5,
		ContinueFrom: "page|2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Category:Letters", result.Category)
	assert.Len(t, result.Members, 1)

	q := ft.request(0).Query
	assert.Equal(t, "page", q.Get("cmtype"))
	assert.Equal(t, "5", q.Get("cmlimit"))
	assert.Equal(t, "page|2", q.Get("cmcontinue"))
}

func TestEditPageMCP(t *testing.T) {
	ft := editServer("tok", func(req *Request) (*RawResponse, map[string]any, error) {
		return jsonReply(map[string]any{"edit": map[string]any{
			"result":   "Success",
			"pageid":   float64(42),
			"newrevid": float64(1001),
		}})
	})
	s := createTestSession(t, ft)

	result, err := s.EditPageMCP(context.Background(), EditPageArgs{PageID: 42, AppendText: "more"})
	require.NoError(t, err)
	assert.Equal(t, EditPageResult{Page: "42", Result: "Success", NewRevID: 1001, Bot: true}, result)

	_, err = s.EditPageMCP(context.Background(), EditPageArgs{Text: "orphan"})
	assert.IsType(t, &InvalidTitleError{}, err)
}

func TestEditPageMCP_NoChange(t *testing.T) {
	ft := editServer("tok", func(req *Request) (*RawResponse, map[string]any, error) {
		return jsonReply(map[string]any{"edit": map[string]any{"result": "Success", "nochange": ""}})
	})
	s := createTestSession(t, ft)

	result, err := s.EditPageMCP(context.Background(), EditPageArgs{Title: "A", Text: "same"})
	require.NoError(t, err)
	assert.True(t, result.NoChange)
	assert.Equal(t, "A", result.Page)
}

func TestLoginMCP(t *testing.T) {
	t.Run("without credentials", func(t *testing.T) {
		ft := &fakeTransport{handler: loginReplies}
		s := createTestSession(t, ft)

		_, err := s.LoginMCP(context.Background(), LoginArgs{})

		var cfgErr *ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, 0, ft.count())
	})

	t.Run("with credentials", func(t *testing.T) {
		ft := &fakeTransport{handler: loginReplies}
		cfg := DefaultConfig("example.org")
		cfg.Username = "u"
		cfg.Password = "p"
		s, err := NewSession(cfg, testLogger(), WithTransport(ft))
		require.NoError(t, err)

		status, err := s.LoginMCP(context.Background(), LoginArgs{})
		require.NoError(t, err)
		assert.Equal(t, LoginStatus{LoggedIn: true, UserName: "u", UserID: "1"}, status)
		assert.Equal(t, "p", ft.request(0).Form.Get("lgpassword"))
	})
}

func TestSessionStatusAndLogoutMCP(t *testing.T) {
	ft := &fakeTransport{handler: func(n int, req *Request) (*RawResponse, map[string]any, error) {
		if req.Query.Get("action") == "login" {
			return loginReplies(n, req)
		}
		return jsonReply(map[string]any{})
	}}
	s := createTestSession(t, ft)

	status, err := s.SessionStatusMCP(context.Background(), SessionStatusArgs{})
	require.NoError(t, err)
	assert.False(t, status.LoggedIn)
	assert.Equal(t, "example.org", status.Site)
	assert.Equal(t, s.ID(), status.SessionID)
	assert.True(t, status.Bot)

	_, err = s.Login(context.Background(), "u", "p")
	require.NoError(t, err)
	status = s.Status()
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "u", status.UserName)
	assert.Equal(t, 4, status.Cookies)

	result, err := s.LogoutMCP(context.Background(), LogoutArgs{})
	require.NoError(t, err)
	assert.False(t, result.LoggedIn)
	assert.Equal(t, 0, s.Status().Cookies)
}
