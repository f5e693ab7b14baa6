package wiki

import (
	"context"
	"strings"
)

// MCP tool wrapper methods.
// These adapt the session operations to Args/Result types for MCP integration.

// GetArticleMCP is the MCP wrapper for GetArticleContents
func (s *Session) GetArticleMCP(ctx context.Context, args GetArticleArgs) (GetArticleResult, error) {
	if strings.TrimSpace(args.Title) == "" {
		return GetArticleResult{}, &UsageError{Operation: "get article", Message: "title is required"}
	}

	content, resp, err := s.GetArticleContents(ctx, args.Title)
	if err != nil {
		return GetArticleResult{}, err
	}
	_, found := latestRevision(resp.Data)
	return GetArticleResult{
		Title:   args.Title,
		Content: content,
		Found:   found,
		Length:  len(content),
	}, nil
}

// CategoryMembersMCP is the MCP wrapper for CategoryMembers
func (s *Session) CategoryMembersMCP(ctx context.Context, args CategoryMembersArgs) (CategoryMembersResult, error) {
	if strings.TrimSpace(args.Category) == "" {
		return CategoryMembersResult{}, &UsageError{Operation: "category members", Message: "category is required"}
	}

	opts := CategoryMembersOptions{
		Limit:    args.Limit,
		Continue: args.ContinueFrom,
	}
	if args.Type != "" {
		opts.Type = []string{args.Type}
	}

	result, err := s.CategoryMembers(ctx, args.Category, opts)
	if err != nil {
		return CategoryMembersResult{}, err
	}
	return *result, nil
}

// EditPageMCP is the MCP wrapper for Edit
func (s *Session) EditPageMCP(ctx context.Context, args EditPageArgs) (EditPageResult, error) {
	page := Title(args.Title)
	if args.Title == "" {
		page = PageID(args.PageID)
	}

	resp, err := s.Edit(ctx, page, EditOptions{
		Text:        args.Text,
		AppendText:  args.AppendText,
		PrependText: args.PrependText,
		Section:     args.Section,
		Summary:     args.Summary,
		Minor:       args.Minor,
	})
	if err != nil {
		return EditPageResult{}, err
	}

	edit := getMap(resp.Data, "edit")
	_, noChange := edit["nochange"]
	return EditPageResult{
		Page:     page.String(),
		Result:   getString(edit, "result"),
		NewRevID: getInt(edit, "newrevid"),
		NoChange: noChange,
		Bot:      s.IsBot(),
	}, nil
}

// LoginMCP logs in with the credentials from the session config
func (s *Session) LoginMCP(ctx context.Context, _ LoginArgs) (LoginStatus, error) {
	if !s.config.HasCredentials() {
		return LoginStatus{}, &ConfigurationError{
			Field:   "MEDIAWIKI_USERNAME",
			Message: "username and password must be configured to log in",
		}
	}

	result, err := s.Login(ctx, s.config.Username, s.config.Password)
	if err != nil {
		return LoginStatus{}, err
	}
	return LoginStatus{
		LoggedIn:   result.LoggedIn,
		Incomplete: result.Incomplete,
		UserName:   result.UserName,
		UserID:     result.UserID,
	}, nil
}

// LogoutMCP is the MCP wrapper for Logout
func (s *Session) LogoutMCP(ctx context.Context, _ LogoutArgs) (LogoutResult, error) {
	_, err := s.Logout(ctx)
	return LogoutResult{LoggedIn: s.LoggedIn()}, err
}

// Status reports the local session state
func (s *Session) Status() SessionStatus {
	user, _ := s.cookies.Get(cookieUserName)
	return SessionStatus{
		SessionID:    s.id,
		Site:         s.config.Site,
		LoggedIn:     s.LoggedIn(),
		UserName:     user,
		Bot:          s.IsBot(),
		Cookies:      s.cookies.Len(),
		CachedTokens: s.tokens.Len(),
	}
}

// SessionStatusMCP is the MCP wrapper for Status
func (s *Session) SessionStatusMCP(_ context.Context, _ SessionStatusArgs) (SessionStatus, error) {
	return s.Status(), nil
}
