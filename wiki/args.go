package wiki

// GetArticleArgs contains parameters for reading a page
type GetArticleArgs struct {
	Title string `json:"title" jsonschema:"Page title, e.g. Albert Einstein"`
}

// GetArticleResult is the wikitext of the latest revision of a page
type GetArticleResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Found   bool   `json:"found"`
	Length  int    `json:"length"`
}

// CategoryMembersArgs contains parameters for listing a category
type CategoryMembersArgs struct {
	Category     string `json:"category" jsonschema:"Category name, with or without the Category: prefix"`
	Type         string `json:"type,omitempty" jsonschema:"Member type filter: page, subcat or file"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Maximum members to return (default 50)"`
	ContinueFrom string `json:"continue_from,omitempty" jsonschema:"Continuation token from a previous call"`
}

// EditPageArgs contains parameters for editing an existing page
type EditPageArgs struct {
	Title       string `json:"title,omitempty" jsonschema:"Page title (either title or page_id is required)"`
	PageID      int    `json:"page_id,omitempty" jsonschema:"Numeric page id"`
	Text        string `json:"text,omitempty" jsonschema:"Replacement page text"`
	AppendText  string `json:"append_text,omitempty" jsonschema:"Text to add at the end of the page or section"`
	PrependText string `json:"prepend_text,omitempty" jsonschema:"Text to add at the start of the page or section"`
	Section     string `json:"section,omitempty" jsonschema:"Section number to edit, or new"`
	Summary     string `json:"summary,omitempty" jsonschema:"Edit summary"`
	Minor       bool   `json:"minor,omitempty" jsonschema:"Mark the edit as minor"`
}

// EditPageResult is the outcome of an edit
type EditPageResult struct {
	Page     string `json:"page"`
	Result   string `json:"result"`
	NewRevID int    `json:"new_revision_id,omitempty"`
	NoChange bool   `json:"no_change,omitempty"`
	Bot      bool   `json:"bot"`
}

// LoginArgs is empty; the configured credentials are used
type LoginArgs struct{}

// LoginStatus is the outcome of a login handshake
type LoginStatus struct {
	LoggedIn   bool   `json:"logged_in"`
	Incomplete bool   `json:"incomplete,omitempty"`
	UserName   string `json:"user_name,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

// LogoutArgs is empty
type LogoutArgs struct{}

// LogoutResult reports the local state after logout
type LogoutResult struct {
	LoggedIn bool `json:"logged_in"`
}

// SessionStatusArgs is empty
type SessionStatusArgs struct{}

// SessionStatus describes the session without touching the network
type SessionStatus struct {
	SessionID    string `json:"session_id"`
	Site         string `json:"site"`
	LoggedIn     bool   `json:"logged_in"`
	UserName     string `json:"user_name,omitempty"`
	Bot          bool   `json:"bot"`
	Cookies      int    `json:"cookies"`
	CachedTokens int    `json:"cached_tokens"`
}
