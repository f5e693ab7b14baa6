package tools

// AllTools contains all tool specifications for the MediaWiki MCP server.
// Tool descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// READ TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_get_article",
		Method:   "GetArticle",
		Title:    "Get Article",
		Category: "read",
		Description: `Retrieve the raw wikitext of the latest revision of a page.

USE WHEN: User says "show me the X page", "what does the article about X say", "read the Main Page".

NOT FOR: Listing pages in a category (use mediawiki_category_members).

PARAMETERS:
- title: Page name (required)

RETURNS: Wikitext content. found=false when the page does not exist.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// CATEGORY TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_category_members",
		Method:   "CategoryMembers",
		Title:    "Get Category Members",
		Category: "categories",
		Description: `List the pages that belong to a category.

USE WHEN: User asks "show pages in Category:Physics", "what's in the Tutorials category".

NOT FOR: Reading a page's content (use mediawiki_get_article).

PARAMETERS:
- category: Category name, prefix optional (required)
- type: "page", "subcat" or "file" (optional)
- limit: Max members (default 50)
- continue_from: Continuation token from a previous call

RETURNS: Member titles, page ids and namespaces, plus a continue token when more exist.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},

	// ==========================================================================
	// WRITE TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_edit_page",
		Method:   "EditPage",
		Title:    "Edit Page",
		Category: "write",
		Description: `Change the content of an EXISTING page. Pages are never created.

USE WHEN: User says "add this line to page X", "append to the log page", "replace the text of page X".

PARAMETERS:
- title or page_id: Target page (one is required)
- text: Full replacement text
- append_text / prepend_text: Text added at the end / start (preferred for additions)
- section: Section number to edit (optional)
- summary: Edit summary
- minor: Mark as minor edit (default false)

WARNING: text replaces the entire page unless section is given.

RETURNS: Edit result and new revision id. Requires MEDIAWIKI_USERNAME and MEDIAWIKI_PASSWORD on most wikis.`,
		ReadOnly:    false,
		Destructive: true,
		Idempotent:  false,
		OpenWorld:   true,
	},

	// ==========================================================================
	// SESSION TOOLS
	// ==========================================================================
	{
		Name:     "mediawiki_login",
		Method:   "Login",
		Title:    "Log In",
		Category: "session",
		Description: `Log in with the configured bot credentials.

USE WHEN: An edit failed because the session is not logged in, or after mediawiki_logout.

RETURNS: Login state and user name. incomplete=true means the wiki did not confirm the login.`,
		ReadOnly:   false,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_logout",
		Method:   "Logout",
		Title:    "Log Out",
		Category: "session",
		Description: `End the wiki session. Local cookies and login state are cleared first.

USE WHEN: User says "log out", "end the session".

RETURNS: The logged-in flag after logout (always false).`,
		ReadOnly:   false,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "mediawiki_session_status",
		Method:   "SessionStatus",
		Title:    "Session Status",
		Category: "session",
		Description: `Report the current session without contacting the wiki.

USE WHEN: User asks "am I logged in", "which wiki is this", "who am I".

RETURNS: Site, logged-in flag, user name, bot flag, cookie and cached token counts.`,
		ReadOnly:   true,
		Idempotent: true,
	},
}
