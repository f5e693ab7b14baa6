package wiki

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// DefaultCategoryLimit is the cmlimit sent when none is given
const DefaultCategoryLimit = 50

// GetArticleContents returns the raw wikitext of the latest revision of
// title. The text is empty when the query fails or finds no page.
func (s *Session) GetArticleContents(ctx context.Context, title string) (string, *Response, error) {
	params := url.Values{}
	params.Set("prop", "revisions")
	params.Set("rvprop", "content")
	params.Set("titles", title)

	resp, err := s.Query(ctx, params)
	if err != nil {
		return "", resp, err
	}

	contents, _ := latestRevision(resp.Data)
	return contents, resp, nil
}

// latestRevision reads the first revision text of the (last) page in a
// revisions query. found is false when no page carries a revision.
func latestRevision(data map[string]any) (text string, found bool) {
	for _, page := range getMap(getMap(data, "query"), "pages") {
		p, ok := page.(map[string]any)
		if !ok {
			continue
		}
		revisions, _ := p["revisions"].([]any)
		if len(revisions) == 0 {
			continue
		}
		if rev, ok := revisions[0].(map[string]any); ok {
			text = getString(rev, "*")
			found = true
		}
	}
	return text, found
}

// CategoryMembersOptions map to the cm-prefixed categorymembers parameters
type CategoryMembersOptions struct {
	// Limit defaults to DefaultCategoryLimit
	Limit int

	// Continue resumes a previous listing; empty starts from the beginning
	Continue string

	// Type filters by page, subcat or file (joined with |)
	Type []string

	Namespace []int
	Sort      string
	Dir       string
	Prop      []string

	// Extra holds further options; each key is sent with a "cm" prefix
	Extra map[string]string
}

func (o CategoryMembersOptions) params(category string) url.Values {
	p := url.Values{}
	p.Set("list", "categorymembers")
	p.Set("cmtitle", normalizeCategoryName(category))

	limit := o.Limit
	if limit <= 0 {
		limit = DefaultCategoryLimit
	}
	p.Set("cmlimit", strconv.Itoa(limit))

	for k, v := range o.Extra {
		p.Set("cm"+k, v)
	}
	if o.Continue != "" {
		p.Set("cmcontinue", o.Continue)
	}
	if len(o.Type) > 0 {
		p.Set("cmtype", strings.Join(o.Type, "|"))
	}
	if len(o.Namespace) > 0 {
		ns := make([]string, len(o.Namespace))
		for i, n := range o.Namespace {
			ns[i] = strconv.Itoa(n)
		}
		p.Set("cmnamespace", strings.Join(ns, "|"))
	}
	if o.Sort != "" {
		p.Set("cmsort", o.Sort)
	}
	if o.Dir != "" {
		p.Set("cmdir", o.Dir)
	}
	if len(o.Prop) > 0 {
		p.Set("cmprop", strings.Join(o.Prop, "|"))
	}
	if p.Get("cmcontinue") == "" {
		p.Del("cmcontinue")
	}
	return p
}

// CategoryMember is one entry of a category listing
type CategoryMember struct {
	PageID    int    `json:"page_id"`
	Namespace int    `json:"ns"`
	Title     string `json:"title"`
}

// CategoryMembersResult is one page of a category listing
type CategoryMembersResult struct {
	Category string           `json:"category"`
	Members  []CategoryMember `json:"members"`

	// Continue is set when more members are available
	Continue string `json:"continue,omitempty"`

	Response *Response `json:"-"`
}

// CategoryMembers lists the pages in category
func (s *Session) CategoryMembers(ctx context.Context, category string, opts CategoryMembersOptions) (*CategoryMembersResult, error) {
	params := opts.params(category)

	resp, err := s.Query(ctx, params)
	if err != nil {
		return &CategoryMembersResult{Category: params.Get("cmtitle"), Response: resp}, err
	}

	result := &CategoryMembersResult{
		Category: params.Get("cmtitle"),
		Members:  []CategoryMember{},
		Response: resp,
	}

	members, _ := getMap(resp.Data, "query")["categorymembers"].([]any)
	for _, m := range members {
		member, ok := m.(map[string]any)
		if !ok {
			continue
		}
		result.Members = append(result.Members, CategoryMember{
			PageID:    getInt(member, "pageid"),
			Namespace: getInt(member, "ns"),
			Title:     getString(member, "title"),
		})
	}

	// Both the current and the legacy continuation formats are accepted
	if cont := getMap(resp.Data, "continue"); cont != nil {
		result.Continue = getString(cont, "cmcontinue")
	} else if legacy := getMap(getMap(resp.Data, "query-continue"), "categorymembers"); legacy != nil {
		result.Continue = getString(legacy, "cmcontinue")
	}

	return result, nil
}

// normalizeCategoryName ensures the category name has its namespace prefix
func normalizeCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "Category:") {
		name = "Category:" + name
	}
	return name
}
