package wiki

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"

	"github.com/olgasafonova/mediawiki-api-client/metrics"
)

// PageRef identifies an edit target by title or by page id.
// The zero value is invalid.
type PageRef struct {
	title  string
	pageID int
}

// Title refers to a page by name
func Title(name string) PageRef {
	return PageRef{title: name}
}

// PageID refers to a page by numeric id
func PageID(id int) PageRef {
	return PageRef{pageID: id}
}

func (p PageRef) valid() bool {
	return p.title != "" || p.pageID > 0
}

// String returns the title or the page id
func (p PageRef) String() string {
	if p.title != "" {
		return p.title
	}
	return strconv.Itoa(p.pageID)
}

// EditOptions are the fields of an edit request. At least one of Text,
// AppendText or PrependText must be set.
type EditOptions struct {
	Text        string
	AppendText  string
	PrependText string

	Summary      string
	Section      string
	SectionTitle string
	Minor        bool
	NotMinor     bool

	BaseTimestamp  string
	StartTimestamp string

	// Watchlist is one of watch, unwatch, preferences, nochange
	Watchlist string

	// Extra carries API parameters not covered above. Keys the edit sets
	// itself (see reservedEditFields) are ignored.
	Extra url.Values
}

// reservedEditFields are derived from the target, the content or the
// session and cannot be overridden through Extra
var reservedEditFields = map[string]bool{
	"title":       true,
	"pageid":      true,
	"text":        true,
	"appendtext":  true,
	"prependtext": true,
	"md5":         true,
	"token":       true,
	"nocreate":    true,
	"bot":         true,
}

// checksum returns the MD5 of the content the edit submits
func (o EditOptions) checksum() (string, error) {
	switch {
	case o.AppendText != "" || o.PrependText != "":
		return md5Hex(o.PrependText + o.AppendText), nil
	case o.Text != "":
		return md5Hex(o.Text), nil
	default:
		return "", &MissingContentError{}
	}
}

func md5Hex(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// fields renders the options as API parameters
func (o EditOptions) fields() url.Values {
	f := url.Values{}
	for k, vals := range o.Extra {
		if reservedEditFields[k] {
			continue
		}
		f[k] = append([]string(nil), vals...)
	}

	setIf := func(key, value string) {
		if value != "" {
			f.Set(key, value)
		}
	}
	setIf("text", o.Text)
	setIf("appendtext", o.AppendText)
	setIf("prependtext", o.PrependText)
	setIf("summary", o.Summary)
	setIf("section", o.Section)
	setIf("sectiontitle", o.SectionTitle)
	setIf("basetimestamp", o.BaseTimestamp)
	setIf("starttimestamp", o.StartTimestamp)
	setIf("watchlist", o.Watchlist)
	if o.Minor {
		f.Set("minor", "true")
	}
	if o.NotMinor {
		f.Set("notminor", "true")
	}
	return f
}

// buildEditBody validates the edit and returns its body fields without
// the token. Nothing is sent and no session state changes on failure.
func (s *Session) buildEditBody(page PageRef, opts EditOptions) (url.Values, error) {
	if !page.valid() {
		return nil, &InvalidTitleError{}
	}
	sum, err := opts.checksum()
	if err != nil {
		return nil, err
	}

	body := opts.fields()
	if page.title != "" {
		body.Set("title", page.title)
	} else {
		body.Set("pageid", strconv.Itoa(page.pageID))
	}
	body.Set("md5", sum)
	body.Set("nocreate", "true")
	if s.IsBot() {
		body.Set("bot", "true")
	}
	return body, nil
}

// Edit changes an existing page. Pages are never created through Edit.
// The edit token is fetched once and reused; it is dropped from the cache
// when the server rejects it as badtoken, without retrying.
func (s *Session) Edit(ctx context.Context, page PageRef, opts EditOptions) (*Response, error) {
	body, err := s.buildEditBody(page, opts)
	if err != nil {
		return nil, err
	}
	metrics.ContentSize.WithLabelValues("edit").Observe(float64(len(opts.Text + opts.AppendText + opts.PrependText)))

	token, err := s.token(ctx, TokenEdit)
	if err != nil {
		metrics.RecordEdit("token_error")
		return nil, err
	}
	body.Set("token", token)

	params := url.Values{}
	params.Set("action", "edit")

	resp, err := s.Post(ctx, params, encodeForm(body))
	if err != nil {
		var pe *ProtocolError
		if errors.As(err, &pe) && pe.Code == "badtoken" {
			s.tokens.Invalidate(TokenEdit)
			s.logger.Warn("Edit token rejected, dropped from cache",
				"session", s.id,
				"page", page.String())
		}
		metrics.RecordEdit("error")
		return resp, err
	}

	metrics.RecordEdit("success")
	s.logger.Info("Page edited",
		"session", s.id,
		"page", page.String(),
		"bot", s.IsBot())
	return resp, nil
}
