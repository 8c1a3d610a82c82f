package service

import (
	"errors"
	"html"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/microcosm-cc/bluemonday"

	"newsroom/internal/slug"
)

// Field limits for posts and categories.
const (
	maxTitleLen       = 300
	maxSlugLen        = 300
	maxContentLen     = 100_000
	maxSummaryLen     = 1_000
	maxAuthorLen      = 200
	maxURLLen         = 2_000
	maxNameLen        = 200
	maxDescriptionLen = 1_000
	maxMetaTitleLen   = 300
	maxMetaDescLen    = 500
	maxKeywordLen     = 200
	maxTags           = 20
	maxTagLen         = 50
)

// slugRule accepts empty values (Required handles those) and otherwise
// demands canonical slug form.
var slugRule = validation.By(func(value any) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	if !slug.Valid(s) {
		return errors.New("must contain only lowercase letters, digits and single hyphens")
	}
	return nil
})

// textPolicy strips all markup, leaving the text a reader would see.
var textPolicy = bluemonday.StrictPolicy()

// visibleTextRule rejects HTML that renders no text, such as "<p></p>".
// Empty values pass; Required or NilOrNotEmpty handle those.
var visibleTextRule = validation.By(func(value any) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	if strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s))) == "" {
		return errors.New("cannot be blank")
	}
	return nil
})

// tagRules apply to a post's tag list.
var tagRules = []validation.Rule{
	validation.Length(0, maxTags),
	validation.Each(validation.Required, validation.Length(1, maxTagLen)),
}

// trimPtr trims a present optional string in place.
func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// normalizeTags trims every tag and drops empty entries.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
