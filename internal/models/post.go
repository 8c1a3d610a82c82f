// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid returns true for the two known statuses.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

// DefaultAuthor is stored when a post is created without an author.
const DefaultAuthor = "Admin"

// SEO holds optional per-post overrides for search engine metadata.
type SEO struct {
	MetaTitle       string `json:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	FocusKeyword    string `json:"focusKeyword,omitempty"`
}

// Post is a news article. Content is HTML and is rendered unescaped on
// public pages, so it is sanitised before it reaches the store.
type Post struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	Summary       string     `json:"summary"`
	CategoryID    uuid.UUID  `json:"categoryId"`
	Author        string     `json:"author"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Tags          []string   `json:"tags"`
	SEO           SEO        `json:"seo"`
	Status        PostStatus `json:"status"`
	IsTrending    bool       `json:"isTrending"`
	Views         int64      `json:"views"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Category is resolved from CategoryID by the service layer. It is nil
	// when the referenced category has been deleted.
	Category *Category `json:"category"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// PostChanges lists the fields to overwrite on an existing post.
// Nil fields are left untouched.
type PostChanges struct {
	Title         *string
	Slug          *string
	Content       *string
	Summary       *string
	CategoryID    *uuid.UUID
	Author        *string
	FeaturedImage *string
	Tags          *[]string
	SEO           *SEO
	Status        *PostStatus
	IsTrending    *bool
}

// List limits applied when a filter does not specify one.
const (
	DefaultListLimit = 10
	MaxListLimit     = 100
)

// PostFilter selects posts for listing. The zero value lists the ten most
// recent published posts.
type PostFilter struct {
	// Status restricts results to one status. It only applies when
	// IncludeAll is set; otherwise only published posts are eligible.
	Status     PostStatus
	CategoryID *uuid.UUID
	Trending   bool
	// Query matches title or summary by case-insensitive substring.
	Query      string
	Limit      int
	IncludeAll bool
}

// EffectiveStatus returns the status the filter actually restricts to, or
// the empty string when any status is eligible.
func (f PostFilter) EffectiveStatus() PostStatus {
	if !f.IncludeAll {
		return PostStatusPublished
	}
	return f.Status
}

// EffectiveLimit clamps Limit into [1, MaxListLimit], substituting the
// default for non-positive values.
func (f PostFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}
