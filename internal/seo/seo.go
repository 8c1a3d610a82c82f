// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package seo builds search and social sharing metadata for article pages.
package seo

import (
	"html"
	"strings"
	"time"
	"unicode"

	"github.com/microcosm-cc/bluemonday"

	"newsroom/internal/models"
)

const (
	// descriptionLen is the rune budget for descriptions derived from content.
	descriptionLen = 160

	defaultImage = "/og-image.png"
	imageWidth   = 1200
	imageHeight  = 630
)

// stripTags removes all markup, leaving text only.
var stripTags = bluemonday.StrictPolicy()

// Image is an OpenGraph image reference.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

// OpenGraph holds the og:* properties of an article.
type OpenGraph struct {
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	URL           string    `json:"url"`
	SiteName      string    `json:"siteName"`
	Type          string    `json:"type"`
	PublishedTime time.Time `json:"publishedTime"`
	ModifiedTime  time.Time `json:"modifiedTime"`
	Authors       []string  `json:"authors"`
	Image         Image     `json:"image"`
}

// Twitter holds the twitter:* card properties.
type Twitter struct {
	Card        string `json:"card"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Metadata is everything a page head needs for one article.
type Metadata struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Keywords    []string  `json:"keywords"`
	Canonical   string    `json:"canonical"`
	OpenGraph   OpenGraph `json:"openGraph"`
	Twitter     Twitter   `json:"twitter"`
}

// Build derives page metadata for p. Explicit SEO overrides on the post
// win over values derived from its title, summary and content. siteURL
// must not carry a trailing slash.
func Build(p *models.Post, siteURL, siteName string) Metadata {
	siteURL = strings.TrimRight(siteURL, "/")
	canonical := siteURL + "/article/" + p.Slug

	title := firstNonEmpty(p.SEO.MetaTitle, p.Title)
	description := firstNonEmpty(p.SEO.MetaDescription, p.Summary, Excerpt(p.Content, descriptionLen))
	image := firstNonEmpty(p.FeaturedImage, siteURL+defaultImage)
	author := firstNonEmpty(p.Author, siteName)

	var categoryName string
	if p.Category != nil {
		categoryName = p.Category.Name
	}
	keywords := []string{p.SEO.FocusKeyword, categoryName}
	keywords = append(keywords, p.Tags...)
	keywords = append(keywords, siteName, "news")

	modified := p.UpdatedAt
	if modified.IsZero() {
		modified = p.CreatedAt
	}

	return Metadata{
		Title:       title,
		Description: description,
		Keywords:    dedupe(keywords),
		Canonical:   canonical,
		OpenGraph: OpenGraph{
			Title:         title,
			Description:   description,
			URL:           canonical,
			SiteName:      siteName,
			Type:          "article",
			PublishedTime: p.CreatedAt,
			ModifiedTime:  modified,
			Authors:       []string{author},
			Image: Image{
				URL:    image,
				Width:  imageWidth,
				Height: imageHeight,
				Alt:    p.Title,
			},
		},
		Twitter: Twitter{
			Card:        "summary_large_image",
			Title:       title,
			Description: description,
			Image:       image,
		},
	}
}

// Excerpt returns at most limit runes of the plain text of an HTML
// fragment, with whitespace collapsed.
func Excerpt(content string, limit int) string {
	text := html.UnescapeString(stripTags.Sanitize(content))
	text = strings.Join(strings.FieldsFunc(text, unicode.IsSpace), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit]))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// dedupe drops blanks and case-insensitive repeats, keeping first order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
