package mcpserver

// FrontMatterContract describes the canonical front matter shape that
// LLM consumers should follow when creating or editing site content.
const FrontMatterContract = `# Jera Front Matter Contract

Every Markdown file Jera builds MAY open with YAML front matter. Posts
under ` + "`_posts/`" + ` MUST have it.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED for posts – page <title>, listings, search
layout: post                       # OPTIONAL – layout name; posts usually "post", pages "default"
date: 2026-01-20 09:00:00 +0000    # posts: REQUIRED here or in the file name
categories: [news, releases]       # OPTIONAL – first category leads the post URL
tags:                              # OPTIONAL – YAML list; drives tag archive pages
  - golang
  - tooling
excerpt: One-line summary.         # OPTIONAL – otherwise the first paragraph is used
draft: true                        # OPTIONAL – drafts are skipped unless building with drafts
---

Body text in standard Markdown (GFM tables, strikethrough and task
lists are on). Link to other pages with root-relative URLs:
[about](/about/).
` + "```" + `

## Rules

1. **The ` + "`---`" + ` fences must be the first thing in the file** (no leading
   blank lines). A page without front matter is copied through the
   Markdown pipeline with defaults applied.
2. **Posts are named ` + "`YYYY-MM-DD-title.md`" + `.** The date prefix is used
   when the ` + "`date`" + ` field is absent; the rest of the name becomes the
   URL slug.
3. **A post without any date is skipped** and reported as a content
   error. Give every post a date.
4. **Dates** accept ` + "`2006-01-02`" + `, ` + "`2006-01-02 15:04`" + `,
   ` + "`2006-01-02 15:04:05`" + `, ` + "`2006-01-02 15:04:05 -0700`" + ` and RFC 3339.
5. **Tags and categories** are lowercase, kebab-case
   (e.g. ` + "`release-notes`" + `). ` + "`categories: news`" + ` and
   ` + "`categories: [news]`" + ` are equivalent.
6. **Unknown keys are kept**, exposed to layouts under ` + "`.Page.FrontMatter`" + `,
   and never cause errors. The generated ` + "`uid`" + ` key identifies a file
   across renames.
7. **Internal links** use root-relative URLs ending in ` + "`/`" + `
   (e.g. ` + "`/news/2026/01/20/release/`" + `). The link checker reports targets
   that no built page claims.
8. **Encoding** is UTF-8 with a trailing newline.

## Example

` + "```" + `markdown
---
uid: 7b2d3a9e-4c4f-4a83-9e6a-2f8f6f0d1c55
title: "Jera 1.2 released"
layout: post
date: 2026-01-20 09:00:00 +0000
categories: [releases]
tags:
  - release-notes
---

Jera 1.2 ships incremental preview builds.

See the [changelog](/releases/changelog/) for details.
` + "```" + `
`
