package mcpserver

// ContentFormatContract describes the canonical Markdown document format
// that synced content must follow.
const ContentFormatContract = `# Content Format Contract

Every Markdown document in the content tree MUST follow this structure.

## Layout

` + "```" + `
content/
  articles/<category>/<document>.md    # typed, categorized content
  pages/<document>.md                  # typed, uncategorized content
  articles/<category>/index.md         # category metadata document
` + "```" + `

The first path segment names the content type (articles, ideas, notes,
pages). The second segment, when the document sits one level deeper,
names the category. Directory placement wins over any type or category
declared in the header.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # REQUIRED for content documents
status: published                  # OPTIONAL - draft | published | archived
date: 2025-01-15                   # OPTIONAL - ISO-8601 date or datetime
author: username                   # OPTIONAL - must exist; sync fails otherwise
tags: [tag-one, tag-two]           # OPTIONAL - list or comma string
cover: images/cover.png            # OPTIONAL - media path or filename
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **Header fences are mandatory.** The ` + "```" + `---` + "```" + ` fences must be the
   first thing in the file.
2. **` + "`" + `title` + "`" + ` is required** for content documents; category index
   documents may use ` + "`" + `name` + "`" + ` instead.
3. **Generated fields** (slug, author_id, category_id, cover_media_id)
   are written back by the sync engine after creation. Do not invent
   values for them; leave them out of new documents.
4. **The slug never changes** after the first sync, even when the file
   moves or the title changes.
5. **Encoding** is UTF-8 with a trailing newline.
`
