package mcpserver

// PostFormatContract describes the canonical post file format that LLM
// consumers should follow when creating or updating posts.
const PostFormatContract = `# Blogster Post Format Contract

Every post stored by Blogster MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: "Human-readable title"       # REQUIRED for publishing
id: "9b2f..."                        # UUID, assigned by Blogster; omit for new posts
created_at: "2025-01-15T10:00:00Z"  # RFC3339; assigned by Blogster
updated_at: "2025-01-15T10:00:00Z"
status: "Draft"                      # Draft | Published | Failed
summary: "One-line teaser"           # OPTIONAL, becomes the summary tag
tags:                                # OPTIONAL, become hashtag tags
  - "nostr"
  - "golang"
image: "https://..."                 # OPTIONAL featured image URL
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. The metadata block sits between two lines of exactly ` + "`---`" + `.
2. Values are double-quoted; list values are indented ` + "`- \"item\"`" + ` lines.
3. ` + "`status`" + `, ` + "`nostr_event_id`" + `, and ` + "`published_relays`" + ` are managed by
   Blogster's publish flow; do not set them by hand.
4. A file with no metadata block is accepted as body-only; the title is
   inferred from the first level-1 heading.
5. Publishing requires a non-blank title and body.
`
