// Package scanner walks a document tree and finds media references lacking
// meaningful alt text. Markdown images are read from the goldmark AST, raw
// HTML (<img>, <video> with nested <source>) through goquery, and
// Obsidian-style wikilink embeds from the source lines directly.
//
// Scanning is read-only over documents and total over errors: unreadable
// files are skipped with a diagnostic, and an empty result is a valid scan.
package scanner
