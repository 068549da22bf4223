// Command alttext scans markdown trees for media lacking meaningful alt
// text, drafts captions through a vision model, reviews them interactively,
// and writes approved captions back into the documents.
package main
