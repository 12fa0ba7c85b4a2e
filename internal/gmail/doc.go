// Package gmail reads Gmail messages through the Google adapter and hydrates
// them into Message values: sender, subject, sent date, text and HTML bodies
// and attachment metadata.
package gmail
