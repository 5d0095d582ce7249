// Package header extracts block metadata from the leading `{# ... #}` comment of a
// template. Each line of the comment declares one header as `Name: value`; the
// recognised names are fixed and every one of them is always present in the
// extracted Set, defaulting to an empty string.
package header
