// Package sanpo extracts structured information from HTML documents.
// It produces normalized, deduplicated hyperlinks and a lightweight
// transparency report combining document structure (title, headings,
// paragraphs, last-modified metadata) with keyword-based paragraph tagging.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, slog/).
package sanpo
