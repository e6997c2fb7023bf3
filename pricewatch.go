// Package pricewatch monitors competitors' public pricing pages and turns
// raw page content into structured, severity-ranked change alerts. It
// fetches unpredictable, often JS-heavy pages through a cost-ordered
// cascade of strategies, extracts a structured pricing representation,
// compares successive captures to separate signal from noise, and applies
// deterministic rules to decide whether and how urgently to alert.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, gemini/).
package pricewatch
