// Package plansync mirrors the energy plan catalogs that Australian retailers
// publish through the Consumer Data Right (CDR) API. It discovers retailers,
// enumerates their plan identifiers page by page, and downloads every plan
// that is not already present in a local store.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, fs/, sqlite/, goquery/).
package plansync
