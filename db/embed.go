// Package db carries the embedded schema applied on startup.
package db

import _ "embed"

// Schema holds the DDL for the restaurants, menu_items, and discounts tables.
//
//go:embed migrations/001_schema.sql
var Schema string
