// Package pages provides the SQLite persistence of Page records. Pages of a
// document are always returned in ordinal order.
package pages
