// Package dyntable augments row/column data with a declarative column
// model, a small {{...}} tag-template language for custom cell
// rendering, and an ordering transformer that gives text fields a
// case-insensitive sort key.
//
// Table definitions are built once with Define and bound per request
// with Definition.New; instances own copies of the column list and
// annotation map, so concurrent renders never share mutable state.
package dyntable
