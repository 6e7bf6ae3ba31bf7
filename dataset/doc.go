// Package dataset provides the in-memory table the listing pipeline works on.
//
// A Table is an ordered set of named, equally long columns of Cells. Cells are
// null, text or numbers. Raw CSV input is read through gota's dataframe reader
// with every value kept as text, so parsing stays the job of the encoders:
//
//	tbl, err := dataset.LoadCSV("listings.csv", nil)
//	pruned, err := tbl.Drop("id", "listing_url")
//
// Tables are copy-on-write: Drop, WithColumn, InsertBefore, Filter and friends
// return a new Table and never modify the receiver.
package dataset
