// Package lexical provides the full-text side of hybrid retrieval. It keeps
// a keyword index over clip document text fields and ranks matches with BM25,
// complementing the vector channels served by the embedding store.
package lexical
