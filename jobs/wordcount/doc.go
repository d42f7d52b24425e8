// Package wordcount counts words over per-word sliding count windows.
//
// Each word has its own window over its last Size occurrences. The window
// fires every Size/Steps occurrences of the word, emitting the number of
// occurrences it currently holds.
package wordcount
