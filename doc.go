// Package splintr provides a byte-level BPE tokenizer with atomic agent
// markers for LLM input processing.
//
// It reconciles two tokenization regimes in one pass: a learned BPE
// segmentation of ordinary text and a fixed set of marker strings
// (<|think|>, <|function|>, ...) that always encode as a single id and
// are never split or merged. The cl100k_base and o200k_base variants
// share one marker layout, so the k-th marker means the same thing in
// every variant; only the range base differs.
package splintr
