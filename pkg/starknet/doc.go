// Package starknet provides small helpers for working with Starknet values
// as they appear in indexer and RPC responses.
//
// # Addresses
//
// Contract addresses arrive zero-padded, unpadded, upper or lower case
// depending on the source. NormalizeAddress folds all of them to one form so
// they can be used as map keys:
//
//	starknet.NormalizeAddress("0x000ABC") // "0xabc"
//
// # Felts
//
// Short strings (guild names) are stored as felts. HexToASCII decodes them
// back into display text. ParseFelt and FeltHex convert between hex felts and
// integers for token ids.
//
// # Selectors
//
// Selector computes the entry point selector for a function name, the
// starknet_keccak of the name truncated to 250 bits.
package starknet
