// Package vmnv verifies the non-interactive proofs of shuffle produced by Verificatum mix-nets, as
// used by the IVXV auditor. A proof directory holds the input and output ciphertext lists, the
// public key and the proof transcript as byte trees; together with the protocol information file
// of the mix-net these are loaded into a ShuffleProof, from which a Verifier recomputes every
// challenge and checks the proof equations.
//
// For now, see verifier_test.go on how to use the library.
package vmnv
