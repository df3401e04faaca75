// Package linalg provides the dense linear-algebra primitives HSS compression
// and solve build on: a row-major Dense matrix type plus a small
// BLAS/LAPACK-flavored facade (rank-revealing QR, QL/LQ factorizations,
// triangular solve, matrix multiply, and a dense linear solve).
//
// Every routine here operates on explicit, materialized matrices rather than
// compressed Householder representations; HSS blocks are small enough at any
// one tree node that the clarity of an explicit orthogonal factor outweighs
// the memory it costs.
package linalg
