// Package hss compresses dense matrices into Hierarchically Semiseparable
// form and operates on them without ever re-densifying.
//
// The hss package provides:
//
//   - BisectionCluster for building binary cluster trees over index ranges.
//   - Compress, the top-down direct construction of an HSS tree from a
//     dense matrix, with generator ranks adaptive to a truncation tolerance.
//   - MatVec, a two-pass traversal multiplying the compressed matrix by any
//     number of right-hand-side columns in time linear in the HSS storage.
//   - Solve, a linear solve through an implicit ULV factorization: a
//     bottom-up QL/LQ reduction, a dense solve of the root remainder, and a
//     top-down sweep rotating the solution back into the original basis.
//
// HSS form pays off when the off-diagonal blocks of a matrix have low
// numerical rank, as they do for discretized integral kernels and many
// structured operators. Pathological full-rank inputs still compress and
// solve correctly; they just gain nothing over dense arithmetic.
//
// Compress, MatVec and Solve take an explicit Config (BisectionCluster takes
// its leaf size directly); there is no package-level mutable state.
package hss
