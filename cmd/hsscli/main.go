// Command hsscli exercises the hss library end to end from the command
// line: it reads a dense matrix from a CSV file, compresses it into an HSS
// tree, and then either reports compression statistics, multiplies the
// tree by a vector, or solves a linear system.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/hss/hss"
	"github.com/katalvlaran/hss/hss/linalg"
)

var (
	flagTol      float64
	flagReltol   bool
	flagLeafsize int
	flagWorkers  int
	flagOut      string
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:           "hsscli",
		Short:         "Compress dense matrices into HSS form, multiply and solve",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Float64Var(&flagTol, "tol", 1e-9, "truncation tolerance for compression")
	root.PersistentFlags().BoolVar(&flagReltol, "reltol", true, "interpret --tol relative to the largest pivot norm")
	root.PersistentFlags().IntVar(&flagLeafsize, "leafsize", 64, "maximum cluster-tree leaf size")
	root.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "worker count for the recursion harness (0 = NumCPU)")
	root.PersistentFlags().StringVarP(&flagOut, "out", "o", "", "output CSV path (default stdout)")

	root.AddCommand(compressCmd(log), matvecCmd(log), solveCmd(log))

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func cliConfig() hss.Config {
	return hss.Config{
		Tol:      flagTol,
		Reltol:   flagReltol,
		Leafsize: flagLeafsize,
		Workers:  flagWorkers,
	}
}

func compressCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "compress <matrix.csv>",
		Short: "Compress a dense matrix and report the off-diagonal ranks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, _, err := compressFromFile(log, args[0])
			if err != nil {
				return err
			}

			maxRank := 0
			for _, rk := range node.OffDiagonalRanks() {
				if rk[0] > maxRank {
					maxRank = rk[0]
				}
				if rk[1] > maxRank {
					maxRank = rk[1]
				}
			}
			log.Info().
				Int("branches", len(node.OffDiagonalRanks())).
				Int("max_rank", maxRank).
				Msg("compressed")

			return nil
		},
	}
}

func matvecCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "matvec <matrix.csv> <x.csv>",
		Short: "Multiply the compressed matrix by a vector read from CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, cfg, err := compressFromFile(log, args[0])
			if err != nil {
				return err
			}
			x, err := readCSVMatrix(args[1])
			if err != nil {
				return err
			}

			start := time.Now()
			y, err := hss.MatVec(node, x, cfg)
			if err != nil {
				return err
			}
			log.Info().
				Dur("elapsed", time.Since(start)).
				Int("rhs_cols", x.Cols()).
				Msg("matvec done")

			return writeOutput(y)
		},
	}
}

func solveCmd(log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "solve <matrix.csv> <b.csv>",
		Short: "Solve the linear system through the implicit ULV factorization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, cfg, err := compressFromFile(log, args[0])
			if err != nil {
				return err
			}
			b, err := readCSVMatrix(args[1])
			if err != nil {
				return err
			}

			start := time.Now()
			x, err := hss.Solve(node, b, cfg)
			if err != nil {
				return err
			}
			log.Info().
				Dur("elapsed", time.Since(start)).
				Int("rhs_cols", b.Cols()).
				Msg("solve done")

			return writeOutput(x)
		},
	}
}

// compressFromFile reads a dense matrix from path, builds matching row and
// column cluster trees, and compresses, logging basic statistics.
func compressFromFile(log zerolog.Logger, path string) (*hss.Node, hss.Config, error) {
	cfg := cliConfig()

	A, err := readCSVMatrix(path)
	if err != nil {
		return nil, cfg, err
	}

	rowTree, err := hss.BisectionCluster(0, A.Rows()-1, cfg.Leafsize)
	if err != nil {
		return nil, cfg, err
	}
	colTree, err := hss.BisectionCluster(0, A.Cols()-1, cfg.Leafsize)
	if err != nil {
		return nil, cfg, err
	}

	start := time.Now()
	node, err := hss.Compress(A, rowTree, colTree, cfg)
	if err != nil {
		return nil, cfg, err
	}
	log.Info().
		Int("rows", A.Rows()).
		Int("cols", A.Cols()).
		Float64("tol", cfg.Tol).
		Bool("reltol", cfg.Reltol).
		Int("leafsize", cfg.Leafsize).
		Dur("elapsed", time.Since(start)).
		Msg("compressed matrix")

	return node, cfg, nil
}

// readCSVMatrix parses a matrix from a CSV file of float64 rows.
func readCSVMatrix(path string) (*linalg.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty matrix", path)
	}

	rows, cols := len(records), len(records[0])
	data := make([]float64, 0, rows*cols)
	for i, rec := range records {
		if len(rec) != cols {
			return nil, fmt.Errorf("read %s: row %d has %d fields, want %d", path, i, len(rec), cols)
		}
		for _, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			data = append(data, v)
		}
	}

	return linalg.NewDenseFromRowMajor(rows, cols, data)
}

// writeOutput writes m as CSV to --out, or stdout when the flag is unset.
func writeOutput(m *linalg.Dense) error {
	var w io.Writer = os.Stdout
	if flagOut != "" {
		f, err := os.Create(flagOut)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	cw := csv.NewWriter(w)
	rec := make([]string, m.Cols())
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			v, _ := m.At(i, j)
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
