package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/edp1096/intensity/internal/consts"
	"github.com/edp1096/intensity/pkg/matrix"
	"github.com/edp1096/intensity/pkg/util"
)

func newDetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "det [file]",
		Short: "Print the determinant of a square matrix",
		Long: `Read a size n followed by n*n numbers in row-major order from a file
or stdin and print the determinant.

Examples:
  echo "2  1 2  3 4" | intensity det     # -2`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDet,
	}
}

func runDet(cmd *cobra.Command, args []string) error {
	in, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer in.Close()

	n, data, err := readSquare(in)
	if err != nil {
		return err
	}

	det, err := matrix.Determinant(n, data)
	if err != nil {
		return fmt.Errorf("determinant: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), util.FormatFixed(det, consts.DetPrecision))
	return nil
}

func readSquare(r io.Reader) (int, []float64, error) {
	br := bufio.NewReader(r)

	var n int
	if _, err := fmt.Fscan(br, &n); err != nil {
		return 0, nil, fmt.Errorf("reading size: %w", err)
	}
	if n <= 0 {
		return 0, nil, fmt.Errorf("%w: size %d", matrix.ErrBadShape, n)
	}

	data := make([]float64, n*n)
	for i := range data {
		if _, err := fmt.Fscan(br, &data[i]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return 0, nil, fmt.Errorf("%w: got %d of %d values", matrix.ErrBadShape, i, n*n)
			}
			return 0, nil, fmt.Errorf("reading value %d: %w", i+1, err)
		}
	}
	return n, data, nil
}
