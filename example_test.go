package regression

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/statforge/go-regression/dataset"
)

func Example_linearRegression() {
	tbl, err := dataset.New(
		[]string{"y", "x"},
		[][]float64{
			{2, 5, 8, 11, 14},
			{0, 1, 2, 3, 4},
		},
	)
	if err != nil {
		panic(err)
	}

	m, err := Fit(tbl, "y", []string{"x"}, Gaussian, nil)
	if err != nil {
		panic(err)
	}

	coefs, err := m.Coefficients()
	if err != nil {
		panic(err)
	}
	for _, c := range coefs {
		fmt.Printf("%s %.2f\n", c.Name, c.Estimate)
	}
	// Output:
	// (Intercept) 2.00
	// x 3.00
}

func Example_countRegression() {
	// Counts that double with each unit of the predictor.
	tbl, err := dataset.New(
		[]string{"count", "x"},
		[][]float64{
			{1, 2, 4, 8},
			{0, 1, 2, 3},
		},
	)
	if err != nil {
		panic(err)
	}

	m, err := Fit(tbl, "count", []string{"x"}, Poisson, nil)
	if err != nil {
		panic(err)
	}

	// Rate ratio per unit of x on the response scale.
	fmt.Printf("rate ratio %.2f\n", math.Exp(m.Coef()[0]))

	next, err := dataset.New([]string{"x"}, [][]float64{{4}})
	if err != nil {
		panic(err)
	}
	pred, err := m.Predict(next, ScaleResponse)
	if err != nil {
		panic(err)
	}
	fmt.Printf("predicted count at x=4: %.1f\n", pred[0])
	// Output:
	// rate ratio 2.00
	// predicted count at x=4: 16.0
}

func Example_overdispersionCheck() {
	f, err := os.Open(filepath.Join("testdata", "species.csv"))
	if err != nil {
		panic(err)
	}
	defer f.Close()

	opt := dataset.NewDefaultCSVOptions()
	opt.LabelColumn = "region"
	tbl, err := dataset.ReadCSV(f, opt)
	if err != nil {
		panic(err)
	}

	fitOpt := NewDefaultFitOptions()
	fitOpt.Offset = "log_area"

	poisson, err := Fit(tbl, "count", []string{"elevation"}, Poisson, fitOpt)
	if err != nil {
		panic(err)
	}
	negbin, err := Fit(tbl, "count", []string{"elevation"}, NegBinomial, fitOpt)
	if err != nil {
		panic(err)
	}

	test, err := TestOverdispersion(poisson, negbin)
	if err != nil {
		panic(err)
	}
	fmt.Printf("overdispersed: %t\n", test.Overdispersed)
	// Output:
	// overdispersed: true
}
