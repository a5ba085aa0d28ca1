package main

import "github.com/Learning-diagnosis-predictor/diagnosis-predictor/internal/cli"

func main() {
	cli.Execute()
}
