package models

import (
	"fmt"
	"math"
	"math/rand"
)

// KernelSVM is a C-SVM trained with a simplified SMO loop. Probability
// output uses Platt scaling, fitted only on demand via CalibrateProbability:
// ranking during hyperparameter search needs raw decision values only, and
// calibration is the expensive part.
type KernelSVM struct {
	C        float64
	Gamma    float64
	Degree   int
	Kernel   string
	Balanced bool
	MaxIter  int
	Tol      float64
	Seed     int64

	SupportVectors [][]float64
	AlphaY         []float64
	B              float64

	Calibrated bool
	PlattA     float64
	PlattB     float64
}

func NewKernelSVM(c, gamma float64, degree int, kernel string, balanced bool, seed int64) *KernelSVM {
	if c <= 0 {
		c = 1
	}
	if gamma <= 0 {
		gamma = 0.1
	}
	if kernel == "" {
		kernel = "rbf"
	}
	if degree < 2 {
		degree = 3
	}

	return &KernelSVM{
		C:        c,
		Gamma:    gamma,
		Degree:   degree,
		Kernel:   kernel,
		Balanced: balanced,
		MaxIter:  5,
		Tol:      1e-3,
		Seed:     seed,
	}
}

func (svm *KernelSVM) Name() string {
	return "svc"
}

func (svm *KernelSVM) Params() map[string]any {
	return map[string]any{
		"C":            svm.C,
		"gamma":        svm.Gamma,
		"degree":       svm.Degree,
		"kernel":       svm.Kernel,
		"class_weight": classWeightName(svm.Balanced),
	}
}

func (svm *KernelSVM) Clone() Estimator {
	clone := NewKernelSVM(svm.C, svm.Gamma, svm.Degree, svm.Kernel, svm.Balanced, svm.Seed)
	clone.MaxIter = svm.MaxIter
	clone.Tol = svm.Tol
	return clone
}

func (svm *KernelSVM) kernel(a, b []float64) float64 {
	switch svm.Kernel {
	case "linear":
		return dot(a, b)
	case "poly":
		return math.Pow(svm.Gamma*dot(a, b)+1, float64(svm.Degree))
	case "sigmoid":
		return math.Tanh(svm.Gamma*dot(a, b) + 1)
	default: // rbf
		sum := 0.0
		for i := range a {
			diff := a[i] - b[i]
			sum += diff * diff
		}
		return math.Exp(-svm.Gamma * sum)
	}
}

// Fit runs simplified SMO: sweep the samples, pair each KKT violator with a
// random partner, and solve the two-variable subproblem analytically.
func (svm *KernelSVM) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training data: %d samples, %d labels", len(X), len(y))
	}

	n := len(X)
	signed := make([]float64, n)
	for i, label := range y {
		if label == 1 {
			signed[i] = 1
		} else {
			signed[i] = -1
		}
	}

	classWeights := ClassWeights(y, svm.Balanced)
	boxC := make([]float64, n)
	for i, label := range y {
		boxC[i] = svm.C * classWeights[label]
	}

	K := make([][]float64, n)
	for i := range K {
		K[i] = make([]float64, n)
		for j := 0; j <= i; j++ {
			K[i][j] = svm.kernel(X[i], X[j])
			K[j][i] = K[i][j]
		}
	}

	alphas := make([]float64, n)
	b := 0.0
	rng := rand.New(rand.NewSource(svm.Seed))

	decision := func(i int) float64 {
		sum := b
		for k := 0; k < n; k++ {
			if alphas[k] > 0 {
				sum += alphas[k] * signed[k] * K[k][i]
			}
		}
		return sum
	}

	for pass := 0; pass < svm.MaxIter; pass++ {
		changed := 0
		for i := 0; i < n; i++ {
			ei := decision(i) - signed[i]
			if !((signed[i]*ei < -svm.Tol && alphas[i] < boxC[i]) || (signed[i]*ei > svm.Tol && alphas[i] > 0)) {
				continue
			}

			j := rng.Intn(n - 1)
			if j >= i {
				j++
			}
			ej := decision(j) - signed[j]

			var low, high float64
			if signed[i] != signed[j] {
				low = math.Max(0, alphas[j]-alphas[i])
				high = math.Min(boxC[j], boxC[i]+alphas[j]-alphas[i])
			} else {
				low = math.Max(0, alphas[i]+alphas[j]-boxC[i])
				high = math.Min(boxC[j], alphas[i]+alphas[j])
			}
			if low >= high {
				continue
			}

			eta := 2*K[i][j] - K[i][i] - K[j][j]
			if eta >= 0 {
				continue
			}

			oldAi, oldAj := alphas[i], alphas[j]
			alphas[j] = oldAj - signed[j]*(ei-ej)/eta
			alphas[j] = math.Min(high, math.Max(low, alphas[j]))
			if math.Abs(alphas[j]-oldAj) < 1e-5 {
				continue
			}
			alphas[i] = oldAi + signed[i]*signed[j]*(oldAj-alphas[j])

			b1 := b - ei - signed[i]*(alphas[i]-oldAi)*K[i][i] - signed[j]*(alphas[j]-oldAj)*K[i][j]
			b2 := b - ej - signed[i]*(alphas[i]-oldAi)*K[i][j] - signed[j]*(alphas[j]-oldAj)*K[j][j]
			switch {
			case alphas[i] > 0 && alphas[i] < boxC[i]:
				b = b1
			case alphas[j] > 0 && alphas[j] < boxC[j]:
				b = b2
			default:
				b = (b1 + b2) / 2
			}
			changed++
		}
		if changed == 0 {
			break
		}
	}

	svm.SupportVectors = nil
	svm.AlphaY = nil
	for i, alpha := range alphas {
		if alpha > 0 {
			sv := make([]float64, len(X[i]))
			copy(sv, X[i])
			svm.SupportVectors = append(svm.SupportVectors, sv)
			svm.AlphaY = append(svm.AlphaY, alpha*signed[i])
		}
	}
	svm.B = b
	svm.Calibrated = false
	return nil
}

// DecisionFunction returns the raw margin for each row.
func (svm *KernelSVM) DecisionFunction(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		sum := svm.B
		for k, sv := range svm.SupportVectors {
			sum += svm.AlphaY[k] * svm.kernel(sv, row)
		}
		out[i] = sum
	}
	return out
}

// PredictProba maps margins through the Platt sigmoid when calibrated and
// through a plain logistic squash otherwise. The uncalibrated output keeps
// the margin ordering, which is all ROC-AUC scoring needs.
func (svm *KernelSVM) PredictProba(X [][]float64) []float64 {
	decisions := svm.DecisionFunction(X)
	proba := make([]float64, len(decisions))
	for i, f := range decisions {
		if svm.Calibrated {
			proba[i] = 1 / (1 + math.Exp(svm.PlattA*f+svm.PlattB))
		} else {
			proba[i] = sigmoid(f)
		}
	}
	return proba
}

// CalibrateProbability fits the Platt sigmoid on the given data, which should
// be the same (already transformed) training set the SVM was fitted on.
func (svm *KernelSVM) CalibrateProbability(X [][]float64, y []int) error {
	if len(svm.SupportVectors) == 0 {
		return fmt.Errorf("svm must be fitted before calibration")
	}

	decisions := svm.DecisionFunction(X)

	// Platt's smoothed targets to avoid saturating the sigmoid fit.
	nPos, nNeg := 0.0, 0.0
	for _, label := range y {
		if label == 1 {
			nPos++
		} else {
			nNeg++
		}
	}
	tPos := (nPos + 1) / (nPos + 2)
	tNeg := 1 / (nNeg + 2)

	targets := make([]float64, len(y))
	for i, label := range y {
		if label == 1 {
			targets[i] = tPos
		} else {
			targets[i] = tNeg
		}
	}

	a, bb := -1.0, 0.0
	step := 1e-2 / float64(len(y))
	for iter := 0; iter < 2000; iter++ {
		gradA, gradB := 0.0, 0.0
		for i, f := range decisions {
			p := 1 / (1 + math.Exp(a*f+bb))
			gradA += (targets[i] - p) * f
			gradB += targets[i] - p
		}
		a -= step * gradA
		bb -= step * gradB
		if math.Abs(gradA)+math.Abs(gradB) < 1e-6 {
			break
		}
	}

	svm.PlattA = a
	svm.PlattB = bb
	svm.Calibrated = true
	return nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
