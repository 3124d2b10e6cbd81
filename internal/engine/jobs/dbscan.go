package jobs

import "math"

// noiseLabel marks points that belong to no cluster.
const noiseLabel = -1

// dbscan clusters points with euclidean distance. A point is a core point when
// at least minSamples points, itself included, lie within eps. Clusters are
// numbered from 0 in order of their first core point; border points join the
// first cluster that reaches them.
func dbscan(points [][]float64, eps float64, minSamples int) []int {
	n := len(points)
	neighbors := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if euclidean(points[i], points[j]) <= eps {
				neighbors[i] = append(neighbors[i], j)
			}
		}
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = noiseLabel
	}

	cluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != noiseLabel || len(neighbors[i]) < minSamples {
			continue
		}
		labels[i] = cluster
		stack := []int{i}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(neighbors[p]) < minSamples {
				continue
			}
			for _, q := range neighbors[p] {
				if labels[q] == noiseLabel {
					labels[q] = cluster
					stack = append(stack, q)
				}
			}
		}
		cluster++
	}
	return labels
}

func euclidean(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s)
}
