package jobs

import (
	"math"
	"sort"
	"unicode/utf8"
)

// tfidfMatrix vectorizes docs the way a default scikit-learn TfidfVectorizer
// does: tokens of two or more characters, raw term counts, smoothed idf
// ln((1+n)/(1+df))+1, and l2-normalized rows. Each doc is a slice of words.
// Returns one sparse row per doc, keyed by vocabulary index.
func tfidfMatrix(docs [][]string) []map[int]float64 {
	vocab := make(map[string]int)
	var terms []string
	for _, doc := range docs {
		for _, w := range doc {
			if utf8.RuneCountInString(w) < 2 {
				continue
			}
			if _, ok := vocab[w]; !ok {
				vocab[w] = len(terms)
				terms = append(terms, w)
			}
		}
	}
	// Sorted vocabulary keeps indices stable across runs.
	sort.Strings(terms)
	for i, t := range terms {
		vocab[t] = i
	}

	counts := make([]map[int]float64, len(docs))
	df := make([]int, len(terms))
	for i, doc := range docs {
		tf := make(map[int]float64)
		for _, w := range doc {
			if idx, ok := vocab[w]; ok {
				tf[idx]++
			}
		}
		for idx := range tf {
			df[idx]++
		}
		counts[i] = tf
	}

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	for _, row := range counts {
		var norm float64
		for idx, tf := range row {
			v := tf * idf[idx]
			row[idx] = v
			norm += v * v
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for idx := range row {
			row[idx] /= norm
		}
	}
	return counts
}

// cosineMatrix returns the pairwise cosine similarity of l2-normalized rows.
// Zero rows are similar to nothing, including themselves.
func cosineMatrix(rows []map[int]float64) [][]float64 {
	n := len(rows)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := sparseDot(rows[i], rows[j])
			sim[i][j] = v
			sim[j][i] = v
		}
	}
	return sim
}

func sparseDot(a, b map[int]float64) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var s float64
	for idx, v := range a {
		s += v * b[idx]
	}
	return s
}
