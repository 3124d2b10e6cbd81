package jobs

import (
	"strconv"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

// ColSimilarityChecked is true for listings kept after near-duplicate
// suppression, false for suppressed duplicates.
const ColSimilarityChecked = "similarity_checked"

const (
	similarityEps        = 0.5
	similarityMinSamples = 2
)

// SimilarityLabels clusters texts by the TF-IDF cosine similarity of their
// words and returns one DBSCAN label per text (-1 = no similar peer).
func SimilarityLabels(texts []string) []int {
	docs := make([][]string, len(texts))
	for i, t := range texts {
		docs[i] = similarityWords(t)
	}
	sim := cosineMatrix(tfidfMatrix(docs))
	return dbscan(sim, similarityEps, similarityMinSamples)
}

// CheckSimilarity flags near-duplicate listings. Within each cluster of
// similar title+teaser texts only the listing with the smallest job_id keeps
// similarity_checked=true; unclustered listings are always true. Listings
// with a null title or teaser get a null flag.
func CheckSimilarity(jobs *frame.Frame) (*frame.Frame, error) {
	if err := jobs.Require("similarity", "job_id", "title", "teaser"); err != nil {
		return nil, err
	}

	candidates := jobs.DropNull("job_id", "title", "teaser")
	texts := make([]string, candidates.Len())
	for i, r := range candidates.Rows {
		texts[i] = textOf(r["title"]) + " " + textOf(r["teaser"])
	}
	labels := SimilarityLabels(texts)

	keep := make(map[int]any)
	for i, r := range candidates.Rows {
		l := labels[i]
		if l == noiseLabel {
			continue
		}
		if cur, ok := keep[l]; !ok || idLess(r["job_id"], cur) {
			keep[l] = r["job_id"]
		}
	}

	flags := frame.New("job_id", ColSimilarityChecked)
	for i, r := range candidates.Rows {
		l := labels[i]
		checked := l == noiseLabel || frame.Key(keep[l]) == frame.Key(r["job_id"])
		flags.Rows = append(flags.Rows, frame.Row{"job_id": r["job_id"], ColSimilarityChecked: checked})
	}

	return jobs.Drop(ColSimilarityChecked).LeftJoin(flags, "job_id"), nil
}

// idLess orders ids numerically when both are integers, else as text.
func idLess(a, b any) bool {
	ai, errA := strconv.ParseInt(frame.Key(a), 10, 64)
	bi, errB := strconv.ParseInt(frame.Key(b), 10, 64)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return frame.Key(a) < frame.Key(b)
}
