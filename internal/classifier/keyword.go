package classifier

import (
	"context"
	"strings"
)

// transactionalTerms are title fragments that mark vendor receipts and
// alerts, weighted by how strongly each implies a money movement. Scores
// sum per title and compare against the threshold.
var transactionalTerms = map[string]float64{
	"berhasil":   0.6,
	"transaksi":  0.5,
	"transfer":   0.5,
	"pembayaran": 0.5,
	"pembelian":  0.5,
	"top up":     0.5,
	"top-up":     0.5,
	"membayar":   0.5,
	"receipt":    0.4,
	"payment":    0.4,
	"notifikasi": 0.3,
	"e-wallet":   0.3,
	"struk":      0.3,
	"invoice":    0.2,
}

// Keyword is the offline relevance baseline: a weighted term scorer over
// lowercased titles. It never errs and needs no credentials, which makes it
// the default when no model backend is configured.
type Keyword struct {
	Threshold float64
}

func (k Keyword) Predict(_ context.Context, titles []string) ([]bool, error) {
	out := make([]bool, len(titles))
	for i, title := range titles {
		out[i] = k.score(strings.ToLower(title)) >= k.Threshold
	}
	return out, nil
}

func (k Keyword) score(title string) float64 {
	var score float64
	for term, weight := range transactionalTerms {
		if strings.Contains(title, term) {
			score += weight
		}
	}
	return score
}
